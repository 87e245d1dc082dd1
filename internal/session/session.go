package session

import (
	"encoding/json"
	"fmt"

	"go-repair-shop/internal/model"
)

const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Session is the signed-in state kept on the client.
type Session struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	User         *model.AuthUser `json:"user"`
}

func (s Session) HasRole(roles ...model.Role) bool {
	if len(roles) == 0 {
		return true
	}
	if s.User == nil {
		return false
	}
	for _, role := range roles {
		if s.User.Role == role {
			return true
		}
	}
	return false
}

// Save writes each session value under its own key.
func Save(store Store, s Session) error {
	if err := store.Set(KeyAccessToken, s.AccessToken); err != nil {
		return err
	}
	if s.RefreshToken != "" {
		if err := store.Set(KeyRefreshToken, s.RefreshToken); err != nil {
			return err
		}
	}
	if s.User != nil {
		raw, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("encode session user: %w", err)
		}
		if err := store.Set(KeyUser, string(raw)); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the session back. A missing or unreadable user leaves User nil.
func Load(store Store) Session {
	s := Session{
		AccessToken:  AccessToken(store),
		RefreshToken: RefreshToken(store),
	}
	if raw, ok := store.Get(KeyUser); ok && raw != "" {
		var user model.AuthUser
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			s.User = &user
		}
	}
	return s
}

func AccessToken(store Store) string {
	value, _ := store.Get(KeyAccessToken)
	return value
}

func RefreshToken(store Store) string {
	value, _ := store.Get(KeyRefreshToken)
	return value
}

// Rotate stores tokens returned by a refresh. An empty refresh token keeps the
// current one.
func Rotate(store Store, accessToken string, refreshToken string) error {
	if err := store.Set(KeyAccessToken, accessToken); err != nil {
		return err
	}
	if refreshToken != "" {
		return store.Set(KeyRefreshToken, refreshToken)
	}
	return nil
}

func Clear(store Store) error {
	return store.Clear()
}
