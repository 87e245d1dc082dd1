package apiclient

import (
	"context"
	"net/http"

	"go-repair-shop/internal/model"
	"go-repair-shop/internal/session"
)

type AuthService struct {
	client *Client
}

func (c *Client) Auth() AuthService {
	return AuthService{client: c}
}

// Login exchanges credentials for a session payload. It neither sends the
// stored token nor attempts a refresh on 401.
func (s AuthService) Login(ctx context.Context, username string, password string) (model.TokenPair, error) {
	payload, err := encodeBody(model.LoginRequest{Username: username, Password: password})
	if err != nil {
		return model.TokenPair{}, err
	}

	var pair model.TokenPair
	err = s.client.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      payload,
		out:       &pair,
		anonymous: true,
	})
	return pair, err
}

func (s AuthService) SaveSession(pair model.TokenPair) error {
	return session.Save(s.client.store, session.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         pair.User,
	})
}

func (s AuthService) ClearSession() error {
	return session.Clear(s.client.store)
}

// Logout tells the server to revoke the refresh token, then clears the local
// session whatever the outcome of that call.
func (s AuthService) Logout(ctx context.Context) error {
	refreshToken := session.RefreshToken(s.client.store)
	if session.AccessToken(s.client.store) != "" {
		payload, err := encodeBody(model.RefreshRequest{RefreshToken: refreshToken})
		if err == nil {
			if err := s.client.do(ctx, call{
				method: http.MethodPost,
				path:   "/auth/logout",
				body:   payload,
				quiet:  true,
			}); err != nil {
				s.client.logger.Warn("logout request failed", "error", err)
			}
		}
	}
	return s.ClearSession()
}

func (s AuthService) Me(ctx context.Context) (model.AuthUser, error) {
	var user model.AuthUser
	err := s.client.Do(ctx, http.MethodGet, "/auth/me", nil, &user)
	return user, err
}

func (s AuthService) Verify(ctx context.Context) (model.VerifyResponse, error) {
	var resp model.VerifyResponse
	err := s.client.Do(ctx, http.MethodPost, "/auth/verify", nil, &resp)
	return resp, err
}
