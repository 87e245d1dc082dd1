package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) Public() AuthUser {
	return AuthUser{ID: u.ID, Username: u.Username, Role: u.Role}
}

type AuthClaims struct {
	UserID   int64  `json:"sub"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Type     string `json:"typ"`
	TokenID  string `json:"jti"`
}

type AuthUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// TokenPair is the body of /auth/login (with User) and /auth/refresh (without).
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in,omitempty"`
	User         *AuthUser `json:"user,omitempty"`
}
