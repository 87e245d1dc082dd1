package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-repair-shop/internal/model"
	"go-repair-shop/pkg/apierror"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	bcryptCost       = 12
)

type AuthService struct {
	users      UserStore
	tokens     TokenStore
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthService(users UserStore, tokens TokenStore, jwtSecret string, accessTTL time.Duration, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func invalidCredentials() *apierror.APIError {
	return apierror.New("UNAUTHORIZED", "invalid credentials", "", http.StatusUnauthorized)
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (model.TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, invalidCredentials()
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.TokenPair{}, invalidCredentials()
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return model.TokenPair{}, err
	}

	public := user.Public()
	pair.User = &public
	return pair, nil
}

// Refresh rotates the refresh token: the presented one is consumed and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.ValidateToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	ownerID, err := s.tokens.Consume(ctx, refreshToken)
	if errors.Is(err, model.ErrTokenNotFound) {
		return model.TokenPair{}, apierror.New("UNAUTHORIZED", "refresh token is invalid", "", http.StatusUnauthorized)
	}
	if err != nil {
		return model.TokenPair{}, err
	}
	if ownerID != claims.UserID {
		return model.TokenPair{}, apierror.New("UNAUTHORIZED", "refresh token is invalid", "", http.StatusUnauthorized)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, apierror.New("UNAUTHORIZED", "user not found", "", http.StatusUnauthorized)
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	return s.issueTokenPair(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *AuthService) Me(ctx context.Context, userID int64) (model.AuthUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.AuthUser{}, err
	}
	return user.Public(), nil
}

func (s *AuthService) ValidateToken(tokenString string, expectedType string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierror.New("UNAUTHORIZED", "invalid token signing method", "", http.StatusUnauthorized)
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, apierror.New("UNAUTHORIZED", "invalid token", "", http.StatusUnauthorized)
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.New("UNAUTHORIZED", "invalid token claims", "", http.StatusUnauthorized)
	}

	typ, _ := claimsMap["typ"].(string)
	if expectedType != "" && typ != expectedType {
		return nil, apierror.New("UNAUTHORIZED", "invalid token type", "", http.StatusUnauthorized)
	}

	subject, _ := claimsMap["sub"].(string)
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, apierror.New("UNAUTHORIZED", "invalid token subject", "", http.StatusUnauthorized)
	}

	claims := &model.AuthClaims{UserID: userID, Type: typ}
	claims.Username, _ = claimsMap["username"].(string)
	role, _ := claimsMap["role"].(string)
	claims.Role = model.Role(role)
	claims.TokenID, _ = claimsMap["jti"].(string)

	return claims, nil
}

// SeedAdmin creates the default admin when the users table is empty. An empty
// password is replaced by a random one which is logged once.
func (s *AuthService) SeedAdmin(ctx context.Context, username string, password string) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	generated := false
	if strings.TrimSpace(password) == "" {
		password = strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
		generated = true
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	now := s.now()
	admin, err := s.users.Create(ctx, model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if generated {
		slog.Warn("seeded default admin with generated password", "username", admin.Username, "password", password)
	} else {
		slog.Info("seeded default admin", "username", admin.Username)
	}
	return nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, user model.User) (model.TokenPair, error) {
	now := s.now()
	subject := strconv.FormatInt(user.ID, 10)

	accessToken, err := s.signToken(jwt.MapClaims{
		"sub":      subject,
		"username": user.Username,
		"role":     string(user.Role),
		"typ":      tokenTypeAccess,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(s.accessTTL).Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshExpiry := now.Add(s.refreshTTL)
	refreshToken, err := s.signToken(jwt.MapClaims{
		"sub":      subject,
		"username": user.Username,
		"role":     string(user.Role),
		"typ":      tokenTypeRefresh,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      refreshExpiry.Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.tokens.Store(ctx, refreshToken, user.ID, refreshExpiry); err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *AuthService) signToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
