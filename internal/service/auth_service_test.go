package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-repair-shop/internal/event"
	"go-repair-shop/internal/model"
	"go-repair-shop/pkg/apierror"
)

func newAuthFixture(t *testing.T) (*AuthService, *mockUserStore, *mockTokenStore, model.User) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	user := model.User{ID: 5, Username: "ana", PasswordHash: string(hash), Role: model.RoleEmployee}
	users := new(mockUserStore)
	tokens := new(mockTokenStore)
	svc := NewAuthService(users, tokens, "test-secret", 15*time.Minute, time.Hour)
	return svc, users, tokens, user
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.HTTPStatus)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("issues a pair and stores the refresh token", func(t *testing.T) {
		svc, users, tokens, user := newAuthFixture(t)
		users.On("FindByUsername", mock.Anything, "ana").Return(user, nil)
		tokens.On("Store", mock.Anything, mock.AnythingOfType("string"), int64(5), mock.AnythingOfType("time.Time")).Return(nil)

		pair, err := svc.Login(context.Background(), "ana", "correct-horse")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, int64(900), pair.ExpiresIn)
		require.Equal(t, &model.AuthUser{ID: 5, Username: "ana", Role: model.RoleEmployee}, pair.User)

		claims, err := svc.ValidateToken(pair.AccessToken, tokenTypeAccess)
		require.NoError(t, err)
		require.Equal(t, int64(5), claims.UserID)
		require.Equal(t, model.RoleEmployee, claims.Role)
		tokens.AssertNumberOfCalls(t, "Store", 1)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		svc, users, _, user := newAuthFixture(t)
		users.On("FindByUsername", mock.Anything, "ana").Return(user, nil)
		users.On("FindByUsername", mock.Anything, "bob").Return(model.User{}, model.ErrUserNotFound)

		_, err := svc.Login(context.Background(), "ana", "nope")
		requireStatus(t, err, http.StatusUnauthorized)

		_, err = svc.Login(context.Background(), "bob", "nope")
		requireStatus(t, err, http.StatusUnauthorized)
	})
}

func TestRefreshRotates(t *testing.T) {
	t.Parallel()

	svc, users, tokens, user := newAuthFixture(t)
	users.On("FindByUsername", mock.Anything, "ana").Return(user, nil)
	users.On("FindByID", mock.Anything, int64(5)).Return(user, nil)
	tokens.On("Store", mock.Anything, mock.Anything, int64(5), mock.Anything).Return(nil)

	pair, err := svc.Login(context.Background(), "ana", "correct-horse")
	require.NoError(t, err)

	tokens.On("Consume", mock.Anything, pair.RefreshToken).Return(int64(5), nil).Once()
	rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	require.Nil(t, rotated.User)

	tokens.On("Consume", mock.Anything, pair.RefreshToken).Return(int64(0), model.ErrTokenNotFound)
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	svc, users, tokens, user := newAuthFixture(t)
	users.On("FindByUsername", mock.Anything, "ana").Return(user, nil)
	tokens.On("Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	pair, err := svc.Login(context.Background(), "ana", "correct-horse")
	require.NoError(t, err)

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.Refresh(context.Background(), pair.AccessToken)
		requireStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("other secret is rejected", func(t *testing.T) {
		other := NewAuthService(users, tokens, "another-secret", time.Minute, time.Hour)
		_, err := other.ValidateToken(pair.AccessToken, tokenTypeAccess)
		requireStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		later := NewAuthService(users, tokens, "test-secret", time.Minute, time.Hour)
		later.now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
		_, err := later.ValidateToken(pair.AccessToken, tokenTypeAccess)
		requireStatus(t, err, http.StatusUnauthorized)
	})
}

func TestSeedAdmin(t *testing.T) {
	t.Parallel()

	t.Run("creates an admin on an empty table", func(t *testing.T) {
		users := new(mockUserStore)
		users.On("Count", mock.Anything).Return(0, nil)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
			return u.Username == "admin" && u.Role == model.RoleAdmin &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("changeme123")) == nil
		})).Return(model.User{ID: 1, Username: "admin", Role: model.RoleAdmin}, nil)

		svc := NewAuthService(users, new(mockTokenStore), "s", time.Minute, time.Hour)
		require.NoError(t, svc.SeedAdmin(context.Background(), "admin", "changeme123"))
		users.AssertExpectations(t)
	})

	t.Run("leaves existing users alone", func(t *testing.T) {
		users := new(mockUserStore)
		users.On("Count", mock.Anything).Return(2, nil)

		svc := NewAuthService(users, new(mockTokenStore), "s", time.Minute, time.Hour)
		require.NoError(t, svc.SeedAdmin(context.Background(), "admin", ""))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUserService(t *testing.T) {
	t.Parallel()

	t.Run("cannot delete yourself", func(t *testing.T) {
		users := new(mockUserStore)
		svc := NewUserService(users, new(mockTokenStore), nil)

		ctx := event.WithActor(context.Background(), ActorID(3))
		err := svc.Delete(ctx, 3)
		requireStatus(t, err, http.StatusBadRequest)
		users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("password change revokes refresh tokens", func(t *testing.T) {
		users := new(mockUserStore)
		tokens := new(mockTokenStore)
		existing := model.User{ID: 3, Username: "luis", PasswordHash: "old", Role: model.RoleEmployee}
		users.On("FindByID", mock.Anything, int64(3)).Return(existing, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u model.User) bool {
			return u.PasswordHash != "old" && u.Role == model.RoleAdmin
		})).Return(model.User{ID: 3, Username: "luis", Role: model.RoleAdmin}, nil)
		tokens.On("RevokeAllForUser", mock.Anything, int64(3)).Return(nil)

		password := "a-new-password"
		role := model.Role("ADMIN")
		updated, err := NewUserService(users, tokens, nil).Update(context.Background(), 3, model.UpdateUserRequest{
			Password: &password,
			Role:     &role,
		})
		require.NoError(t, err)
		require.Equal(t, model.RoleAdmin, updated.Role)
		tokens.AssertExpectations(t)
	})

	t.Run("short password is a field error", func(t *testing.T) {
		_, err := NewUserService(new(mockUserStore), new(mockTokenStore), nil).Create(context.Background(), model.CreateUserRequest{
			Username: "new",
			Password: "short",
		})
		requireValidation(t, err, "password")
	})
}
