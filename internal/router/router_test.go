package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-repair-shop/internal/config"
	"go-repair-shop/internal/handler"
	"go-repair-shop/internal/middleware"
	"go-repair-shop/internal/model"
)

type stubService[T any, C any, U any] struct{}

func (stubService[T, C, U]) List(context.Context, model.ListParams) ([]T, error) {
	return []T{}, nil
}

func (stubService[T, C, U]) Get(context.Context, int64) (T, error) {
	var v T
	return v, nil
}

func (stubService[T, C, U]) Create(context.Context, C) (T, error) {
	var v T
	return v, nil
}

func (stubService[T, C, U]) Update(context.Context, int64, U) (T, error) {
	var v T
	return v, nil
}

func (stubService[T, C, U]) Delete(context.Context, int64) error {
	return nil
}

type stubOwnerVehicles struct{}

func (stubOwnerVehicles) ListByOwner(context.Context, int64) ([]model.Vehicle, error) {
	return []model.Vehicle{}, nil
}

func (stubOwnerVehicles) CreateForOwner(_ context.Context, ownerID int64, in model.VehicleInput) (model.Vehicle, error) {
	in.OwnerID = ownerID
	return model.Vehicle{ID: 1, VehicleInput: in}, nil
}

func (stubOwnerVehicles) DeleteForOwner(context.Context, int64, int64) error { return nil }

type stubAuth struct{}

func (stubAuth) Login(context.Context, string, string) (model.TokenPair, error) {
	return model.TokenPair{TokenType: "bearer"}, nil
}

func (stubAuth) Refresh(context.Context, string) (model.TokenPair, error) {
	return model.TokenPair{TokenType: "bearer"}, nil
}

func (stubAuth) Logout(context.Context, string) error { return nil }

func (stubAuth) Me(_ context.Context, id int64) (model.AuthUser, error) {
	return model.AuthUser{ID: id}, nil
}

// tokenRoles treats the bearer token as the caller's role.
type tokenRoles struct{}

func (tokenRoles) ValidateToken(token string, _ string) (*model.AuthClaims, error) {
	role := model.Role(token)
	if !role.Valid() {
		return nil, model.ErrUnauthorized
	}
	return &model.AuthClaims{UserID: 1, Username: token, Role: role, Type: "access"}, nil
}

type pingOK struct{}

func (pingOK) Health(context.Context) error { return nil }

func newTestRouter(authRPM int) http.Handler {
	cfg := &config.Config{
		RequestTimeout:   5 * time.Second,
		CORSOrigins:      []string{"*"},
		AuthRateLimitRPM: authRPM,
	}

	return New(cfg, middleware.NewAuthMiddleware(tokenRoles{}), Handlers{
		Auth:           handler.NewAuthHandler(stubAuth{}),
		Clients:        handler.NewResourceHandler(stubService[model.Client, model.ClientInput, model.ClientInput]{}),
		ClientVehicles: handler.NewClientVehiclesHandler(stubOwnerVehicles{}),
		Vehicles:       handler.NewResourceHandler(stubService[model.Vehicle, model.VehicleInput, model.VehicleInput]{}),
		WorkOrders:     handler.NewResourceHandler(stubService[model.WorkOrder, model.WorkOrderInput, model.WorkOrderInput]{}),
		Users:          handler.NewResourceHandler(stubService[model.User, model.CreateUserRequest, model.UpdateUserRequest]{}),
		Events:         http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) }),
		Health:         handler.Health(pingOK{}),
	})
}

func request(h http.Handler, method string, target string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterAccessRules(t *testing.T) {
	t.Parallel()

	h := newTestRouter(100)
	admin, employee := string(model.RoleAdmin), string(model.RoleEmployee)

	tests := []struct {
		name   string
		method string
		target string
		token  string
		status int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"clients need a token", http.MethodGet, "/clients", "", http.StatusUnauthorized},
		{"employee lists clients", http.MethodGet, "/clients", employee, http.StatusOK},
		{"employee cannot delete clients", http.MethodDelete, "/clients/3", employee, http.StatusForbidden},
		{"admin deletes clients", http.MethodDelete, "/clients/3", admin, http.StatusNoContent},
		{"employee deletes work orders", http.MethodDelete, "/work-orders/3", employee, http.StatusNoContent},
		{"employee lists owner vehicles", http.MethodGet, "/clients/3/vehicles", employee, http.StatusOK},
		{"employee removes owner vehicle", http.MethodDelete, "/clients/3/vehicles/4", employee, http.StatusNoContent},
		{"users are admin only", http.MethodGet, "/users", employee, http.StatusForbidden},
		{"admin lists users", http.MethodGet, "/users", admin, http.StatusOK},
		{"me needs a token", http.MethodGet, "/auth/me", "", http.StatusUnauthorized},
		{"events need a token", http.MethodGet, "/ws", "", http.StatusUnauthorized},
		{"events reach the stream handler", http.MethodGet, "/ws", employee, http.StatusTeapot},
		{"unknown route", http.MethodGet, "/files", admin, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := request(h, tt.method, tt.target, tt.token)
			require.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRouterSecurityHeaders(t *testing.T) {
	t.Parallel()

	rec := request(newTestRouter(100), http.MethodGet, "/health", "")
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterLimitsLoginAttempts(t *testing.T) {
	t.Parallel()

	h := newTestRouter(1)

	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.1.1.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.NotEqual(t, http.StatusTooManyRequests, login())
	require.Equal(t, http.StatusTooManyRequests, login())
}
