//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-repair-shop/internal/apiclient"
	"go-repair-shop/internal/app"
	"go-repair-shop/internal/config"
	"go-repair-shop/internal/database"
	"go-repair-shop/internal/model"
	"go-repair-shop/internal/session"
)

const (
	adminUser = "admin"
	adminPass = "admin-pass-123"
)

func testConfig(databaseURL string) *config.Config {
	return &config.Config{
		ServerPort:       "8000",
		RequestTimeout:   10 * time.Second,
		DatabaseURL:      databaseURL,
		DBMaxConns:       4,
		DBMinConns:       0,
		JWTSecret:        "test-secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    24 * time.Hour,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     0,
		AuthRateLimitRPM: 1000,
		DefaultAdminUser: adminUser,
		DefaultAdminPass: adminPass,
	}
}

// newServer starts the full API over the database named by TEST_DATABASE_URL.
// Every table is emptied first so the default admin is seeded again.
func newServer(t *testing.T, tweak ...func(*config.Config)) *httptest.Server {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	cfg := testConfig(databaseURL)
	for _, fn := range tweak {
		fn(cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db, err := database.New(ctx, cfg.DatabaseURL, database.PoolOptions{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, "TRUNCATE work_orders, vehicles, clients, refresh_tokens, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	handler, err := app.Routes(ctx, cfg, db)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// loggedInClient returns an API client holding an admin session.
func loggedInClient(t *testing.T, server *httptest.Server) *apiclient.Client {
	t.Helper()

	client, err := apiclient.New(server.URL, session.NewMemoryStore(), apiclient.Options{})
	require.NoError(t, err)

	pair, err := client.Auth().Login(context.Background(), adminUser, adminPass)
	require.NoError(t, err)
	require.NoError(t, client.Auth().SaveSession(pair))
	return client
}

func login(t *testing.T, serverURL string, username string, password string) model.TokenPair {
	t.Helper()

	resp := doJSON(t, http.MethodPost, serverURL+"/auth/login", "", model.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pair model.TokenPair
	decode(t, resp, &pair)
	return pair
}

func doJSON(t *testing.T, method string, url string, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()

	var body model.ErrorResponse
	decode(t, resp, &body)
	require.NotNil(t, body.Error)
	return body.Error.Code
}
