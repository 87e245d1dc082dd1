package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSecretAndDatabase(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://shop@localhost/shop")

	_, err := Load()
	require.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "")
	_, err = Load()
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://shop@localhost/shop")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("RATE_LIMIT_RPM", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8000", cfg.ServerPort)
	require.Equal(t, 5*time.Minute, cfg.JWTAccessTTL)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	require.Equal(t, 300, cfg.RateLimitRPM)
	require.Equal(t, int32(10), cfg.DBMaxConns)
}

func TestLoadClientProfile(t *testing.T) {
	dir := t.TempDir()
	path := ClientConfigPath(dir)

	t.Setenv("SHOPCTL_API_URL", "")
	t.Setenv("SHOPCTL_PAGE_SIZE", "")

	cfg, err := LoadClient(dir, path)
	require.NoError(t, err)
	require.Equal(t, DefaultClient(dir), cfg)

	require.NoError(t, os.WriteFile(path, []byte("api_url: https://shop.example.com\npage_size: 25\ndebounce: 150ms\n"), 0o600))
	cfg, err = LoadClient(dir, path)
	require.NoError(t, err)
	require.Equal(t, "https://shop.example.com", cfg.APIURL)
	require.Equal(t, 25, cfg.PageSize)
	require.Equal(t, 150*time.Millisecond, cfg.Debounce)
	require.Equal(t, filepath.Join(dir, "session.json"), cfg.SessionFile)

	t.Setenv("SHOPCTL_PAGE_SIZE", "5")
	cfg, err = LoadClient(dir, path)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.PageSize)
}

func TestClientSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	t.Setenv("SHOPCTL_API_URL", "")
	t.Setenv("SHOPCTL_PAGE_SIZE", "")

	want := DefaultClient(dir)
	want.APIURL = "http://10.0.0.5:8000"
	require.NoError(t, want.Save(path))

	got, err := LoadClient(dir, path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestClientValidate(t *testing.T) {
	cfg := DefaultClient(t.TempDir())
	cfg.APIURL = "localhost:8000"
	require.Error(t, cfg.Validate())

	cfg = DefaultClient(t.TempDir())
	cfg.PageSize = 0
	require.Error(t, cfg.Validate())
}

func TestEnvReader(t *testing.T) {
	values := map[string]string{"N": " 42 ", "BAD": "x", "D": "90s", "L": "a,,b ,", "BLANK": "  "}
	e := env{lookup: func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}}

	require.Equal(t, 42, e.integer("N", 1))
	require.Equal(t, 1, e.integer("BAD", 1))
	require.Equal(t, 90*time.Second, e.duration("D", time.Second))
	require.Equal(t, []string{"a", "b"}, e.list("L", nil))
	require.Equal(t, "fallback", e.str("BLANK", "fallback"))
	require.Equal(t, []string{"*"}, e.list("MISSING", []string{"*"}))
}
