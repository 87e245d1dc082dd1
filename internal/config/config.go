package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	RequestTimeout     time.Duration
	DatabaseURL        string
	DBMaxConns         int32
	DBMinConns         int32
	JWTSecret          string
	JWTAccessTTL       time.Duration
	JWTRefreshTTL      time.Duration
	CORSOrigins        []string
	RateLimitRPM       int
	AuthRateLimitRPM   int
	DefaultAdminUser   string
	DefaultAdminPass   string
	LogLevel           string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := newEnv()
	cfg := &Config{
		ServerPort:         env.str("SERVER_PORT", "8000"),
		ServerReadTimeout:  env.duration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: env.duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:  env.duration("SERVER_IDLE_TIMEOUT", 2*time.Minute),
		RequestTimeout:     env.duration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:        env.str("DATABASE_URL", ""),
		DBMaxConns:         int32(env.integer("DB_MAX_CONNS", 10)),
		DBMinConns:         int32(env.integer("DB_MIN_CONNS", 1)),
		JWTSecret:          env.str("JWT_SECRET", ""),
		JWTAccessTTL:       env.duration("JWT_ACCESS_TTL", 30*time.Minute),
		JWTRefreshTTL:      env.duration("JWT_REFRESH_TTL", 7*24*time.Hour),
		CORSOrigins:        env.list("CORS_ORIGINS", []string{"*"}),
		RateLimitRPM:       env.integer("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM:   env.integer("AUTH_RATE_LIMIT_RPM", 10),
		DefaultAdminUser:   env.str("DEFAULT_ADMIN_USERNAME", "admin"),
		DefaultAdminPass:   env.str("DEFAULT_ADMIN_PASSWORD", ""),
		LogLevel:           env.str("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}

	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
	}

	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive")
	}

	return nil
}

// env reads trimmed environment variables. Unset, blank or unparsable values
// yield the fallback; unparsable ones are logged.
type env struct {
	lookup func(string) (string, bool)
}

func newEnv() env {
	return env{lookup: os.LookupEnv}
}

func (e env) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e env) str(key string, fallback string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return fallback
}

func (e env) integer(key string, fallback int) int {
	v, ok := e.raw(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", v)
		return fallback
	}
	return n
}

func (e env) duration(key string, fallback time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("ignoring invalid duration setting", "key", key, "value", v)
		return fallback
	}
	return d
}

// list splits a comma separated value, dropping blank items.
func (e env) list(key string, fallback []string) []string {
	v, ok := e.raw(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
