package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const clientDirName = "shopctl"

// Client is the shopctl profile, read from config.yaml in the user config
// directory and overridden by SHOPCTL_* variables.
type Client struct {
	APIURL            string        `yaml:"api_url"`
	PageSize          int           `yaml:"page_size"`
	Debounce          time.Duration `yaml:"debounce"`
	NotifyDuration    time.Duration `yaml:"notify_duration"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	SessionFile       string        `yaml:"session_file"`
	LogFile           string        `yaml:"log_file"`
	LogLevel          string        `yaml:"log_level"`
}

func DefaultClient(dir string) Client {
	return Client{
		APIURL:         "http://127.0.0.1:8000",
		PageSize:       10,
		Debounce:       300 * time.Millisecond,
		NotifyDuration: 4 * time.Second,
		Timeout:        30 * time.Second,
		SessionFile:    filepath.Join(dir, "session.json"),
		LogFile:        filepath.Join(dir, "shopctl.log"),
		LogLevel:       "info",
	}
}

// ClientDir is $XDG_CONFIG_HOME/shopctl or the platform equivalent.
func ClientDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, clientDirName), nil
}

func ClientConfigPath(dir string) string {
	return filepath.Join(dir, "config.yaml")
}

// LoadClient reads the profile at path. A missing file yields the defaults.
func LoadClient(dir string, path string) (Client, error) {
	cfg := DefaultClient(dir)

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Client{}, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Client{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	env := newEnv()
	cfg.APIURL = env.str("SHOPCTL_API_URL", cfg.APIURL)
	cfg.PageSize = env.integer("SHOPCTL_PAGE_SIZE", cfg.PageSize)
	cfg.SessionFile = env.str("SHOPCTL_SESSION_FILE", cfg.SessionFile)
	cfg.LogFile = env.str("SHOPCTL_LOG_FILE", cfg.LogFile)
	cfg.LogLevel = env.str("SHOPCTL_LOG_LEVEL", cfg.LogLevel)
	cfg.Timeout = env.duration("SHOPCTL_TIMEOUT", cfg.Timeout)

	if err := cfg.Validate(); err != nil {
		return Client{}, err
	}
	return cfg, nil
}

func (c Client) Validate() error {
	parsed, err := url.Parse(strings.TrimSpace(c.APIURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive")
	}

	if c.Debounce < 0 || c.NotifyDuration < 0 || c.Timeout < 0 {
		return fmt.Errorf("durations cannot be negative")
	}

	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second cannot be negative")
	}

	if strings.TrimSpace(c.SessionFile) == "" {
		return fmt.Errorf("session_file cannot be empty")
	}

	return nil
}

// Save writes the profile as YAML, creating the directory if needed.
func (c Client) Save(path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
