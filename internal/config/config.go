package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/dfryer1193/inkfront/blog/domain"
	"github.com/dfryer1193/inkfront/shared/github"
)

const (
	defaultPort       = 3000
	defaultAPIBaseURL = "http://localhost:8080/api"
	defaultDBPath     = "./inkfront.db"
)

// Config is the process configuration, read from the environment and an optional .env file.
type Config struct {
	Port            int
	APIBaseURL      string
	SQLitePath      string
	DefaultTheme    domain.Theme
	DefaultCategory string
	UpstreamTimeout time.Duration
	SecureCookies   bool

	LogLevel  zerolog.Level
	LogPretty bool

	Github github.Config
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset values.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:            defaultPort,
		APIBaseURL:      stringOr(getenv("API_BASE_URL"), defaultAPIBaseURL),
		SQLitePath:      stringOr(getenv("SQLITE_DB_PATH"), defaultDBPath),
		DefaultTheme:    domain.ThemeDark,
		DefaultCategory: stringOr(getenv("DEFAULT_CATEGORY"), domain.DefaultCategory),
		LogLevel:        zerolog.InfoLevel,
		Github: github.Config{
			ClientID:     getenv("GITHUB_CLIENT_ID"),
			ClientSecret: getenv("GITHUB_CLIENT_SECRET"),
			RedirectURL:  getenv("GITHUB_REDIRECT_URL"),
			AllowedLogin: getenv("ALLOWED_GITHUB_LOGIN"),
		},
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := getenv("DEFAULT_THEME"); v != "" {
		theme, ok := domain.ParseTheme(strings.ToLower(v))
		if !ok {
			return nil, fmt.Errorf("invalid DEFAULT_THEME %q", v)
		}
		cfg.DefaultTheme = theme
	}

	if v := getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q", v)
		}
		cfg.UpstreamTimeout = d
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
		cfg.LogLevel = level
	}

	var err error
	if cfg.LogPretty, err = boolOr(getenv("LOG_PRETTY"), false); err != nil {
		return nil, fmt.Errorf("invalid LOG_PRETTY: %w", err)
	}
	if cfg.SecureCookies, err = boolOr(getenv("SECURE_COOKIES"), false); err != nil {
		return nil, fmt.Errorf("invalid SECURE_COOKIES: %w", err)
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func boolOr(v string, fallback bool) (bool, error) {
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}
