// Package config handles server configuration: defaults, environment
// variables and command-line flags, in that order of precedence.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings for the SecureNotes server
type Config struct {
	Addr            string        // адрес и порт HTTP сервера
	DatabasePath    string        // путь к файлу SQLite
	JWTSecret       string        // ключ подписи токенов, минимум 32 байта
	AccessTokenTTL  time.Duration // время жизни access token
	RefreshTokenTTL time.Duration // время жизни refresh token
	LogLevel        string        // debug, info, warn, error
	LogFormat       string        // text или json

	LoginRateLimit  int           // попыток логина с одного IP за окно
	LoginRateWindow time.Duration // окно для лимита логина
	APIRateLimit    int           // запросов с одного IP за окно
	APIRateWindow   time.Duration // окно для общего лимита
}

// loadDefaults populates Config with development defaults.
// JWTSecret намеренно пустой: его обязан задать оператор.
func (c *Config) loadDefaults() {
	c.Addr = ":8080"
	c.DatabasePath = "securenotes.db"
	c.JWTSecret = ""
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 7 * 24 * time.Hour
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.LoginRateLimit = 5
	c.LoginRateWindow = time.Minute
	c.APIRateLimit = 100
	c.APIRateWindow = time.Minute
}

// loadEnv overlays values from environment variables
func (c *Config) loadEnv() error {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
		}
		c.AccessTokenTTL = d
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REFRESH_TOKEN_TTL: %w", err)
		}
		c.RefreshTokenTTL = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("LOGIN_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
		}
		c.LoginRateLimit = n
	}
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid API_RATE_LIMIT: %w", err)
		}
		c.APIRateLimit = n
	}
	return nil
}

// parseFlags overlays values from command-line flags.
// Флаги имеют высший приоритет.
func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("securenotes-server", flag.ContinueOnError)

	fs.StringVar(&c.Addr, "a", c.Addr, "address and port to run server")
	fs.StringVar(&c.DatabasePath, "d", c.DatabasePath, "path to SQLite database file")
	fs.StringVar(&c.JWTSecret, "s", c.JWTSecret, "JWT signing secret (at least 32 bytes)")
	fs.DurationVar(&c.AccessTokenTTL, "access-ttl", c.AccessTokenTTL, "access token lifetime")
	fs.DurationVar(&c.RefreshTokenTTL, "refresh-ttl", c.RefreshTokenTTL, "refresh token lifetime")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: text or json")

	return fs.Parse(args)
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 bytes, got %d (set JWT_SECRET or -s)", len(c.JWTSecret))
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("access token TTL must be positive")
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return fmt.Errorf("refresh token TTL must exceed access token TTL")
	}
	if c.LoginRateLimit <= 0 || c.APIRateLimit <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}

// Load builds a Config from defaults, environment and flags
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.loadDefaults()

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
