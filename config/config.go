package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	SecretKey         string
	DatabaseDriver    string
	DatabaseURL       string
	ServerPort        string
	SessionTTL        time.Duration
	CompanyName       string
	LogoPath          string
	DefaultDepartment string
	LogLevel          string
	LogFormat         string
	LogFile           string
}

const defaultSecret = "change_this_to_a_random_secret_key_please"

// Load reads configuration from an optional .env file, an optional
// CONFIG_FILE and the process environment, in increasing priority.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SECRET_KEY", defaultSecret)
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "overtime.db")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("COMPANY_NAME", "KCAL")
	v.SetDefault("LOGO_PATH", "static/kcal_logo.png")
	v.SetDefault("DEFAULT_DEPARTMENT", "Packaging")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_FILE", "")

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	cfg := &Config{
		SecretKey:         v.GetString("SECRET_KEY"),
		DatabaseDriver:    strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		ServerPort:        v.GetString("SERVER_PORT"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		CompanyName:       v.GetString("COMPANY_NAME"),
		LogoPath:          v.GetString("LOGO_PATH"),
		DefaultDepartment: v.GetString("DEFAULT_DEPARTMENT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		LogFile:           v.GetString("LOG_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("SECRET_KEY must not be empty")
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL must not be empty")
	}
	if strings.TrimSpace(c.ServerPort) == "" {
		return errors.New("SERVER_PORT must not be empty")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// UsesDefaultSecret reports whether the signing key was left at its
// development default.
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == defaultSecret
}
