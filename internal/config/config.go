package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingDatabaseURL is the one configuration error that stops startup.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

type Config struct {
	Env         string `mapstructure:"GO_ENV"`
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Collector data files
	CatalogFile string `mapstructure:"CATALOG_FILE"`
	BadgesFile  string `mapstructure:"BADGES_FILE"`

	StorageTimeout time.Duration `mapstructure:"STORAGE_TIMEOUT"`
	Timezone       string        `mapstructure:"TIMEZONE"`
	DigestInterval time.Duration `mapstructure:"DIGEST_INTERVAL"`

	// Transport collaborator
	JWTSecret        string `mapstructure:"JWT_SECRET"`
	NotifyWebhookURL string `mapstructure:"NOTIFY_WEBHOOK_URL"`

	// Redis (optional, per-user submission limits)
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	SubmitRateLimit  int           `mapstructure:"SUBMIT_RATE_LIMIT"`
	SubmitRateWindow time.Duration `mapstructure:"SUBMIT_RATE_WINDOW"`

	// R2 / S3 (optional, screenshot and report archive)
	R2AccountID       string `mapstructure:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `mapstructure:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `mapstructure:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `mapstructure:"R2_BUCKET_NAME"`
	R2PublicURL       string `mapstructure:"R2_PUBLIC_URL"` // Custom domain
}

var defaults = map[string]interface{}{
	"GO_ENV":               "development",
	"PORT":                 "8080",
	"DATABASE_URL":         "",
	"CATALOG_FILE":         "config/catalog.yaml",
	"BADGES_FILE":          "config/badges.yaml",
	"STORAGE_TIMEOUT":      5 * time.Second,
	"TIMEZONE":             "UTC",
	"DIGEST_INTERVAL":      7 * 24 * time.Hour,
	"JWT_SECRET":           "",
	"NOTIFY_WEBHOOK_URL":   "",
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"SUBMIT_RATE_LIMIT":    30,
	"SUBMIT_RATE_WINDOW":   time.Minute,
	"R2_ACCOUNT_ID":        "",
	"R2_ACCESS_KEY_ID":     "",
	"R2_SECRET_ACCESS_KEY": "",
	"R2_BUCKET_NAME":       "",
	"R2_PUBLIC_URL":        "",
}

// LoadConfig reads envFile (a dotenv file, optional) and the process environment.
// Environment variables win over the file.
func LoadConfig(envFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the values the process cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.StorageTimeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT must be positive, got %s", c.StorageTimeout)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.RedisAddr != "" {
		if c.SubmitRateLimit <= 0 {
			return fmt.Errorf("SUBMIT_RATE_LIMIT must be positive when REDIS_ADDR is set, got %d", c.SubmitRateLimit)
		}
		if c.SubmitRateWindow <= 0 {
			return fmt.Errorf("SUBMIT_RATE_WINDOW must be positive when REDIS_ADDR is set, got %s", c.SubmitRateWindow)
		}
	}
	return nil
}

// Location resolves TIMEZONE, used to bucket contributions by calendar date.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ArchiveEnabled reports whether R2 credentials are complete.
func (c *Config) ArchiveEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}
