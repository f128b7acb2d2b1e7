/*
Package configs is responsible for loading and parsing the application's configuration settings.

All values come from environment variables. Durable backends (Postgres, Redis, S3) are optional:
leaving them unset selects the transient in-memory and on-disk fallbacks at startup.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultPort            = 5000
	defaultAllowedOrigin   = "http://localhost:5173"
	defaultUploadDir       = "uploads"
	defaultContactDropSize = 4
	developmentJWTSecret   = "your_default_insecure_secret_key_change_me"
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string
	JWTSecret      string

	// Database Settings
	DatabaseDSN string
	RedisURL    string

	// Storage Settings
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	UploadDir         string

	// Presentation Settings
	ContactListDropEmpty int
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// S3Configured reports whether every S3 setting is present.
func (c *AppConfig) S3Configured() bool {
	return c.S3BucketName != "" && c.S3Endpoint != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

// LoadConfig reads and parses the application configuration from environment variables.
func LoadConfig() (*AppConfig, error) {
	return loadFrom(os.Getenv)
}

func loadFrom(getenv func(string) string) (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	port, err := intOrDefault(getenv, "PORT", defaultPort)
	if err != nil {
		return nil, err
	}
	if port < 1024 || port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", port, 1024, 65535)
	}
	cfg.Port = port

	// --- Security Settings ---
	originsStr := getenv("ALLOWED_ORIGINS")
	if originsStr == "" {
		originsStr = defaultAllowedOrigin
	}
	for _, origin := range strings.Split(originsStr, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	cfg.JWTSecret = getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
		cfg.JWTSecret = developmentJWTSecret
	}

	// --- Database Settings ---
	cfg.DatabaseDSN = strings.TrimSpace(getenv("DATABASE_URL"))
	cfg.RedisURL = strings.TrimSpace(getenv("REDIS_URL"))

	// --- Storage Settings ---
	cfg.S3BucketName = getenv("S3_BUCKET_NAME")
	cfg.S3Endpoint = getenv("S3_ENDPOINT")
	cfg.S3AccessKeyID = getenv("S3_ACCESS_KEY_ID")
	cfg.S3SecretAccessKey = getenv("S3_SECRET_ACCESS_KEY")

	anyS3 := cfg.S3BucketName != "" || cfg.S3Endpoint != "" || cfg.S3AccessKeyID != "" || cfg.S3SecretAccessKey != ""
	if anyS3 && !cfg.S3Configured() {
		return nil, fmt.Errorf("S3_BUCKET_NAME, S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
	}

	cfg.UploadDir = getenv("UPLOAD_DIR")
	if cfg.UploadDir == "" {
		cfg.UploadDir = defaultUploadDir
	}

	// --- Presentation Settings ---
	dropEmpty, err := intOrDefault(getenv, "CONTACT_LIST_DROP_EMPTY", defaultContactDropSize)
	if err != nil {
		return nil, err
	}
	if dropEmpty < 0 {
		return nil, fmt.Errorf("CONTACT_LIST_DROP_EMPTY must not be negative, got %d", dropEmpty)
	}
	cfg.ContactListDropEmpty = dropEmpty

	return cfg, nil
}

func intOrDefault(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}

	return v, nil
}
