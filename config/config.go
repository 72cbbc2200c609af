package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type GoogleConfig struct {
	ClientID         string `yaml:"client_id"`
	ClientSecret     string `yaml:"client_secret"`
	RedirectURL      string `yaml:"redirect_url" validate:"omitempty,url"`
	FrontendRedirect string `yaml:"frontend_redirect"`
}

// Enabled reports whether Google sign-in has been configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURL != ""
}

// ArchiveConfig points at the S3-compatible bucket submitted weeks are copied
// to. An empty Bucket disables archiving.
type ArchiveConfig struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type Config struct {
	Port       string        `yaml:"port" validate:"required,numeric"`
	DBURL      string        `yaml:"db_url" validate:"required"`
	JWTSecret  string        `yaml:"jwt_secret" validate:"required"`
	CORSOrigin string        `yaml:"cors_origin"`
	Log        LogConfig     `yaml:"log"`
	Google     GoogleConfig  `yaml:"google"`
	Archive    ArchiveConfig `yaml:"archive"`
}

// App is the configuration loaded at startup; middleware and handlers read from it.
var App = &Config{}

var validate = validator.New()

func defaults() *Config {
	return &Config{
		Port:       "8080",
		CORSOrigin: "http://localhost:5173",
		Log:        LogConfig{Level: "info", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Archive:    ArchiveConfig{Prefix: "havs"},
	}
}

// Load reads .env (if present), then the optional YAML file at path, then
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	envOverride(&cfg.Port, "PORT")
	envOverride(&cfg.DBURL, "DB_URL")
	envOverride(&cfg.JWTSecret, "JWT_SECRET")
	envOverride(&cfg.CORSOrigin, "CORS_ORIGIN")
	envOverride(&cfg.Log.Level, "LOG_LEVEL")
	envOverride(&cfg.Log.File, "LOG_FILE")
	envOverride(&cfg.Google.ClientID, "GOOGLE_CLIENT_ID")
	envOverride(&cfg.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	envOverride(&cfg.Google.RedirectURL, "GOOGLE_REDIRECT_URL")
	envOverride(&cfg.Google.FrontendRedirect, "GOOGLE_FRONTEND_REDIRECT")
	envOverride(&cfg.Archive.Bucket, "ARCHIVE_BUCKET")
	envOverride(&cfg.Archive.Region, "ARCHIVE_REGION")
	envOverride(&cfg.Archive.Endpoint, "ARCHIVE_ENDPOINT")
	envOverride(&cfg.Archive.AccessKeyID, "ARCHIVE_ACCESS_KEY_ID")
	envOverride(&cfg.Archive.SecretAccessKey, "ARCHIVE_SECRET_ACCESS_KEY")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func envOverride(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
