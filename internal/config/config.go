package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret string
	}
	Storage struct {
		Backend        string
		LocalDir       string
		PublicBaseURL  string
		MaxUploadBytes int64
		Bucket         string
		KeyPrefix      string
		Region         string
		Endpoint       string
	}
	AWS struct {
		Profile string
	}
	Limits struct {
		DefaultPageSize  int
		MaxPageSize      int
		MaxSearchResults int
	}
	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables and optional config files.
// Variables use the TYPEROO_ prefix, e.g. TYPEROO_AUTH_JWTSECRET.
func Load() (Config, error) {
	// existing environment wins over .env; a missing file is fine
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TYPEROO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "data/typeroo.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("storage.backend", StorageLocal)
	v.SetDefault("storage.localdir", "uploads")
	v.SetDefault("storage.publicbaseurl", "http://localhost:8080/uploads")
	v.SetDefault("storage.maxuploadbytes", 5<<20)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "avatars")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("limits.defaultpagesize", 10)
	v.SetDefault("limits.maxpagesize", 100)
	v.SetDefault("limits.maxsearchresults", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth jwt secret is required")
	}
	switch c.Storage.Backend {
	case StorageLocal:
		if strings.TrimSpace(c.Storage.LocalDir) == "" {
			return errors.New("storage local dir is required")
		}
	case StorageS3:
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Limits.DefaultPageSize <= 0 || c.Limits.MaxPageSize <= 0 || c.Limits.MaxSearchResults <= 0 {
		return errors.New("limits must be positive")
	}
	if c.Limits.DefaultPageSize > c.Limits.MaxPageSize {
		return errors.New("default page size exceeds max page size")
	}
	return nil
}
