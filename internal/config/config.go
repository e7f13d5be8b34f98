// Package config loads runtime settings from the environment, with an
// optional .env overlay for development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// Config is built once at process start and treated as immutable afterwards;
// the token issuer and the session lifecycle receive it by injection, never
// through ambient globals.
type Config struct {
	Addr         string
	DatabasePath string
	Issuer       string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	CookieDomain string
	CookieSecure bool

	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	S3PublicURL    string
}

// Load reads a .env file when present, then the environment. The two signing
// secrets are the only mandatory settings.
func Load() (*Config, error) {
	// Best effort: production deployments configure the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:               getEnv("ADDR", ":3000"),
		DatabasePath:       getEnv("DATABASE_PATH", "vidtube.db"),
		Issuer:             getEnv("TOKEN_ISSUER", "vidtube"),
		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		CookieDomain:       os.Getenv("COOKIE_DOMAIN"),
		S3Bucket:           getEnv("S3_BUCKET", "vidtube-media"),
		S3Region:           getEnv("S3_REGION", "us-east-1"),
		S3BaseEndpoint:     os.Getenv("S3_BASE_ENDPOINT"),
		S3AccessKey:        os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:        os.Getenv("S3_SECRET_KEY"),
		S3PublicURL:        os.Getenv("S3_PUBLIC_URL"),
	}

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required", errors.CategoryBadInput)
	}

	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", true); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) GetAccessTokenSecret() string      { return c.AccessTokenSecret }
func (c *Config) GetRefreshTokenSecret() string     { return c.RefreshTokenSecret }
func (c *Config) GetAccessTokenTTL() time.Duration  { return c.AccessTokenTTL }
func (c *Config) GetRefreshTokenTTL() time.Duration { return c.RefreshTokenTTL }
func (c *Config) GetIssuer() string                 { return c.Issuer }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryBadInput, "invalid duration for "+key)
	}
	return d, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryBadInput, "invalid boolean for "+key)
	}
	return b, nil
}
