package config

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// envConfig mirrors Config with pointer fields so that only variables
// actually present in the environment override earlier layers.
type envConfig struct {
	EndpointAddr                 *string        `env:"INKPOST_ADDR"`
	DatabaseDSN                  *string        `env:"INKPOST_DATABASE_DSN"`
	AccessTokenSecret            *string        `env:"INKPOST_ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret           *string        `env:"INKPOST_REFRESH_TOKEN_SECRET"`
	AccessTokenValidityDuration  *time.Duration `env:"INKPOST_ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration *time.Duration `env:"INKPOST_REFRESH_TOKEN_TTL"`
	CookieDomain                 *string        `env:"INKPOST_COOKIE_DOMAIN"`
	CookieSecure                 *bool          `env:"INKPOST_COOKIE_SECURE"`
	AllowedOrigins               []string       `env:"INKPOST_ALLOWED_ORIGINS"`
	S3RootUser                   *string        `env:"INKPOST_S3_ROOT_USER"`
	S3RootPassword               *string        `env:"INKPOST_S3_ROOT_PASSWORD"`
	S3Bucket                     *string        `env:"INKPOST_S3_BUCKET"`
	S3Region                     *string        `env:"INKPOST_S3_REGION"`
	S3BaseEndpoint               *string        `env:"INKPOST_S3_BASE_ENDPOINT"`
}

// parseEnv overlays configuration from environment variables. A local .env
// file is loaded first when present (development convenience); real
// environment variables win over .env values.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	c := &envConfig{}
	if err := envconfig.Process(context.Background(), c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.AccessTokenSecret != nil {
		config.AccessTokenSecret = *c.AccessTokenSecret
	}
	if c.RefreshTokenSecret != nil {
		config.RefreshTokenSecret = *c.RefreshTokenSecret
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = *c.AccessTokenValidityDuration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = *c.RefreshTokenValidityDuration
	}
	if c.CookieDomain != nil {
		config.CookieDomain = *c.CookieDomain
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.S3RootUser != nil {
		config.S3RootUser = *c.S3RootUser
	}
	if c.S3RootPassword != nil {
		config.S3RootPassword = *c.S3RootPassword
	}
	if c.S3Bucket != nil {
		config.S3Bucket = *c.S3Bucket
	}
	if c.S3Region != nil {
		config.S3Region = *c.S3Region
	}
	if c.S3BaseEndpoint != nil {
		config.S3BaseEndpoint = *c.S3BaseEndpoint
	}
}
