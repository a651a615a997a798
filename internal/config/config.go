// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN for the user directory.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisAddr is the Redis address for the active-session store (e.g. localhost:6379).
	// Empty means sessions are tracked in-process only.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// RedisPassword is the optional Redis password.
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	// ClerkBaseURL is the identity provider API base URL. Required unless the dev provider is enabled.
	ClerkBaseURL string `mapstructure:"CLERK_BASE_URL"`
	// ClerkSecretKey is the identity provider API secret key.
	ClerkSecretKey string `mapstructure:"CLERK_SECRET_KEY"`
	// SessionSigningKey is the HMAC secret for platform session tokens; required at startup.
	SessionSigningKey string `mapstructure:"SESSION_SIGNING_KEY"`
	// SessionIssuer is the iss claim on platform session tokens.
	SessionIssuer string `mapstructure:"SESSION_ISSUER"`
	// SessionAudience is the aud claim on platform session tokens.
	SessionAudience string `mapstructure:"SESSION_AUDIENCE"`
	// SessionTTL is the platform session lifetime (e.g. "24h").
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31) for the dev provider; default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// DevIDPEnabled when true runs against the in-process dev identity provider instead of
	// the hosted one. Must not be true when Env is production (startup error).
	DevIDPEnabled bool `mapstructure:"DEV_IDP_ENABLED"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// OAuthRedirectURL is where the provider sends the browser mid-OAuth.
	OAuthRedirectURL string `mapstructure:"OAUTH_REDIRECT_URL"`
	// OAuthSignInCompleteURL is the post-OAuth destination for sign-in flows.
	OAuthSignInCompleteURL string `mapstructure:"OAUTH_SIGN_IN_COMPLETE_URL"`
	// OAuthSignUpCompleteURL is the post-OAuth destination for sign-up flows.
	OAuthSignUpCompleteURL string `mapstructure:"OAUTH_SIGN_UP_COMPLETE_URL"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// KafkaBrokers is a comma-separated broker list for the auth event stream. Empty disables Kafka.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// KafkaEventsTopic is the topic auth events are published to.
	KafkaEventsTopic string `mapstructure:"KAFKA_EVENTS_TOPIC"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CLERK_BASE_URL", "")
	v.SetDefault("CLERK_SECRET_KEY", "")
	v.SetDefault("SESSION_SIGNING_KEY", "")
	v.SetDefault("SESSION_ISSUER", "community-auth")
	v.SetDefault("SESSION_AUDIENCE", "community-web")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("DEV_IDP_ENABLED", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OAUTH_REDIRECT_URL", "/callback")
	v.SetDefault("OAUTH_SIGN_IN_COMPLETE_URL", "/callback/sign-in")
	v.SetDefault("OAUTH_SIGN_UP_COMPLETE_URL", "/callback/complete")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_EVENTS_TOPIC", "auth.events")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.DevIDPEnabled && cfg.Env == "production" {
		return nil, errors.New("config: DEV_IDP_ENABLED must not be true when APP_ENV=production")
	}

	if !cfg.DevIDPEnabled && cfg.ClerkSecretKey == "" {
		return nil, errors.New("config: CLERK_SECRET_KEY must be set unless DEV_IDP_ENABLED=true")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// KafkaBrokerList splits KafkaBrokers on commas, dropping empty entries.
func (c *Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// SessionLifetime parses SessionTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) SessionLifetime() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}
