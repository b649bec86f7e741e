package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the site server.
type Config struct {
	DBPath        string
	ServerPort    int
	LogLevel      string
	SentryDSN     string
	Environment   string
	ShutdownGrace time.Duration

	SiteAuthor string

	AdminUsername     string
	AdminPasswordHash string
	SessionSecret     string
	SessionTTL        time.Duration

	RateLimit RateLimitConfig
}

// RateLimitConfig configures the per-client HTTP rate limiter.
type RateLimitConfig struct {
	Burst             int
	RequestsPerSecond float64
	ClientTTL         time.Duration
}

const (
	defaultDBPath        = "./data/site.db"
	defaultServerPort    = 8080
	defaultLogLevel      = "info"
	defaultEnvironment   = "development"
	defaultShutdownGrace = 10 * time.Second
	defaultSiteAuthor    = "Bertrand Gerbier"
	defaultSessionTTL    = 12 * time.Hour

	defaultRateLimitBurst     = 20
	defaultRateLimitPerSecond = 10.0
	defaultRateLimitClientTTL = 5 * time.Minute
)

// Load reads configuration values from environment variables, applying
// defaults where necessary. The admin credentials and session secret have
// no defaults: the authoring surface cannot start without them.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:            getEnv("DB_PATH", defaultDBPath),
		LogLevel:          getEnv("LOG_LEVEL", defaultLogLevel),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		Environment:       getEnv("ENV", defaultEnvironment),
		ShutdownGrace:     defaultShutdownGrace,
		SiteAuthor:        getEnv("SITE_AUTHOR", defaultSiteAuthor),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionTTL:        defaultSessionTTL,
		RateLimit: RateLimitConfig{
			Burst:             defaultRateLimitBurst,
			RequestsPerSecond: defaultRateLimitPerSecond,
			ClientTTL:         defaultRateLimitClientTTL,
		},
	}

	portValue := getEnv("SERVER_PORT", strconv.Itoa(defaultServerPort))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid SERVER_PORT value: %s", portValue)
	}
	cfg.ServerPort = port

	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid SESSION_TTL value: %s", ttl)
		}
		cfg.SessionTTL = parsed
	}

	if grace := os.Getenv("SHUTDOWN_GRACE"); grace != "" {
		parsed, err := time.ParseDuration(grace)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid SHUTDOWN_GRACE value: %s", grace)
		}
		cfg.ShutdownGrace = parsed
	}

	if cfg.AdminUsername == "" {
		return nil, eris.New("ADMIN_USERNAME is required")
	}
	if cfg.AdminPasswordHash == "" {
		return nil, eris.New("ADMIN_PASSWORD_HASH is required")
	}
	if cfg.SessionSecret == "" {
		return nil, eris.New("SESSION_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
