package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	AuthModeNone    = "none"
	AuthModeGateway = "gateway"
	AuthModeJWT     = "jwt"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Storage. An empty DatabaseURL runs the API without the song store.
	DatabaseURL string

	// Observability
	SentryDSN string

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	// - "jwt": Verify HMAC bearer tokens signed with JWTSecret
	AuthMode  string
	JWTSecret string

	// Comma separated list of allowed browser origins
	CORSOrigins []string

	// Editing
	DefaultBPM      int
	MaxUndo         int
	StrictGrammar   bool
	SessionIdleTTL  time.Duration
	MaxRequestBytes int64
}

func Load() *Config {
	return &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		AuthMode:        getEnv("AUTH_MODE", AuthModeNone), // Default to no auth for self-hosted
		JWTSecret:       getEnv("JWT_SECRET", ""),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
		DefaultBPM:      getEnvInt("DEFAULT_BPM", 120),
		MaxUndo:         getEnvInt("MAX_UNDO", 256),
		StrictGrammar:   getEnv("STRICT_GRAMMAR", "false") == "true",
		SessionIdleTTL:  getEnvDuration("SESSION_IDLE_TTL", 2*time.Hour),
		MaxRequestBytes: int64(getEnvInt("MAX_REQUEST_BYTES", 1<<20)),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsGatewayMode returns true if running behind a trusted gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == AuthModeGateway
}

// IsJWTMode returns true if bearer tokens are verified locally
func (c *Config) IsJWTMode() bool {
	return c.AuthMode == AuthModeJWT
}

// HasDatabase reports whether the song store is configured
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
