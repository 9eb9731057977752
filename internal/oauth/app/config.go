package app

import (
	"encoding/base64"
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer         string // Issuer name stamped into session token validation (default: oauthd)
	SessionKey     []byte // Required: HMAC key (>= 32 bytes) shared with the session-issuing service
	SessionTTL     time.Duration
	DatabaseFile   string // Path to SQLite database file (default: ./oauthd.db)
	PepperFile     string // Path to file containing the secret-hashing pepper (default: ./pepper)
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	CodeTTL        time.Duration
	RotateRefresh  bool
	StoreTimeout   time.Duration
	MetricsEnabled bool

	Env                  string // Environment (dev, staging, prod) (default: dev)
	LogLevel             string // Log level (debug, info, warn, error) (default: info)
	LogFormat            string // Log format (json, text) (default: json)
	Port                 int    // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration
	HousekeepingInterval time.Duration
}

// ErrMissingSessionKey means OAUTHD_SESSION_KEY was absent or too short; the
// management surface cannot verify sessions without it.
var ErrMissingSessionKey = errors.New("app: OAUTHD_SESSION_KEY must be set to at least 32 bytes (base64 or raw)")

func LoadConfig() (Config, error) {
	cfg := Config{
		Issuer:               getEnvOrDefault("OAUTHD_ISSUER", "oauthd"),
		SessionTTL:           getEnvDurationOrDefault("OAUTHD_SESSION_TTL", 12*time.Hour),
		DatabaseFile:         getEnvOrDefault("OAUTHD_DATABASE_FILE", "oauthd.db"),
		PepperFile:           getEnvOrDefault("OAUTHD_PEPPER_FILE", "pepper"),
		AccessTTL:            getEnvDurationOrDefault("OAUTHD_ACCESS_TOKEN_TTL", time.Hour),
		RefreshTTL:           getEnvDurationOrDefault("OAUTHD_REFRESH_TOKEN_TTL", 720*time.Hour),
		CodeTTL:              getEnvDurationOrDefault("OAUTHD_CODE_TTL", 5*time.Minute),
		RotateRefresh:        getEnvBoolOrDefault("OAUTHD_ROTATE_REFRESH_TOKENS", true),
		StoreTimeout:         getEnvDurationOrDefault("OAUTHD_STORE_TIMEOUT", 5*time.Second),
		MetricsEnabled:       getEnvBoolOrDefault("OAUTHD_METRICS_ENABLED", true),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	key, err := parseSessionKey(os.Getenv("OAUTHD_SESSION_KEY"))
	if err != nil {
		return Config{}, err
	}
	cfg.SessionKey = key

	return cfg, nil
}

// parseSessionKey accepts the key base64-encoded or raw, whichever is at
// least 32 bytes.
func parseSessionKey(raw string) ([]byte, error) {
	if raw == "" {
		return nil, ErrMissingSessionKey
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil && len(decoded) >= 32 {
		return decoded, nil
	}
	if len(raw) >= 32 {
		return []byte(raw), nil
	}
	return nil, ErrMissingSessionKey
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
