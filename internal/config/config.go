package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chr1sbest/permguard/policyfile"
)

// Config is the demo server's process configuration.
type Config struct {
	Addr        string
	PolicyFile  string
	JWTSecret   string
	JWTIssuer   string
	TokenTTL    time.Duration
	RedisAddr   string
	DatabaseURL string
	LogLevel    slog.Level
}

// Load reads configuration from the environment. PERMGUARD_JWT_SECRET and
// PERMGUARD_DATABASE_URL may be literals or "env:NAME" references.
func Load() (Config, error) {
	secret, err := policyfile.ResolveSecret(envOr("PERMGUARD_JWT_SECRET", "env:JWT_SECRET"))
	if err != nil {
		return Config{}, err
	}

	ttl, err := time.ParseDuration(envOr("PERMGUARD_TOKEN_TTL", "1h"))
	if err != nil {
		return Config{}, err
	}

	var dsn string
	if ref := os.Getenv("PERMGUARD_DATABASE_URL"); ref != "" {
		if dsn, err = policyfile.ResolveSecret(ref); err != nil {
			return Config{}, err
		}
	}

	level := slog.LevelInfo
	if envBool("PERMGUARD_DEBUG", false) {
		level = slog.LevelDebug
	}

	return Config{
		Addr:        envOr("PERMGUARD_ADDR", ":8080"),
		PolicyFile:  envOr("PERMGUARD_POLICY_FILE", "policies.yaml"),
		JWTSecret:   secret,
		JWTIssuer:   envOr("PERMGUARD_JWT_ISSUER", "permguard-demo"),
		TokenTTL:    ttl,
		RedisAddr:   os.Getenv("PERMGUARD_REDIS_ADDR"),
		DatabaseURL: dsn,
		LogLevel:    level,
	}, nil
}

func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
