package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// DatabaseURL selects the postgres ledger store; empty runs in-memory.
	DatabaseURL string

	// RedisURL enables the event lookup cache; empty disables it.
	RedisURL string

	// PolicyFile overlays policies on the built-ins; empty uses built-ins only.
	PolicyFile string

	// LedgerMaxEvents caps the global ledger size; 0 disables eviction.
	LedgerMaxEvents int

	LedgerAppendRetries int
	LedgerAppendTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:                envOr("VERACITY_ADDR", ":8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		PolicyFile:          os.Getenv("POLICY_FILE"),
		LedgerMaxEvents:     envInt("LEDGER_MAX_EVENTS", 0),
		LedgerAppendRetries: envInt("LEDGER_APPEND_RETRIES", 5),
		LedgerAppendTimeout: envDuration("LEDGER_APPEND_TIMEOUT", 2*time.Second),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
