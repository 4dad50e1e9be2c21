package config

import (
	"os"
	"strconv"
	"time"
)

// Config su svi podesivi parametri procesa. Vrednosti se čitaju iz okruženja
// (posle godotenv.Load u main-u); svaki parametar ima podrazumevanu vrednost.
type Config struct {
	ServerPort string
	GatewayURL string
	JWTSecret  string

	RequestTimeout  time.Duration
	RetryAttempts   int
	RetryBaseDelay  time.Duration
	MaxPerAction    int
	PollInterval    time.Duration
	EscalateEvery   time.Duration
	ProcessingGrace time.Duration

	CachePath     string
	CacheVersion  string
	CacheValidity time.Duration
}

// Load sastavlja konfiguraciju iz okruženja.
func Load() Config {
	return Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		GatewayURL: getEnv("GATEWAY_URL", "http://localhost:9090/exec"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret"),

		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 15*time.Second),
		RetryAttempts:   getInt("RETRY_ATTEMPTS", 3),
		RetryBaseDelay:  getDuration("RETRY_BASE_DELAY", 500*time.Millisecond),
		MaxPerAction:    getInt("MAX_PER_ACTION", 4),
		PollInterval:    getDuration("POLL_INTERVAL", 10*time.Second),
		EscalateEvery:   getDuration("ESCALATE_INTERVAL", 5*time.Second),
		ProcessingGrace: getDuration("PROCESSING_GRACE", 800*time.Millisecond),

		CachePath:     getEnv("CACHE_PATH", "dashboard-cache.db"),
		CacheVersion:  getEnv("CACHE_VERSION", "v2"),
		CacheValidity: getDuration("CACHE_VALIDITY", 30*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
