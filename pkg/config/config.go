package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	// CartDBPath is where the device-local cart lives.
	CartDBPath string

	// StorefrontURL is the base URL of the remote storefront API.
	StorefrontURL string

	SyncDebounce time.Duration
	PushTimeout  time.Duration
	CatalogTTL   time.Duration
}

func Load() Config {
	return Config{
		AppEnv:        getEnv("APP_ENV", "dev"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		HTTPPort:      getEnvInt("HTTP_PORT", 7777),
		CartDBPath:    getEnv("CART_DB_PATH", "cart.db"),
		StorefrontURL: getEnv("STOREFRONT_URL", "http://localhost:8080"),
		SyncDebounce:  getEnvDuration("SYNC_DEBOUNCE_MS", 500),
		PushTimeout:   getEnvDuration("PUSH_TIMEOUT_MS", 5000),
		CatalogTTL:    getEnvDuration("CATALOG_TTL_MS", 60000),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, defMillis int) time.Duration {
	return time.Duration(getEnvInt(key, defMillis)) * time.Millisecond
}
