package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Canonical store
	DatabaseURL string

	// Legacy storefront database (read-only)
	MySQLHostname string
	MySQLUsername string
	MySQLPassword string
	MySQLDatabase string

	// Shopify
	ShopifyBaseURL      string
	ShopifyAPIVersion   string
	ShopifyAPIToken     string
	ShopifyThreadTokens []string
	ShopifyLocationID   string

	// Shipping attribute API
	ShippingAPIBaseURL string
	ShippingAPIKey     string
	ShippingAPIDelayMS int

	// Kafka (optional sync event feed)
	KafkaBrokers string

	// Runtime
	WorkerCount int
	FileDir     string
	LogLevel    string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:         getEnv("DATABASE_URL", "sqlite://vinsync.db"),
		MySQLHostname:       getEnv("MYSQL_HOSTNAME", "localhost"),
		MySQLUsername:       getEnv("MYSQL_USERNAME", ""),
		MySQLPassword:       getEnv("MYSQL_PASSWORD", ""),
		MySQLDatabase:       getEnv("MYSQL_DATABASE", ""),
		ShopifyBaseURL:      getEnv("SHOPIFY_API_BASE_URL", ""),
		ShopifyAPIVersion:   getEnv("SHOPIFY_API_VERSION", "2024-01"),
		ShopifyAPIToken:     getEnv("SHOPIFY_API_TOKEN", ""),
		ShopifyThreadTokens: splitList(getEnv("SHOPIFY_API_THREAD_TOKENS", "")),
		ShopifyLocationID:   getEnv("SHOPIFY_LOCATION_ID", "76827230447"),
		ShippingAPIBaseURL:  getEnv("SHIPPING_API_BASE_URL", ""),
		ShippingAPIKey:      getEnv("SHIPPING_API_KEY", ""),
		ShippingAPIDelayMS:  getEnvAsInt("SHIPPING_API_DELAY_MS", 1000),
		KafkaBrokers:        getEnv("KAFKA_BROKERS", ""),
		WorkerCount:         getEnvAsInt("WORKER_COUNT", 20),
		FileDir:             getEnv("FILE_DIR", "files"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}, nil
}

// MySQLDSN builds the go-sql-driver DSN for the legacy storefront database.
func (c *Config) MySQLDSN() string {
	return c.MySQLUsername + ":" + c.MySQLPassword + "@tcp(" + c.MySQLHostname + ")/" + c.MySQLDatabase + "?charset=utf8mb4&parseTime=true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
