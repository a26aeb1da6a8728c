package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string
	KafkaTopic   string
	KafkaGroupID string

	// API Configuration
	APIPort     string
	APIHost     string
	CORSOrigins []string

	// AI content API
	AIAPIBaseURL string
	AIAPIKey     string
	AITimeout    int // seconds

	// Catalog (store admin REST API)
	CatalogAPIURL   string
	CatalogAPIToken string

	// Mapping
	DefaultCurrency     string
	DefaultMappingRules string

	// File storage for batch uploads and AI responses
	StorageDir string

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:         getEnv("DATABASE_URL", "sqlite://productgen.db"),
		KafkaBrokers:        getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "batch-jobs"),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "productgen-worker"),
		APIPort:             getEnv("API_PORT", "8080"),
		APIHost:             getEnv("API_HOST", "0.0.0.0"),
		CORSOrigins:         getEnvAsList("CORS_ORIGINS", []string{"*"}),
		AIAPIBaseURL:        getEnv("AI_API_BASE_URL", "http://localhost:8000/api/v1"),
		AIAPIKey:            getEnv("AI_API_KEY", ""),
		AITimeout:           getEnvAsInt("AI_API_TIMEOUT", 60),
		CatalogAPIURL:       getEnv("CATALOG_API_URL", "http://localhost:8081/rest/V1"),
		CatalogAPIToken:     getEnv("CATALOG_API_TOKEN", ""),
		DefaultCurrency:     getEnv("DEFAULT_CURRENCY", "USD"),
		DefaultMappingRules: getEnv("DEFAULT_MAPPING_RULES", ""),
		StorageDir:          getEnv("STORAGE_DIR", "var/productgen"),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}, nil
}

// KafkaEnabled reports whether batch jobs go through Kafka instead of running inline.
func (c *Config) KafkaEnabled() bool {
	return c.KafkaBrokers != ""
}

func (c *Config) KafkaBrokerList() []string {
	return splitList(c.KafkaBrokers)
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

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return splitList(value)
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
