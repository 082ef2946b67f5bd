package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort int

	DBConfig struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	MigrationsPath string

	KafkaBrokerURL   string
	KafkaEventsTopic string

	OutboxPollInterval time.Duration
	OutboxPollTimeout  time.Duration

	StartingBalance decimal.Decimal
	AdminToken      string
}

// LoadConfig reads configuration from the environment, after loading a .env
// file if one is present next to the binary.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; env vars alone are a complete configuration.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.HTTPPort = getEnvAsInt("TRANSFERS_HTTP_PORT", 8080)

	cfg.DBConfig.Host = getEnvOrDefault("TRANSFERS_DB_HOST", "localhost")
	cfg.DBConfig.Port = getEnvAsInt("TRANSFERS_DB_PORT", 5432)
	cfg.DBConfig.User = getEnvOrDefault("TRANSFERS_DB_USER", "user")
	cfg.DBConfig.Password = getEnvOrDefault("TRANSFERS_DB_PASSWORD", "password")
	cfg.DBConfig.Name = getEnvOrDefault("TRANSFERS_DB_NAME", "transfers_db")
	cfg.DBConfig.SSLMode = getEnvOrDefault("TRANSFERS_DB_SSLMODE", "disable")

	cfg.MigrationsPath = getEnvOrDefault("TRANSFERS_MIGRATIONS_PATH", "file://migrations")

	cfg.KafkaBrokerURL = getEnvOrDefault("KAFKA_BROKER_URL", "localhost:9092")
	cfg.KafkaEventsTopic = getEnvOrDefault("KAFKA_TRANSFER_EVENTS_TOPIC", "transfer_events")

	cfg.OutboxPollInterval = getEnvAsDuration("OUTBOX_POLL_INTERVAL", 1*time.Second)
	cfg.OutboxPollTimeout = getEnvAsDuration("OUTBOX_POLL_TIMEOUT", 500*time.Millisecond)

	startingBalance, err := decimal.NewFromString(getEnvOrDefault("TRANSFERS_STARTING_BALANCE", "1000.00"))
	if err != nil || startingBalance.Sign() < 0 {
		return nil, fmt.Errorf("invalid TRANSFERS_STARTING_BALANCE: %v", err)
	}
	cfg.StartingBalance = startingBalance

	cfg.AdminToken = getEnvOrDefault("TRANSFERS_ADMIN_TOKEN", "")

	return cfg, nil
}

func (c *Config) GetDBMigrationConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetKafkaBrokers() []string {
	return strings.Split(c.KafkaBrokerURL, ",")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnvOrDefault(key, strconv.Itoa(defaultValue))
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnvOrDefault(key, defaultValue.String())
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
