package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port            string
	AppEnv          string
	DatabaseURL     string
	JWTSecret       string
	CORSOrigins     string
	RedisAddr       string
	KafkaBrokers    []string
	KafkaTopic      string
	LowStockPackets int
}

// Load reads the process environment. Call godotenv.Load first to pick up
// a local .env file.
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "3000"),
		AppEnv:          getEnv("APP_ENV", "development"),
		DatabaseURL:     databaseURL(),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "*"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		KafkaBrokers:    splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "inventory.events"),
		LowStockPackets: getEnvInt("LOW_STOCK_PACKETS", 5),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if !c.IsDevelopment() && len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters outside development")
	}
	if c.LowStockPackets < 0 {
		return fmt.Errorf("LOW_STOCK_PACKETS must not be negative, got %d", c.LowStockPackets)
	}
	return nil
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "inventory"),
		getEnv("DB_PORT", "5432"),
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
