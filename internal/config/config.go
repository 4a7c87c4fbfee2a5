package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/coin-ledger/internal/models"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string
	DBDriver    string

	KafkaBrokers []string
	KafkaTopic   string

	RedisAddr string

	ParticipantsFile string
	// SeedAccounts are created at startup when missing, e.g. "1=10,2=20".
	SeedAccounts []models.Account
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBDriver:         getEnv("DB_DRIVER", "postgres"),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "coin_events"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		ParticipantsFile: getEnv("PARTICIPANTS_FILE", "participants.json"),
	}

	seed, err := ParseAccounts(os.Getenv("SEED_ACCOUNTS"))
	if err != nil {
		return nil, fmt.Errorf("SEED_ACCOUNTS: %w", err)
	}
	cfg.SeedAccounts = seed

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ParseAccounts parses a comma separated list of id=amount pairs.
func ParseAccounts(s string) ([]models.Account, error) {
	var accounts []models.Account
	for _, pair := range splitList(s) {
		id, amount, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("malformed account %q, want id=amount", pair)
		}
		value, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", id, err)
		}
		accounts = append(accounts, models.Account{ID: id, Amount: value})
	}
	return accounts, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
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
