package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Settlement domain settings
	CurrencyCode       string
	Denominations      []decimal.Decimal // legal face values, any order
	MaxCommissionRate  decimal.Decimal   // sanity cap for catalog rates, fraction
	ReferenceLength    int               // digits in a biller reference number
	RateLimitPerMinute int64             // per-terminal request ceiling
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("CURRENCY_CODE", "ETB")
	viper.SetDefault("DENOMINATIONS", "1000,500,200,100,50,20,10,5,2,1,0.5")
	viper.SetDefault("MAX_COMMISSION_RATE", "0.10")
	viper.SetDefault("REFERENCE_LENGTH", 30)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 120)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.CurrencyCode = viper.GetString("CURRENCY_CODE")

	denominations, err := parseDenominations(viper.GetString("DENOMINATIONS"))
	if err != nil {
		return nil, err
	}
	cfg.Denominations = denominations

	maxRate, err := decimal.NewFromString(viper.GetString("MAX_COMMISSION_RATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_COMMISSION_RATE: %w", err)
	}
	cfg.MaxCommissionRate = maxRate

	cfg.ReferenceLength = viper.GetInt("REFERENCE_LENGTH")
	if cfg.ReferenceLength <= 0 {
		return nil, fmt.Errorf("REFERENCE_LENGTH must be positive, got %d", cfg.ReferenceLength)
	}

	cfg.RateLimitPerMinute = viper.GetInt64("RATE_LIMIT_PER_MINUTE")

	return cfg, nil
}

// parseDenominations parses a comma-separated ladder like "100,50,10,0.5".
func parseDenominations(raw string) ([]decimal.Decimal, error) {
	parts := strings.Split(raw, ",")
	values := make([]decimal.Decimal, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := decimal.NewFromString(part)
		if err != nil {
			return nil, fmt.Errorf("invalid denomination %q in DENOMINATIONS: %w", part, err)
		}
		values = append(values, value)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("DENOMINATIONS must list at least one face value")
	}
	return values, nil
}
