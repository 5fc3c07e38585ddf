package app

import (
	"log"
	"os"
	"sort"
	"strings"

	"finboard.app/config"
)

// ConfigDisplayer handles configuration and environment variable display
type ConfigDisplayer struct{}

// NewConfigDisplayer creates a new configuration displayer
func NewConfigDisplayer() *ConfigDisplayer {
	return &ConfigDisplayer{}
}

// PrintConfig prints all fields in the configuration
func (cd *ConfigDisplayer) PrintConfig(cfg *config.Config) {
	log.Println("==== APPLICATION CONFIGURATION ====")

	log.Printf("SERVER:\n")
	log.Printf("  Port: %d\n", cfg.Server.Port)

	log.Printf("\nCACHE:\n")
	log.Printf("  Backend: %s\n", cfg.Cache.Backend)
	log.Printf("  Namespace: %s\n", cfg.Cache.Namespace)
	log.Printf("  TTL Yields: %s\n", cfg.Cache.TTL.Yields)
	log.Printf("  TTL Sentiment: %s\n", cfg.Cache.TTL.Sentiment)
	log.Printf("  TTL Volatility: %s\n", cfg.Cache.TTL.Volatility)
	log.Printf("  TTL Quotes: %s\n", cfg.Cache.TTL.Quotes)
	log.Printf("  TTL News: %s\n", cfg.Cache.TTL.News)
	log.Printf("  TTL Earnings: %s\n", cfg.Cache.TTL.Earnings)
	log.Printf("  TTL Predictions: %s\n", cfg.Cache.TTL.Predictions)

	if cfg.Cache.Backend == config.BackendRedis {
		log.Printf("\nREDIS:\n")
		log.Printf("  Addr: %s\n", cfg.Cache.Redis.Addr)
		log.Printf("  Password: %s\n", cd.maskString(cfg.Cache.Redis.Password))
		log.Printf("  DB: %d\n", cfg.Cache.Redis.DB)
	}

	if cfg.Cache.Backend == config.BackendDatabase {
		log.Printf("\nDATABASE:\n")
		log.Printf("  Driver: %s\n", cfg.Database.Driver)
		log.Printf("  Path: %s\n", cfg.Database.Path)
		log.Printf("  Host: %s\n", cfg.Database.Host)
		log.Printf("  Port: %d\n", cfg.Database.Port)
		log.Printf("  User: %s\n", cfg.Database.User)
		log.Printf("  Password: %s\n", cd.maskString(cfg.Database.Password))
		log.Printf("  Name: %s\n", cfg.Database.Name)
		log.Printf("  SSLMode: %s\n", cfg.Database.SSLMode)
	}

	log.Printf("\nPROVIDERS:\n")
	log.Printf("  Treasury Base URL: %s\n", cfg.Providers.TreasuryBaseURL)
	log.Printf("  Sentiment Base URL: %s\n", cfg.Providers.SentimentBaseURL)
	log.Printf("  Market Data Base URL: %s\n", cfg.Providers.MarketDataBaseURL)
	log.Printf("  Market Data API Key: %s\n", cd.maskString(cfg.Providers.MarketDataAPIKey))
	log.Printf("  News Base URL: %s\n", cfg.Providers.NewsBaseURL)
	log.Printf("  Predictions Base URL: %s\n", cfg.Providers.PredictionsBaseURL)
	log.Printf("  Tracked Symbols: %s\n", strings.Join(cfg.Providers.Symbols, ","))
	log.Printf("  Request Timeout: %s\n", cfg.Providers.RequestTimeout)

	log.Printf("\nSCHEDULER:\n")
	log.Printf("  Enabled: %t\n", cfg.Scheduler.Enabled)
	log.Printf("  Fast Interval: %s\n", cfg.Scheduler.FastInterval)
	log.Printf("  Medium Interval: %s\n", cfg.Scheduler.MediumInterval)
	log.Printf("  Slow Interval: %s\n", cfg.Scheduler.SlowInterval)

	log.Printf("\nCORS:\n")
	log.Printf("  Allowed Origins: %s\n", strings.Join(cfg.CORS.AllowedOrigins, ","))

	log.Println("===================================")
}

// PrintAllEnvVars prints all environment variables available to the application
func (cd *ConfigDisplayer) PrintAllEnvVars() {
	log.Println("==== ENVIRONMENT VARIABLES ====")

	envVars := os.Environ()
	sort.Strings(envVars)

	for _, env := range envVars {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}

		key := pair[0]
		value := pair[1]

		if cd.isSensitive(key) {
			value = cd.maskString(value)
		}

		log.Printf("%s=%s\n", key, value)
	}

	log.Println("===============================")
}

// maskString masks sensitive information like passwords and API keys
func (cd *ConfigDisplayer) maskString(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	visible := len(s) / 4
	return s[:visible] + strings.Repeat("*", len(s)-visible)
}

// isSensitive checks if an environment variable key is considered sensitive
func (cd *ConfigDisplayer) isSensitive(key string) bool {
	sensitiveKeys := []string{
		"API_KEY", "PASSWORD", "SECRET", "TOKEN", "KEY", "PASS", "PWD",
	}

	key = strings.ToUpper(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(key, sensitive) {
			return true
		}
	}

	return false
}
