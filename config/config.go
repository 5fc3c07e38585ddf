package config

import (
	"fmt"
	"strings"
	"time"

	"finboard.app/errors"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the application configuration structure
type Config struct {
	Server    ServerConfig    `split_words:"true"`
	Cache     CacheConfig     `split_words:"true"`
	Database  DatabaseConfig  `split_words:"true"`
	Providers ProvidersConfig `split_words:"true"`
	Scheduler SchedulerConfig `split_words:"true"`
	CORS      CORSConfig      `split_words:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// BackendType represents the cache storage backend to use
type BackendType int

const (
	BackendUnknown BackendType = iota
	BackendMemory
	BackendRedis
	BackendDatabase
)

// String returns the string representation of the backend type
func (b BackendType) String() string {
	switch b {
	case BackendMemory:
		return "memory"
	case BackendRedis:
		return "redis"
	case BackendDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// IsValid checks if the backend type is valid
func (b BackendType) IsValid() bool {
	return b == BackendMemory || b == BackendRedis || b == BackendDatabase
}

// BackendTypeFromString converts string to BackendType enum
func BackendTypeFromString(s string) BackendType {
	switch s {
	case "memory":
		return BackendMemory
	case "redis":
		return BackendRedis
	case "database":
		return BackendDatabase
	default:
		return BackendUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (b *BackendType) UnmarshalText(text []byte) error {
	*b = BackendTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (b BackendType) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// CacheConfig contains cache backend selection and TTL policy
type CacheConfig struct {
	Backend   BackendType `envconfig:"CACHE_BACKEND" default:"memory"`
	Namespace string      `envconfig:"CACHE_NAMESPACE" default:"finboard"`
	Redis     RedisConfig `split_words:"true"`
	TTL       TTLConfig   `split_words:"true"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

// TTLConfig contains the freshness window for each dashboard panel
type TTLConfig struct {
	Yields      time.Duration `envconfig:"CACHE_TTL_YIELDS" default:"24h"`
	Sentiment   time.Duration `envconfig:"CACHE_TTL_SENTIMENT" default:"1h"`
	Volatility  time.Duration `envconfig:"CACHE_TTL_VOLATILITY" default:"30m"`
	Quotes      time.Duration `envconfig:"CACHE_TTL_QUOTES" default:"5m"`
	News        time.Duration `envconfig:"CACHE_TTL_NEWS" default:"15m"`
	Earnings    time.Duration `envconfig:"CACHE_TTL_EARNINGS" default:"6h"`
	Predictions time.Duration `envconfig:"CACHE_TTL_PREDICTIONS" default:"30m"`
}

// DatabaseConfig contains database connection settings for the persistent cache backend
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	Path     string `envconfig:"DB_PATH" default:"finboard.db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"finboard"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// GetDSN returns a formatted postgres connection string
func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// ProvidersConfig contains settings for the upstream data sources.
// API keys are optional: a source without a key serves its bundled demo data.
type ProvidersConfig struct {
	TreasuryBaseURL    string        `envconfig:"TREASURY_BASE_URL" default:"https://api.fiscaldata.treasury.gov/services/api/fiscal_service"`
	SentimentBaseURL   string        `envconfig:"SENTIMENT_BASE_URL" default:"https://api.alternative.me"`
	MarketDataBaseURL  string        `envconfig:"MARKET_DATA_BASE_URL" default:"https://finnhub.io/api/v1"`
	MarketDataAPIKey   string        `envconfig:"MARKET_DATA_API_KEY" default:""`
	NewsBaseURL        string        `envconfig:"NEWS_BASE_URL" default:"https://finnhub.io/api/v1"`
	PredictionsBaseURL string        `envconfig:"PREDICTIONS_BASE_URL" default:"https://gamma-api.polymarket.com"`
	Symbols            []string      `envconfig:"TRACKED_SYMBOLS" default:"SPY,QQQ,TLT"`
	RequestTimeout     time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s"`
}

// SchedulerConfig contains settings for the background refresh scheduler
type SchedulerConfig struct {
	Enabled        bool          `envconfig:"SCHEDULER_ENABLED" default:"true"`
	FastInterval   time.Duration `envconfig:"REFRESH_FAST_INTERVAL" default:"5m"`
	MediumInterval time.Duration `envconfig:"REFRESH_MEDIUM_INTERVAL" default:"30m"`
	SlowInterval   time.Duration `envconfig:"REFRESH_SLOW_INTERVAL" default:"6h"`
}

// CORSConfig contains cross-origin settings for browser dashboards
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if c.Cache.Backend == BackendDatabase {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}
	if err := c.Providers.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.CORS.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// Validate checks cache configuration
func (c *CacheConfig) Validate() error {
	if !c.Backend.IsValid() {
		return errors.NewConfigurationError("CACHE_BACKEND must be one of: memory, redis, database", nil)
	}
	if c.Namespace == "" {
		return errors.NewConfigurationError("CACHE_NAMESPACE cannot be empty", nil)
	}
	if strings.ContainsAny(c.Namespace, " :") {
		return errors.NewConfigurationError("CACHE_NAMESPACE cannot contain spaces or colons", nil)
	}
	if c.Backend == BackendRedis {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}
	return c.TTL.Validate()
}

// Validate checks Redis configuration
func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty", nil)
	}
	if r.DB < 0 {
		return errors.NewConfigurationError("REDIS_DB cannot be negative", nil)
	}
	if r.DialTimeout < 1 || r.ReadTimeout < 1 || r.WriteTimeout < 1 {
		return errors.NewConfigurationError("redis timeouts must be at least 1 second", nil)
	}
	return nil
}

// Validate checks TTL configuration
func (t *TTLConfig) Validate() error {
	ttls := map[string]time.Duration{
		"CACHE_TTL_YIELDS":      t.Yields,
		"CACHE_TTL_SENTIMENT":   t.Sentiment,
		"CACHE_TTL_VOLATILITY":  t.Volatility,
		"CACHE_TTL_QUOTES":      t.Quotes,
		"CACHE_TTL_NEWS":        t.News,
		"CACHE_TTL_EARNINGS":    t.Earnings,
		"CACHE_TTL_PREDICTIONS": t.Predictions,
	}
	for name, ttl := range ttls {
		if ttl < time.Second {
			return errors.NewConfigurationError(fmt.Sprintf("%s must be at least 1 second", name), nil)
		}
	}
	return nil
}

// ValidateSSLMode validates the SSL mode configuration
func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

// Validate checks database configuration
func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case "sqlite":
		if d.Path == "" {
			return errors.NewConfigurationError("DB_PATH cannot be empty", nil)
		}
	case "postgres":
		if d.Host == "" {
			return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
		}
		if d.Port < 1 || d.Port > 65535 {
			return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
		}
		if d.User == "" {
			return errors.NewConfigurationError("DB_USER cannot be empty", nil)
		}
		if d.Name == "" {
			return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
		}
		if err := d.ValidateSSLMode(); err != nil {
			return err
		}
	default:
		return errors.NewConfigurationError("DB_DRIVER must be one of: sqlite, postgres", nil)
	}
	return nil
}

// Validate checks provider configuration
func (p *ProvidersConfig) Validate() error {
	urls := map[string]string{
		"TREASURY_BASE_URL":    p.TreasuryBaseURL,
		"SENTIMENT_BASE_URL":   p.SentimentBaseURL,
		"MARKET_DATA_BASE_URL": p.MarketDataBaseURL,
		"NEWS_BASE_URL":        p.NewsBaseURL,
		"PREDICTIONS_BASE_URL": p.PredictionsBaseURL,
	}
	for name, url := range urls {
		if url == "" {
			return errors.NewConfigurationError(fmt.Sprintf("%s cannot be empty", name), nil)
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return errors.NewConfigurationError(fmt.Sprintf("%s must start with http:// or https://", name), nil)
		}
	}
	if len(p.Symbols) == 0 {
		return errors.NewConfigurationError("TRACKED_SYMBOLS cannot be empty", nil)
	}
	for _, symbol := range p.Symbols {
		if strings.TrimSpace(symbol) == "" {
			return errors.NewConfigurationError("TRACKED_SYMBOLS cannot contain blank entries", nil)
		}
	}
	if p.RequestTimeout < time.Second {
		return errors.NewConfigurationError("PROVIDER_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

// Validate checks scheduler configuration
func (s *SchedulerConfig) Validate() error {
	if !s.Enabled {
		return nil
	}
	if s.FastInterval < time.Minute {
		return errors.NewConfigurationError("REFRESH_FAST_INTERVAL must be at least 1 minute", nil)
	}
	if s.MediumInterval < time.Minute {
		return errors.NewConfigurationError("REFRESH_MEDIUM_INTERVAL must be at least 1 minute", nil)
	}
	if s.SlowInterval < time.Minute {
		return errors.NewConfigurationError("REFRESH_SLOW_INTERVAL must be at least 1 minute", nil)
	}
	return nil
}

// Validate checks CORS configuration
func (c *CORSConfig) Validate() error {
	if len(c.AllowedOrigins) == 0 {
		return errors.NewConfigurationError("CORS_ALLOWED_ORIGINS cannot be empty", nil)
	}
	return nil
}
