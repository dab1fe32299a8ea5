package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	JWT         JWTConfig        `mapstructure:"jwt"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitPerMin int      `mapstructure:"rate_limit_per_min"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// SummaryTTL is the dashboard summary cache TTL in seconds.
	SummaryTTL int `mapstructure:"summary_ttl"`
}

type JWTConfig struct {
	Secret    string `mapstructure:"secret"`
	AccessTTL int    `mapstructure:"access_token_ttl"`
	Issuer    string `mapstructure:"issuer"`
}

// MarketDataConfig describes the external scraping endpoints and the cron
// schedules the ingestion workers run on.
type MarketDataConfig struct {
	ExchangeRatesURL string `mapstructure:"exchange_rates_url"`
	GoldPricesURL    string `mapstructure:"gold_prices_url"`
	StockQuotesURL   string `mapstructure:"stock_quotes_url"`

	ExchangeRatesSchedule string `mapstructure:"exchange_rates_schedule"`
	GoldPricesSchedule    string `mapstructure:"gold_prices_schedule"`
	StockQuotesSchedule   string `mapstructure:"stock_quotes_schedule"`

	RequestTimeout int `mapstructure:"request_timeout"` // seconds
	MaxRetries     int `mapstructure:"max_retries"`
	RetryBackoffMs int `mapstructure:"retry_backoff_ms"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Read from config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Override with environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Override specific environment variables
	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Build database URL if not provided
	if config.Database.URL == "" {
		config.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.Database.User,
			config.Database.Password,
			config.Database.Host,
			config.Database.Port,
			config.Database.Name,
			config.Database.SSLMode,
		)
	}

	// Validate required fields
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.rate_limit_per_min", 100)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "treviro")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.conn_max_lifetime", 300)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.summary_ttl", 300) // 5 minutes

	// JWT defaults
	viper.SetDefault("jwt.access_token_ttl", 3600) // 1 hour
	viper.SetDefault("jwt.issuer", "treviro_service")

	// Market data defaults
	viper.SetDefault("market_data.exchange_rates_schedule", "0 */6 * * *") // every 6h
	viper.SetDefault("market_data.gold_prices_schedule", "15 */6 * * *")
	viper.SetDefault("market_data.stock_quotes_schedule", "30 16 * * 0-4") // after close
	viper.SetDefault("market_data.request_timeout", 30)
	viper.SetDefault("market_data.max_retries", 3)
	viper.SetDefault("market_data.retry_backoff_ms", 1000)
}

func overrideFromEnv() {
	// Server
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			viper.Set("server.port", p)
		}
	}

	// Database
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}

	// Redis
	if redisURL := os.Getenv("REDIS_PASSWORD"); redisURL != "" {
		viper.Set("redis.password", redisURL)
	}

	// JWT
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		viper.Set("jwt.secret", jwtSecret)
	}

	// Market data endpoints
	if url := os.Getenv("MARKET_EXCHANGE_RATES_URL"); url != "" {
		viper.Set("market_data.exchange_rates_url", url)
	}
	if url := os.Getenv("MARKET_GOLD_PRICES_URL"); url != "" {
		viper.Set("market_data.gold_prices_url", url)
	}
	if url := os.Getenv("MARKET_STOCK_QUOTES_URL"); url != "" {
		viper.Set("market_data.stock_quotes_url", url)
	}
}

func validate(config *Config) error {
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if config.Database.URL == "" && (config.Database.Host == "" || config.Database.Name == "") {
		return fmt.Errorf("database configuration is incomplete")
	}

	if config.Server.RateLimitPerMin <= 0 {
		return fmt.Errorf("server rate limit must be positive")
	}

	return nil
}
