package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"marketdata/internal/models"
)

// Config holds all configuration for the application.
type Config struct {
	Logger    Logger           `mapstructure:"logger"`
	Server    Server           `mapstructure:"server"`
	Database  Database         `mapstructure:"database"`
	Poller    Poller           `mapstructure:"poller"`
	Publisher Publisher        `mapstructure:"publisher"`
	Venues    map[string]Venue `mapstructure:"venues"`
}

// Venue holds the connection settings of one exchange.
type Venue struct {
	Enabled        bool     `mapstructure:"enabled"`
	BaseURL        string   `mapstructure:"base_url"`
	RateLimit      float64  `mapstructure:"rate_limit"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	MaxRetries     int      `mapstructure:"max_retries"`
	Symbols        []string `mapstructure:"symbols"`
	ApiKey         string   `mapstructure:"apiKey"`
	SecretKey      string   `mapstructure:"secretKey"`
}

// Server holds the configuration for the web servers.
type Server struct {
	Port       int `mapstructure:"port"`
	StatusPort int `mapstructure:"status_port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Poller holds the configuration of the polling engine.
type Poller struct {
	TickInterval int      `mapstructure:"tick_interval"`
	Collectors   []string `mapstructure:"collectors"`
	TradesLimit  int      `mapstructure:"trades_limit"`
}

// Publisher holds the configuration of the Kafka publisher.
type Publisher struct {
	Enabled      bool     `mapstructure:"enabled"`
	Brokers      []string `mapstructure:"brokers"`
	TradesTopic  string   `mapstructure:"trades_topic"`
	TickersTopic string   `mapstructure:"tickers_topic"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file, an optional .env file next to it and
// environment variables.
func LoadConfig(path string) (config Config, err error) {
	// A missing .env is fine; real environment variables still apply.
	if err = godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")

	// Allow environment variables to override config file
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	applyVenueDefaults(&config)
	err = config.Validate()
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.status_port", 8081)
	v.SetDefault("database.dsn", "marketdata.db")
	v.SetDefault("poller.tick_interval", 30) // seconds
	v.SetDefault("poller.collectors", []string{"trades", "ticker"})
	v.SetDefault("poller.trades_limit", 100)
	v.SetDefault("publisher.trades_topic", "marketdata.trades")
	v.SetDefault("publisher.tickers_topic", "marketdata.tickers")
}

// applyVenueDefaults fills unset per-venue limits. Viper defaults cannot reach map
// entries whose keys are only known after reading the file.
func applyVenueDefaults(cfg *Config) {
	for name, venue := range cfg.Venues {
		if venue.RateLimit <= 0 {
			venue.RateLimit = 5 // requests per second
		}
		if venue.RateLimitBurst <= 0 {
			venue.RateLimitBurst = 1
		}
		if venue.TimeoutSeconds <= 0 {
			venue.TimeoutSeconds = 10
		}
		if venue.MaxRetries <= 0 {
			venue.MaxRetries = 3
		}
		cfg.Venues[name] = venue
	}
}

// Validate checks values that would otherwise fail late, deep inside the poller.
func (c Config) Validate() error {
	if c.Poller.TickInterval <= 0 {
		return fmt.Errorf("poller.tick_interval must be positive, got %d", c.Poller.TickInterval)
	}
	if c.Publisher.Enabled && len(c.Publisher.Brokers) == 0 {
		return errors.New("publisher.brokers must not be empty when the publisher is enabled")
	}
	for name, venue := range c.Venues {
		for _, symbol := range venue.Symbols {
			if _, err := models.ParseCurrencyPair(symbol); err != nil {
				return fmt.Errorf("venues.%s.symbols: %w", name, err)
			}
		}
	}
	return nil
}

// EnabledVenues returns the names of the venues switched on in the config.
func (c Config) EnabledVenues() []string {
	var names []string
	for name, venue := range c.Venues {
		if venue.Enabled {
			names = append(names, name)
		}
	}
	return names
}
