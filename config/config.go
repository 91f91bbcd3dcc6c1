package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	USDA      USDAConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Intake    IntakeConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorageConfig selects the persistence adapter
type StorageConfig struct {
	Type string `mapstructure:"type"` // "memory" or "postgres"
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the connection string for the postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// USDAConfig holds USDA API configuration
type USDAConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	USDA  int `mapstructure:"usda"`   // requests per hour
}

// IntakeConfig tunes the daily intake policy
type IntakeConfig struct {
	CalorieDeficit float64 `mapstructure:"calorie_deficit"`
	CalorieSurplus float64 `mapstructure:"calorie_surplus"`
	FatEnergyRatio float64 `mapstructure:"fat_energy_ratio"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dietledger/")

	// DIETLEDGER_SERVER_PORT -> server.port
	v.SetEnvPrefix("DIETLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("storage.type", "memory")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "dietledger")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")

	v.SetDefault("cache.ttl", "720h") // 30 days

	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.usda", 1000)

	v.SetDefault("intake.calorie_deficit", 500)
	v.SetDefault("intake.calorie_surplus", 500)
	v.SetDefault("intake.fat_energy_ratio", 0.25)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch config.Storage.Type {
	case "memory":
	case "postgres":
		if config.Database.Host == "" || config.Database.Name == "" {
			return fmt.Errorf("database host and name are required when storage type is 'postgres'")
		}
	default:
		return fmt.Errorf("storage type must be 'memory' or 'postgres', got: %s", config.Storage.Type)
	}

	if config.Intake.FatEnergyRatio <= 0 || config.Intake.FatEnergyRatio >= 1 {
		return fmt.Errorf("intake fat_energy_ratio must be between 0 and 1, got: %v", config.Intake.FatEnergyRatio)
	}
	if config.Intake.CalorieDeficit < 0 || config.Intake.CalorieSurplus < 0 {
		return fmt.Errorf("intake calorie_deficit and calorie_surplus must not be negative")
	}

	if config.Log.Format != "json" && config.Log.Format != "text" {
		return fmt.Errorf("log format must be 'json' or 'text', got: %s", config.Log.Format)
	}

	if config.RateLimit.PerIP <= 0 || config.RateLimit.USDA <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}

	return nil
}

// loadEnvFile loads ./.env into the process environment when present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}
