package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// DatasetConfig selects where the crash dataset is loaded from. Source is
// either "http" (fetch the JSON array from URL) or "postgres" (read the
// ingested copy from the database).
type DatasetConfig struct {
	Source         string `mapstructure:"source"`
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (d DatasetConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// WeatherConfig configures the OpenWeatherMap-compatible provider. An empty
// APIKey disables weather lookups; popups then always report unavailable.
type WeatherConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Units          string `mapstructure:"units"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (w WeatherConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("dataset.source", "http")
	v.SetDefault("dataset.url", "https://raw.githubusercontent.com/avsafety/datasets/main/crashes.json")
	v.SetDefault("dataset.timeout_seconds", 30)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "crashatlas")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "crashatlas")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.units", "metric")
	v.SetDefault("weather.timeout_seconds", 5)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: CRASHATLAS_DATASET_URL → dataset.url
	v.SetEnvPrefix("CRASHATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	switch c.Dataset.Source {
	case "http":
		if c.Dataset.URL == "" {
			errs = append(errs, "dataset.url is required when dataset.source is http")
		}
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required when dataset.source is postgres")
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required when dataset.source is postgres")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required when dataset.source is postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("dataset.source must be http or postgres, got %q", c.Dataset.Source))
	}
	if c.Dataset.TimeoutSeconds <= 0 {
		errs = append(errs, "dataset.timeout_seconds must be positive")
	}
	if c.Weather.APIKey != "" && c.Weather.TimeoutSeconds <= 0 {
		errs = append(errs, "weather.timeout_seconds must be positive")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
