package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"shareit/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	SeedPath   string           `yaml:"seed_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

// APIRateLimitConfig limits requests per calling user (X-Sharer-User-Id).
type APIRateLimitConfig struct {
	Enabled  bool `yaml:"enabled"`
	Requests int  `yaml:"requests"`
	Window   int  `yaml:"window"` // секунды
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Backup.Enabled && c.Database.Driver != DriverSQLite {
		return errors.New("backup requires the sqlite driver")
	}

	if c.API.Auth.Enabled {
		if len(c.API.Auth.APIKeys) == 0 {
			return errors.New("api auth enabled but no api_keys configured")
		}
		seen := make(map[string]bool)
		for _, k := range c.API.Auth.APIKeys {
			if strings.TrimSpace(k.Key) == "" {
				return fmt.Errorf("api key '%s' is empty", k.Name)
			}
			if seen[k.Key] {
				return fmt.Errorf("duplicate api key for '%s'", k.Name)
			}
			seen[k.Key] = true
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.Requests == 0 {
		c.API.RateLimit.Requests = models.RateLimitRequests
	}
	if c.API.RateLimit.Window == 0 {
		c.API.RateLimit.Window = models.RateLimitWindow
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = models.DefaultBackupRetentionDays
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
}
