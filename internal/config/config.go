// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		// AdminPasswordHash is a bcrypt hash loaded from the environment,
		// never from the config file.
		AdminPasswordHash string `yaml:"-"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	Matching struct {
		SlotStepMinutes        int `yaml:"slot_step_minutes"`
		DefaultDurationMinutes int `yaml:"default_duration_minutes"`
	} `yaml:"matching"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.App.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")

	if cfg.Matching.SlotStepMinutes == 0 {
		cfg.Matching.SlotStepMinutes = 15
	}
	if cfg.Matching.DefaultDurationMinutes == 0 {
		cfg.Matching.DefaultDurationMinutes = 45
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Matching.SlotStepMinutes < 0 {
		return fmt.Errorf("slot step minutes must be positive")
	}
	if c.Matching.DefaultDurationMinutes < 0 {
		return fmt.Errorf("default duration minutes must be positive")
	}

	return nil
}
