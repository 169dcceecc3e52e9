package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// DataDir holds the database, the hub socket and log files.
	// Defaults to ~/.taskwell.
	DataDir string `yaml:"data_dir"`

	Database DatabaseConfig `yaml:"database"`
	Hub      HubConfig      `yaml:"hub"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig locates the sqlite database
type DatabaseConfig struct {
	// Path overrides the default <data_dir>/taskwell.db
	Path string `yaml:"path"`
}

// HubConfig configures the notification hub connection
type HubConfig struct {
	// SocketPath overrides the default <data_dir>/taskwell.sock
	SocketPath string `yaml:"socket_path"`
}

// AuthConfig configures token issuing
type AuthConfig struct {
	Secret     string        `yaml:"secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
}

// LoggingConfig configures the slog output
type LoggingConfig struct {
	Level string `yaml:"level"`

	// SlowRequestThreshold is the latency above which a request is
	// logged as slow
	SlowRequestThreshold time.Duration `yaml:"slow_request_threshold"`
}

// Load reads the config file, falling back to defaults when it does not
// exist. TASKWELL_CONFIG overrides the config file location.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		config := &Config{}
		config.applyDefaults()
		return config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := &Config{}
		config.applyDefaults()
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

// Save writes the config to its file location
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o600)
}

// DatabasePath returns the resolved database location
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.DataDir, "taskwell.db")
}

// SocketPath returns the resolved hub socket location
func (c *Config) SocketPath() string {
	if c.Hub.SocketPath != "" {
		return c.Hub.SocketPath
	}
	return filepath.Join(c.DataDir, "taskwell.sock")
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	if override := os.Getenv("TASKWELL_CONFIG"); override != "" {
		return override, nil
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "taskwell", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "taskwell", "config.yaml"), nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.DataDir = filepath.Join(home, ".taskwell")
		} else {
			c.DataDir = ".taskwell"
		}
	}
	if c.Auth.AccessTTL == 0 {
		c.Auth.AccessTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTTL == 0 {
		c.Auth.RefreshTTL = 30 * 24 * time.Hour
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.SlowRequestThreshold == 0 {
		c.Logging.SlowRequestThreshold = 500 * time.Millisecond
	}
}
