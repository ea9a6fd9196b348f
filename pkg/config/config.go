package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable that overrides a setting,
// e.g. GHPROVISION_GITHUB_TOKEN for github.token
const EnvPrefix = "GHPROVISION"

// Config represents the ghprovision settings file
type Config struct {
	GitHub GitHubConfig `mapstructure:"github" yaml:"github"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// GitHubConfig holds the default GitHub credentials and endpoint
type GitHubConfig struct {
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Token    string `mapstructure:"token" yaml:"token,omitempty"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// LogConfig controls log output
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"auto", "text", "json"}
)

// LoadConfig loads configuration from the default location
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadConfigFromPath(configPath)
}

// LoadConfigFromPath loads configuration from a specific path. A missing file
// is not an error: defaults and environment overrides still apply.
func LoadConfigFromPath(path string) (*Config, error) {
	v := newViper()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// newViper returns a viper instance with every known key registered so that
// AutomaticEnv can resolve nested keys from the environment.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("github.username", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

	return v
}

// Default returns the configuration written by `ghprovision init`
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// SaveConfig saves configuration to the default location
func (c *Config) SaveConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveConfigToPath(configPath)
}

// SaveConfigToPath saves configuration to a specific path. The file may hold
// a token, so it is only readable by the owner.
func (c *Config) SaveConfigToPath(path string) error {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".ghprovision", "config.yaml"), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Log.Level != "" && !contains(validLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Log.Level, strings.Join(validLevels, ", "))
	}

	if c.Log.Format != "" && !contains(validFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Log.Format, strings.Join(validFormats, ", "))
	}

	if c.GitHub.BaseURL != "" && !strings.HasPrefix(c.GitHub.BaseURL, "http://") && !strings.HasPrefix(c.GitHub.BaseURL, "https://") {
		return fmt.Errorf("GitHub base URL must start with http:// or https://")
	}

	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
