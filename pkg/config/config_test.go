package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "config.yaml")
	configContent := `github:
  username: "octocat"
  token: "ghp_test_token"
  base_url: "https://github.example.com/api/v3/"
log:
  level: "debug"
  format: "json"
`
	err := os.WriteFile(configPath, []byte(configContent), 0600)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := LoadConfigFromPath(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.GitHub.Username != "octocat" {
		t.Errorf("Expected Username = octocat, got %s", config.GitHub.Username)
	}

	if config.GitHub.Token != "ghp_test_token" {
		t.Errorf("Expected GitHub Token = ghp_test_token, got %s", config.GitHub.Token)
	}

	if config.GitHub.BaseURL != "https://github.example.com/api/v3/" {
		t.Errorf("Expected BaseURL = https://github.example.com/api/v3/, got %s", config.GitHub.BaseURL)
	}

	if config.Log.Level != "debug" || config.Log.Format != "json" {
		t.Errorf("Expected log debug/json, got %s/%s", config.Log.Level, config.Log.Format)
	}
}

func TestLoadConfigNonExistent(t *testing.T) {
	config, err := LoadConfigFromPath("/non/existent/path/config.yaml")
	if err != nil {
		t.Fatalf("Expected no error for non-existent config, got: %v", err)
	}

	if config.GitHub.Token != "" {
		t.Error("Expected empty token for non-existent config")
	}

	if config.Log.Level != "info" || config.Log.Format != "auto" {
		t.Errorf("Expected default log settings, got %s/%s", config.Log.Level, config.Log.Format)
	}
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "config.yaml")
	configContent := `github:
  username: "from-file"
  token: "file-token"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	t.Setenv("GHPROVISION_GITHUB_TOKEN", "env-token")
	t.Setenv("GHPROVISION_LOG_LEVEL", "warn")

	config, err := LoadConfigFromPath(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.GitHub.Username != "from-file" {
		t.Errorf("Expected Username = from-file, got %s", config.GitHub.Username)
	}

	if config.GitHub.Token != "env-token" {
		t.Errorf("Expected environment token to win, got %s", config.GitHub.Token)
	}

	if config.Log.Level != "warn" {
		t.Errorf("Expected Level = warn, got %s", config.Log.Level)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("github: [unterminated"), 0600); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	if _, err := LoadConfigFromPath(configPath); err == nil {
		t.Fatal("Expected an error for malformed config")
	}
}

func TestSaveConfig(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "nested", "config.yaml")

	config := &Config{
		GitHub: GitHubConfig{
			Username: "save-user",
			Token:    "ghp_save_test_token",
		},
		Log: LogConfig{
			Level:  "error",
			Format: "text",
		},
	}

	err := config.SaveConfigToPath(configPath)
	if err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}

	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected permissions 0600, got %v", info.Mode().Perm())
	}

	loadedConfig, err := LoadConfigFromPath(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if *loadedConfig != *config {
		t.Errorf("Expected %+v, got %+v", *config, *loadedConfig)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "default config",
			config:  *Default(),
			wantErr: false,
		},
		{
			name:    "empty config",
			config:  Config{},
			wantErr: false,
		},
		{
			name: "uppercase level",
			config: Config{
				Log: LogConfig{Level: "DEBUG"},
			},
			wantErr: false,
		},
		{
			name: "unknown level",
			config: Config{
				Log: LogConfig{Level: "verbose"},
			},
			wantErr: true,
		},
		{
			name: "unknown format",
			config: Config{
				Log: LogConfig{Format: "xml"},
			},
			wantErr: true,
		},
		{
			name: "enterprise base URL",
			config: Config{
				GitHub: GitHubConfig{BaseURL: "https://github.example.com/api/v3/"},
			},
			wantErr: false,
		},
		{
			name: "base URL without scheme",
			config: Config{
				GitHub: GitHubConfig{BaseURL: "github.example.com"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() failed: %v", err)
	}

	if !filepath.IsAbs(path) {
		t.Error("GetConfigPath() should return absolute path")
	}

	if filepath.Base(filepath.Dir(path)) != ".ghprovision" {
		t.Errorf("GetConfigPath() should point into .ghprovision, got %s", path)
	}
}

func TestSaveAndLoadConfigDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GHPROVISION_GITHUB_USERNAME", "")
	t.Setenv("GHPROVISION_LOG_LEVEL", "")

	config := &Config{
		GitHub: GitHubConfig{Username: "home-user"},
		Log:    LogConfig{Level: "warn", Format: "json"},
	}

	if err := config.SaveConfig(); err != nil {
		t.Fatalf("SaveConfig() failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(home, ".ghprovision", "config.yaml")); err != nil {
		t.Fatalf("Config file was not written to the default location: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if *loaded != *config {
		t.Errorf("Expected %+v, got %+v", *config, *loaded)
	}
}
