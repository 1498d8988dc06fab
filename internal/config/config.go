package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// BaseURLEnv overrides the configured hub URL when set.
const BaseURLEnv = "HUBCTL_BASE_URL"

// Config holds CLI configuration stored at ~/.hubctl/config.
type Config struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key,omitempty"`
	Username  string `yaml:"username,omitempty"`
	PrefsPath string `yaml:"prefs_path,omitempty"`
	LogFile   string `yaml:"log_file,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`
}

// Dir returns the hubctl state directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hubctl")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config")
}

// Load reads and parses the config file. Returns error if missing or insecure.
func Load() (*Config, error) {
	path := Path()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("config missing base_url")
	}

	return &cfg, nil
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0600)
}

// ResolvedBaseURL applies the environment override.
func (c *Config) ResolvedBaseURL() string {
	if env := strings.TrimSpace(os.Getenv(BaseURLEnv)); env != "" {
		return env
	}
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.BaseURL)
}

// PrefsFile returns the location of the local preferences database.
func (c *Config) PrefsFile() string {
	if c != nil && strings.TrimSpace(c.PrefsPath) != "" {
		return c.PrefsPath
	}
	return filepath.Join(Dir(), "prefs.db")
}
