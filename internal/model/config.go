package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SyncConfig controls how the background refresher talks to archive
// servers.
type SyncConfig struct {
	// PollIntervalSec is how often (in seconds) each subscribed list
	// is refreshed in the background. Zero disables polling.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// ThreadPageSize is the limit parameter for thread collection
	// fetches.
	ThreadPageSize int `mapstructure:"thread_page_size" yaml:"thread_page_size"`

	// EmailPageSize is the count parameter for email collection
	// fetches.
	EmailPageSize int `mapstructure:"email_page_size" yaml:"email_page_size"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// LogConfig controls file logging. The TUI owns the terminal, so logs
// always go to a file.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// Database is the path of the SQLite cache.
	Database string `mapstructure:"database" yaml:"database"`

	// Servers is the remembered set of Hyperkitty base URLs,
	// offered as suggestions in the add-server form.
	Servers []string `mapstructure:"servers" yaml:"servers"`

	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/archive-reader/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "archive-reader", "config.yaml")
}

// defaultStatePath builds a path under ~/.local/state/archive-reader,
// falling back to the working directory when the home dir is unknown.
func defaultStatePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", name)
	}
	return filepath.Join(home, ".local", "state", "archive-reader", name)
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: defaultStatePath("archive.db"),
		Sync: SyncConfig{
			PollIntervalSec: 300,
			ThreadPageSize:  25,
			EmailPageSize:   25,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
		Log: LogConfig{
			File:  defaultStatePath("archive-reader.log"),
			Level: "info",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default
// configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database", defaultStatePath("archive.db"))
	v.SetDefault("sync.poll_interval_sec", 300)
	v.SetDefault("sync.thread_page_size", 25)
	v.SetDefault("sync.email_page_size", 25)
	v.SetDefault("display.theme", "default")
	v.SetDefault("log.file", defaultStatePath("archive-reader.log"))
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("servers", cfg.Servers)
	v.Set("sync", cfg.Sync)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
