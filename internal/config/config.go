// Package config loads daemon settings from a YAML file and the
// environment via viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the daemon settings.
type Config struct {
	ListenAddress  string        `mapstructure:"listen_address"`
	UpdateInterval time.Duration `mapstructure:"update_interval"`
	LogFile        string        `mapstructure:"log_file"`
	LogLevel       string        `mapstructure:"log_level"`
	Providers      []string      `mapstructure:"providers"`
	MDNS           bool          `mapstructure:"mdns"`
	InstanceName   string        `mapstructure:"instance_name"`
}

// DefaultProviders is the provider set enabled when the config names
// none.
var DefaultProviders = []string{"cpu", "memory", "disk", "network", "gpu"}

// Load reads the configuration. An explicit path wins, otherwise
// sysstatsd.yaml is looked up in ~/.config/sysstats and the working
// directory. Environment variables prefixed SYSSTATS_ override file
// values. A missing file is not an error, defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sysstatsd")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "sysstats"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SYSSTATS")
	v.AutomaticEnv()

	v.SetDefault("listen_address", ":4712")
	v.SetDefault("update_interval", 500*time.Millisecond)
	v.SetDefault("log_level", "info")
	v.SetDefault("providers", DefaultProviders)
	v.SetDefault("mdns", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.UpdateInterval <= 0 {
		return nil, fmt.Errorf("update_interval must be positive, got %s", cfg.UpdateInterval)
	}
	if cfg.InstanceName == "" {
		if host, err := os.Hostname(); err == nil {
			cfg.InstanceName = host
		} else {
			cfg.InstanceName = "sysstatsd"
		}
	}
	return &cfg, nil
}

// ProviderEnabled reports whether name is in the configured provider
// set.
func (c *Config) ProviderEnabled(name string) bool {
	for _, p := range c.Providers {
		if p == name {
			return true
		}
	}
	return false
}
