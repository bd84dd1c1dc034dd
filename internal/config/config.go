package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.chatsync/config.toml.
type Config struct {
	DefaultProfile string         `toml:"default_profile"`
	API            APIConfig      `toml:"api"`
	Realtime       RealtimeConfig `toml:"realtime"`
}

// APIConfig locates the care-coordination backend.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
	// Token is the bearer token issued by the session layer; obtaining and
	// refreshing it is not this tool's job.
	Token string `toml:"token"`
	// UserID is the identity the token belongs to. Messages from this user
	// never count toward unread totals.
	UserID string `toml:"user_id"`
}

// RealtimeConfig locates the push event feed.
type RealtimeConfig struct {
	URL string `toml:"url"`
	// RetryIntervalSeconds overrides the reconnect pause; 0 means default.
	RetryIntervalSeconds int `toml:"retry_interval_seconds"`
}

// Load reads config from the given path. Returns an error if the file is
// missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
