package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the configuration directory under the home dir.
	DefaultBaseDir = ".narrator"
	// DefaultConfigFile is the configuration filename.
	DefaultConfigFile = "config.yaml"
)

// Config is the narrator CLI configuration.
type Config struct {
	// Provider selects the synthesis backend: "openai" (default) or
	// "stream" for a websocket endpoint.
	Provider string `yaml:"provider,omitempty"`

	// APIKey authenticates against the OpenAI-compatible provider.
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL overrides the OpenAI-compatible API base URL.
	BaseURL string `yaml:"base_url,omitempty"`

	// StreamURL and StreamToken configure the websocket provider.
	StreamURL   string `yaml:"stream_url,omitempty"`
	StreamToken string `yaml:"stream_token,omitempty"`

	// Voice is the default voice profile.
	Voice string `yaml:"voice,omitempty"`

	// Speed scales the speaking rate around 1.0.
	Speed float64 `yaml:"speed,omitempty"`

	// CacheDir is the BadgerDB directory for the local audio cache.
	// Empty disables local caching.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// S3 configures the shared remote cache. When Bucket is set it takes
	// precedence over CacheDir.
	S3 S3Config `yaml:"s3,omitempty"`

	// Bookmarks is the path of the bookmark shelf file.
	Bookmarks string `yaml:"bookmarks,omitempty"`
}

// S3Config holds the remote cache settings.
type S3Config struct {
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
}

// baseDir returns the narrator configuration directory.
func baseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, DefaultBaseDir), nil
}

// loadConfig reads the config file at customPath, or the default location
// when empty. A missing file yields the zero config.
func loadConfig(customPath string) (*Config, error) {
	path := customPath
	if path == "" {
		dir, err := baseDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, DefaultConfigFile)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// bookmarksPath resolves the bookmark shelf location.
func (c *Config) bookmarksPath() (string, error) {
	if c.Bookmarks != "" {
		return c.Bookmarks, nil
	}
	dir, err := baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bookmarks.msgpack"), nil
}
