// Package config loads the application configuration from
// ~/.config/marks/config.yaml and MARKS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config holds application configuration.
type Config struct {
	// Backend is "local" (database opened in-process) or "remote" (marks server).
	Backend string `mapstructure:"backend"`
	// User scopes local data; the server takes the user from the token instead.
	User               string         `mapstructure:"user"`
	QuickAddCollection string         `mapstructure:"quick_add_collection"`
	Database           DatabaseConfig `mapstructure:"database"`
	Remote             RemoteConfig   `mapstructure:"remote"`
	Server             ServerConfig   `mapstructure:"server"`
	Log                LogConfig      `mapstructure:"log"`
	Cull               CullConfig     `mapstructure:"cull"`
	UI                 UIConfig       `mapstructure:"ui"`
	AI                 AIConfig       `mapstructure:"ai"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	URL    string `mapstructure:"url"`
}

type RemoteConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

type ServerConfig struct {
	Listen          string        `mapstructure:"listen"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	// File receives log output. Empty keeps logs out of the terminal UI by
	// writing to marks.log next to the config file.
	File string `mapstructure:"file"`
}

type CullConfig struct {
	ExcludeDomains []string      `mapstructure:"exclude_domains"`
	Concurrency    int           `mapstructure:"concurrency"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type UIConfig struct {
	Sort   string `mapstructure:"sort"`
	Filter string `mapstructure:"filter"`
	View   string `mapstructure:"view"`
}

type AIConfig struct {
	Model string `mapstructure:"model"`
	// BaseURL overrides the Anthropic API endpoint.
	BaseURL string `mapstructure:"base_url"`
}

// DefaultDir returns ~/.config/marks.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "marks"), nil
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("backend", BackendLocal)
	v.SetDefault("user", "local")
	v.SetDefault("quick_add_collection", "Read Later")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join(dir, "marks.db"))
	v.SetDefault("database.url", "")

	v.SetDefault("remote.url", "")
	v.SetDefault("remote.token", "")

	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.token_ttl", 30*24*time.Hour)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 30)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.file", filepath.Join(dir, "marks.log"))

	v.SetDefault("cull.exclude_domains", []string{"github.com", "gitlab.com"})
	v.SetDefault("cull.concurrency", 10)
	v.SetDefault("cull.timeout", 10*time.Second)

	v.SetDefault("ui.sort", "date-newest")
	v.SetDefault("ui.filter", "all")
	v.SetDefault("ui.view", "list")

	v.SetDefault("ai.model", "claude-haiku-4-5-20251001")
	v.SetDefault("ai.base_url", "")
}

// Load reads configuration from path (the default location when empty) and
// the environment. Environment variables take precedence over the file.
// A missing file is created with the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	setDefaults(v, filepath.Dir(path))
	v.SetConfigFile(path)

	v.SetEnvPrefix("MARKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Non-fatal: defaults apply even if the file cannot be written.
		_ = writeDefaults(path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.QuickAddCollection = strings.TrimSpace(cfg.QuickAddCollection)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// writeDefaults writes a config file holding only the defaults.
func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	v := viper.New()
	setDefaults(v, filepath.Dir(path))
	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Chmod(path, 0o600)
}

// Validate checks the settings that select a backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		switch c.Database.Driver {
		case "sqlite":
		case "postgres":
			if c.Database.URL == "" {
				return errors.New("database.url is required for the postgres driver")
			}
		default:
			return fmt.Errorf("unknown database driver %q", c.Database.Driver)
		}
		if c.User == "" {
			return errors.New("user is required for the local backend")
		}
	case BackendRemote:
		if c.Remote.URL == "" {
			return errors.New("remote.url is required for the remote backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendLocal, BackendRemote)
	}
	if c.Cull.Concurrency < 1 {
		return errors.New("cull.concurrency must be at least 1")
	}
	return nil
}
