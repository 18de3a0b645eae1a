package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds all configuration for the Captioner backend
type Config struct {
	// Logging
	LogLevel string `mapstructure:"log_level"`

	// Storage configuration
	Storage StorageConfig `mapstructure:"storage"`

	// Catalog configuration
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// StorageConfig defines storage backend configuration
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // filesystem, dropbox, s3

	// Filesystem backend
	Root string `mapstructure:"root"`

	// Dropbox backend
	Dropbox DropboxConfig `mapstructure:"dropbox"`
}

// DropboxConfig holds the Dropbox OAuth credential and root folder. The
// refresh token is long-lived and belongs in configuration; access tokens
// are derived from it at runtime and never persisted.
type DropboxConfig struct {
	AppKey       string `mapstructure:"app_key"`
	AppSecret    string `mapstructure:"app_secret"`
	RefreshToken string `mapstructure:"refresh_token"`

	// RootPath is the Dropbox folder listings start from. Normalized to
	// carry a leading slash when non-empty.
	RootPath string `mapstructure:"root_path"`
}

// CatalogConfig defines the photo catalog database configuration
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads configuration from .env, environment variables, an optional
// config file and command line flags, in increasing order of precedence.
func Load(cmd *cobra.Command) (*Config, error) {
	// Load .env into the process environment if present, so viper's env
	// lookup sees it. A missing file is not an error.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Bind command line flags
	if err := bindFlags(cmd, v); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	// Read from config file if specified
	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Read from environment variables
	v.SetEnvPrefix("CAPTIONER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal configuration
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	// Storage defaults - dropbox is the default backend
	v.SetDefault("storage.backend", "dropbox")
	v.SetDefault("storage.root", ".")

	// Registering the credential keys (even empty) lets AutomaticEnv feed
	// them through Unmarshal.
	v.SetDefault("storage.dropbox.app_key", "")
	v.SetDefault("storage.dropbox.app_secret", "")
	v.SetDefault("storage.dropbox.refresh_token", "")
	v.SetDefault("storage.dropbox.root_path", "")

	// Catalog defaults
	v.SetDefault("catalog.path", "captioner.db")
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := map[string]string{
		"log-level":    "log_level",
		"backend":      "storage.backend",
		"storage-root": "storage.root",
		"catalog-path": "catalog.path",
	}

	for flag, key := range flags {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}

	return nil
}

func validate(cfg *Config) error {
	// Normalize the Dropbox root path: the list-folder API wants either ""
	// (account root) or a slash-prefixed folder path.
	root := strings.TrimSpace(cfg.Storage.Dropbox.RootPath)
	if root != "" && !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	cfg.Storage.Dropbox.RootPath = root

	if cfg.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}

	// The Dropbox credential triple is deliberately not validated here: a
	// filesystem-only deployment runs without it, and the dropbox backend
	// checks it before its first remote call.
	return nil
}
