// Package config handles application configuration management.
// It supports YAML files and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Gemini    GeminiConfig    `mapstructure:"gemini" yaml:"gemini"`
	Anthropic AnthropicConfig `mapstructure:"anthropic" yaml:"anthropic"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Sticker   StickerConfig   `mapstructure:"sticker" yaml:"sticker"`
	Download  DownloadConfig  `mapstructure:"download" yaml:"download"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// GeminiConfig holds generation service settings
type GeminiConfig struct {
	APIKey      string `mapstructure:"api_key" yaml:"api_key"`
	ImageModel  string `mapstructure:"image_model" yaml:"image_model"`
	VideoModel  string `mapstructure:"video_model" yaml:"video_model"`
	PollSeconds int    `mapstructure:"poll_seconds" yaml:"poll_seconds"`
	MaxPolls    int    `mapstructure:"max_polls" yaml:"max_polls"` // 0 polls forever
}

// AnthropicConfig holds template suggestion settings
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// StorageConfig holds persistence settings
type StorageConfig struct {
	Backend    string      `mapstructure:"backend" yaml:"backend"` // "file" or "redis"
	DataDir    string      `mapstructure:"data_dir" yaml:"data_dir"`
	QuotaBytes int64       `mapstructure:"quota_bytes" yaml:"quota_bytes"` // 0 means unlimited
	Redis      RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig holds the optional Redis backend settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// StickerConfig holds generation shape settings
type StickerConfig struct {
	Size  int `mapstructure:"size" yaml:"size"`   // normalized edge length in pixels
	Count int `mapstructure:"count" yaml:"count"` // images per generation
}

// DownloadConfig holds file delivery settings
type DownloadConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("gemini.image_model", "gemini-2.5-flash-image-preview")
	v.SetDefault("gemini.video_model", "veo-2.0-generate-001")
	v.SetDefault("gemini.poll_seconds", 10)
	v.SetDefault("gemini.max_polls", 0)
	v.SetDefault("anthropic.model", "claude-3-haiku-20240307")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("storage.backend", "file")
	v.SetDefault("sticker.size", 512)
	v.SetDefault("sticker.count", 5)
	v.SetDefault("download.dir", "stickers")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	// Determine config directory
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w", err)
	}

	// Set default storage directory
	v.SetDefault("storage.data_dir", configDir)

	// Configure viper to read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Current directory

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	// Environment variable overrides
	v.SetEnvPrefix("STICKERFORGE")
	v.AutomaticEnv()

	// Specific env var bindings
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("storage.redis.addr", "REDIS_ADDR")

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Save writes the current configuration to file
func Save(cfg *Config) error {
	configDir, err := getConfigDir()
	if err != nil {
		return fmt.Errorf("failed to determine config directory: %w", err)
	}

	// Ensure config directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")

	v := viper.New()
	v.Set("gemini", cfg.Gemini)
	v.Set("anthropic", cfg.Anthropic)
	v.Set("storage", cfg.Storage)
	v.Set("sticker", cfg.Sticker)
	v.Set("download", cfg.Download)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Set restrictive permissions on config file (contains credentials)
	if err := os.Chmod(configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	// Check for STICKERFORGE_CONFIG_DIR env var (Docker can set this to /data)
	if configDir := os.Getenv("STICKERFORGE_CONFIG_DIR"); configDir != "" {
		return configDir, nil
	}

	// Use XDG_CONFIG_HOME if set
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "stickerforge"), nil
	}

	// Fall back to ~/.config/stickerforge
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", "stickerforge"), nil
}

// GetConfigDir returns the configuration directory (exported for other packages)
func GetConfigDir() (string, error) {
	return getConfigDir()
}
