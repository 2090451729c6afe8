package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

type GenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
}

type RetryConfig struct {
	Attempts      int     `mapstructure:"attempts"`
	BackoffFactor float64 `mapstructure:"backoff_factor"`
}

type AudioConfig struct {
	Dir string `mapstructure:"dir"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type PresetsConfig struct {
	Dir string `mapstructure:"dir"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Generation GenerationConfig `mapstructure:"generation"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Audio      AudioConfig      `mapstructure:"audio"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Presets    PresetsConfig    `mapstructure:"presets"`
}

// Load reads rawi.yaml from the working directory or ~/.rawi, falling
// back to defaults when no file exists. The API key supports ${ENV}
// indirection so the file can be committed without secrets.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("rawi")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.rawi")

	v.SetDefault("server.port", 7860)
	v.SetDefault("server.base_url", "http://localhost:7860")
	v.SetDefault("provider.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("provider.api_key", "${DEEPSEEK_API_KEY}")
	v.SetDefault("provider.model", "deepseek-chat")
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.max_tokens", 1000)
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.backoff_factor", 1.5)
	v.SetDefault("audio.dir", "./audio_files")
	v.SetDefault("storage.db_path", filepath.Join(os.Getenv("HOME"), ".rawi", "library.db"))
	v.SetDefault("presets.dir", "./presets")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Expand environment variables in the API key
	if strings.HasPrefix(cfg.Provider.APIKey, "${") && strings.HasSuffix(cfg.Provider.APIKey, "}") {
		cfg.Provider.APIKey = os.Getenv(cfg.Provider.APIKey[2 : len(cfg.Provider.APIKey)-1])
	}

	return &cfg, nil
}
