package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	LLM         LLMConfig         `mapstructure:"llm"`
	History     HistoryConfig     `mapstructure:"history"`
	Window      WindowConfig      `mapstructure:"window"`
	Attachments AttachmentsConfig `mapstructure:"attachments"`
	App         AppConfig         `mapstructure:"app"`
	Log         LogConfig         `mapstructure:"log"`
}

// LLMConfig holds the model provider configuration
type LLMConfig struct {
	Provider     string  `mapstructure:"provider"`
	BaseURL      string  `mapstructure:"base_url"`
	APIKey       string  `mapstructure:"api_key"`
	Model        string  `mapstructure:"model"`
	Temperature  float32 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	SystemPrompt string  `mapstructure:"system_prompt"`
}

// HistoryConfig selects and tunes the persistence backend.
type HistoryConfig struct {
	Backend       string `mapstructure:"backend"` // "file" or "sqlite"
	Path          string `mapstructure:"path"`
	BackupOnClear bool   `mapstructure:"backup_on_clear"`
}

// WindowConfig bounds how much history is sent to the model. LastN of zero
// means the full log.
type WindowConfig struct {
	LastN int `mapstructure:"last_n"`
}

// AttachmentsConfig holds the upload policy.
type AttachmentsConfig struct {
	MaxBytes          int64  `mapstructure:"max_bytes"`
	MaxImageDimension int    `mapstructure:"max_image_dimension"`
	JPEGQuality       int    `mapstructure:"jpeg_quality"`
	ImageDetail       string `mapstructure:"image_detail"` // "low" or "high"
}

// AppConfig holds the application gate settings.
type AppConfig struct {
	Password string `mapstructure:"password"`
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads the configuration from config.yaml in the working directory, or
// from the file named by CONFIG_PATH when set. Environment variables prefixed
// with CUSTOMGPT_ override file values.
func Load() (*Config, error) {
	v := viper.New()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("customgpt")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("history.backend", "file")
	v.SetDefault("history.path", "chat_history.json")
	v.SetDefault("history.backup_on_clear", true)
	v.SetDefault("window.last_n", 0)
	v.SetDefault("attachments.max_bytes", 5<<20)
	v.SetDefault("attachments.max_image_dimension", 1024)
	v.SetDefault("attachments.jpeg_quality", 85)
	v.SetDefault("attachments.image_detail", "high")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
