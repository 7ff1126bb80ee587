package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultTextareaLimit is the default rune cap for long-form text in
	// table cells.
	DefaultTextareaLimit = 50

	// DefaultGenerateCount is the default number of records the generator
	// asks the model for.
	DefaultGenerateCount = 8
)

// Config holds all configuration for the canvas engine.
type Config struct {
	Claude   ClaudeConfig   `mapstructure:"claude"`
	Canvas   CanvasConfig   `mapstructure:"canvas"`
	Generate GenerateConfig `mapstructure:"generate"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	API      APIConfig      `mapstructure:"api"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"`
}

// ClaudeConfig holds Anthropic Claude API settings.
type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// String returns a safe representation of ClaudeConfig with the API key masked.
func (c ClaudeConfig) String() string {
	masked := maskAPIKey(c.APIKey)
	return fmt.Sprintf("ClaudeConfig{APIKey:%s, Model:%s}", masked, c.Model)
}

// maskAPIKey shows first 4 + last 4 chars, replacing the middle with asterisks.
func maskAPIKey(key string) string {
	const visible = 4
	if len(key) <= visible*2 {
		return "***"
	}
	return key[:visible] + "****" + key[len(key)-visible:]
}

// CanvasConfig holds projection settings.
type CanvasConfig struct {
	TextareaLimit int    `mapstructure:"textarea_limit"`
	DefaultView   string `mapstructure:"default_view"`
}

// GenerateConfig holds record generation settings.
type GenerateConfig struct {
	Count     int `mapstructure:"count"`
	MaxTokens int `mapstructure:"max_tokens"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("claude.model", "claude-haiku-4-5-20251001")

	v.SetDefault("canvas.textarea_limit", DefaultTextareaLimit)
	v.SetDefault("canvas.default_view", "table")

	v.SetDefault("generate.count", DefaultGenerateCount)
	v.SetDefault("generate.max_tokens", 4096)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.auth_token", "")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".canvas-engine"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("CANVAS_ENGINE")
	v.AutomaticEnv()

	// Map specific env vars
	_ = v.BindEnv("claude.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("api.listen_addr", "CANVAS_ENGINE_API_LISTEN_ADDR")
	_ = v.BindEnv("api.auth_token", "CANVAS_ENGINE_API_AUTH_TOKEN")
	_ = v.BindEnv("canvas.default_view", "CANVAS_ENGINE_DEFAULT_VIEW")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK — use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Canvas.TextareaLimit <= 0 {
		return fmt.Errorf("canvas.textarea_limit must be greater than 0")
	}
	switch c.Canvas.DefaultView {
	case "table", "kanban", "gantt":
	default:
		return fmt.Errorf("canvas.default_view must be one of table, kanban, gantt")
	}
	if c.Generate.Count <= 0 {
		return fmt.Errorf("generate.count must be greater than 0")
	}
	if c.Generate.MaxTokens <= 0 {
		return fmt.Errorf("generate.max_tokens must be greater than 0")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
