// Package common holds configuration shared by the server and CLI binaries.
// Values load from the environment first; an optional YAML file (DOCULENS_CONFIG)
// overrides only the fields it sets, so deployments can pin models and backoff
// without a full env rollout.
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/doculens/doculens/constants"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	History HistoryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwt_secret"`
}

// LLMConfig holds provider and orchestration settings.
type LLMConfig struct {
	OpenAIKey     string        `yaml:"openai_api_key"`
	GoogleKey     string        `yaml:"google_api_key"`
	PrimaryModel  string        `yaml:"primary_model"`
	FallbackModel string        `yaml:"fallback_model"`
	Temperature   float32       `yaml:"temperature"`
	MaxRetries    int           `yaml:"max_retries"`
	BaseDelay     time.Duration `yaml:"base_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	Timeout       time.Duration `yaml:"timeout"`
}

// HistoryConfig holds the audit store settings.
type HistoryConfig struct {
	DSN string `yaml:"dsn"`
}

// LoadConfig loads configuration from environment variables, then overlays
// the YAML file named by DOCULENS_CONFIG if present.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:      getEnv("HTTP_ADDR", ":8080"),
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		LLM: LLMConfig{
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			GoogleKey:     getEnv("GOOGLE_API_KEY", ""),
			PrimaryModel:  getEnv("PRIMARY_MODEL", constants.DefaultPrimaryModel),
			FallbackModel: getEnv("FALLBACK_MODEL", constants.DefaultFallbackModel),
			Temperature:   getEnvAsFloat32("LLM_TEMPERATURE", constants.DefaultTemperature),
			MaxRetries:    getEnvAsInt("LLM_MAX_RETRIES", constants.DefaultMaxRetries),
			BaseDelay:     getEnvAsDuration("LLM_BASE_DELAY", constants.DefaultBaseDelay),
			MaxDelay:      getEnvAsDuration("LLM_MAX_DELAY", constants.DefaultMaxDelay),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
		},
		History: HistoryConfig{
			DSN: getEnv("HISTORY_DSN", "./doculens.db"),
		},
	}

	if path := os.Getenv("DOCULENS_CONFIG"); path != "" {
		if err := overlayYAML(cfg, path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// fileConfig mirrors Config with pointer fields so the overlay only touches
// keys the file actually sets.
type fileConfig struct {
	Server struct {
		Addr      *string `yaml:"addr"`
		JWTSecret *string `yaml:"jwt_secret"`
	} `yaml:"server"`
	LLM struct {
		OpenAIKey     *string        `yaml:"openai_api_key"`
		GoogleKey     *string        `yaml:"google_api_key"`
		PrimaryModel  *string        `yaml:"primary_model"`
		FallbackModel *string        `yaml:"fallback_model"`
		Temperature   *float32       `yaml:"temperature"`
		MaxRetries    *int           `yaml:"max_retries"`
		BaseDelay     *time.Duration `yaml:"base_delay"`
		MaxDelay      *time.Duration `yaml:"max_delay"`
		Timeout       *time.Duration `yaml:"timeout"`
	} `yaml:"llm"`
	History struct {
		DSN *string `yaml:"dsn"`
	} `yaml:"history"`
}

func overlayYAML(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.Server.Addr, fc.Server.Addr)
	setString(&cfg.Server.JWTSecret, fc.Server.JWTSecret)
	setString(&cfg.LLM.OpenAIKey, fc.LLM.OpenAIKey)
	setString(&cfg.LLM.GoogleKey, fc.LLM.GoogleKey)
	setString(&cfg.LLM.PrimaryModel, fc.LLM.PrimaryModel)
	setString(&cfg.LLM.FallbackModel, fc.LLM.FallbackModel)
	if fc.LLM.Temperature != nil {
		cfg.LLM.Temperature = *fc.LLM.Temperature
	}
	if fc.LLM.MaxRetries != nil {
		cfg.LLM.MaxRetries = *fc.LLM.MaxRetries
	}
	if fc.LLM.BaseDelay != nil {
		cfg.LLM.BaseDelay = *fc.LLM.BaseDelay
	}
	if fc.LLM.MaxDelay != nil {
		cfg.LLM.MaxDelay = *fc.LLM.MaxDelay
	}
	if fc.LLM.Timeout != nil {
		cfg.LLM.Timeout = *fc.LLM.Timeout
	}
	setString(&cfg.History.DSN, fc.History.DSN)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		return fmt.Errorf("LLM_TEMPERATURE must be in [0,1], got %v", c.LLM.Temperature)
	}
	if c.LLM.MaxRetries < 1 {
		return fmt.Errorf("LLM_MAX_RETRIES must be >= 1, got %d", c.LLM.MaxRetries)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	return nil
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
