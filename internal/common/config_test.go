package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/doculens/doculens/constants"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "JWT_SECRET", "OPENAI_API_KEY", "GOOGLE_API_KEY",
		"PRIMARY_MODEL", "FALLBACK_MODEL", "LLM_TEMPERATURE", "LLM_MAX_RETRIES",
		"LLM_BASE_DELAY", "LLM_MAX_DELAY", "LLM_TIMEOUT", "HISTORY_DSN", "DOCULENS_CONFIG",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.LLM.PrimaryModel != constants.DefaultPrimaryModel || cfg.LLM.FallbackModel != constants.DefaultFallbackModel {
		t.Errorf("models = %q / %q", cfg.LLM.PrimaryModel, cfg.LLM.FallbackModel)
	}
	if cfg.LLM.Temperature != constants.DefaultTemperature {
		t.Errorf("temperature = %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxRetries != constants.DefaultMaxRetries {
		t.Errorf("max retries = %d", cfg.LLM.MaxRetries)
	}
	if cfg.History.DSN != "./doculens.db" {
		t.Errorf("dsn = %q", cfg.History.DSN)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DOCULENS_CONFIG", "")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("PRIMARY_MODEL", "gpt-4o-mini")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("LLM_MAX_RETRIES", "5")
	t.Setenv("LLM_BASE_DELAY", "250ms")
	t.Setenv("HISTORY_DSN", ":memory:")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Addr != ":9999" || cfg.LLM.PrimaryModel != "gpt-4o-mini" {
		t.Errorf("env overrides lost: %+v", cfg)
	}
	if cfg.LLM.Temperature != 0.7 || cfg.LLM.MaxRetries != 5 {
		t.Errorf("numeric overrides lost: %+v", cfg.LLM)
	}
	if cfg.LLM.BaseDelay != 250*time.Millisecond {
		t.Errorf("base delay = %v", cfg.LLM.BaseDelay)
	}
	if cfg.History.DSN != ":memory:" {
		t.Errorf("dsn = %q", cfg.History.DSN)
	}
}

func TestLoadConfig_YAMLOverlay(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("PRIMARY_MODEL", "env-model")
	t.Setenv("LLM_MAX_RETRIES", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := `
server:
  addr: ":7070"
llm:
  primary_model: file-model
  max_retries: 7
`
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("DOCULENS_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	// File wins over env for keys it sets.
	if cfg.Server.Addr != ":7070" || cfg.LLM.PrimaryModel != "file-model" || cfg.LLM.MaxRetries != 7 {
		t.Errorf("overlay lost: %+v", cfg)
	}
	// Keys the file omits keep their env/default values.
	if cfg.LLM.FallbackModel != constants.DefaultFallbackModel {
		t.Errorf("fallback model = %q", cfg.LLM.FallbackModel)
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("not: [valid"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("DOCULENS_CONFIG", path)

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() accepted broken YAML")
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Addr: ":8080"},
			LLM:    LLMConfig{Temperature: 0.1, MaxRetries: 3},
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	c := base()
	c.LLM.Temperature = 1.5
	if err := c.Validate(); err == nil {
		t.Error("temperature 1.5 accepted")
	}

	c = base()
	c.LLM.MaxRetries = 0
	if err := c.Validate(); err == nil {
		t.Error("zero retries accepted")
	}

	c = base()
	c.Server.Addr = ""
	if err := c.Validate(); err == nil {
		t.Error("empty addr accepted")
	}
}
