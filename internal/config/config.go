package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

// VerificationConfig holds the submission pipeline policy knobs. The
// approval threshold is configuration, not a literal buried in the
// evaluator, so boundary behavior can be tested and tuned.
type VerificationConfig struct {
	ApprovalThreshold    int `toml:"approval_threshold"`
	MinSources           int `toml:"min_sources"`
	MinContentLength     int `toml:"min_content_length"`
	MaxContentLength     int `toml:"max_content_length"`
	OracleTimeoutSeconds int `toml:"oracle_timeout_seconds"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	LLM          LLMConfig          `toml:"llm"`
	Database     DatabaseConfig     `toml:"database"`
	Verification VerificationConfig `toml:"verification"`
	Server       ServerConfig       `toml:"server"`
}

// Default returns the platform policy baseline: two sources minimum,
// 100-5000 character submissions, approval at 70 points.
func Default() *Config {
	return &Config{
		Verification: VerificationConfig{
			ApprovalThreshold:    70,
			MinSources:           2,
			MinContentLength:     100,
			MaxContentLength:     5000,
			OracleTimeoutSeconds: 30,
		},
		Server: ServerConfig{Port: "8080"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}
