// Package config holds the process-wide configuration. It is built exactly
// once at startup from defaults, an optional YAML file, and environment
// variables, then passed by reference into the components that need it.
// Nothing below the CLI reads the environment directly.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Oracle wire formats.
const (
	APIResponses = "responses"
	APIChat      = "chat"
)

// Defaults.
const (
	DefaultBaseURL       = "https://apis.iflow.cn/v1"
	DefaultModel         = "glm-4.6"
	DefaultMaxRounds     = 8
	DefaultMaxChainDepth = 2
	DefaultHistoryPath   = "results/ideas.json"
	DefaultTimeout       = "3m"

	// DefaultBrief is the fixed creative brief every run works against.
	DefaultBrief = "Invent a workflow that does not exist yet, dramatically " +
		"improves LLM intelligence, and can be put into practice."
)

// Config is the one configuration structure for a pipeline run.
type Config struct {
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	APIKey        string `yaml:"api_key"`
	API           string `yaml:"api"` // responses | chat
	Brief         string `yaml:"brief"`
	MaxRounds     int    `yaml:"max_rounds"`
	MaxChainDepth int    `yaml:"max_chain_depth"`
	HistoryPath   string `yaml:"history_path"`
	Timeout       string `yaml:"timeout"` // per-request, time.ParseDuration syntax
}

// Load builds the configuration. path may be empty; a missing file is not
// an error, a malformed one is. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnchecked builds the configuration without validating it. Read-only
// commands use it so that inspecting history does not demand an API key.
func LoadUnchecked(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file, fall through to env.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		BaseURL:       DefaultBaseURL,
		Model:         DefaultModel,
		API:           APIResponses,
		Brief:         DefaultBrief,
		MaxRounds:     DefaultMaxRounds,
		MaxChainDepth: DefaultMaxChainDepth,
		HistoryPath:   DefaultHistoryPath,
		Timeout:       DefaultTimeout,
	}
}

// applyEnvOverrides layers environment variables on top of the current
// values. The API key is accepted under several names for compatibility
// with existing deployments; the first match wins.
func (c *Config) applyEnvOverrides() {
	setString(&c.BaseURL, "IDEAFORGE_BASE_URL", "IFLOW_BASE_URL")
	setString(&c.Model, "IDEAFORGE_MODEL", "IFLOW_MODEL")
	setString(&c.API, "IDEAFORGE_API")
	setString(&c.Brief, "IDEAFORGE_BRIEF")
	setString(&c.HistoryPath, "IDEAFORGE_HISTORY")
	setString(&c.Timeout, "IDEAFORGE_TIMEOUT")
	setString(&c.APIKey, "IDEAFORGE_API_KEY", "IFLOW_API_KEY", "OPENAI_API_KEY")
	setInt(&c.MaxRounds, "IDEA_MAX_ROUNDS")
	setInt(&c.MaxChainDepth, "MAX_CHAIN_DEPTH")
}

// Validate reports configuration errors that must abort the process before
// any oracle call is made.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("missing API key: set IDEAFORGE_API_KEY (or IFLOW_API_KEY / OPENAI_API_KEY)")
	}
	if c.API != APIResponses && c.API != APIChat {
		return fmt.Errorf("invalid api %q (valid: %s, %s)", c.API, APIResponses, APIChat)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be at least 1, got %d", c.MaxRounds)
	}
	if c.MaxChainDepth < 1 {
		return fmt.Errorf("max_chain_depth must be at least 1, got %d", c.MaxChainDepth)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return nil
}

// RequestTimeout returns the per-request timeout. Validate has already
// checked the syntax, so parse failures fall back to the default.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

func setString(dst *string, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			*dst = v
			return
		}
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
		*dst = n
	}
}
