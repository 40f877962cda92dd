// Package config loads the planner configuration from YAML with
// environment variable expansion.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure for the planner service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      LLMConfig      `yaml:"llm"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// BaseURL is used to build absolute links in broadcast payloads.
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	// Path is the sqlite database file. Empty selects the in-memory store.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenExpiry time.Duration `yaml:"token_expiry"`
	APIKeys     []APIKey      `yaml:"api_keys"`
}

// APIKey declares a static key and its associated identity.
type APIKey struct {
	Key    string `yaml:"key"`
	UserID string `yaml:"user_id"`
	Name   string `yaml:"name"`
}

type LLMConfig struct {
	// Provider selects the chat backend: "openai" or "anthropic".
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`

	// MaxToolCalls bounds tool invocations per chat turn.
	MaxToolCalls int `yaml:"max_tool_calls"`

	// MaxWallTime bounds a whole chat run. Zero uses the default.
	MaxWallTime time.Duration `yaml:"max_wall_time"`

	// Persona selects the response tone. Unknown values fall back to the
	// default persona; tool behavior is unaffected either way.
	Persona string `yaml:"persona"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the configuration file at path, expanding ${VAR} references
// from the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration suitable for local runs.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Auth.TokenExpiry == 0 {
		c.Auth.TokenExpiry = 24 * time.Hour
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.MaxToolCalls == 0 {
		c.LLM.MaxToolCalls = 15
	}
	if c.LLM.MaxWallTime == 0 {
		c.LLM.MaxWallTime = 2 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks for configuration the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.MaxToolCalls < 0 {
		return fmt.Errorf("max_tool_calls must not be negative")
	}
	return nil
}
