package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "planner.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("PLANNER_TEST_SECRET", "from-env")
	path := writeConfig(t, `
server:
  port: 9090
database:
  path: /tmp/planner.db
auth:
  jwt_secret: ${PLANNER_TEST_SECRET}
  token_expiry: 1h
llm:
  provider: anthropic
  model: claude-sonnet-4-20250514
  max_tool_calls: 5
  persona: hype
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/planner.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("jwt secret = %q, env expansion failed", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenExpiry != time.Hour {
		t.Errorf("token expiry = %v", cfg.Auth.TokenExpiry)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.MaxToolCalls != 5 || cfg.LLM.Persona != "hype" {
		t.Errorf("llm config = %+v", cfg.LLM)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging config = %+v", cfg.Logging)
	}

	// Unset fields still get defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q", cfg.Server.Host)
	}
	if cfg.Server.BaseURL != "http://localhost:9090" {
		t.Errorf("base url = %q", cfg.Server.BaseURL)
	}
	if cfg.LLM.MaxWallTime != 2*time.Minute {
		t.Errorf("max wall time = %v", cfg.LLM.MaxWallTime)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("load succeeded")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "server: [not a map")
		if _, err := Load(path); err == nil {
			t.Error("load succeeded")
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		path := writeConfig(t, "llm:\n  provider: cohere\n")
		if _, err := Load(path); err == nil {
			t.Error("load succeeded")
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		path := writeConfig(t, "server:\n  port: 70000\n")
		if _, err := Load(path); err == nil {
			t.Error("load succeeded")
		}
	})

	t.Run("negative tool budget", func(t *testing.T) {
		path := writeConfig(t, "llm:\n  max_tool_calls: -1\n")
		if _, err := Load(path); err == nil {
			t.Error("load succeeded")
		}
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.LLM.Provider != "openai" || cfg.LLM.MaxToolCalls != 15 {
		t.Errorf("defaults = server %+v llm %+v", cfg.Server, cfg.LLM)
	}
	if cfg.Database.Path != "" {
		t.Errorf("database path = %q, want in-memory default", cfg.Database.Path)
	}
	if cfg.Auth.TokenExpiry != 24*time.Hour {
		t.Errorf("token expiry = %v", cfg.Auth.TokenExpiry)
	}
}
