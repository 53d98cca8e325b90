package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
llm:
  provider: openai
  base_url: https://api.deepseek.com/v1
  model: deepseek-chat
  timeout: 45s
  generation:
    temperature: 0.2
resume:
  strict_grounding: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "9090" || cfg.Server.Mode != "release" {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "deepseek-chat" || cfg.LLM.Timeout != 45*time.Second {
		t.Errorf("unexpected llm config %+v", cfg.LLM)
	}
	if cfg.LLM.Generation.Temperature != 0.2 || cfg.LLM.Generation.MaxTokens != 0 {
		t.Errorf("unexpected generation config %+v", cfg.LLM.Generation)
	}
	if cfg.Log.Level != "info" || cfg.JWT.SessionExpireHours != 24 || !cfg.Resume.StrictGrounding {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "llm:\n  api_key: from-file\n")

	t.Setenv("API_KEY", "from-env")
	t.Setenv("WORKBENCH_LLM_PROVIDER", "dummy")
	t.Setenv("WORKBENCH_JWT_SESSION_EXPIRE_HOURS", "2")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.APIKey != "from-env" {
		t.Errorf("API_KEY should override the file, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Provider != "dummy" || cfg.JWT.SessionExpireHours != 2 {
		t.Errorf("prefixed env overrides not applied: %+v", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestInit_PanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Init should panic when the file cannot be read")
		}
	}()
	Init(filepath.Join(t.TempDir(), "nope.yaml"))
}
