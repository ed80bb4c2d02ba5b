package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/executiveusa/synthia/internal/config"
)

const validYAML = `
log_level: debug
listen_addr: ":8080"
public_host: "example.ngrok.app"
twilio:
  auth_token: "secret"
reasoning:
  max_tokens: 300
  temperature: 0.7
  timeout: 30s
  providers:
    - name: openai
      model: gpt-4o-mini
      api_key: "sk-test"
    - name: ollama
      model: llama3.2
      base_url: "http://localhost:11434"
stt:
  name: whisper
  api_key: "sk-test"
tts:
  name: elevenlabs
  api_key: "el-test"
memory:
  dsn: "postgres://localhost/synthia"
dispatch:
  webhook_url: "https://example.com/jobs"
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader() error: %v", err)
	}
	if cfg.LogLevel != config.LogDebug {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.PublicHost != "example.ngrok.app" {
		t.Errorf("PublicHost = %q", cfg.PublicHost)
	}
	if got := cfg.Reasoning.Timeout.Std(); got != 30*time.Second {
		t.Errorf("Reasoning.Timeout = %s, want 30s", got)
	}
	if len(cfg.Reasoning.Providers) != 2 {
		t.Fatalf("len(Reasoning.Providers) = %d, want 2", len(cfg.Reasoning.Providers))
	}
	if cfg.Reasoning.Providers[1].BaseURL != "http://localhost:11434" {
		t.Errorf("ollama base_url = %q", cfg.Reasoning.Providers[1].BaseURL)
	}
	if cfg.STT.Name != "whisper" || cfg.TTS.Name != "elevenlabs" {
		t.Errorf("stt/tts = %q/%q", cfg.STT.Name, cfg.TTS.Name)
	}
}

func TestLoadFromReader_RejectsUnknownFields(t *testing.T) {
	t.Parallel()
	yaml := `
listen_adress: ":8080"
reasoning:
  providers:
    - name: openai
      model: gpt-4o-mini
`
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for misspelled field, got nil")
	}
}

func TestValidate_RequiresReasoningProvider(t *testing.T) {
	t.Parallel()
	yaml := `
listen_addr: ":8080"
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for empty reasoning.providers, got nil")
	}
	if !strings.Contains(err.Error(), "at least one provider") {
		t.Errorf("error should mention missing providers, got: %v", err)
	}
}

func TestValidate_RejectsUnknownProviderName(t *testing.T) {
	t.Parallel()
	yaml := `
reasoning:
  providers:
    - name: frontier9000
      model: mega
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown provider name, got nil")
	}
	if !strings.Contains(err.Error(), "frontier9000") {
		t.Errorf("error should name the provider, got: %v", err)
	}
}

func TestValidate_RejectsDuplicateProviders(t *testing.T) {
	t.Parallel()
	yaml := `
reasoning:
  providers:
    - name: openai
      model: gpt-4o-mini
    - name: openai
      model: gpt-4o
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for duplicate provider names, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error should mention duplicate, got: %v", err)
	}
}

func TestValidate_RejectsURLPublicHost(t *testing.T) {
	t.Parallel()
	yaml := `
public_host: "https://example.ngrok.app"
reasoning:
  providers:
    - name: openai
      model: gpt-4o-mini
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for URL-shaped public_host, got nil")
	}
}

func TestValidate_RejectsBadProviderEntries(t *testing.T) {
	t.Parallel()
	yaml := `
reasoning:
  providers:
    - model: gpt-4o-mini
    - name: anthropic
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "name is required") {
		t.Errorf("error should flag the missing name, got: %v", err)
	}
	if !strings.Contains(err.Error(), "model is required") {
		t.Errorf("error should flag the missing model, got: %v", err)
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("SYNTHIA_TEST_API_KEY", "sk-from-env")

	yaml := `
reasoning:
  providers:
    - name: openai
      model: gpt-4o-mini
      api_key: "${SYNTHIA_TEST_API_KEY}"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := cfg.Reasoning.Providers[0].APIKey; got != "sk-from-env" {
		t.Errorf("api_key = %q, want sk-from-env", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestRegistry_CreateUnregistered(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	_, err := reg.CreateReasoning(config.ProviderEntry{Name: "openai"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Fatalf("err = %v, want ErrProviderNotRegistered", err)
	}
}
