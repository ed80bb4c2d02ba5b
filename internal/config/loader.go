package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to reject unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"reasoning": {"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq"},
	"stt":       {"whisper"},
	"tts":       {"elevenlabs"},
}

// Load reads the YAML configuration file at path, expands ${VAR} references
// from the environment, and returns a validated [Config]. An unset variable
// expands to the empty string.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	expanded := os.Expand(string(raw), os.Getenv)

	cfg, err := LoadFromReader(strings.NewReader(expanded))
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
// No environment expansion is applied; that happens only in [Load].
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	// A call cannot be answered without at least one reasoning backend.
	if len(cfg.Reasoning.Providers) == 0 {
		errs = append(errs, errors.New("reasoning.providers must list at least one provider"))
	}
	seen := make(map[string]int, len(cfg.Reasoning.Providers))
	for i, p := range cfg.Reasoning.Providers {
		prefix := fmt.Sprintf("reasoning.providers[%d]", i)
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		if err := validateProviderName("reasoning", p.Name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
		if p.Model == "" {
			errs = append(errs, fmt.Errorf("%s.model is required", prefix))
		}
		if prev, ok := seen[p.Name]; ok {
			errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of reasoning.providers[%d]", prefix, p.Name, prev))
		}
		seen[p.Name] = i
	}
	if cfg.Reasoning.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("reasoning.max_tokens %d must not be negative", cfg.Reasoning.MaxTokens))
	}
	if cfg.Reasoning.Timeout < 0 {
		errs = append(errs, fmt.Errorf("reasoning.timeout %s must not be negative", cfg.Reasoning.Timeout.Std()))
	}

	if cfg.STT.Name != "" {
		if err := validateProviderName("stt", cfg.STT.Name); err != nil {
			errs = append(errs, fmt.Errorf("stt: %w", err))
		}
	}
	if cfg.TTS.Name != "" {
		if err := validateProviderName("tts", cfg.TTS.Name); err != nil {
			errs = append(errs, fmt.Errorf("tts: %w", err))
		}
	}

	if cfg.PublicHost != "" && strings.Contains(cfg.PublicHost, "://") {
		errs = append(errs, fmt.Errorf("public_host %q must be a bare hostname, not a URL", cfg.PublicHost))
	}

	if cfg.Twilio.AuthToken == "" {
		slog.Warn("twilio.auth_token is empty; webhook signature validation is disabled")
	}
	if cfg.Memory.DSN == "" {
		slog.Warn("memory.dsn is empty; caller memory will not persist across calls")
	}
	if cfg.Dispatch.WebhookURL == "" {
		slog.Warn("dispatch.webhook_url is empty; design briefs will not be dispatched")
	}

	return errors.Join(errs...)
}

// validateProviderName returns an error if name is not a recognised provider
// name for the given kind.
func validateProviderName(kind, name string) error {
	known, ok := ValidProviderNames[kind]
	if !ok {
		return nil
	}
	if slices.Contains(known, name) {
		return nil
	}
	return fmt.Errorf("unknown %s provider %q; valid values: %s", kind, name, strings.Join(known, ", "))
}
