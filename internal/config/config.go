// Package config provides the configuration schema, loader, and provider
// registry for the Synthia voice agent.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps [time.Duration] so YAML values like "30s" or "1m30s"
// decode with [time.ParseDuration] semantics.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a [time.Duration].
func (d Duration) Std() time.Duration { return time.Duration(d) }

// LogLevel controls log verbosity for the Synthia server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SlogLevel maps l onto the corresponding [slog.Level]. Unrecognised or
// empty levels map to [slog.LevelInfo].
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Config is the root configuration structure for Synthia.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// PublicHost is the externally reachable hostname placed in the TwiML
	// stream URL (e.g., "example.ngrok.app"). Twilio dials back to it over
	// wss, so it must be publicly routable.
	PublicHost string `yaml:"public_host"`

	Twilio    TwilioConfig    `yaml:"twilio"`
	Reasoning ReasoningConfig `yaml:"reasoning"`
	STT       ProviderEntry   `yaml:"stt"`
	TTS       ProviderEntry   `yaml:"tts"`
	Memory    MemoryConfig    `yaml:"memory"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
}

// TwilioConfig holds Twilio webhook settings.
type TwilioConfig struct {
	// AuthToken is the account auth token used to validate webhook
	// signatures. Empty disables signature validation.
	AuthToken string `yaml:"auth_token"`

	// ConnectingPhrase is spoken by Twilio before the media stream opens.
	// Empty uses the built-in default.
	ConnectingPhrase string `yaml:"connecting_phrase"`
}

// ReasoningConfig tunes the fallback reasoning chain.
type ReasoningConfig struct {
	// MaxTokens caps reply length per turn. 0 uses the engine default.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature is the sampling temperature. 0 uses the engine default.
	Temperature float64 `yaml:"temperature"`

	// Timeout bounds each individual provider attempt.
	Timeout Duration `yaml:"timeout"`

	// Providers lists the reasoning backends in fallback priority order.
	// At least one entry is required.
	Providers []ProviderEntry `yaml:"providers"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field selects the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai",
	// "whisper", "elevenlabs").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g.,
	// "gpt-4o-mini", "whisper-1", "eleven_turbo_v2_5").
	Model string `yaml:"model"`
}

// MemoryConfig configures long-term caller memory.
type MemoryConfig struct {
	// DSN is the PostgreSQL connection string. Empty disables persistence;
	// calls still work, the agent just never remembers anyone.
	DSN string `yaml:"dsn"`
}

// DispatchConfig configures design-brief hand-off after a call.
type DispatchConfig struct {
	// WebhookURL receives completed design briefs as JSON. Empty disables
	// dispatch.
	WebhookURL string `yaml:"webhook_url"`
}
