// Package reasoning drives conversational turns through an ordered chain of
// LLM providers. When the preferred provider fails or its circuit breaker is
// open, the next one is tried transparently; when every provider fails the
// caller still receives a spoken apology instead of an error, because a
// reasoning outage must never terminate a live call.
package reasoning

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/executiveusa/synthia/internal/resilience"
	"github.com/executiveusa/synthia/pkg/provider/llm"
)

const (
	// DefaultMaxTokens bounds a single spoken reply. Phone answers are short.
	DefaultMaxTokens = 300
	// DefaultTemperature is the sampling temperature used for all providers.
	DefaultTemperature = 0.7
	// DefaultTimeout bounds a single provider attempt.
	DefaultTimeout = 30 * time.Second
)

// languageDirectives are appended to the system prompt so the model answers
// in the caller's language.
var languageDirectives = map[string]string{
	"en": " Respond in English.",
	"es": " Respond in Mexican Spanish (español de México). Use natural CDMX dialect, not formal Castilian.",
	"hi": " Respond in Hindi (हिंदी). Use Devanagari script naturally.",
}

// apologies is what the caller hears when every provider fails.
var apologies = map[string]string{
	"en": "I'm having trouble connecting to my reasoning engine. Please try again in a moment.",
	"es": "Estoy teniendo problemas para conectarme a mi motor de razonamiento. Por favor, inténtalo de nuevo en un momento.",
	"hi": "मुझे अपने सिस्टम से जुड़ने में समस्या हो रही है। कृपया एक क्षण में फिर से प्रयास करें।",
}

// Config holds tuning knobs for an [Engine]. Zero-value fields are replaced
// with defaults.
type Config struct {
	MaxTokens   int
	Temperature float64
	// Timeout bounds each individual provider attempt, not the whole chain.
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Engine generates assistant replies with ordered provider fallback.
// It is safe for concurrent use.
type Engine struct {
	group       *resilience.FallbackGroup[llm.Provider]
	maxTokens   int
	temperature float64
	timeout     time.Duration

	mu     sync.Mutex
	active string
}

// NewEngine creates an [Engine] trying providers in the given order.
// At least one provider is required.
func NewEngine(providers []llm.Provider, cfg Config) (*Engine, error) {
	if len(providers) == 0 {
		return nil, errors.New("reasoning: at least one provider is required")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	group := resilience.NewFallbackGroup[llm.Provider](resilience.FallbackConfig{
		CircuitBreaker: cfg.CircuitBreaker,
	})
	for _, p := range providers {
		group.Add(p.Name(), p)
	}
	return &Engine{
		group:       group,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

// Providers returns the configured provider names in fallback order.
func (e *Engine) Providers() []string {
	return e.group.Names()
}

// ActiveProvider returns the name of the provider that served the most
// recent successful turn, or "" if none has succeeded yet.
func (e *Engine) ActiveProvider() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Respond generates the assistant's next reply for the conversation so far.
// turns carries alternating user/assistant messages, oldest first. language
// selects the response language directive and the apology fallback.
//
// Respond never fails on provider errors: when the whole chain is exhausted
// it returns an apology phrase in the caller's language with a nil error.
func (e *Engine) Respond(ctx context.Context, turns []llm.Message, systemPrompt, language string) (string, error) {
	req := llm.CompletionRequest{
		Messages:     turns,
		SystemPrompt: strings.TrimSpace(systemPrompt + directiveFor(language)),
		MaxTokens:    e.maxTokens,
		Temperature:  e.temperature,
	}

	completion, served, err := resilience.ExecuteWithResult(e.group,
		func(p llm.Provider) (*llm.Completion, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()
			return p.Complete(attemptCtx, req)
		})
	if err != nil {
		slog.Error("all reasoning providers failed, answering with apology",
			"language", language, "error", err)
		return Apology(language), nil
	}

	e.mu.Lock()
	e.active = served
	e.mu.Unlock()

	return strings.TrimSpace(completion.Content), nil
}

// Apology returns the fixed fallback phrase for a language, defaulting to
// English for unknown codes.
func Apology(language string) string {
	if a, ok := apologies[language]; ok {
		return a
	}
	return apologies["en"]
}

func directiveFor(language string) string {
	if d, ok := languageDirectives[language]; ok {
		return d
	}
	return languageDirectives["en"]
}
