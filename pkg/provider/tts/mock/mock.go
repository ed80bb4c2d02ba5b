// Package mock provides a mock TTS provider for testing.
package mock

import (
	"context"
	"sync"

	"github.com/executiveusa/synthia/pkg/provider/tts"
)

// SynthesizeCall records the arguments of one Synthesize invocation.
type SynthesizeCall struct {
	Text     string
	Language string
}

// Provider is a configurable mock implementation of tts.Provider.
type Provider struct {
	mu sync.Mutex

	// NameText is returned by Name. Defaults to "mock/mock" when empty.
	NameText string
	// PCM is returned by Synthesize when SynthesizeFn and Err are unset.
	PCM []int16
	// Err, if set, is returned by Synthesize.
	Err error
	// SynthesizeFn, if set, overrides the default Synthesize behavior.
	SynthesizeFn func(ctx context.Context, text, language string) ([]int16, error)

	// Calls records every Synthesize invocation.
	Calls []SynthesizeCall
}

var _ tts.Provider = (*Provider)(nil)

// Name implements tts.Provider.
func (p *Provider) Name() string {
	if p.NameText == "" {
		return "mock/mock"
	}
	return p.NameText
}

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(ctx context.Context, text, language string) ([]int16, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, SynthesizeCall{Text: text, Language: language})
	p.mu.Unlock()

	if p.SynthesizeFn != nil {
		return p.SynthesizeFn(ctx, text, language)
	}
	if p.Err != nil {
		return nil, p.Err
	}
	return p.PCM, nil
}

// CallCount returns the number of recorded Synthesize calls.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
