// Package mock provides a test double for the stt package interfaces.
package mock

import (
	"context"
	"sync"

	"github.com/executiveusa/synthia/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	// WAV is a copy of the container bytes passed in.
	WAV []byte
	// Language is the hint passed in.
	Language string
}

// Provider is a mock implementation of [stt.Provider].
type Provider struct {
	mu sync.Mutex

	// NameText is returned by Name. Defaults to "mock/stt".
	NameText string

	// Text is the transcript returned on success.
	Text string

	// Err, if non-nil, is returned by every Transcribe call.
	Err error

	// TranscribeFn, if non-nil, overrides the canned Text/Err behaviour.
	TranscribeFn func(ctx context.Context, wav []byte, language string) (string, error)

	// Calls records every Transcribe invocation in order.
	Calls []TranscribeCall
}

// Compile-time interface assertion.
var _ stt.Provider = (*Provider)(nil)

// Name implements stt.Provider.
func (p *Provider) Name() string {
	if p.NameText == "" {
		return "mock/stt"
	}
	return p.NameText
}

// Transcribe records the call and returns the canned result.
func (p *Provider) Transcribe(ctx context.Context, wav []byte, language string) (string, error) {
	p.mu.Lock()
	cp := make([]byte, len(wav))
	copy(cp, wav)
	p.Calls = append(p.Calls, TranscribeCall{WAV: cp, Language: language})
	fn := p.TranscribeFn
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, wav, language)
	}
	if p.Err != nil {
		return "", p.Err
	}
	return p.Text, nil
}

// CallCount returns the number of Transcribe calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
