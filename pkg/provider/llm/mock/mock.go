// Package mock provides a test double for the llm package interfaces.
//
// Pre-populate Response (or Err) and inspect Calls after exercising the code
// under test:
//
//	p := &mock.Provider{NameText: "mock/test", Response: "hello"}
//	engine.Respond(ctx, ...)
//	if len(p.Calls) != 1 { ... }
package mock

import (
	"context"
	"sync"

	"github.com/executiveusa/synthia/pkg/provider/llm"
)

// Provider is a mock implementation of [llm.Provider].
type Provider struct {
	mu sync.Mutex

	// NameText is returned by Name. Defaults to "mock/mock".
	NameText string

	// Response is the completion content returned on success.
	Response string

	// Err, if non-nil, is returned by every Complete call.
	Err error

	// CompleteFn, if non-nil, overrides the canned Response/Err behaviour.
	CompleteFn func(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error)

	// Calls records every Complete invocation in order.
	Calls []llm.CompletionRequest
}

// Compile-time interface assertion.
var _ llm.Provider = (*Provider)(nil)

// Name implements llm.Provider.
func (p *Provider) Name() string {
	if p.NameText == "" {
		return "mock/mock"
	}
	return p.NameText
}

// Complete records the call and returns the canned result.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, req)
	fn := p.CompleteFn
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if p.Err != nil {
		return nil, p.Err
	}
	return &llm.Completion{Content: p.Response}, nil
}

// CallCount returns the number of Complete calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
