// Package llm defines the Provider interface for reasoning backends.
//
// A provider wraps a remote or local model API (e.g., OpenAI, Anthropic
// Claude, or an Ollama instance) behind one uniform completion call so the
// reasoning engine can try backends in fallback order without coupling to any
// specific SDK.
//
// Implementations must be safe for concurrent use and must propagate context
// cancellation promptly — a provider call is abandoned when its per-attempt
// timeout elapses or the call tears down.
package llm

import "context"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single message in a conversation history.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string
}

// Usage holds token accounting returned by the backend. Counts are in the
// model's native token unit and may differ between providers for the same
// text.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest carries everything the model needs to produce a reply.
// Messages must be non-empty.
type CompletionRequest struct {
	// Messages is the ordered conversation history. The last message is
	// typically from the "user" role and drives the response.
	Messages []Message

	// SystemPrompt is a high-priority instruction injected before the
	// conversation history. Providers without a dedicated system slot prepend
	// it as a "system"-role message.
	SystemPrompt string

	// MaxTokens caps completion length. Zero means the provider default.
	MaxTokens int

	// Temperature controls output randomness in [0.0, 2.0].
	Temperature float64
}

// Completion is the full (non-streaming) model reply.
type Completion struct {
	// Content is the text of the assistant's reply.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any reasoning backend.
type Provider interface {
	// Name identifies the backend as "provider/model" (e.g. "openai/gpt-4o-mini")
	// for logging and active-provider bookkeeping.
	Name() string

	// Complete sends req to the model and waits for the full response.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}
