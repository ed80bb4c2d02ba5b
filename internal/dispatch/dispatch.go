// Package dispatch hands finished-call briefs to the downstream build
// pipeline. A brief summarises what the caller asked for; the pipeline turns
// it into actual project work after the call ends.
package dispatch

import "context"

// Job is the unit of work submitted after a call.
type Job struct {
	// Brief is the free-text summary assembled from the conversation.
	Brief string `json:"brief"`
	// Topic is the client's business niche, e.g. "ecommerce" or "fitness".
	Topic string `json:"topic"`
	// Kind is the type of page requested, e.g. "landing" or "product".
	Kind string `json:"kind"`
	// CallSID identifies the originating call.
	CallSID string `json:"call_sid,omitempty"`
	// Caller is the caller's phone number, when known.
	Caller string `json:"caller,omitempty"`
}

// Dispatcher submits jobs to the pipeline and returns a job ID.
type Dispatcher interface {
	Submit(ctx context.Context, job Job) (string, error)
}
