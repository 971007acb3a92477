package ai

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options carries the per-call generation parameters. JSONOutput asks the
// provider for machine-parseable JSON; the shape is not enforced here.
type Options struct {
	MaxTokens   int
	Temperature float32
	JSONOutput  bool
}

// Provider is a single request/response exchange against a model backend.
// Implementations surface provider failures as errors, never as empty text.
// Configured reports whether the backend has the credentials and model name
// it needs, so callers can reject work before touching it.
type Provider interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
	Configured() bool
}
