package provider

import "context"

// TokenUsage captures token counts for a single model call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns the combined token count.
func (u TokenUsage) Total() int { return u.InputTokens + u.OutputTokens }

// Add returns the element-wise sum of two usages.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// Request is the normalized input for one model call: fully rendered prompt
// strings plus generation parameters. Providers receive no templates and no
// document structure.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int64
	// SchemaJSON, when non-nil, asks the provider for output conforming to
	// this JSON Schema document. Only meaningful for models whose descriptor
	// advertises structured-output support.
	SchemaJSON []byte
}

// Response is the raw outcome of one successful model call.
type Response struct {
	Text  string
	Model string // model that actually served the request
	Usage TokenUsage
}

// Info describes a provider implementation.
type Info struct {
	Name   string `json:"name"`   // model identifier
	Vendor string `json:"vendor"` // "anthropic", "openai", "mock", etc.
}

// Provider is the minimal interface the router needs to drive generation.
// Implementations classify their failures as *TransientError or *FatalError
// so the router can decide between retrying and propagating.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the provider implementation.
	Info() Info
}
