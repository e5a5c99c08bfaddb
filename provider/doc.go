// Package provider routes model calls across configured generative-model
// endpoints. A Registry holds Descriptor entries (pricing, fallback
// chains, capability flags, optional request budgets) alongside the Provider
// implementations that serve them; the Router dispatches a request to the
// requested model with bounded exponential-backoff retries on transient
// failures, then walks the fallback chain, and computes the deterministic
// cost of whichever model actually served the request.
//
// Concrete adapters for the Anthropic Messages API and the OpenAI Chat
// Completions API live in the anthropic and openai subpackages. MockProvider
// supports tests and examples without network access.
package provider
