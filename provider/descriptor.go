package provider

// Descriptor is a static registry entry for one model: identity, per-token
// pricing, fallback relationships and capability flags. Registries are
// supplied at configuration time; nothing in this package hardcodes which
// models exist.
type Descriptor struct {
	// ModelID is the full model identifier, e.g. "anthropic/claude-sonnet-4.5".
	ModelID string `yaml:"model_id"`
	// Name is a human readable display name.
	Name string `yaml:"name,omitempty"`
	// Description briefly characterizes the model.
	Description string `yaml:"description,omitempty"`

	// InputPerMillionUSD and OutputPerMillionUSD price one million tokens.
	InputPerMillionUSD  float64 `yaml:"input_per_million_usd"`
	OutputPerMillionUSD float64 `yaml:"output_per_million_usd"`

	// Fallbacks is the ordered chain of alternate model identifiers
	// attempted after this model's retries are exhausted.
	Fallbacks []string `yaml:"fallbacks,omitempty"`

	// Capability flags.
	SupportsStructuredOutput bool `yaml:"supports_structured_output"`
	SupportsPromptCaching    bool `yaml:"supports_prompt_caching"`

	// RequestsPerMinute caps dispatch attempts against this model.
	// Zero means unlimited.
	RequestsPerMinute int `yaml:"requests_per_minute,omitempty"`
}

// Cost deterministically computes the price of a call from this descriptor's
// pricing table and the reported usage.
func (d Descriptor) Cost(usage TokenUsage) float64 {
	inputCost := float64(usage.InputTokens) / 1_000_000 * d.InputPerMillionUSD
	outputCost := float64(usage.OutputTokens) / 1_000_000 * d.OutputPerMillionUSD
	return inputCost + outputCost
}

// DefaultDescriptors returns a convenience registry seed covering common
// models with their published per-million-token pricing and conservative
// fallback chains. Production deployments typically supply their own table.
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		{
			ModelID:                  "anthropic/claude-opus-4.1",
			Name:                     "Claude Opus 4.1",
			Description:              "Most capable Claude model for complex reasoning",
			InputPerMillionUSD:       15.0,
			OutputPerMillionUSD:      75.0,
			Fallbacks:                []string{"anthropic/claude-sonnet-4.5"},
			SupportsStructuredOutput: true,
			SupportsPromptCaching:    true,
		},
		{
			ModelID:                  "anthropic/claude-sonnet-4.5",
			Name:                     "Claude Sonnet 4.5",
			Description:              "Excellent default for agent operations",
			InputPerMillionUSD:       3.0,
			OutputPerMillionUSD:      15.0,
			Fallbacks:                []string{"anthropic/claude-3.5-haiku", "openai/gpt-5"},
			SupportsStructuredOutput: true,
			SupportsPromptCaching:    true,
		},
		{
			ModelID:                  "anthropic/claude-3.5-haiku",
			Name:                     "Claude 3.5 Haiku",
			Description:              "Fast, efficient Claude for simple tasks",
			InputPerMillionUSD:       1.0,
			OutputPerMillionUSD:      5.0,
			Fallbacks:                []string{"openai/gpt-5-mini"},
			SupportsStructuredOutput: true,
			SupportsPromptCaching:    true,
		},
		{
			ModelID:                  "openai/gpt-5",
			Name:                     "GPT-5",
			Description:              "Advanced reasoning with a large context window",
			InputPerMillionUSD:       1.25,
			OutputPerMillionUSD:      10.0,
			Fallbacks:                []string{"anthropic/claude-sonnet-4.5", "openai/gpt-5-mini"},
			SupportsStructuredOutput: true,
		},
		{
			ModelID:                  "openai/gpt-5-mini",
			Name:                     "GPT-5 Mini",
			Description:              "Fast, cost-effective for most tasks",
			InputPerMillionUSD:       0.15,
			OutputPerMillionUSD:      0.6,
			Fallbacks:                []string{"anthropic/claude-3.5-haiku"},
			SupportsStructuredOutput: true,
		},
	}
}
