package definition

import "fmt"

// DefaultName is assigned when a document omits the name metadata field.
// Lint reports the omission as an error.
const DefaultName = "Unknown Agent"

// Section labels recognized by the parser after normalization (lowercase,
// spaces replaced by underscores).
const (
	SectionSystemPrompt   = "system_prompt"
	SectionUserPrompt     = "user_prompt"
	SectionOutputSchema   = "output_schema"
	SectionContextBuilder = "context_builder"
)

// EvolutionEntry records one step of an agent's prompt evolution history.
type EvolutionEntry struct {
	Version int    `yaml:"version"`
	Date    string `yaml:"date"`
	Notes   string `yaml:"notes"`
}

// Section is an opaque, unrecognized document section preserved for
// forward compatibility.
type Section struct {
	Label string // original human-readable marker label
	Tag   string // fence content-type tag, empty if the body was not fenced
	Body  string
}

// Definition is the parsed, immutable representation of one agent document.
// Treat all fields as read-only once Parse returns.
type Definition struct {
	// Name identifies the agent. Always non-empty for a parsed definition.
	Name string
	// Description briefly explains what the agent does.
	Description string
	// ModelID names the requested model. It is resolved against a provider
	// registry at execution time, never at parse time.
	ModelID string
	// Temperature is the sampling temperature, defaulting to 0.7.
	Temperature float64

	// Metadata is the full decoded frontmatter mapping, including the keys
	// mirrored into the typed fields above.
	Metadata map[string]any
	// Evolution is the ordered version history from the evolution_history key.
	Evolution []EvolutionEntry

	// SystemPromptTemplate and UserPromptTemplate hold the raw template text.
	// At least one of them is non-empty for a parsed definition.
	SystemPromptTemplate string
	UserPromptTemplate   string
	// SystemPromptTag and UserPromptTag carry the fence content-type tag of
	// the respective section, if any.
	SystemPromptTag string
	UserPromptTag   string

	// OutputSchemaSource is the raw schema declaration, empty when the agent
	// returns free text. OutputSchemaTag is its fence tag.
	OutputSchemaSource string
	OutputSchemaTag    string

	// ContextBuilderSource is preserved verbatim for callers that assemble
	// execution context outside this library.
	ContextBuilderSource string

	// Extra holds sections with unrecognized labels, keyed by normalized label.
	Extra map[string]Section

	// Warnings collects non-fatal parse diagnostics such as duplicate
	// section markers. Surfaced to the caller, never raised.
	Warnings []string

	hash string
}

// HasSchema reports whether the definition declares a structured output schema.
func (d *Definition) HasSchema() bool { return d.OutputSchemaSource != "" }

// Hash returns the content hash of the raw document this definition was
// parsed from. Suitable as a cache key.
func (d *Definition) Hash() string { return d.hash }

// LatestVersion returns the highest version number in the evolution history,
// or 1 when no history is recorded.
func (d *Definition) LatestVersion() int {
	latest := 1
	for _, e := range d.Evolution {
		if e.Version > latest {
			latest = e.Version
		}
	}
	return latest
}

// Explain returns a one-line human readable summary of the agent.
func (d *Definition) Explain() string {
	s := d.Name
	if v := d.LatestVersion(); v > 1 {
		s += fmt.Sprintf(" (v%d)", v)
	}
	if d.Description != "" {
		s += ": " + d.Description
	}
	return s
}
