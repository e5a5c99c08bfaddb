package definition

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentdoc/internal/util"
)

// markerRe matches a section marker like "<!-- System Prompt -->" on its own line.
var markerRe = regexp.MustCompile(`^<!--\s*([A-Za-z0-9][A-Za-z0-9 _-]*?)\s*-->$`)

// schemaTags are the content-type tags accepted on the output schema section.
var schemaTags = map[string]bool{"": true, "schema": true, "yaml": true}

// Parse turns a raw agent definition document into a Definition.
//
// It fails with *MalformedError when the document is empty, the metadata
// block cannot be decoded as a mapping, a section marker or fenced block is
// unterminated, the schema section carries an unrecognized content tag, or
// the parsed result violates the definition invariants (a name plus at
// least one prompt section). Parsing the same bytes twice yields
// field-for-field identical definitions.
func Parse(data []byte) (*Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, malformed("empty document")
	}

	frontmatter, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{}
	if len(frontmatter) > 0 {
		if err := yaml.Unmarshal(frontmatter, &meta); err != nil {
			return nil, &MalformedError{Reason: "metadata block is not a mapping", Err: err}
		}
		if meta == nil {
			meta = map[string]any{}
		}
	}

	def := &Definition{
		Metadata: meta,
		Extra:    map[string]Section{},
		hash:     util.HashBytes(data),
	}

	if err := def.applyMetadata(meta); err != nil {
		return nil, err
	}
	if err := def.applySections(string(body)); err != nil {
		return nil, err
	}

	if def.Name == "" {
		// Missing name is a lint error, not a parse failure; mirror that by
		// assigning a placeholder so the definition invariant holds.
		def.Name = DefaultName
		def.warnf(`metadata field "name" is missing; using %q`, DefaultName)
	}
	if def.SystemPromptTemplate == "" && def.UserPromptTemplate == "" {
		return nil, malformed("document declares neither a system prompt nor a user prompt section")
	}

	return def, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Definition, error) { return Parse([]byte(s)) }

// splitFrontmatter splits the document into the YAML metadata block and the
// remaining body. A leading "---" fence must be terminated by a matching
// closing fence.
func splitFrontmatter(data []byte) (frontmatter, body []byte, err error) {
	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		// No metadata block; the whole document is body. Required metadata
		// invariants are checked later.
		return nil, data, nil
	}

	rest := data[bytes.IndexByte(data, '\n')+1:]
	for _, delim := range []string{"\n---\n", "\n---\r\n", "\r\n---\r\n", "\r\n---\n"} {
		if idx := bytes.Index(rest, []byte(delim)); idx != -1 {
			return rest[:idx], rest[idx+len(delim):], nil
		}
	}
	// Closing fence as final line without trailing newline.
	for _, delim := range []string{"\n---", "\r\n---"} {
		if bytes.HasSuffix(rest, []byte(delim)) {
			return rest[:len(rest)-len(delim)], nil, nil
		}
	}

	return nil, nil, malformed("unterminated metadata block")
}

// applyMetadata mirrors well-known frontmatter keys into typed fields.
func (d *Definition) applyMetadata(meta map[string]any) error {
	if v, ok := meta["name"]; ok {
		s, ok := v.(string)
		if !ok {
			return malformedf(`metadata field "name" must be a string, got %T`, v)
		}
		d.Name = strings.TrimSpace(s)
	}
	if v, ok := meta["description"].(string); ok {
		d.Description = strings.TrimSpace(v)
	}
	if v, ok := meta["model"].(string); ok {
		d.ModelID = strings.TrimSpace(v)
	}

	d.Temperature = 0.7
	if v, ok := meta["temperature"]; ok {
		switch t := v.(type) {
		case float64:
			d.Temperature = t
		case int:
			d.Temperature = float64(t)
		default:
			d.warnf("metadata field %q is not numeric; using default %.1f", "temperature", d.Temperature)
		}
	}

	if v, ok := meta["evolution_history"]; ok {
		raw, err := yaml.Marshal(v)
		if err == nil {
			var entries []EvolutionEntry
			if yaml.Unmarshal(raw, &entries) == nil {
				d.Evolution = entries
			}
		}
		if d.Evolution == nil {
			d.warnf("metadata field %q could not be decoded as a version history", "evolution_history")
		}
	}

	return nil
}

// applySections scans the post-frontmatter body for marker-introduced sections.
func (d *Definition) applySections(body string) error {
	lines := strings.Split(body, "\n")

	var (
		label   string
		buf     []string
		started bool
	)

	flush := func() error {
		if !started {
			return nil
		}
		return d.addSection(label, strings.Join(buf, "\n"))
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := markerRe.FindStringSubmatch(trimmed); m != nil {
			if err := flush(); err != nil {
				return err
			}
			label = m[1]
			buf = buf[:0]
			started = true
			continue
		}
		if strings.HasPrefix(trimmed, "<!--") && !strings.Contains(trimmed, "-->") {
			return malformedf("unterminated section marker: %s", util.Truncate(trimmed, 40))
		}
		if started {
			buf = append(buf, line)
		}
	}

	return flush()
}

// addSection records one parsed section, keeping the first occurrence when a
// label repeats and flagging the duplicate as a warning.
func (d *Definition) addSection(label, rawBody string) error {
	tag, content, err := stripFence(label, rawBody)
	if err != nil {
		return err
	}

	key := normalizeLabel(label)
	switch key {
	case SectionSystemPrompt:
		if d.SystemPromptTemplate != "" {
			d.warnf("duplicate %q section; keeping first occurrence", label)
			return nil
		}
		d.SystemPromptTemplate, d.SystemPromptTag = content, tag
	case SectionUserPrompt:
		if d.UserPromptTemplate != "" {
			d.warnf("duplicate %q section; keeping first occurrence", label)
			return nil
		}
		d.UserPromptTemplate, d.UserPromptTag = content, tag
	case SectionOutputSchema:
		if !schemaTags[tag] {
			return malformedf("unrecognized content tag %q on output schema section", tag)
		}
		if d.OutputSchemaSource != "" {
			d.warnf("duplicate %q section; keeping first occurrence", label)
			return nil
		}
		d.OutputSchemaSource, d.OutputSchemaTag = content, tag
	case SectionContextBuilder:
		if d.ContextBuilderSource != "" {
			d.warnf("duplicate %q section; keeping first occurrence", label)
			return nil
		}
		d.ContextBuilderSource = content
	default:
		if _, exists := d.Extra[key]; exists {
			d.warnf("duplicate %q section; keeping first occurrence", label)
			return nil
		}
		d.Extra[key] = Section{Label: label, Tag: tag, Body: content}
	}

	return nil
}

// stripFence removes a surrounding ``` fence from a section body, returning
// the content-type tag and the inner content. Bodies without a fence are
// returned trimmed with an empty tag.
func stripFence(label, body string) (tag, content string, err error) {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "```") {
		return "", trimmed, nil
	}

	lines := strings.Split(trimmed, "\n")
	tag = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(lines[0], "```")))

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "```" {
			return tag, strings.TrimRight(strings.Join(lines[1:i], "\n"), " \t\r\n"), nil
		}
	}

	return "", "", malformedf("unterminated fenced block in section %q", label)
}

func normalizeLabel(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
}

func (d *Definition) warnf(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}
