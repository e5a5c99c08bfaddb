package schema

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

// codeFenceRe matches markdown code fences wrapping JSON output.
var codeFenceRe = regexp.MustCompile(`(?si)^` + "```" + `(?:json)?\s*(.*?)\s*` + "```" + `$`)

// StripCodeFences removes markdown code fences if the model wrapped its output.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return s
}

// ValidateJSON decodes raw model output text and validates it. Markdown code
// fences around the payload are tolerated. Output that is not a JSON object
// at all is reported as a *ValidationFailure rather than a decode panic,
// because malformed model output is an expected runtime condition.
func (h *Handle) ValidateJSON(raw string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &data); err != nil {
		return nil, &ValidationFailure{Problems: []Problem{
			{Field: "$", Message: "output is not a JSON object: " + err.Error()},
		}}
	}
	return h.Validate(data)
}

// Validate applies field-level type coercion and constraint checks to
// structured data, returning the coerced value or a *ValidationFailure
// enumerating every failing field.
func (h *Handle) Validate(data map[string]any) (map[string]any, error) {
	coerced := coerceObject(h.decl.Fields, data)

	var problems []Problem
	problems = append(problems, missingRequired("", h.decl.Fields, coerced)...)

	result := h.compiled.Validate(coerced)
	if !result.IsValid() {
		problems = append(problems, collectProblems(result.ToList())...)
	}

	if len(problems) > 0 {
		return nil, &ValidationFailure{Problems: dedupe(problems)}
	}
	return coerced, nil
}

// missingRequired reports every absent required field by name, recursing
// into nested objects that are present.
func missingRequired(prefix string, fields map[string]FieldDecl, data map[string]any) []Problem {
	var problems []Problem
	for _, name := range sortedKeys(fields) {
		f := fields[name]
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		value, present := data[name]
		if !present || value == nil {
			if f.Required {
				problems = append(problems, Problem{Field: path, Message: "required field is missing"})
			}
			continue
		}
		if canonicalType(f.Type) == "object" {
			if nested, ok := value.(map[string]any); ok {
				problems = append(problems, missingRequired(path, f.Fields, nested)...)
			}
		}
	}
	return problems
}

// collectProblems walks an evaluation list and extracts per-field leaf
// errors. Aggregate keywords are skipped: required misses are reported by
// missingRequired with exact field names, and properties/items entries only
// restate their children.
func collectProblems(list *jsonschema.List) []Problem {
	var problems []Problem
	var walk func(l jsonschema.List)
	walk = func(l jsonschema.List) {
		if !l.Valid {
			field := pointerToPath(l.InstanceLocation)
			for keyword, msg := range l.Errors {
				if keyword == "required" || keyword == "properties" || keyword == "items" {
					continue
				}
				if field == "" {
					continue
				}
				problems = append(problems, Problem{Field: field, Message: msg})
			}
		}
		for _, d := range l.Details {
			walk(d)
		}
	}
	if list != nil {
		walk(*list)
	}
	return problems
}

// pointerToPath converts a JSON pointer like /scores/0/value to scores.0.value.
func pointerToPath(ptr string) string {
	return strings.ReplaceAll(strings.TrimPrefix(ptr, "/"), "/", ".")
}

func dedupe(problems []Problem) []Problem {
	seen := map[Problem]bool{}
	out := problems[:0]
	for _, p := range problems {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// coerceObject returns a copy of data with declared fields coerced toward
// their declared types. Unknown keys pass through untouched; values that do
// not coerce are left as-is for the validator to report.
func coerceObject(fields map[string]FieldDecl, data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if f, ok := fields[k]; ok {
			out[k] = coerceValue(f, v)
		} else {
			out[k] = v
		}
	}
	return out
}

func coerceValue(f FieldDecl, v any) any {
	switch canonicalType(f.Type) {
	case "int":
		return coerceInt(v)
	case "float":
		return coerceFloat(v)
	case "bool":
		return coerceBool(v)
	case "list":
		items, ok := v.([]any)
		if !ok {
			return v
		}
		elem := FieldDecl{Type: f.Items}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = coerceValue(elem, item)
		}
		return out
	case "object":
		nested, ok := v.(map[string]any)
		if !ok {
			return v
		}
		return coerceObject(f.Fields, nested)
	default:
		return v
	}
}

func coerceInt(v any) any {
	switch t := v.(type) {
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n
		}
	case float64:
		if t == float64(int64(t)) {
			return int64(t)
		}
	}
	return v
}

func coerceFloat(v any) any {
	if s, ok := v.(string); ok {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n
		}
	}
	return v
}

func coerceBool(v any) any {
	if s, ok := v.(string); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return v
}
