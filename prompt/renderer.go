package prompt

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// Rendered is the per-invocation pair of rendered prompt strings. It is owned
// by a single execution and must never be cached across differing context.
type Rendered struct {
	System string
	User   string
}

// identRe matches a variable reference: an identifier optionally followed by
// dotted path segments into nested mappings.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// funcMap exposes the helper functions the translated templates rely on.
var funcMap = template.FuncMap{
	"lookup": lookupPath,
	"value":  valuePath,
}

// Render renders template text against a context mapping, resolving fragment
// includes through the supplied registry. Passing a nil registry is allowed
// when the template contains no includes.
func Render(text string, context map[string]any, registry Registry) (string, error) {
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return text, nil
	}

	root, err := build(text, registry)
	if err != nil {
		return "", err
	}

	if context == nil {
		context = map[string]any{}
	}

	var buf bytes.Buffer
	if err := root.Execute(&buf, context); err != nil {
		return "", &SyntaxError{Detail: "template execution failed", Err: err}
	}
	return buf.String(), nil
}

// RenderPair renders a definition's system and user templates against the
// same context. Either template may be empty; the empty side renders empty.
func RenderPair(system, user string, context map[string]any, registry Registry) (*Rendered, error) {
	renderedSystem, err := Render(system, context, registry)
	if err != nil {
		return nil, err
	}
	renderedUser, err := Render(user, context, registry)
	if err != nil {
		return nil, err
	}
	return &Rendered{System: renderedSystem, User: renderedUser}, nil
}

// Check validates template markup without rendering it. Fragment existence
// is not checked because no registry is consulted.
func Check(text string) error {
	if !strings.Contains(text, "{{") {
		return nil
	}
	src, _, err := translate(text)
	if err != nil {
		return err
	}
	if _, err := template.New("check").Funcs(funcMap).Parse(src); err != nil {
		return &SyntaxError{Detail: "unbalanced or invalid block structure", Err: err}
	}
	return nil
}

// build translates the root template plus every transitively included
// fragment into a single template set.
func build(text string, registry Registry) (*template.Template, error) {
	src, includes, err := translate(text)
	if err != nil {
		return nil, err
	}

	root, err := template.New("root").Option("missingkey=default").Funcs(funcMap).Parse(src)
	if err != nil {
		return nil, &SyntaxError{Detail: "unbalanced or invalid block structure", Err: err}
	}

	seen := map[string]bool{}
	queue := includes
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true

		var fragment string
		if registry != nil {
			var ok bool
			fragment, ok = registry.Fragment(name)
			if !ok {
				return nil, &ResolutionError{Fragment: name}
			}
		} else {
			return nil, &ResolutionError{Fragment: name}
		}

		fragSrc, nested, err := translate(fragment)
		if err != nil {
			return nil, &SyntaxError{Detail: fmt.Sprintf("in fragment %q", name), Err: err}
		}
		if _, err := root.New(name).Parse(fragSrc); err != nil {
			return nil, &SyntaxError{Detail: fmt.Sprintf("in fragment %q", name), Err: err}
		}
		queue = append(queue, nested...)
	}

	return root, nil
}

// translate rewrites the document template dialect into text/template source
// and collects the names of included fragments.
func translate(text string) (string, []string, error) {
	var (
		out      strings.Builder
		includes []string
	)

	for {
		start := strings.Index(text, "{{")
		if start == -1 {
			out.WriteString(text)
			break
		}
		out.WriteString(text[:start])
		rest := text[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", nil, &SyntaxError{Detail: "unterminated {{ marker"}
		}
		token := strings.TrimSpace(rest[:end])
		text = rest[end+2:]

		switch {
		case strings.HasPrefix(token, "#if "):
			ref := strings.TrimSpace(strings.TrimPrefix(token, "#if "))
			if !identRe.MatchString(ref) {
				return "", nil, &SyntaxError{Detail: fmt.Sprintf("invalid condition %q", ref)}
			}
			fmt.Fprintf(&out, `{{if lookup . %q}}`, ref)
		case token == "else":
			out.WriteString("{{else}}")
		case token == "/if":
			out.WriteString("{{end}}")
		case strings.HasPrefix(token, ">"):
			name := strings.TrimSpace(strings.TrimPrefix(token, ">"))
			if name == "" {
				return "", nil, &SyntaxError{Detail: "include marker with empty fragment name"}
			}
			includes = append(includes, name)
			fmt.Fprintf(&out, `{{template %q .}}`, name)
		case identRe.MatchString(token):
			fmt.Fprintf(&out, `{{value . %q}}`, token)
		default:
			return "", nil, &SyntaxError{Detail: fmt.Sprintf("invalid template token %q", token)}
		}
	}

	return out.String(), includes, nil
}

// lookupPath resolves a dotted path inside nested mappings, returning nil for
// anything that does not resolve. Used for conditional truthiness.
func lookupPath(context map[string]any, path string) any {
	var current any = context
	for _, seg := range strings.Split(path, ".") {
		switch m := current.(type) {
		case map[string]any:
			current = m[seg]
		case map[any]any: // decoded YAML mappings may carry non-string keys
			current = m[seg]
		default:
			return nil
		}
	}
	return current
}

// valuePath renders a resolved variable as a string. Undefined variables
// render as empty values rather than failing the whole render.
func valuePath(context map[string]any, path string) string {
	v := lookupPath(context, path)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
