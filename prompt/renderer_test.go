package prompt

import (
	"errors"
	"testing"
)

func TestRender_LiteralPassthrough(t *testing.T) {
	texts := []string{
		"",
		"plain text, no markers",
		"multi\nline\ntext with } and { braces",
	}
	for _, text := range texts {
		got, err := Render(text, map[string]any{"unused": 1}, nil)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", text, err)
		}
		if got != text {
			t.Errorf("literal text changed: got %q, want %q", got, text)
		}
	}
}

func TestRender_Variables(t *testing.T) {
	context := map[string]any{
		"input": "hello",
		"user":  map[string]any{"name": "Ada", "role": "admin"},
		"count": 3,
	}

	tests := []struct {
		template string
		want     string
	}{
		{"Repeat: {{input}}", "Repeat: hello"},
		{"Hi {{user.name}} ({{user.role}})", "Hi Ada (admin)"},
		{"n={{count}}", "n=3"},
		{"missing: [{{nope}}]", "missing: []"},
		{"missing path: [{{user.shoe.size}}]", "missing path: []"},
		{"spaced: {{ input }}", "spaced: hello"},
	}

	for _, tt := range tests {
		got, err := Render(tt.template, context, nil)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.template, err)
		}
		if got != tt.want {
			t.Errorf("%q: got %q, want %q", tt.template, got, tt.want)
		}
	}
}

func TestRender_Idempotent(t *testing.T) {
	template := "Hello {{name}}{{#if verbose}} (verbose){{/if}}"
	context := map[string]any{"name": "x", "verbose": true}

	first, err := Render(template, context, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Render(template, context, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("render is not idempotent: %q vs %q", first, second)
	}
}

func TestRender_Conditionals(t *testing.T) {
	template := "{{#if admin}}root{{else}}guest{{/if}}"

	tests := []struct {
		context map[string]any
		want    string
	}{
		{map[string]any{"admin": true}, "root"},
		{map[string]any{"admin": false}, "guest"},
		{map[string]any{}, "guest"},
		{nil, "guest"},
		{map[string]any{"admin": ""}, "guest"},
		{map[string]any{"admin": "yes"}, "root"},
	}

	for _, tt := range tests {
		got, err := Render(template, tt.context, nil)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", tt.context, err)
		}
		if got != tt.want {
			t.Errorf("context %v: got %q, want %q", tt.context, got, tt.want)
		}
	}
}

func TestRender_Includes(t *testing.T) {
	registry := MapRegistry{
		"tone":   "Be {{style}}.",
		"outer":  "{{> inner}} and more",
		"inner":  "innermost",
		"header": "== {{title}} ==",
	}

	got, err := Render("{{> header}}\n{{> tone}}", map[string]any{
		"style": "concise",
		"title": "Report",
	}, registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "== Report ==\nBe concise."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// Nested include resolves transitively.
	got, err = Render("{{> outer}}", nil, registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "innermost and more" {
		t.Errorf("nested include: got %q", got)
	}
}

func TestRender_MissingFragmentIsFatal(t *testing.T) {
	_, err := Render("{{> nowhere}}", nil, MapRegistry{})
	var resolution *ResolutionError
	if !errors.As(err, &resolution) {
		t.Fatalf("expected *ResolutionError, got %T: %v", err, err)
	}
	if resolution.Fragment != "nowhere" {
		t.Errorf("fragment: got %q", resolution.Fragment)
	}

	// Same failure when no registry is supplied at all.
	_, err = Render("{{> nowhere}}", nil, nil)
	if !errors.As(err, &resolution) {
		t.Fatalf("expected *ResolutionError with nil registry, got %T: %v", err, err)
	}
}

func TestRender_SyntaxErrors(t *testing.T) {
	templates := []string{
		"unterminated {{input",
		"{{#if }}x{{/if}}",
		"{{#if a b}}x{{/if}}",
		"{{/if}} without open",
		"{{#if a}} never closed",
		"{{>}}",
		"{{total nonsense!}}",
	}

	for _, tmpl := range templates {
		_, err := Render(tmpl, nil, nil)
		var syntax *SyntaxError
		if !errors.As(err, &syntax) {
			t.Errorf("%q: expected *SyntaxError, got %T: %v", tmpl, err, err)
		}
	}
}

func TestCheck(t *testing.T) {
	if err := Check("hello {{name}}{{#if a}}x{{/if}}"); err != nil {
		t.Fatalf("valid template rejected: %v", err)
	}
	if err := Check("{{#if a}} unclosed"); err == nil {
		t.Fatal("expected error for unclosed conditional")
	}
	// Includes are not resolved by Check; only the markup is validated.
	if err := Check("{{> some_fragment}}"); err != nil {
		t.Fatalf("include markup rejected: %v", err)
	}
}

func TestChainRegistry(t *testing.T) {
	chain := ChainRegistry{
		nil,
		MapRegistry{"a": "first"},
		MapRegistry{"a": "shadowed", "b": "second"},
	}

	if got, ok := chain.Fragment("a"); !ok || got != "first" {
		t.Errorf("fragment a: got %q, %t", got, ok)
	}
	if got, ok := chain.Fragment("b"); !ok || got != "second" {
		t.Errorf("fragment b: got %q, %t", got, ok)
	}
	if _, ok := chain.Fragment("c"); ok {
		t.Error("fragment c should not resolve")
	}
}
