package schema

import (
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// FieldDecl declares one field of a structured type: a type tag plus
// optional constraints. Nested objects recurse through Fields.
type FieldDecl struct {
	Type        string               `yaml:"type"`
	Required    bool                 `yaml:"required"`
	Description string               `yaml:"description,omitempty"`
	Min         *float64             `yaml:"min,omitempty"`
	Max         *float64             `yaml:"max,omitempty"`
	MinLength   *int                 `yaml:"min_length,omitempty"`
	MaxLength   *int                 `yaml:"max_length,omitempty"`
	Pattern     string               `yaml:"pattern,omitempty"`
	Values      []any                `yaml:"values,omitempty"` // enum members
	Items       string               `yaml:"items,omitempty"`  // list element type tag
	Fields      map[string]FieldDecl `yaml:"fields,omitempty"` // nested object fields
}

// TypeDecl declares a named structured type.
type TypeDecl struct {
	Description string               `yaml:"description,omitempty"`
	Fields      map[string]FieldDecl `yaml:"fields"`
}

// canonical type tags accepted in declarations, with their aliases.
var typeAliases = map[string]string{
	"string":  "string",
	"str":     "string",
	"int":     "int",
	"integer": "int",
	"float":   "float",
	"number":  "float",
	"bool":    "bool",
	"boolean": "bool",
	"enum":    "enum",
	"list":    "list",
	"array":   "list",
	"object":  "object",
}

// scalar tags allowed as list element types.
var scalarTags = map[string]bool{"string": true, "int": true, "float": true, "bool": true}

// parseDecl decodes a declaration source and enforces the exactly-one-type rule.
func parseDecl(source string) (name string, decl TypeDecl, err error) {
	var doc map[string]TypeDecl
	if err := yaml.Unmarshal([]byte(source), &doc); err != nil {
		return "", TypeDecl{}, &CompileError{Reason: "declaration is not a mapping of type declarations", Err: err}
	}

	if len(doc) != 1 {
		return "", TypeDecl{}, &CompileError{
			Reason: fmt.Sprintf("declaration must resolve to exactly one named type, found %d", len(doc)),
		}
	}

	for n, d := range doc {
		name, decl = n, d
	}
	if name == "" {
		return "", TypeDecl{}, &CompileError{Reason: "type declaration has an empty name"}
	}
	if len(decl.Fields) == 0 {
		return "", TypeDecl{}, &CompileError{Reason: fmt.Sprintf("type %q declares no fields", name)}
	}

	if err := checkFields(name, decl.Fields); err != nil {
		return "", TypeDecl{}, err
	}
	return name, decl, nil
}

// checkFields validates field declarations recursively.
func checkFields(path string, fields map[string]FieldDecl) error {
	for _, fieldName := range sortedKeys(fields) {
		f := fields[fieldName]
		fieldPath := path + "." + fieldName

		canonical, ok := typeAliases[f.Type]
		if !ok {
			return &CompileError{Reason: fmt.Sprintf("field %s has unknown type tag %q", fieldPath, f.Type)}
		}

		switch canonical {
		case "enum":
			if len(f.Values) == 0 {
				return &CompileError{Reason: fmt.Sprintf("enum field %s declares no values", fieldPath)}
			}
		case "list":
			if f.Items == "" {
				return &CompileError{Reason: fmt.Sprintf("list field %s declares no item type", fieldPath)}
			}
			if itemTag, ok := typeAliases[f.Items]; !ok || !scalarTags[itemTag] {
				return &CompileError{Reason: fmt.Sprintf("list field %s has invalid item type %q", fieldPath, f.Items)}
			}
		case "object":
			if len(f.Fields) == 0 {
				return &CompileError{Reason: fmt.Sprintf("object field %s declares no fields", fieldPath)}
			}
			if err := checkFields(fieldPath, f.Fields); err != nil {
				return err
			}
		}

		if f.Pattern != "" {
			if _, err := regexp.Compile(f.Pattern); err != nil {
				return &CompileError{Reason: fmt.Sprintf("field %s has invalid pattern", fieldPath), Err: err}
			}
		}
	}
	return nil
}

// canonicalType resolves a declared tag to its canonical form. Callers must
// have run checkFields first.
func canonicalType(tag string) string { return typeAliases[tag] }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
