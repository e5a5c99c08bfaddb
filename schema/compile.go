package schema

import (
	"encoding/json"

	"github.com/kaptinlin/jsonschema"

	"github.com/hupe1980/agentdoc/internal/util"
)

// Handle is a compiled, reusable validator for one agent's declared output
// shape. Compilation happens once per distinct schema source; the handle is
// safe for concurrent use once returned.
type Handle struct {
	typeName   string
	decl       TypeDecl
	compiled   *jsonschema.Schema
	schemaJSON []byte
	hash       string
}

// Compile parses a schema declaration and lowers it to a JSON Schema
// document compiled for validation. It fails with *CompileError if the
// declaration does not resolve to exactly one named structured type.
func Compile(source string) (*Handle, error) {
	name, decl, err := parseDecl(source)
	if err != nil {
		return nil, err
	}

	doc := lowerObject(decl.Fields, decl.Description)
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, &CompileError{Reason: "could not encode schema document", Err: err}
	}

	compiled, err := jsonschema.NewCompiler().Compile(raw)
	if err != nil {
		return nil, &CompileError{Reason: "schema document did not compile", Err: err}
	}

	return &Handle{
		typeName:   name,
		decl:       decl,
		compiled:   compiled,
		schemaJSON: raw,
		hash:       util.HashBytes([]byte(source)),
	}, nil
}

// TypeName returns the declared type name.
func (h *Handle) TypeName() string { return h.typeName }

// Hash returns the content hash of the schema source, suitable as a cache key.
func (h *Handle) Hash() string { return h.hash }

// SchemaJSON returns the lowered JSON Schema document. Providers with native
// structured-output support can pass it along with the request.
func (h *Handle) SchemaJSON() []byte { return h.schemaJSON }

// lowerObject converts field declarations into a JSON Schema object node.
func lowerObject(fields map[string]FieldDecl, description string) map[string]any {
	properties := map[string]any{}
	var required []string

	for _, name := range sortedKeys(fields) {
		f := fields[name]
		properties[name] = lowerField(f)
		if f.Required {
			required = append(required, name)
		}
	}

	node := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if description != "" {
		node["description"] = description
	}
	if len(required) > 0 {
		node["required"] = required
	}
	return node
}

// lowerField converts one field declaration into a JSON Schema node.
func lowerField(f FieldDecl) map[string]any {
	var node map[string]any

	switch canonicalType(f.Type) {
	case "string":
		node = map[string]any{"type": "string"}
		if f.MinLength != nil {
			node["minLength"] = *f.MinLength
		}
		if f.MaxLength != nil {
			node["maxLength"] = *f.MaxLength
		}
		if f.Pattern != "" {
			node["pattern"] = f.Pattern
		}
	case "int":
		node = map[string]any{"type": "integer"}
		addRange(node, f)
	case "float":
		node = map[string]any{"type": "number"}
		addRange(node, f)
	case "bool":
		node = map[string]any{"type": "boolean"}
	case "enum":
		node = map[string]any{"enum": f.Values}
	case "list":
		node = map[string]any{
			"type":  "array",
			"items": map[string]any{"type": jsonType(canonicalType(f.Items))},
		}
		if f.MinLength != nil {
			node["minItems"] = *f.MinLength
		}
		if f.MaxLength != nil {
			node["maxItems"] = *f.MaxLength
		}
	case "object":
		node = lowerObject(f.Fields, "")
	default:
		node = map[string]any{}
	}

	if f.Description != "" {
		node["description"] = f.Description
	}
	return node
}

func addRange(node map[string]any, f FieldDecl) {
	if f.Min != nil {
		node["minimum"] = *f.Min
	}
	if f.Max != nil {
		node["maximum"] = *f.Max
	}
}

func jsonType(canonical string) string {
	switch canonical {
	case "int":
		return "integer"
	case "float":
		return "number"
	case "bool":
		return "boolean"
	default:
		return "string"
	}
}
