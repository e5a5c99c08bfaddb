// Package schema compiles embedded output-schema declarations into reusable
// validators and applies them to raw model output.
//
// Declarations are data, not code: a YAML document naming exactly one
// structured type with per-field type tags and constraints. Only type, field
// and constraint declarations are expressible; there is no way to declare
// computation, imports or I/O, which keeps untrusted documents from gaining
// any capability through their schema section. This restriction is a
// security boundary, not a convenience.
//
// Validation enumerates every failing field rather than stopping at the
// first problem. Model output fails validation routinely during prompt
// iteration, and per-field diagnostics are what make that loop workable.
package schema
