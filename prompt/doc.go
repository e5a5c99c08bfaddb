// Package prompt renders prompt templates from agent definitions. The
// template dialect supports variable substitution ({{name}}, with dotted
// paths into nested mappings), conditional blocks ({{#if name}} ... {{else}}
// ... {{/if}}) and inclusion of named shared fragments ({{> fragment}})
// resolved through a caller-supplied Registry.
//
// Rendering is pure and idempotent: the same template and context always
// produce the same string, with no filesystem access and no ambient state.
// Undefined variables render as empty values; an unresolvable fragment is a
// fatal *ResolutionError, because silently dropping shared content such as
// grounding preambles is not acceptable.
package prompt
