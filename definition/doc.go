// Package definition parses agent definition documents into structured,
// immutable Definition values. A document is a hybrid format: a YAML
// frontmatter block carrying metadata, followed by named sections introduced
// by HTML comment markers (for example "System Prompt" or "Output Schema")
// whose bodies may be wrapped in fenced blocks carrying a content-type tag.
//
// Parsing is fully offline: model identifiers are not resolved against any
// provider registry here, so documents can be parsed and linted without
// network access or credentials.
package definition
