package definition

import (
	"fmt"

	"github.com/hupe1980/agentdoc/prompt"
	"github.com/hupe1980/agentdoc/schema"
)

// Severity grades a lint finding.
type Severity string

const (
	// SeverityError marks findings that make the definition unusable.
	SeverityError Severity = "error"
	// SeverityWarning marks findings worth fixing but not blocking.
	SeverityWarning Severity = "warning"
)

// Finding is a single lint result.
type Finding struct {
	Severity Severity
	Field    string
	Message  string
}

// String renders the finding for display.
func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Field, f.Message)
}

// Lint inspects a parsed definition beyond what Parse enforces and returns
// every finding at once. Parse is deliberately permissive so that a document
// can be loaded, inspected and explained even when incomplete; Lint is the
// strict layer run before a definition is registered for execution.
func Lint(def *Definition) []Finding {
	var findings []Finding

	if def.Name == "" || def.Name == DefaultName {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Field:    "name",
			Message:  "agent name is missing",
		})
	}
	if def.Description == "" {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Field:    "description",
			Message:  "description is empty",
		})
	}
	if def.ModelID == "" {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Field:    "model",
			Message:  "no model configured",
		})
	}
	if def.Temperature < 0 || def.Temperature > 2 {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Field:    "temperature",
			Message:  fmt.Sprintf("temperature %v outside the range [0, 2]", def.Temperature),
		})
	}

	if def.SystemPromptTemplate != "" {
		if err := prompt.Check(def.SystemPromptTemplate); err != nil {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Field:    "system_prompt",
				Message:  err.Error(),
			})
		}
	}
	if def.UserPromptTemplate != "" {
		if err := prompt.Check(def.UserPromptTemplate); err != nil {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Field:    "user_prompt",
				Message:  err.Error(),
			})
		}
	}

	if def.HasSchema() {
		if _, err := schema.Compile(def.OutputSchemaSource); err != nil {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Field:    "output_schema",
				Message:  err.Error(),
			})
		}
	}

	for _, w := range def.Warnings {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Field:    "document",
			Message:  w,
		})
	}

	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
