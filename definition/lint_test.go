package definition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint_CleanDefinition(t *testing.T) {
	def, err := ParseString(fullDocument)
	require.NoError(t, err)

	findings := Lint(def)
	assert.Empty(t, findings)
	assert.False(t, HasErrors(findings))
}

func TestLint_ReportsEveryProblemAtOnce(t *testing.T) {
	def, err := ParseString("---\ntemperature: 3.5\n---\n<!-- System Prompt -->\nhi {{#if x}}oops\n")
	require.NoError(t, err)

	findings := Lint(def)
	require.True(t, HasErrors(findings))

	fields := map[string]bool{}
	for _, f := range findings {
		fields[f.Field] = true
	}
	assert.True(t, fields["name"], "missing name should be reported")
	assert.True(t, fields["model"], "missing model should be reported")
	assert.True(t, fields["temperature"], "out-of-range temperature should be reported")
	assert.True(t, fields["system_prompt"], "unclosed conditional should be reported")
}

func TestLint_BrokenSchema(t *testing.T) {
	doc := "---\nname: X\nmodel: m\ndescription: d\n---\n" +
		"<!-- System Prompt -->\nhi\n" +
		"<!-- Output Schema -->\n```yaml\nT:\n  fields:\n    f:\n      type: wat\n```\n"
	def, err := ParseString(doc)
	require.NoError(t, err)

	findings := Lint(def)
	require.True(t, HasErrors(findings))

	var found bool
	for _, f := range findings {
		if f.Field == "output_schema" && f.Severity == SeverityError {
			found = true
		}
	}
	assert.True(t, found, "uncompilable schema should be an error finding")
}

func TestLint_WarningsCarryThrough(t *testing.T) {
	def, err := ParseString("---\nname: X\nmodel: m\ndescription: d\ntemperature: warm\n---\n<!-- System Prompt -->\nhi\n")
	require.NoError(t, err)

	findings := Lint(def)
	assert.False(t, HasErrors(findings))

	var warned bool
	for _, f := range findings {
		if f.Severity == SeverityWarning && f.Field == "document" {
			warned = true
		}
	}
	assert.True(t, warned, "parse warnings should surface as lint warnings")
}
