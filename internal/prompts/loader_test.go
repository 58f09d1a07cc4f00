package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ExistingKey(t *testing.T) {
	prompt, err := Get("scoring.json", "seed-ranking-instructions")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.PersonaContext}}")
	assert.Contains(t, prompt, "{{.LeadCount}}")
	assert.Contains(t, prompt, "{{.CompanyName}}")
	assert.Contains(t, prompt, "{{.LeadList}}")
}

func TestGet_MissingKey(t *testing.T) {
	_, err := Get("scoring.json", "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGet_MissingFile(t *testing.T) {
	_, err := Get("nope.json", "anything")
	assert.Error(t, err)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("scoring.json", "does-not-exist")
	})
}

func TestFormat_ReplacesPlaceholders(t *testing.T) {
	result := Format("Hello {{.Name}}, you have {{.Count}} leads", map[string]string{
		"Name":  "analyst",
		"Count": "5",
	})
	assert.Equal(t, "Hello analyst, you have 5 leads", result)
}

func TestFormat_LeavesUnknownPlaceholders(t *testing.T) {
	result := Format("{{.Known}} and {{.Unknown}}", map[string]string{"Known": "x"})
	assert.Equal(t, "x and {{.Unknown}}", result)
}

func TestOptimizerTemplates_Present(t *testing.T) {
	critique := MustGet("optimizer.json", "gradient-critique")
	assert.Contains(t, critique, "{{.WorstExamples}}")
	assert.Contains(t, critique, "{{.KendallTau}}")

	variants := MustGet("optimizer.json", "generate-variants")
	assert.Contains(t, variants, "{{.VariantCount}}")
	assert.Contains(t, variants, "{{.RequiredPlaceholders}}")
	assert.True(t, strings.Contains(variants, "{{.Trajectory}}"))
}
