// Package scoring provides the batch scoring agent: LLM-backed ranking and
// qualification of lead sets against a persona, with the missing-item retry
// and fallback protocol applied on the consumer side of the model call.
package scoring

import (
	"fmt"
	"strings"

	"github.com/jonathan/leadscout/internal/llm"
	"github.com/jonathan/leadscout/internal/prompts"
	"github.com/jonathan/leadscout/internal/types"
)

// RequiredPlaceholders is the fixed list of template placeholders every
// instruction text must contain verbatim. Variants generated by the optimizer
// are discarded if any of these is missing.
var RequiredPlaceholders = []string{
	"{{.PersonaContext}}",
	"{{.LeadCount}}",
	"{{.CompanyName}}",
	"{{.LeadList}}",
}

// HasRequiredPlaceholders reports whether text contains every required
// placeholder verbatim.
func HasRequiredPlaceholders(text string) bool {
	for _, p := range RequiredPlaceholders {
		if !strings.Contains(text, p) {
			return false
		}
	}
	return true
}

// Agent scores batches of leads with an LLM using a caller-supplied
// instruction template.
type Agent struct {
	client llm.Client
}

// NewAgent creates a scoring agent backed by the given LLM client.
func NewAgent(client llm.Client) *Agent {
	return &Agent{client: client}
}

// buildPrompt substitutes the template placeholders and appends the output
// contract for the requested mode.
func buildPrompt(instructionText, personaContext, company string, leads []types.Lead, contractKey string, retryNote bool) string {
	prompt := prompts.Format(instructionText, map[string]string{
		"PersonaContext": personaContext,
		"LeadCount":      fmt.Sprintf("%d", len(leads)),
		"CompanyName":    company,
		"LeadList":       formatLeadList(leads),
	})
	prompt += prompts.MustGet("scoring.json", contractKey)
	if retryNote {
		prompt += prompts.MustGet("scoring.json", "retry-missing-note")
	}
	return prompt
}

// formatLeadList renders leads as a numbered block for the prompt.
func formatLeadList(leads []types.Lead) string {
	var sb strings.Builder
	for i, lead := range leads {
		sb.WriteString(fmt.Sprintf("%d. [id: %s] %s, %s", i+1, lead.ID, lead.Name, lead.Title))
		if lead.Seniority != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", lead.Seniority))
		}
		if lead.Industry != "" {
			sb.WriteString(fmt.Sprintf(", industry: %s", lead.Industry))
		}
		if lead.Notes != "" {
			sb.WriteString(fmt.Sprintf("\n   notes: %s", lead.Notes))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// missingLeads returns the leads whose IDs are absent from seen.
func missingLeads(leads []types.Lead, seen map[string]bool) []types.Lead {
	var missing []types.Lead
	for _, lead := range leads {
		if !seen[lead.ID] {
			missing = append(missing, lead)
		}
	}
	return missing
}

// leadIDSet builds the set of input lead IDs for schema filtering.
func leadIDSet(leads []types.Lead) map[string]bool {
	ids := make(map[string]bool, len(leads))
	for _, lead := range leads {
		ids[lead.ID] = true
	}
	return ids
}
