package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jonathan/leadscout/internal/llm"
	"github.com/jonathan/leadscout/internal/types"
)

// qualifyEntry is one element of the LLM qualification response.
type qualifyEntry struct {
	LeadID        string `json:"lead_id"`
	Qualified     bool   `json:"qualified"`
	Justification string `json:"justification"`
}

// QualifyLeads qualifies the given leads against the persona. The same
// response protocol as RankLeads applies, except the fallback polarity: a
// lead still missing after the retry is returned as not qualified rather
// than omitted. Every input lead gets exactly one decision.
func (a *Agent) QualifyLeads(ctx context.Context, instructionText, personaContext, company string, leads []types.Lead) ([]types.QualificationDecision, error) {
	if len(leads) == 0 {
		return nil, fmt.Errorf("no leads to qualify")
	}

	decisions, err := a.qualifyOnce(ctx, instructionText, personaContext, company, leads, false)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(decisions))
	for _, d := range decisions {
		seen[d.LeadID] = true
	}

	missing := missingLeads(leads, seen)
	if len(missing) > 0 {
		retried, err := a.qualifyOnce(ctx, instructionText, personaContext, company, missing, true)
		if err != nil {
			log.Printf("qualify retry for %d missing leads failed: %v", len(missing), err)
		} else {
			for _, d := range retried {
				if !seen[d.LeadID] {
					decisions = append(decisions, d)
					seen[d.LeadID] = true
				}
			}
		}
	}

	// Conservative fallback: anything still unanswered is not qualified.
	for _, lead := range missingLeads(leads, seen) {
		log.Printf("lead %s missing after retry, defaulting to not qualified", lead.ID)
		decisions = append(decisions, types.QualificationDecision{
			LeadID:        lead.ID,
			Qualified:     false,
			Justification: "No decision returned by the model; defaulted to not qualified.",
		})
	}

	return decisions, nil
}

// qualifyOnce performs a single qualification call and applies schema filtering.
func (a *Agent) qualifyOnce(ctx context.Context, instructionText, personaContext, company string, leads []types.Lead, isRetry bool) ([]types.QualificationDecision, error) {
	prompt := buildPrompt(instructionText, personaContext, company, leads, "qualify-output-contract", isRetry)

	response, err := a.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("qualification call failed: %w", err)
	}

	items, err := validItems(llm.CleanJSONBlock(response), qualifyItemSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qualification response: %w", err)
	}

	inputIDs := leadIDSet(leads)
	decisions := make([]types.QualificationDecision, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		var entry qualifyEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		if !inputIDs[entry.LeadID] || seen[entry.LeadID] {
			continue
		}
		seen[entry.LeadID] = true
		decisions = append(decisions, types.QualificationDecision{
			LeadID:        entry.LeadID,
			Qualified:     entry.Qualified,
			Justification: entry.Justification,
		})
	}
	return decisions, nil
}
