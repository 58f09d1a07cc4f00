package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jonathan/leadscout/internal/llm"
	"github.com/jonathan/leadscout/internal/types"
)

// rankEntry is one element of the LLM ranking response.
type rankEntry struct {
	LeadID        string  `json:"lead_id"`
	Rank          float64 `json:"rank"`
	Justification string  `json:"justification"`
}

// RankLeads ranks the given leads (all from one company) against the persona
// using the supplied instruction text. The response protocol:
// entries for unknown lead IDs are discarded, leads missing from the first
// response are retried once in an isolated call, retry results are merged
// with first-valid-wins, and leads still missing after the retry are omitted
// from the result. A rank is never invented.
func (a *Agent) RankLeads(ctx context.Context, instructionText, personaContext, company string, leads []types.Lead) ([]types.LeadRanking, error) {
	if len(leads) == 0 {
		return nil, fmt.Errorf("no leads to rank")
	}

	rankings, err := a.rankOnce(ctx, instructionText, personaContext, company, leads, false)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rankings))
	for _, r := range rankings {
		seen[r.LeadID] = true
	}

	missing := missingLeads(leads, seen)
	if len(missing) > 0 {
		retried, err := a.rankOnce(ctx, instructionText, personaContext, company, missing, true)
		if err != nil {
			log.Printf("rank retry for %d missing leads failed: %v", len(missing), err)
		} else {
			// First-valid-wins: retry entries only fill gaps.
			for _, r := range retried {
				if !seen[r.LeadID] {
					rankings = append(rankings, r)
					seen[r.LeadID] = true
				}
			}
		}
	}

	if stillMissing := missingLeads(leads, seen); len(stillMissing) > 0 {
		ids := make([]string, len(stillMissing))
		for i, lead := range stillMissing {
			ids[i] = lead.ID
		}
		log.Printf("ranking omitted %d of %d leads after retry: %v", len(stillMissing), len(leads), ids)
	}

	return rankings, nil
}

// rankOnce performs a single ranking call and applies schema filtering.
func (a *Agent) rankOnce(ctx context.Context, instructionText, personaContext, company string, leads []types.Lead, isRetry bool) ([]types.LeadRanking, error) {
	prompt := buildPrompt(instructionText, personaContext, company, leads, "rank-output-contract", isRetry)

	response, err := a.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("ranking call failed: %w", err)
	}

	items, err := validItems(llm.CleanJSONBlock(response), rankItemSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ranking response: %w", err)
	}

	inputIDs := leadIDSet(leads)
	rankings := make([]types.LeadRanking, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		var entry rankEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		// Discard entries for leads that were not in the input set, and
		// duplicate entries for the same lead.
		if !inputIDs[entry.LeadID] || seen[entry.LeadID] {
			continue
		}
		seen[entry.LeadID] = true
		rankings = append(rankings, types.LeadRanking{
			LeadID:        entry.LeadID,
			PredictedRank: entry.Rank,
			Justification: entry.Justification,
		})
	}
	return rankings, nil
}
