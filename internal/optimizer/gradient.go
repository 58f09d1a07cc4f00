package optimizer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/leadscout/internal/llm"
	"github.com/jonathan/leadscout/internal/prompts"
	"github.com/jonathan/leadscout/internal/types"
)

// sampleErrorCount is how many worst-scored leads feed the critique.
const sampleErrorCount = 5

// GenerateCritique asks the model for a natural-language diagnosis of the
// candidate's instruction-level weaknesses. A single call with no
// domain-level retry; failure propagates to the caller, which treats it as
// fatal for the run.
func GenerateCritique(ctx context.Context, client llm.Client, candidate *types.PromptCandidate, worst []types.EvaluationRecord) (string, error) {
	if candidate.Metrics == nil {
		return "", fmt.Errorf("cannot critique an unevaluated candidate")
	}

	template := prompts.MustGet("optimizer.json", "gradient-critique")
	prompt := prompts.Format(template, map[string]string{
		"InstructionText": candidate.Text,
		"MAE":             fmt.Sprintf("%.3f", candidate.Metrics.MAE),
		"RMSE":            fmt.Sprintf("%.3f", candidate.Metrics.RMSE),
		"Spearman":        fmt.Sprintf("%.3f", candidate.Metrics.Spearman),
		"KendallTau":      fmt.Sprintf("%.3f", candidate.Metrics.KendallTau),
		"WorstExamples":   formatWorstExamples(worst),
	})

	critique, err := client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", fmt.Errorf("critique generation failed: %w", err)
	}
	critique = strings.TrimSpace(critique)
	if critique == "" {
		return "", fmt.Errorf("critique generation returned empty text")
	}
	return critique, nil
}

// WorstSampleErrors returns up to n records sorted by absolute error
// descending. Used for candidates whose predictions are still in memory.
func WorstSampleErrors(records []types.EvaluationRecord, n int) []types.EvaluationRecord {
	sorted := make([]types.EvaluationRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AbsoluteError > sorted[j].AbsoluteError
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// formatWorstExamples renders the worst-scored leads for the critique prompt.
func formatWorstExamples(records []types.EvaluationRecord) string {
	if len(records) == 0 {
		return "(no per-lead errors available)"
	}
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("- lead %s: predicted %.1f, actual %d (error %.1f)",
			r.LeadID, r.PredictedRank, r.GroundTruthRank, r.AbsoluteError))
		if r.Justification != "" {
			sb.WriteString(fmt.Sprintf("; model said: %s", r.Justification))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
