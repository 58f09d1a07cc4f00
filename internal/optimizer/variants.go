package optimizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/leadscout/internal/llm"
	"github.com/jonathan/leadscout/internal/prompts"
	"github.com/jonathan/leadscout/internal/scoring"
	"github.com/jonathan/leadscout/internal/types"
)

// recentTrajectoryCount is how many recent attempts are shown to the variant
// generator for context.
const recentTrajectoryCount = 5

// GenerateVariants produces up to count mutated instruction texts from the
// current best candidate and its critique. Variants missing any required
// placeholder are discarded, not repaired; the caller proceeds with however
// many survive. A failed generation call is fatal for the run.
func GenerateVariants(ctx context.Context, client llm.Client, bestText, critique string, trajectory []*types.PromptCandidate, count int) ([]string, error) {
	template := prompts.MustGet("optimizer.json", "generate-variants")
	prompt := prompts.Format(template, map[string]string{
		"InstructionText":      bestText,
		"Critique":             critique,
		"Trajectory":           formatTrajectory(trajectory),
		"VariantCount":         fmt.Sprintf("%d", count),
		"RequiredPlaceholders": strings.Join(scoring.RequiredPlaceholders, " "),
	})

	response, err := client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("variant generation failed: %w", err)
	}

	var texts []string
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(response)), &texts); err != nil {
		return nil, fmt.Errorf("failed to parse variant response: %w", err)
	}

	if len(texts) > count {
		texts = texts[:count]
	}
	return FilterValid(texts), nil
}

// FilterValid keeps only variants that contain every required template
// placeholder verbatim and are non-empty after trimming. Duplicates within
// the batch are dropped.
func FilterValid(texts []string) []string {
	seen := make(map[string]bool, len(texts))
	valid := make([]string, 0, len(texts))
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" || seen[text] {
			continue
		}
		if !scoring.HasRequiredPlaceholders(text) {
			continue
		}
		seen[text] = true
		valid = append(valid, text)
	}
	return valid
}

// formatTrajectory renders recent attempts, best first, for the variant
// prompt. Instruction texts are truncated; the generator needs the gist and
// the score, not the full text of every attempt.
func formatTrajectory(trajectory []*types.PromptCandidate) string {
	if len(trajectory) == 0 {
		return "(no earlier attempts)"
	}
	var sb strings.Builder
	for i, candidate := range trajectory {
		text := candidate.Text
		if len(text) > 160 {
			text = text[:160] + "..."
		}
		sb.WriteString(fmt.Sprintf("%d. tau=%.3f: %s\n", i+1, candidate.Metrics.KendallTau, text))
	}
	return sb.String()
}
