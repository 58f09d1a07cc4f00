package optimizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/leadscout/internal/llm"
	"github.com/jonathan/leadscout/internal/types"
)

func TestGenerateCritique_IncludesMetricsAndExamples(t *testing.T) {
	best := candidate("rank leads carefully", 0.65, 0.7, 2.5)
	worst := []types.EvaluationRecord{
		{LeadID: "a1", PredictedRank: 5, GroundTruthRank: 1, AbsoluteError: 4, Justification: "senior title"},
	}

	var seenPrompt string
	client := &MockLLMClient{
		GenerateContentFunc: func(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
			assert.Equal(t, llm.TierStandard, tier)
			seenPrompt = prompt
			return "The instructions overweight seniority.", nil
		},
	}

	critique, err := GenerateCritique(context.Background(), client, best, worst)
	require.NoError(t, err)
	assert.Equal(t, "The instructions overweight seniority.", critique)
	assert.Contains(t, seenPrompt, "rank leads carefully")
	assert.Contains(t, seenPrompt, "0.650")
	assert.Contains(t, seenPrompt, "lead a1")
	assert.Contains(t, seenPrompt, "senior title")
}

func TestGenerateCritique_UnevaluatedCandidate(t *testing.T) {
	_, err := GenerateCritique(context.Background(), &MockLLMClient{}, &types.PromptCandidate{Text: "x"}, nil)
	assert.Error(t, err)
}

func TestGenerateCritique_CallFailurePropagates(t *testing.T) {
	client := &MockLLMClient{
		GenerateContentFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	_, err := GenerateCritique(context.Background(), client, candidate("x", 0.5, 0.5, 1), nil)
	assert.Error(t, err)
}

func TestGenerateCritique_EmptyResponseIsError(t *testing.T) {
	client := &MockLLMClient{
		GenerateContentFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "   \n", nil
		},
	}
	_, err := GenerateCritique(context.Background(), client, candidate("x", 0.5, 0.5, 1), nil)
	assert.Error(t, err)
}

func TestWorstSampleErrors_SortsDescendingAndLimits(t *testing.T) {
	records := []types.EvaluationRecord{
		{LeadID: "small", AbsoluteError: 0.5},
		{LeadID: "big", AbsoluteError: 4.0},
		{LeadID: "mid", AbsoluteError: 2.0},
	}

	worst := WorstSampleErrors(records, 2)
	require.Len(t, worst, 2)
	assert.Equal(t, "big", worst[0].LeadID)
	assert.Equal(t, "mid", worst[1].LeadID)

	// Input order untouched.
	assert.Equal(t, "small", records[0].LeadID)
}

func TestFormatWorstExamples_Empty(t *testing.T) {
	assert.Contains(t, formatWorstExamples(nil), "no per-lead errors")
}
