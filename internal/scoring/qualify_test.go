package scoring

import (
	"context"
	"fmt"
	"testing"

	"github.com/jonathan/leadscout/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualifyLeads_HappyPath(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return `[
				{"lead_id": "lead_1", "qualified": true, "justification": "owns budget"},
				{"lead_id": "lead_2", "qualified": false, "justification": "junior role"}
			]`, nil
		},
	}

	agent := NewAgent(client)
	decisions, err := agent.QualifyLeads(context.Background(), testInstructions, "persona", "Acme", makeLeads(2))
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.True(t, decisions[0].Qualified)
	assert.False(t, decisions[1].Qualified)
}

func TestQualifyLeads_ConservativeFallback(t *testing.T) {
	// Batch of 10: first response covers 8, retry adds 1 more. The last lead
	// must come back as not qualified, never true.
	calls := 0
	client := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			calls++
			if calls == 1 {
				out := "["
				for i := 1; i <= 8; i++ {
					if i > 1 {
						out += ","
					}
					out += fmt.Sprintf(`{"lead_id": "lead_%d", "qualified": true}`, i)
				}
				return out + "]", nil
			}
			return `[{"lead_id": "lead_9", "qualified": true}]`, nil
		},
	}

	agent := NewAgent(client)
	decisions, err := agent.QualifyLeads(context.Background(), testInstructions, "persona", "Acme", makeLeads(10))
	require.NoError(t, err)
	require.Len(t, decisions, 10)

	byID := make(map[string]bool, len(decisions))
	for _, d := range decisions {
		byID[d.LeadID] = d.Qualified
	}
	qualified, present := byID["lead_10"]
	require.True(t, present, "every input lead must get a decision")
	assert.False(t, qualified)
}

func TestQualifyLeads_RetryResultsMerged(t *testing.T) {
	calls := 0
	client := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			calls++
			if calls == 1 {
				return `[{"lead_id": "lead_1", "qualified": true}]`, nil
			}
			return `[{"lead_id": "lead_2", "qualified": true, "justification": "retry"}]`, nil
		},
	}

	agent := NewAgent(client)
	decisions, err := agent.QualifyLeads(context.Background(), testInstructions, "persona", "Acme", makeLeads(2))
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, 2, calls)
	for _, d := range decisions {
		assert.True(t, d.Qualified)
	}
}

func TestQualifyLeads_FullCoverageSkipsRetry(t *testing.T) {
	calls := 0
	client := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			calls++
			return `[
				{"lead_id": "lead_1", "qualified": true},
				{"lead_id": "lead_2", "qualified": false}
			]`, nil
		},
	}

	agent := NewAgent(client)
	_, err := agent.QualifyLeads(context.Background(), testInstructions, "persona", "Acme", makeLeads(2))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
