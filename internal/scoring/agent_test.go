package scoring

import (
	"context"
	"fmt"

	"github.com/jonathan/leadscout/internal/llm"
	"github.com/jonathan/leadscout/internal/types"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "[]", nil
}

func (m *MockLLMClient) GetModel(_ llm.ModelTier) string { return "mock-model" }

func (m *MockLLMClient) Close() error { return nil }

// makeLeads builds n leads with ids lead_1..lead_n.
func makeLeads(n int) []types.Lead {
	leads := make([]types.Lead, n)
	for i := range leads {
		leads[i] = types.Lead{
			ID:      fmt.Sprintf("lead_%d", i+1),
			Name:    fmt.Sprintf("Person %d", i+1),
			Title:   "VP of Engineering",
			Company: "Acme",
		}
	}
	return leads
}

const testInstructions = "Persona: {{.PersonaContext}}\nCount: {{.LeadCount}}\nCompany: {{.CompanyName}}\nLeads:\n{{.LeadList}}"
