package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/leadscout/internal/db"
	"github.com/jonathan/leadscout/internal/llm"
	"github.com/jonathan/leadscout/internal/observability"
	"github.com/jonathan/leadscout/internal/prompts"
	"github.com/jonathan/leadscout/internal/scoring"
	"github.com/jonathan/leadscout/internal/types"
)

var qualifyCmd = &cobra.Command{
	Use:   "qualify",
	Short: "Qualify a batch of leads against a persona",
	Long:  `Reads leads from a JSON file, scores each company's batch in one model call, and prints a qualification decision per lead. Leads the model never covers default to not qualified.`,
	RunE:  runQualify,
}

var (
	qualifyInput    string
	qualifyPersona  string
	qualifyPromptID string
	qualifyJSON     bool
)

func init() {
	qualifyCmd.Flags().StringVarP(&qualifyInput, "input", "i", "", "Path to a JSON file with an array of leads (required)")
	qualifyCmd.Flags().StringVar(&qualifyPersona, "persona", "", "Persona name (optional, defaults to the oldest persona)")
	qualifyCmd.Flags().StringVar(&qualifyPromptID, "prompt", "", "UUID of a stored instruction prompt (optional, defaults to the built-in seed)")
	qualifyCmd.Flags().BoolVar(&qualifyJSON, "json", false, "Print raw JSON instead of formatted output")
	_ = qualifyCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(qualifyCmd)
}

func runQualify(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	leads, err := loadLeadsFile(qualifyInput)
	if err != nil {
		return err
	}

	database, client, err := connectScoring(ctx)
	if err != nil {
		return err
	}
	defer database.Close()
	defer func() { _ = client.Close() }()

	persona, err := loadPersona(ctx, database, qualifyPersona)
	if err != nil {
		return err
	}
	instructions, err := resolveInstructionText(ctx, database, qualifyPromptID, "seed-qualification-instructions")
	if err != nil {
		return err
	}

	agent := scoring.NewAgent(client)

	var decisions []types.QualificationDecision
	for _, group := range groupLeads(leads) {
		groupDecisions, err := agent.QualifyLeads(ctx, instructions, persona.Description, group.company, group.leads)
		if err != nil {
			return fmt.Errorf("qualification failed for %s: %w", group.company, err)
		}
		decisions = append(decisions, groupDecisions...)
	}

	if qualifyJSON {
		return json.NewEncoder(os.Stdout).Encode(decisions)
	}
	observability.NewPrinter(os.Stdout).PrintQualifications(decisions)
	return nil
}

// connectScoring opens the database and model client from the environment.
func connectScoring(ctx context.Context) (*db.DB, llm.Client, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), apiKey)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return database, client, nil
}

// loadLeadsFile reads a JSON array of leads.
func loadLeadsFile(path string) ([]types.Lead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read leads file: %w", err)
	}
	var leads []types.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("failed to parse leads file: %w", err)
	}
	if len(leads) == 0 {
		return nil, fmt.Errorf("leads file %s is empty", path)
	}
	return leads, nil
}

// resolveInstructionText loads a stored prompt's text, or the built-in seed
// when no prompt id is given.
func resolveInstructionText(ctx context.Context, database *db.DB, promptID, seedKey string) (string, error) {
	if promptID == "" {
		return prompts.MustGet("scoring.json", seedKey), nil
	}
	id, err := uuid.Parse(promptID)
	if err != nil {
		return "", fmt.Errorf("invalid --prompt: %w", err)
	}
	prompt, err := database.GetPrompt(ctx, id)
	if err != nil {
		return "", err
	}
	if prompt == nil {
		return "", fmt.Errorf("prompt %s not found", id)
	}
	return prompt.Text, nil
}

type leadGroup struct {
	company string
	leads   []types.Lead
}

// groupLeads splits leads into per-company groups, preserving first-seen
// company order.
func groupLeads(leads []types.Lead) []leadGroup {
	index := make(map[string]int)
	var groups []leadGroup
	for _, lead := range leads {
		i, ok := index[lead.Company]
		if !ok {
			i = len(groups)
			index[lead.Company] = i
			groups = append(groups, leadGroup{company: lead.Company})
		}
		groups[i].leads = append(groups[i].leads, lead)
	}
	return groups
}
