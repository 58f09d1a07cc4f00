package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/leadscout/internal/observability"
	"github.com/jonathan/leadscout/internal/scoring"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank a single company's leads against a persona",
	Long:  `Reads leads from a JSON file and ranks them best-first within their company. All leads must belong to one company; ranks are never comparable across companies.`,
	RunE:  runRank,
}

var (
	rankInput    string
	rankCompany  string
	rankPersona  string
	rankPromptID string
	rankJSON     bool
)

func init() {
	rankCmd.Flags().StringVarP(&rankInput, "input", "i", "", "Path to a JSON file with an array of leads (required)")
	rankCmd.Flags().StringVarP(&rankCompany, "company", "c", "", "Company the leads belong to (required)")
	rankCmd.Flags().StringVar(&rankPersona, "persona", "", "Persona name (optional, defaults to the oldest persona)")
	rankCmd.Flags().StringVar(&rankPromptID, "prompt", "", "UUID of a stored instruction prompt (optional, defaults to the built-in seed)")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "Print raw JSON instead of formatted output")
	_ = rankCmd.MarkFlagRequired("input")
	_ = rankCmd.MarkFlagRequired("company")

	rootCmd.AddCommand(rankCmd)
}

func runRank(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	leads, err := loadLeadsFile(rankInput)
	if err != nil {
		return err
	}
	for _, lead := range leads {
		if lead.Company != "" && lead.Company != rankCompany {
			return fmt.Errorf("lead %s belongs to %q, not %q", lead.ID, lead.Company, rankCompany)
		}
	}

	database, client, err := connectScoring(ctx)
	if err != nil {
		return err
	}
	defer database.Close()
	defer func() { _ = client.Close() }()

	persona, err := loadPersona(ctx, database, rankPersona)
	if err != nil {
		return err
	}
	instructions, err := resolveInstructionText(ctx, database, rankPromptID, "seed-ranking-instructions")
	if err != nil {
		return err
	}

	agent := scoring.NewAgent(client)
	rankings, err := agent.RankLeads(ctx, instructions, persona.Description, rankCompany, leads)
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].PredictedRank < rankings[j].PredictedRank
	})

	if rankJSON {
		return json.NewEncoder(os.Stdout).Encode(rankings)
	}
	observability.NewPrinter(os.Stdout).PrintRankings(rankings)
	if len(rankings) < len(leads) {
		fmt.Printf("\n%d of %d leads could not be ranked\n", len(leads)-len(rankings), len(leads))
	}
	return nil
}
