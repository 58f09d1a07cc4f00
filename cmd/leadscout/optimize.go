package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/leadscout/internal/config"
	"github.com/jonathan/leadscout/internal/dataset"
	"github.com/jonathan/leadscout/internal/db"
	"github.com/jonathan/leadscout/internal/evaluation"
	"github.com/jonathan/leadscout/internal/llm"
	"github.com/jonathan/leadscout/internal/observability"
	"github.com/jonathan/leadscout/internal/optimizer"
	"github.com/jonathan/leadscout/internal/scoring"
	"github.com/jonathan/leadscout/internal/types"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run a beam search over ranking instruction variants",
	Long: `Evaluates the starting prompt against the labeled dataset, then iteratively critiques it, generates mutated variants, and keeps the best scorers until improvement stalls or the iteration budget runs out.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runOptimize,
}

var (
	optConfigPath    string
	optSeedPromptID  string
	optMaxIterations int
	optVariants      int
	optBeamWidth     int
	optDatasetPath   string
	optPersona       string
	optAPIKey        string
	optDatabaseURL   string
	optConcurrency   int
	optVerbose       bool
)

func init() {
	optimizeCmd.Flags().StringVar(&optConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	optimizeCmd.Flags().StringVar(&optSeedPromptID, "seed-prompt", "", "UUID of the stored prompt to start from (required)")
	optimizeCmd.Flags().IntVar(&optMaxIterations, "max-iterations", 0, "Iteration budget (1-10)")
	optimizeCmd.Flags().IntVar(&optVariants, "variants", 0, "Variants generated per iteration (4-16)")
	optimizeCmd.Flags().IntVar(&optBeamWidth, "beam-width", 0, "Candidates kept per iteration (2-5)")
	optimizeCmd.Flags().StringVar(&optDatasetPath, "dataset", "", "Path to a ground-truth leads JSON file (optional, defaults to the database dataset)")
	optimizeCmd.Flags().StringVar(&optPersona, "persona", "", "Persona name (optional, defaults to the oldest persona)")
	optimizeCmd.Flags().IntVar(&optConcurrency, "concurrency", 0, "Bounded fan-out for scoring calls")
	optimizeCmd.Flags().BoolVarP(&optVerbose, "verbose", "v", false, "Print iteration progress and the final beam")
	optimizeCmd.Flags().StringVar(&optAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	optimizeCmd.Flags().StringVar(&optDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(cmd, optConfigPath)
	if err != nil {
		return err
	}

	if optSeedPromptID == "" {
		return fmt.Errorf("--seed-prompt is required")
	}
	seedID, err := uuid.Parse(optSeedPromptID)
	if err != nil {
		return fmt.Errorf("invalid --seed-prompt: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL is required (--db-url, config, or DATABASE_URL)")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key is required (--api-key, config, or GEMINI_API_KEY)")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer func() { _ = client.Close() }()

	ds, err := loadDataset(ctx, database, cfg.Dataset)
	if err != nil {
		return err
	}
	persona, err := loadPersona(ctx, database, cfg.Persona)
	if err != nil {
		return err
	}

	agent := scoring.NewAgent(client)
	harness := evaluation.New(agent, ds, persona.Description, cfg.Concurrency)

	printer := observability.NewPrinter(os.Stdout)
	var onProgress optimizer.ProgressFunc
	if cfg.Verbose {
		onProgress = printer.Progress
	}

	opt := optimizer.New(database, harness, client, cfg.Concurrency, onProgress)
	run, err := opt.Start(ctx, seedID, cfg.OptimizationConfig())
	if err != nil {
		return err
	}

	fmt.Printf("Optimization run %s started (%d leads, persona %q)\n", run.ID, ds.Size(), persona.Name)
	if err := run.Execute(ctx); err != nil {
		return fmt.Errorf("optimization run failed: %w", err)
	}

	result, err := database.GetOptimizationRun(ctx, run.ID)
	if err != nil {
		return err
	}
	printer.PrintRunSummary(result)

	if result != nil && result.BestPromptID != nil {
		best, err := database.GetPrompt(ctx, *result.BestPromptID)
		if err != nil {
			return err
		}
		if best != nil {
			printer.PrintMetrics("BEST PROMPT METRICS", best.Metrics)
			if cfg.Verbose {
				fmt.Printf("\n%s\n", best.Text)
			}
		}
	}

	return nil
}

// loadMergedConfig loads the optional config file, applies CLI overrides for
// explicitly set flags, and fills remaining gaps from the environment.
func loadMergedConfig(cmd *cobra.Command, path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	if cmd.Flags().Changed("max-iterations") {
		cfg.MaxIterations = optMaxIterations
	}
	if cmd.Flags().Changed("variants") {
		cfg.VariantsPerIteration = optVariants
	}
	if cmd.Flags().Changed("beam-width") {
		cfg.BeamWidth = optBeamWidth
	}
	if cmd.Flags().Changed("dataset") {
		cfg.Dataset = optDatasetPath
	}
	if cmd.Flags().Changed("persona") {
		cfg.Persona = optPersona
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = optConcurrency
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = optVerbose
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = optAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = optDatabaseURL
	}

	cfg.FromEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadDataset builds the evaluation dataset from a JSON file when a path is
// given, and from the database otherwise.
func loadDataset(ctx context.Context, database *db.DB, path string) (*dataset.Dataset, error) {
	if path == "" {
		return dataset.Load(ctx, database)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	var leads []types.GroundTruthLead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}
	return dataset.New(leads)
}

// loadPersona resolves the persona by name, or the default when unnamed.
func loadPersona(ctx context.Context, database *db.DB, name string) (*types.Persona, error) {
	var persona *types.Persona
	var err error
	if name != "" {
		persona, err = database.GetPersonaByName(ctx, name)
	} else {
		persona, err = database.GetDefaultPersona(ctx)
	}
	if err != nil {
		return nil, err
	}
	if persona == nil {
		if name != "" {
			return nil, fmt.Errorf("persona %q not found", name)
		}
		return nil, fmt.Errorf("no personas configured; seed the personas table first")
	}
	return persona, nil
}
