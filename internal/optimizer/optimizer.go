package optimizer

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/leadscout/internal/db"
	"github.com/jonathan/leadscout/internal/evaluation"
	"github.com/jonathan/leadscout/internal/llm"
	"github.com/jonathan/leadscout/internal/types"
)

const (
	// convergenceThreshold is the minimum Kendall's Tau improvement an
	// iteration must deliver to keep the search going.
	convergenceThreshold = 0.01
	// minIterationsBeforeConvergence is the number of leading iterations
	// exempt from the convergence check.
	minIterationsBeforeConvergence = 2
)

// Store is the persistence dependency of the optimizer. *db.DB satisfies it.
type Store interface {
	GetPrompt(ctx context.Context, id uuid.UUID) (*types.PromptCandidate, error)
	CreatePrompt(ctx context.Context, candidate *types.PromptCandidate) (uuid.UUID, error)
	UpdatePromptMetrics(ctx context.Context, id uuid.UUID, m *types.Metrics) error
	CreateOptimizationRun(ctx context.Context, startingPromptID uuid.UUID, cfg types.OptimizationConfig) (uuid.UUID, error)
	CompleteOptimizationRun(ctx context.Context, runID uuid.UUID, result db.RunResult) error
	FailOptimizationRun(ctx context.Context, runID uuid.UUID, message string) error
	SaveEvaluationRecords(ctx context.Context, promptID uuid.UUID, records []types.EvaluationRecord) error
	GetWorstEvaluationRecords(ctx context.Context, promptID uuid.UUID, limit int) ([]types.EvaluationRecord, error)
}

// Evaluator scores instruction texts against the labeled dataset.
// *evaluation.Harness satisfies it.
type Evaluator interface {
	Evaluate(ctx context.Context, instructionText string) (*evaluation.Result, error)
	BuildRecords(result *evaluation.Result) []types.EvaluationRecord
}

// ProgressFunc receives human-readable progress updates during a run.
type ProgressFunc func(stage, message string)

// Optimizer drives beam search runs. Iterations are strictly sequential;
// only variant evaluation within an iteration fans out.
type Optimizer struct {
	store       Store
	evaluator   Evaluator
	client      llm.Client
	concurrency int
	onProgress  ProgressFunc
}

// New creates an optimizer with explicit dependencies.
func New(store Store, evaluator Evaluator, client llm.Client, concurrency int, onProgress ProgressFunc) *Optimizer {
	if concurrency <= 0 {
		concurrency = evaluation.DefaultConcurrency
	}
	return &Optimizer{
		store:       store,
		evaluator:   evaluator,
		client:      client,
		concurrency: concurrency,
		onProgress:  onProgress,
	}
}

// Run is one in-flight search: the durable run row plus the seed candidate.
type Run struct {
	ID   uuid.UUID
	seed *types.PromptCandidate
	cfg  types.OptimizationConfig
	opt  *Optimizer
}

// Start validates the configuration, loads the seed prompt, and creates the
// durable run record in the running state. The search itself happens in
// Execute, so callers can return the run handle before the loop begins.
func (o *Optimizer) Start(ctx context.Context, startingPromptID uuid.UUID, cfg types.OptimizationConfig) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid optimization config: %w", err)
	}

	seed, err := o.store.GetPrompt(ctx, startingPromptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load starting prompt: %w", err)
	}
	if seed == nil {
		return nil, fmt.Errorf("starting prompt %s not found", startingPromptID)
	}

	runID, err := o.store.CreateOptimizationRun(ctx, startingPromptID, cfg)
	if err != nil {
		return nil, err
	}

	return &Run{ID: runID, seed: seed, cfg: cfg, opt: o}, nil
}

// Execute runs the search to completion. Any unrecovered error marks the run
// failed and discards all in-memory state; nothing is persisted for a failed
// run beyond the status update.
func (r *Run) Execute(ctx context.Context) error {
	if err := r.opt.execute(ctx, r); err != nil {
		if failErr := r.opt.store.FailOptimizationRun(ctx, r.ID, err.Error()); failErr != nil {
			log.Printf("run %s: failed to record failure: %v", r.ID, failErr)
		}
		return err
	}
	return nil
}

func (o *Optimizer) execute(ctx context.Context, run *Run) error {
	seed := run.seed

	// INITIALIZING: lazily evaluate the seed before entering the loop.
	if seed.Metrics == nil {
		o.progress("initializing", "evaluating seed prompt")
		result, err := o.evaluator.Evaluate(ctx, seed.Text)
		if err != nil {
			return fmt.Errorf("seed evaluation failed: %w", err)
		}
		seed.Metrics = &result.Metrics
		seed.Rankings = result.Rankings
		if err := o.store.UpdatePromptMetrics(ctx, seed.ID, seed.Metrics); err != nil {
			return err
		}
		if err := o.store.SaveEvaluationRecords(ctx, seed.ID, o.evaluator.BuildRecords(result)); err != nil {
			return err
		}
	}

	state := NewBeamState(seed, run.cfg.BeamWidth)
	iterations := 0

	// ITERATING
	for iteration := 0; iteration < run.cfg.MaxIterations; iteration++ {
		iterations = iteration + 1
		best := state.Best()
		previousTau := best.Metrics.KendallTau
		o.progress("iterating", fmt.Sprintf("iteration %d/%d, best tau %.3f",
			iterations, run.cfg.MaxIterations, previousTau))

		worst, err := o.sampleErrors(ctx, best)
		if err != nil {
			return err
		}

		critique, err := GenerateCritique(ctx, o.client, best, worst)
		if err != nil {
			return err
		}

		texts, err := GenerateVariants(ctx, o.client, best.Text, critique,
			state.RecentTrajectory(recentTrajectoryCount), run.cfg.VariantsPerIteration)
		if err != nil {
			return err
		}
		o.progress("iterating", fmt.Sprintf("iteration %d: %d valid variants", iterations, len(texts)))

		candidates, err := o.evaluateVariants(ctx, best.ID, texts)
		if err != nil {
			return err
		}

		state.Merge(candidates)

		improvement := state.Best().Metrics.KendallTau - previousTau
		if improvement < convergenceThreshold && iteration >= minIterationsBeforeConvergence {
			o.progress("converged", fmt.Sprintf("improvement %.4f below threshold after iteration %d",
				improvement, iterations))
			break
		}
	}

	return o.finalize(ctx, run, state, iterations)
}

// sampleErrors fetches the worst-scored leads for a candidate, from durable
// records when the candidate is persisted and from its in-memory predictions
// otherwise.
func (o *Optimizer) sampleErrors(ctx context.Context, candidate *types.PromptCandidate) ([]types.EvaluationRecord, error) {
	if candidate.Persisted {
		records, err := o.store.GetWorstEvaluationRecords(ctx, candidate.ID, sampleErrorCount)
		if err != nil {
			return nil, fmt.Errorf("failed to load sample errors: %w", err)
		}
		return records, nil
	}
	records := o.evaluator.BuildRecords(&evaluation.Result{Rankings: candidate.Rankings})
	return WorstSampleErrors(records, sampleErrorCount), nil
}

// evaluateVariants scores every valid variant concurrently with bounded
// fan-out. Each result becomes an in-memory candidate carrying its parent's
// id. Any evaluation failure aborts the run.
func (o *Optimizer) evaluateVariants(ctx context.Context, parentID uuid.UUID, texts []string) ([]*types.PromptCandidate, error) {
	candidates := make([]*types.PromptCandidate, len(texts))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			result, err := o.evaluator.Evaluate(gCtx, text)
			if err != nil {
				return fmt.Errorf("variant evaluation failed: %w", err)
			}
			candidates[i] = &types.PromptCandidate{
				ID:       uuid.New(),
				Text:     text,
				Metrics:  &result.Metrics,
				ParentID: parentID,
				Rankings: result.Rankings,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// finalize persists every beam member that is not already durable, then
// marks the run completed.
func (o *Optimizer) finalize(ctx context.Context, run *Run, state *BeamState, iterations int) error {
	for _, candidate := range state.Beam() {
		if candidate.Persisted {
			continue
		}
		if _, err := o.store.CreatePrompt(ctx, candidate); err != nil {
			return fmt.Errorf("failed to persist beam candidate: %w", err)
		}
		records := o.evaluator.BuildRecords(&evaluation.Result{Rankings: candidate.Rankings})
		if err := o.store.SaveEvaluationRecords(ctx, candidate.ID, records); err != nil {
			return err
		}
		candidate.Persisted = true
	}

	best := state.Best()
	seed := state.Baseline()
	improvement := 0.0
	if seed.Metrics.KendallTau != 0 {
		improvement = (best.Metrics.KendallTau - seed.Metrics.KendallTau) /
			math.Abs(seed.Metrics.KendallTau) * 100
	}

	o.progress("finalized", fmt.Sprintf("best tau %.3f, improvement %.1f%%, %d candidates seen",
		best.Metrics.KendallTau, improvement, state.TrajectorySize()))

	return o.store.CompleteOptimizationRun(ctx, run.ID, db.RunResult{
		BestPromptID:             best.ID,
		TotalIterations:          iterations,
		TotalCandidatesGenerated: state.TrajectorySize(),
		ImprovementPercentage:    improvement,
	})
}

func (o *Optimizer) progress(stage, message string) {
	if o.onProgress != nil {
		o.onProgress(stage, message)
	}
}
