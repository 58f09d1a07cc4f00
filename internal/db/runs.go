package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/leadscout/internal/types"
)

// CreateOptimizationRun creates a run record in the running state and
// returns its ID. This is the only write a run performs before FINALIZED.
func (db *DB) CreateOptimizationRun(ctx context.Context, startingPromptID uuid.UUID, cfg types.OptimizationConfig) (uuid.UUID, error) {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal run config: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO optimization_runs (status, config, starting_prompt_id)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		types.RunStatusRunning, configJSON, startingPromptID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create optimization run: %w", err)
	}
	return id, nil
}

// RunResult holds the final figures written when a run completes.
type RunResult struct {
	BestPromptID             uuid.UUID
	TotalIterations          int
	TotalCandidatesGenerated int
	ImprovementPercentage    float64
}

// CompleteOptimizationRun marks a run completed with its results.
func (db *DB) CompleteOptimizationRun(ctx context.Context, runID uuid.UUID, result RunResult) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE optimization_runs
		 SET status = $1, best_prompt_id = $2, total_iterations = $3,
		     total_candidates_generated = $4, improvement_percentage = $5,
		     completed_at = NOW()
		 WHERE id = $6`,
		types.RunStatusCompleted, result.BestPromptID, result.TotalIterations,
		result.TotalCandidatesGenerated, result.ImprovementPercentage, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete optimization run: %w", err)
	}
	return nil
}

// FailOptimizationRun marks a run failed with the captured error message.
func (db *DB) FailOptimizationRun(ctx context.Context, runID uuid.UUID, message string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE optimization_runs
		 SET status = $1, error_message = $2, completed_at = NOW()
		 WHERE id = $3`,
		types.RunStatusFailed, message, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark optimization run failed: %w", err)
	}
	return nil
}

// GetOptimizationRun retrieves a run by ID. Returns nil if not found.
func (db *DB) GetOptimizationRun(ctx context.Context, runID uuid.UUID) (*types.OptimizationRun, error) {
	var run types.OptimizationRun
	var configJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, status, config, starting_prompt_id, best_prompt_id,
		        total_iterations, total_candidates_generated, improvement_percentage,
		        COALESCE(error_message, ''), created_at, completed_at
		 FROM optimization_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Status, &configJSON, &run.StartingPromptID, &run.BestPromptID,
		&run.TotalIterations, &run.TotalCandidatesGenerated, &run.ImprovementPercentage,
		&run.ErrorMessage, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get optimization run: %w", err)
	}

	if configJSON != nil {
		_ = json.Unmarshal(configJSON, &run.Config)
	}
	return &run, nil
}

// ListOptimizationRuns retrieves recent runs, newest first.
func (db *DB) ListOptimizationRuns(ctx context.Context, limit int) ([]types.OptimizationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, status, config, starting_prompt_id, best_prompt_id,
		        total_iterations, total_candidates_generated, improvement_percentage,
		        COALESCE(error_message, ''), created_at, completed_at
		 FROM optimization_runs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimization runs: %w", err)
	}
	defer rows.Close()

	var runs []types.OptimizationRun
	for rows.Next() {
		var run types.OptimizationRun
		var configJSON []byte
		if err := rows.Scan(&run.ID, &run.Status, &configJSON, &run.StartingPromptID, &run.BestPromptID,
			&run.TotalIterations, &run.TotalCandidatesGenerated, &run.ImprovementPercentage,
			&run.ErrorMessage, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan optimization run: %w", err)
		}
		if configJSON != nil {
			_ = json.Unmarshal(configJSON, &run.Config)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
