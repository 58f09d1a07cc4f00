package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/leadscout/internal/types"
)

// scanPrompt reads one ranking_prompts row into a PromptCandidate. Metric
// columns are all null or all populated; a partially-scored row would violate
// the candidate invariant.
func scanPrompt(row pgx.Row) (*types.PromptCandidate, error) {
	var candidate types.PromptCandidate
	var mae, rmse, spearman, kendall *float64

	err := row.Scan(&candidate.ID, &candidate.Text, &mae, &rmse, &spearman, &kendall, &candidate.ParentID)
	if err != nil {
		return nil, err
	}

	if mae != nil && rmse != nil && spearman != nil && kendall != nil {
		candidate.Metrics = &types.Metrics{
			MAE:        *mae,
			RMSE:       *rmse,
			Spearman:   *spearman,
			KendallTau: *kendall,
		}
	}
	candidate.Persisted = true
	return &candidate, nil
}

// CreatePrompt inserts a prompt candidate and returns its assigned ID.
// Candidates carry their IDs from creation time (lineage pointers reference
// them before persistence), so the ID is inserted explicitly; a nil ID gets
// one generated here.
func (db *DB) CreatePrompt(ctx context.Context, candidate *types.PromptCandidate) (uuid.UUID, error) {
	var mae, rmse, spearman, kendall *float64
	if candidate.Metrics != nil {
		mae = &candidate.Metrics.MAE
		rmse = &candidate.Metrics.RMSE
		spearman = &candidate.Metrics.Spearman
		kendall = &candidate.Metrics.KendallTau
	}

	id := candidate.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO ranking_prompts (id, text, mae, rmse, spearman, kendall_tau, parent_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, candidate.Text, mae, rmse, spearman, kendall, candidate.ParentID,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create prompt: %w", err)
	}
	return id, nil
}

// GetPrompt retrieves a prompt candidate by ID. Returns nil if not found.
func (db *DB) GetPrompt(ctx context.Context, id uuid.UUID) (*types.PromptCandidate, error) {
	candidate, err := scanPrompt(db.pool.QueryRow(ctx,
		`SELECT id, text, mae, rmse, spearman, kendall_tau, parent_id
		 FROM ranking_prompts WHERE id = $1`,
		id,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prompt: %w", err)
	}
	return candidate, nil
}

// UpdatePromptMetrics stores evaluation metrics for an existing prompt. Used
// when the seed prompt is evaluated lazily at the start of a run.
func (db *DB) UpdatePromptMetrics(ctx context.Context, id uuid.UUID, m *types.Metrics) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE ranking_prompts
		 SET mae = $1, rmse = $2, spearman = $3, kendall_tau = $4
		 WHERE id = $5`,
		m.MAE, m.RMSE, m.Spearman, m.KendallTau, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update prompt metrics: %w", err)
	}
	return nil
}

// GetPromptLineage walks parent pointers from the given prompt back to the
// seed (whose parent is itself) and returns the chain, newest first.
func (db *DB) GetPromptLineage(ctx context.Context, id uuid.UUID) ([]types.PromptCandidate, error) {
	var lineage []types.PromptCandidate
	current := id
	for {
		candidate, err := db.GetPrompt(ctx, current)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			break
		}
		lineage = append(lineage, *candidate)
		if candidate.ParentID == candidate.ID || candidate.ParentID == uuid.Nil {
			break
		}
		current = candidate.ParentID
	}
	return lineage, nil
}
