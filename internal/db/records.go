package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/leadscout/internal/types"
)

// SaveEvaluationRecords inserts the per-lead evaluation rows for a persisted
// prompt. Records exist only for beam survivors; discarded variants never
// reach this call.
func (db *DB) SaveEvaluationRecords(ctx context.Context, promptID uuid.UUID, records []types.EvaluationRecord) error {
	for _, record := range records {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO evaluation_records
			   (prompt_id, lead_id, predicted_rank, ground_truth_rank, justification, absolute_error, squared_error)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (prompt_id, lead_id) DO UPDATE
			 SET predicted_rank = $3, justification = $5, absolute_error = $6, squared_error = $7`,
			promptID, record.LeadID, record.PredictedRank, record.GroundTruthRank,
			record.Justification, record.AbsoluteError, record.SquaredError,
		)
		if err != nil {
			return fmt.Errorf("failed to save evaluation record for lead %s: %w", record.LeadID, err)
		}
	}
	return nil
}

// GetWorstEvaluationRecords returns up to limit records for a prompt, largest
// absolute error first. Used to build the critique for a durable candidate.
func (db *DB) GetWorstEvaluationRecords(ctx context.Context, promptID uuid.UUID, limit int) ([]types.EvaluationRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, prompt_id, lead_id, predicted_rank, ground_truth_rank,
		        justification, absolute_error, squared_error
		 FROM evaluation_records
		 WHERE prompt_id = $1
		 ORDER BY absolute_error DESC
		 LIMIT $2`,
		promptID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation records: %w", err)
	}
	defer rows.Close()

	var records []types.EvaluationRecord
	for rows.Next() {
		var record types.EvaluationRecord
		if err := rows.Scan(&record.ID, &record.PromptID, &record.LeadID, &record.PredictedRank,
			&record.GroundTruthRank, &record.Justification, &record.AbsoluteError, &record.SquaredError); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
