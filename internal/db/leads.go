package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/leadscout/internal/types"
)

// ListGroundTruthLeads loads the full labeled dataset. The dataset is
// read-only from the optimizer's perspective.
func (db *DB) ListGroundTruthLeads(ctx context.Context) ([]types.GroundTruthLead, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, title, company, COALESCE(industry, ''), COALESCE(seniority, ''),
		        COALESCE(location, ''), COALESCE(notes, ''), ground_truth_rank
		 FROM ground_truth_leads
		 ORDER BY company, ground_truth_rank`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ground truth leads: %w", err)
	}
	defer rows.Close()

	var leads []types.GroundTruthLead
	for rows.Next() {
		var lead types.GroundTruthLead
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.Title, &lead.Company, &lead.Industry,
			&lead.Seniority, &lead.Location, &lead.Notes, &lead.GroundTruthRank); err != nil {
			return nil, fmt.Errorf("failed to scan ground truth lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// GetPersona retrieves a persona by ID. Returns nil if not found.
func (db *DB) GetPersona(ctx context.Context, id uuid.UUID) (*types.Persona, error) {
	var persona types.Persona
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM personas WHERE id = $1`,
		id,
	).Scan(&persona.ID, &persona.Name, &persona.Description, &persona.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get persona: %w", err)
	}
	return &persona, nil
}

// GetPersonaByName retrieves a persona by name. Returns nil if not found.
func (db *DB) GetPersonaByName(ctx context.Context, name string) (*types.Persona, error) {
	var persona types.Persona
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM personas WHERE name = $1`,
		name,
	).Scan(&persona.ID, &persona.Name, &persona.Description, &persona.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get persona by name: %w", err)
	}
	return &persona, nil
}

// GetDefaultPersona returns the oldest persona, used when a caller does not
// name one. Returns nil if the table is empty.
func (db *DB) GetDefaultPersona(ctx context.Context) (*types.Persona, error) {
	var persona types.Persona
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM personas ORDER BY created_at LIMIT 1`,
	).Scan(&persona.ID, &persona.Name, &persona.Description, &persona.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get default persona: %w", err)
	}
	return &persona, nil
}
