package types

import (
	"time"

	"github.com/google/uuid"
)

// Metrics holds the evaluation metrics for one prompt candidate.
// RMSE is computed and stored for diagnostics but is never used when
// comparing candidates.
type Metrics struct {
	MAE        float64 `json:"mae"`
	RMSE       float64 `json:"rmse"`
	Spearman   float64 `json:"spearman"`
	KendallTau float64 `json:"kendall_tau"`
}

// PromptCandidate is one instruction-set text plus its evaluation result.
// Metrics is nil until the candidate has been evaluated; after evaluation all
// four metrics are populated together.
type PromptCandidate struct {
	ID       uuid.UUID `json:"id"`
	Text     string    `json:"text"`
	Metrics  *Metrics  `json:"metrics,omitempty"`
	ParentID uuid.UUID `json:"parent_id"`

	// Rankings holds the per-lead predictions from the candidate's
	// evaluation. Transient: only needed to compute sample errors before the
	// candidate is persisted.
	Rankings []LeadRanking `json:"-"`

	// Persisted reports whether the candidate has a durable row. The seed is
	// always persisted; variants become durable only if they survive to the
	// final beam.
	Persisted bool `json:"-"`
}

// Evaluated reports whether the candidate has metrics.
func (c *PromptCandidate) Evaluated() bool {
	return c.Metrics != nil
}

// RunStatus is the lifecycle status of an optimization run.
type RunStatus string

// Run status values.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// OptimizationConfig holds the search parameters for one run.
type OptimizationConfig struct {
	MaxIterations        int `json:"max_iterations" validate:"min=1,max=10"`
	VariantsPerIteration int `json:"variants_per_iteration" validate:"min=4,max=16"`
	BeamWidth            int `json:"beam_width" validate:"min=2,max=5"`
}

// OptimizationRun is the durable record of one beam search execution. It is
// created at search start and updated exactly once at the end; intermediate
// iterations are never visible externally.
type OptimizationRun struct {
	ID                       uuid.UUID          `json:"id"`
	Status                   RunStatus          `json:"status"`
	Config                   OptimizationConfig `json:"config"`
	StartingPromptID         uuid.UUID          `json:"starting_prompt_id"`
	BestPromptID             *uuid.UUID         `json:"best_prompt_id,omitempty"`
	TotalIterations          int                `json:"total_iterations"`
	TotalCandidatesGenerated int                `json:"total_candidates_generated"`
	ImprovementPercentage    float64            `json:"improvement_percentage"`
	ErrorMessage             string             `json:"error_message,omitempty"`
	CreatedAt                time.Time          `json:"created_at"`
	CompletedAt              *time.Time         `json:"completed_at,omitempty"`
}

// EvaluationRecord is one row per (candidate, ground-truth lead). Records are
// created only for candidates that get persisted, which bounds storage growth.
type EvaluationRecord struct {
	ID             uuid.UUID `json:"id"`
	PromptID       uuid.UUID `json:"prompt_id"`
	LeadID         string    `json:"lead_id"`
	PredictedRank  float64   `json:"predicted_rank"`
	GroundTruthRank int      `json:"ground_truth_rank"`
	Justification  string    `json:"justification"`
	AbsoluteError  float64   `json:"absolute_error"`
	SquaredError   float64   `json:"squared_error"`
}
