package types

import (
	"github.com/go-playground/validator/v10"
)

// StartOptimizationRequest represents the request to start a beam search run.
type StartOptimizationRequest struct {
	StartingPromptID     string `json:"starting_prompt_id" validate:"required,uuid"`
	MaxIterations        int    `json:"max_iterations" validate:"required,min=1,max=10"`
	VariantsPerIteration int    `json:"variants_per_iteration" validate:"required,min=4,max=16"`
	BeamWidth            int    `json:"beam_width" validate:"required,min=2,max=5"`
}

// QualifyLeadsRequest represents a batch qualification request. PromptID
// optionally selects a stored instruction set; empty uses the built-in seed.
type QualifyLeadsRequest struct {
	PersonaID string `json:"persona_id" validate:"required,uuid"`
	PromptID  string `json:"prompt_id,omitempty" validate:"omitempty,uuid"`
	Leads     []Lead `json:"leads" validate:"required,min=1,dive"`
}

// RankLeadsRequest represents a batch ranking request. Leads must share a
// company; ranking never compares leads across companies.
type RankLeadsRequest struct {
	PersonaID string `json:"persona_id" validate:"required,uuid"`
	PromptID  string `json:"prompt_id,omitempty" validate:"omitempty,uuid"`
	Company   string `json:"company" validate:"required"`
	Leads     []Lead `json:"leads" validate:"required,min=1,dive"`
}

// Validate validates the StartOptimizationRequest using the validator.
func (r *StartOptimizationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the QualifyLeadsRequest using the validator.
func (r *QualifyLeadsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the RankLeadsRequest using the validator.
func (r *RankLeadsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the OptimizationConfig bounds.
func (c *OptimizationConfig) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}
