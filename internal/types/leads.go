// Package types provides type definitions for structured data used throughout the leadscout system.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Lead represents a sales lead to be qualified or ranked.
type Lead struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Industry  string `json:"industry,omitempty"`
	Seniority string `json:"seniority,omitempty"`
	Location  string `json:"location,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Persona describes the ideal customer profile leads are scored against.
// Persona text is substituted into the instruction template at call time and
// is never part of the optimizable instruction text itself.
type Persona struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroundTruthLead is a labeled lead in the fixed evaluation dataset.
// GroundTruthRank is a small positive integer; lower means a better lead.
type GroundTruthLead struct {
	Lead
	GroundTruthRank int `json:"ground_truth_rank"`
}

// LeadRanking is one ranked entry returned by the batch scoring agent.
type LeadRanking struct {
	LeadID        string  `json:"lead_id"`
	PredictedRank float64 `json:"predicted_rank"`
	Justification string  `json:"justification"`
}

// QualificationDecision is one qualification verdict returned by the batch
// scoring agent. Leads missing after the retry default to Qualified=false.
type QualificationDecision struct {
	LeadID        string `json:"lead_id"`
	Qualified     bool   `json:"qualified"`
	Justification string `json:"justification"`
}
