package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/leadscout/internal/prompts"
	"github.com/jonathan/leadscout/internal/types"
)

// QualifyLeadsResponse represents the response for POST /leads/qualify
type QualifyLeadsResponse struct {
	Decisions []types.QualificationDecision `json:"decisions"`
}

// RankLeadsResponse represents the response for POST /leads/rank
type RankLeadsResponse struct {
	Rankings []types.LeadRanking `json:"rankings"`
}

// handleQualifyLeads qualifies a batch of leads against a persona. Leads are
// grouped by company and each group is scored in one model call.
func (s *Server) handleQualifyLeads(w http.ResponseWriter, r *http.Request) {
	var req types.QualifyLeadsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	persona, err := s.resolvePersona(r.Context(), req.PersonaID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	instructions, err := s.resolveInstructions(r.Context(), req.PromptID, "seed-qualification-instructions")
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	companies, groups := groupByCompany(req.Leads)
	results := make([][]types.QualificationDecision, len(companies))

	g, gCtx := errgroup.WithContext(r.Context())
	g.SetLimit(s.concurrency)
	for i, company := range companies {
		g.Go(func() error {
			decisions, err := s.agent.QualifyLeads(gCtx, instructions, persona.Description, company, groups[company])
			if err != nil {
				return err
			}
			results[i] = decisions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Qualification failed: "+err.Error())
		return
	}

	var decisions []types.QualificationDecision
	for _, group := range results {
		decisions = append(decisions, group...)
	}
	s.jsonResponse(w, http.StatusOK, QualifyLeadsResponse{Decisions: decisions})
}

// handleRankLeads ranks a single-company batch of leads against a persona.
func (s *Server) handleRankLeads(w http.ResponseWriter, r *http.Request) {
	var req types.RankLeadsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, lead := range req.Leads {
		if lead.Company != "" && lead.Company != req.Company {
			s.errorResponse(w, http.StatusBadRequest, "All leads must belong to the request company")
			return
		}
	}

	persona, err := s.resolvePersona(r.Context(), req.PersonaID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	instructions, err := s.resolveInstructions(r.Context(), req.PromptID, "seed-ranking-instructions")
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	rankings, err := s.agent.RankLeads(r.Context(), instructions, persona.Description, req.Company, req.Leads)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Ranking failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, RankLeadsResponse{Rankings: rankings})
}

// resolvePersona loads the persona for a validated request id.
func (s *Server) resolvePersona(ctx context.Context, personaID string) (*types.Persona, error) {
	id, err := uuid.Parse(personaID)
	if err != nil {
		return nil, &ErrValidation{Message: "invalid persona_id"}
	}
	persona, err := s.db.GetPersona(ctx, id)
	if err != nil {
		return nil, err
	}
	if persona == nil {
		return nil, &ErrPersonaNotFound{ID: id}
	}
	return persona, nil
}

// resolveInstructions returns the instruction text for a scoring request:
// a stored prompt when prompt_id is given, the built-in seed otherwise.
func (s *Server) resolveInstructions(ctx context.Context, promptID, seedKey string) (string, error) {
	if promptID == "" {
		return prompts.MustGet("scoring.json", seedKey), nil
	}
	id, err := uuid.Parse(promptID)
	if err != nil {
		return "", &ErrValidation{Message: "invalid prompt_id"}
	}
	prompt, err := s.db.GetPrompt(ctx, id)
	if err != nil {
		return "", err
	}
	if prompt == nil {
		return "", &ErrPromptNotFound{ID: id}
	}
	return prompt.Text, nil
}

// groupByCompany splits leads into per-company groups, preserving first-seen
// company order.
func groupByCompany(leads []types.Lead) ([]string, map[string][]types.Lead) {
	var companies []string
	groups := make(map[string][]types.Lead)
	for _, lead := range leads {
		if _, ok := groups[lead.Company]; !ok {
			companies = append(companies, lead.Company)
		}
		groups[lead.Company] = append(groups[lead.Company], lead)
	}
	return companies, groups
}
