package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/leadscout/internal/optimizer"
	"github.com/jonathan/leadscout/internal/types"
)

// StartOptimizationResponse represents the response for POST /optimizations
type StartOptimizationResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// handleStartOptimization validates the request, creates the run record, and
// executes the search in the background. The response only carries the run
// id; clients poll GET /optimizations/{id} for the outcome.
func (s *Server) handleStartOptimization(w http.ResponseWriter, r *http.Request) {
	var req types.StartOptimizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	promptID, err := uuid.Parse(req.StartingPromptID)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid starting_prompt_id")
		return
	}

	harness, err := s.loadHarness(r.Context())
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	opt := optimizer.New(s.db, harness, s.client, s.concurrency, nil)
	run, err := opt.Start(r.Context(), promptID, types.OptimizationConfig{
		MaxIterations:        req.MaxIterations,
		VariantsPerIteration: req.VariantsPerIteration,
		BeamWidth:            req.BeamWidth,
	})
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("Starting optimization run %s", run.ID)

	// The run outlives the request; failures are recorded on the run row.
	go func() {
		if err := run.Execute(context.Background()); err != nil {
			log.Printf("Optimization run %s failed: %v", run.ID, err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, StartOptimizationResponse{
		RunID:  run.ID.String(),
		Status: string(types.RunStatusRunning),
	})
}

// handleGetOptimization returns one optimization run by id
func (s *Server) handleGetOptimization(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	run, err := s.db.GetOptimizationRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		notFound := &ErrRunNotFound{ID: runID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}

// handleListOptimizations returns recent runs, newest first. The optional
// limit query parameter caps the result; it defaults to 20.
func (s *Server) handleListOptimizations(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := s.db.ListOptimizationRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}
