package server

import (
	"net/http"

	"github.com/google/uuid"
)

// handleGetPrompt returns one stored prompt candidate by id
func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	promptID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid prompt ID")
		return
	}

	prompt, err := s.db.GetPrompt(r.Context(), promptID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if prompt == nil {
		notFound := &ErrPromptNotFound{ID: promptID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, prompt)
}

// handleGetPromptLineage returns the prompt's ancestry chain, starting at the
// prompt itself and walking parent links back to the seed.
func (s *Server) handleGetPromptLineage(w http.ResponseWriter, r *http.Request) {
	promptID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid prompt ID")
		return
	}

	lineage, err := s.db.GetPromptLineage(r.Context(), promptID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(lineage) == 0 {
		notFound := &ErrPromptNotFound{ID: promptID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"lineage": lineage})
}
