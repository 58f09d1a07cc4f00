package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/leadscout/internal/types"
)

// newTestServer builds a Server without network or database wiring. Only
// handler paths that fail before touching dependencies are exercised here;
// everything else lives in the integration tests.
func newTestServer() *Server {
	return &Server{concurrency: 1}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()

	s.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleStartOptimization_InvalidBody(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()

	req := httptest.NewRequest("POST", "/optimizations", strings.NewReader("{not json"))
	s.handleStartOptimization(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStartOptimization_ValidationFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing prompt id", `{"max_iterations":5,"variants_per_iteration":8,"beam_width":3}`},
		{"beam width too small", `{"starting_prompt_id":"0e03b08c-4bff-4db4-a4f8-9a1f4a10f733","max_iterations":5,"variants_per_iteration":8,"beam_width":1}`},
		{"iterations too high", `{"starting_prompt_id":"0e03b08c-4bff-4db4-a4f8-9a1f4a10f733","max_iterations":99,"variants_per_iteration":8,"beam_width":3}`},
		{"variants too low", `{"starting_prompt_id":"0e03b08c-4bff-4db4-a4f8-9a1f4a10f733","max_iterations":5,"variants_per_iteration":2,"beam_width":3}`},
	}

	s := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/optimizations", strings.NewReader(tt.body))
			s.handleStartOptimization(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleGetOptimization_InvalidID(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()

	req := httptest.NewRequest("GET", "/optimizations/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	s.handleGetOptimization(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListOptimizations_InvalidLimit(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()

	s.handleListOptimizations(rec, httptest.NewRequest("GET", "/optimizations?limit=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetPrompt_InvalidID(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()

	req := httptest.NewRequest("GET", "/prompts/xyz", nil)
	req.SetPathValue("id", "xyz")
	s.handleGetPrompt(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQualifyLeads_ValidationFailure(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()

	// No leads.
	body := `{"persona_id":"0e03b08c-4bff-4db4-a4f8-9a1f4a10f733","leads":[]}`
	req := httptest.NewRequest("POST", "/leads/qualify", strings.NewReader(body))
	s.handleQualifyLeads(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRankLeads_CompanyMismatch(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()

	body := `{
		"persona_id": "0e03b08c-4bff-4db4-a4f8-9a1f4a10f733",
		"company": "Acme",
		"leads": [{"id": "l1", "name": "Ada", "title": "CTO", "company": "Globex"}]
	}`
	req := httptest.NewRequest("POST", "/leads/rank", strings.NewReader(body))
	s.handleRankLeads(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must belong to the request company")
}

func TestGroupByCompany(t *testing.T) {
	leads := []types.Lead{
		{ID: "a", Company: "Acme"},
		{ID: "b", Company: "Globex"},
		{ID: "c", Company: "Acme"},
	}

	companies, groups := groupByCompany(leads)
	assert.Equal(t, []string{"Acme", "Globex"}, companies)
	assert.Len(t, groups["Acme"], 2)
	assert.Len(t, groups["Globex"], 1)
}
