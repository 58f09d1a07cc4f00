package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"prompt not found", &ErrPromptNotFound{ID: id}, http.StatusNotFound},
		{"run not found", &ErrRunNotFound{ID: id}, http.StatusNotFound},
		{"persona not found", &ErrPersonaNotFound{ID: id}, http.StatusNotFound},
		{"validation", &ErrValidation{Message: "bad field"}, http.StatusBadRequest},
		{"no persona", &ErrNoPersona{}, http.StatusConflict},
		{"empty dataset", &ErrEmptyDataset{Cause: errors.New("no leads")}, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrEmptyDataset_Unwrap(t *testing.T) {
	cause := errors.New("no leads")
	err := &ErrEmptyDataset{Cause: cause}
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "no leads")
}
