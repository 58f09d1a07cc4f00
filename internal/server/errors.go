package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrPromptNotFound indicates the requested prompt does not exist
type ErrPromptNotFound struct {
	ID uuid.UUID
}

func (e *ErrPromptNotFound) Error() string {
	return fmt.Sprintf("prompt not found: %s", e.ID)
}

// ErrRunNotFound indicates the requested optimization run does not exist
type ErrRunNotFound struct {
	ID uuid.UUID
}

func (e *ErrRunNotFound) Error() string {
	return fmt.Sprintf("optimization run not found: %s", e.ID)
}

// ErrPersonaNotFound indicates the requested persona does not exist
type ErrPersonaNotFound struct {
	ID uuid.UUID
}

func (e *ErrPersonaNotFound) Error() string {
	return fmt.Sprintf("persona not found: %s", e.ID)
}

// ErrNoPersona indicates no default persona is configured
type ErrNoPersona struct{}

func (e *ErrNoPersona) Error() string {
	return "no default persona configured"
}

// ErrEmptyDataset indicates the ground-truth dataset is empty or invalid
type ErrEmptyDataset struct {
	Cause error
}

func (e *ErrEmptyDataset) Error() string {
	return fmt.Sprintf("ground-truth dataset unusable: %v", e.Cause)
}

func (e *ErrEmptyDataset) Unwrap() error { return e.Cause }

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrPromptNotFound, *ErrRunNotFound, *ErrPersonaNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrNoPersona, *ErrEmptyDataset:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
