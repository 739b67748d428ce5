package api

import (
	"errors"
	"net/http"

	"github.com/okian/birdie/internal/adapters/repository"
	"github.com/okian/birdie/internal/domain/lifecycle"
	"github.com/okian/birdie/internal/domain/scoring"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// statusFor maps domain errors onto HTTP status codes and response codes.
func statusFor(err error) (int, string) {
	var transition *lifecycle.InvalidTransitionError
	var frozen *lifecycle.ParticipantsFrozenError
	switch {
	case errors.Is(err, scoring.ErrRoundNotFound),
		errors.Is(err, lifecycle.ErrRoundNotFound),
		errors.Is(err, repository.ErrRoundNotFound),
		errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, scoring.ErrSupersededEventNotFound),
		errors.Is(err, scoring.ErrDiscrepancyNotFound),
		errors.Is(err, repository.ErrDiscrepancyNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, scoring.ErrInvalidStrokeCount),
		errors.Is(err, scoring.ErrInvalidHoleNumber),
		errors.Is(err, scoring.ErrSupersededEventMismatch):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, scoring.ErrRoundNotActive),
		errors.Is(err, scoring.ErrDiscrepancyAlreadySettled),
		errors.As(err, &transition),
		errors.As(err, &frozen):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
