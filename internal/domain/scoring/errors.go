package scoring

import "errors"

// Sentinel kinds for score creation errors. Validation failures are rejected
// synchronously and never stored.
var (
	ErrInvalidStrokeCount        = errors.New("stroke count must be between 1 and 10")
	ErrInvalidHoleNumber         = errors.New("hole number out of range")
	ErrRoundNotFound             = errors.New("round not found")
	ErrRoundNotActive            = errors.New("round is not active")
	ErrSupersededEventNotFound   = errors.New("superseded event not found")
	ErrSupersededEventMismatch   = errors.New("superseded event belongs to a different player or hole")
	ErrDiscrepancyNotFound       = errors.New("discrepancy not found")
	ErrDiscrepancyAlreadySettled = errors.New("discrepancy already resolved")
)
