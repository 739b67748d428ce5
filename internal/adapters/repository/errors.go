package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrDuplicateEvent      = errors.New("duplicate event id")
	ErrRoundNotFound       = errors.New("round not found")
	ErrDuplicateRound      = errors.New("duplicate round id")
	ErrCourseNotFound      = errors.New("course not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrDiscrepancyNotFound = errors.New("discrepancy not found")
)
