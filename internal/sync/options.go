package sync

import (
	"github.com/okian/birdie/internal/domain/dedupe"
	"github.com/okian/birdie/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithDeduper replaces the default in-memory pull deduper.
func WithDeduper(d dedupe.Deduper) Option {
	return func(e *Engine) {
		if d != nil {
			e.deduper = d
		}
	}
}

// WithZone sets the remote zone queried by pulls.
func WithZone(zone string) Option {
	return func(e *Engine) {
		e.zone = zone
	}
}

// WithRecomputer sets the standings recomputer invoked after pulls.
func WithRecomputer(r Recomputer) Option {
	return func(e *Engine) {
		e.recomputer = r
	}
}

// WithCompletionChecker sets the round completion checker invoked after pulls.
func WithCompletionChecker(c CompletionChecker) Option {
	return func(e *Engine) {
		e.completion = c
	}
}
