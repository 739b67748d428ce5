package sync

import "errors"

var (
	// ErrPushFailed is returned when a push batch could not be saved; the
	// affected entries are marked failed and remain eligible for retry.
	ErrPushFailed = errors.New("push failed")
	// ErrPullFailed is returned when a pull cycle could not fetch from the
	// remote store; local state is left untouched.
	ErrPullFailed = errors.New("pull failed")
)
