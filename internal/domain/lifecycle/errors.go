package lifecycle

import (
	"errors"
	"fmt"

	"github.com/okian/birdie/internal/domain/model"
)

// ErrRoundNotFound is returned for lifecycle operations on unknown rounds.
var ErrRoundNotFound = errors.New("round not found")

// InvalidTransitionError reports a lifecycle operation attempted from the
// wrong state. It always carries both the current and the expected status so
// callers never see a generic failure.
type InvalidTransitionError struct {
	Current  model.RoundStatus
	Expected string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid round transition: status is %q, expected %s", e.Current, e.Expected)
}

// ParticipantsFrozenError reports a participant-list mutation attempted
// after setup.
type ParticipantsFrozenError struct {
	Status model.RoundStatus
}

func (e *ParticipantsFrozenError) Error() string {
	return fmt.Sprintf("participants may only change during setup; round status is %q", e.Status)
}
