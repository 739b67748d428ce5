package remote

import "errors"

// Sentinel kinds for remote store errors.
var (
	// ErrNetworkUnavailable marks the network-class failure family. The
	// engine maps it to the offline state and relies on the connectivity
	// listener for retry. Implementations wrap it into their transport
	// errors.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrSubscriptionNotFound is returned when deleting an unknown
	// subscription id.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// IsNetworkError reports whether err belongs to the network-class family.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetworkUnavailable)
}
