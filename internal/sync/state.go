package sync

import "sync"

// State is the engine's coarse condition, published to observers so the UI
// layer can mirror sync health without polling.
type State string

const (
	// StateIdle means no replication work is in progress.
	StateIdle State = "idle"
	// StateSyncing means a push or pull cycle is running.
	StateSyncing State = "syncing"
	// StateOffline means the last remote operation failed with a network
	// error; work is parked until connectivity returns.
	StateOffline State = "offline"
	// StateError means the last remote operation failed for a non-network
	// reason.
	StateError State = "error"
)

// StateNames lists every state, in the order gauges are reported.
var StateNames = []string{
	string(StateIdle),
	string(StateSyncing),
	string(StateOffline),
	string(StateError),
}

// stateHub fans state transitions out to subscribers. Sends never block: a
// subscriber that stops draining its channel misses updates rather than
// stalling the engine.
type stateHub struct {
	mu      sync.Mutex
	current State
	subs    []chan State
}

func newStateHub() *stateHub {
	return &stateHub{current: StateIdle}
}

// set transitions to s and notifies subscribers. Returns the previous state.
func (h *stateHub) set(s State) State {
	h.mu.Lock()
	prev := h.current
	h.current = s
	subs := make([]chan State, len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()
	if prev == s {
		return prev
	}
	for _, ch := range subs {
		select {
		case ch <- s:
		default:
		}
	}
	return prev
}

func (h *stateHub) get() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// subscribe registers a buffered channel that receives future transitions.
func (h *stateHub) subscribe() <-chan State {
	ch := make(chan State, 8)
	h.mu.Lock()
	h.subs = append(h.subs, ch)
	h.mu.Unlock()
	return ch
}
