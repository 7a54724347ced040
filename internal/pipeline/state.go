// Package pipeline orchestrates a single build: restore the body cache,
// render the site into a staging workspace, then publish it.
//
// A build moves through Idle → CacheRestoring → Rendering → Publishing → Done.
// Failed is reachable from every non-terminal state. Content or render
// failures stop the build before anything is handed to the publisher, so the
// previously published site stays live.
package pipeline

// State is a build orchestrator state.
type State string

const (
	StateIdle           State = "Idle"
	StateCacheRestoring State = "CacheRestoring"
	StateRendering      State = "Rendering"
	StatePublishing     State = "Publishing"
	StateDone           State = "Done"
	StateFailed         State = "Failed"
)

var transitions = map[State][]State{
	StateIdle:           {StateCacheRestoring, StateFailed},
	StateCacheRestoring: {StateRendering, StateFailed},
	StateRendering:      {StatePublishing, StateFailed},
	StatePublishing:     {StateDone, StateFailed},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether from → to is a legal edge.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s State) String() string { return string(s) }
