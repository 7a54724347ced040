package pipeline

import (
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/trigger"
)

// Result describes one Handle call.
type Result struct {
	BuildID   string
	Trigger   trigger.Source
	Ref       string
	Commit    string
	State     State
	Skipped   bool
	StartedAt time.Time
	Duration  time.Duration
	// Transitions lists every state visited, starting with Idle.
	Transitions []State
	Documents   int
	Pages       int
	// Digest identifies the rendered tree; equal digests mean byte-identical sites.
	Digest         string
	CacheHit       bool
	StageDurations map[State]time.Duration
	// ErrorStage is the state the build failed in.
	ErrorStage State
	Err        error
}

// Succeeded reports whether the build published or was skipped.
func (r *Result) Succeeded() bool {
	return r != nil && r.Err == nil && (r.State == StateDone || r.Skipped)
}
