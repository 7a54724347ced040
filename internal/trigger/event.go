// Package trigger describes what started a build and where it came from:
// forge webhooks, CI environments, a local clone or the scheduler.
package trigger

import "strings"

// Source identifies the origin of a PushEvent.
type Source string

const (
	SourceWebhook  Source = "webhook"
	SourceCI       Source = "ci"
	SourceLocal    Source = "local"
	SourceManual   Source = "manual"
	SourceSchedule Source = "schedule"
	SourceWatch    Source = "watch"
)

const branchPrefix = "refs/heads/"

// PushEvent is a push to a ref of the content repository.
type PushEvent struct {
	// Ref is the full ref name, e.g. refs/heads/main.
	Ref string
	// Before and After are the commit ids around the push; After is the built commit.
	Before     string
	After      string
	Repository string
	Pusher     string
	Source     Source
	// BuildID pre-assigns the id of the build this event starts, for callers
	// that acknowledge a build before it runs. Empty means assign on start.
	BuildID string
}

// Branch returns the short branch name, or "" when Ref is not a branch.
func (e PushEvent) Branch() string {
	if !strings.HasPrefix(e.Ref, branchPrefix) {
		return ""
	}
	return strings.TrimPrefix(e.Ref, branchPrefix)
}

// IsBranch reports whether the event targets the named branch.
func (e PushEvent) IsBranch(name string) bool {
	return e.Ref == BranchRef(name)
}

// BranchRef returns the full ref for a branch name. Full refs are returned unchanged.
func BranchRef(name string) string {
	if strings.HasPrefix(name, "refs/") {
		return name
	}
	return branchPrefix + name
}

// Manual returns an event for a build of branch requested without a push.
func Manual(branch string, source Source) PushEvent {
	return PushEvent{Ref: BranchRef(branch), Source: source}
}
