package eventstore

import (
	"slices"
	"time"
)

const (
	statusRunning = "running"
)

// BuildSummary is a read model summarizing a finished or in-progress build.
type BuildSummary struct {
	BuildID     string        `json:"build_id"`
	Trigger     string        `json:"trigger"`
	Ref         string        `json:"ref"`
	Commit      string        `json:"commit,omitempty"`
	State       string        `json:"state"`
	Skipped     bool          `json:"skipped,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  *time.Time    `json:"finished_at,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Transitions []string      `json:"transitions,omitempty"`
	Error       string        `json:"error,omitempty"`
	ErrorStage  string        `json:"error_stage,omitempty"`
	Documents   int           `json:"documents"`
	Pages       int           `json:"pages"`
	Digest      string        `json:"digest,omitempty"`
}

// Project folds events into summaries ordered newest first. Events are
// expected in append order.
func Project(events []Event) []BuildSummary {
	byID := make(map[string]*BuildSummary)
	var order []string
	for _, ev := range events {
		if ev.BuildID == "" {
			continue
		}
		s, ok := byID[ev.BuildID]
		if !ok {
			s = &BuildSummary{BuildID: ev.BuildID, State: statusRunning, StartedAt: ev.Timestamp}
			byID[ev.BuildID] = s
			order = append(order, ev.BuildID)
		}
		apply(s, ev)
	}

	out := make([]BuildSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	slices.SortStableFunc(out, func(a, b BuildSummary) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return out
}

func apply(s *BuildSummary, ev Event) {
	switch ev.Type {
	case TypeBuildStarted:
		var p BuildStarted
		if ev.Decode(&p) == nil {
			s.Trigger, s.Ref, s.Commit = p.Trigger, p.Ref, p.Commit
		}
		s.StartedAt = ev.Timestamp
	case TypeBuildTransition:
		var p BuildTransition
		if ev.Decode(&p) == nil {
			if len(s.Transitions) == 0 {
				s.Transitions = append(s.Transitions, p.From)
			}
			s.Transitions = append(s.Transitions, p.To)
			s.State = p.To
		}
	case TypeBuildFinished:
		var p BuildFinished
		if ev.Decode(&p) == nil {
			s.State = p.State
			s.Skipped = p.Skipped
			s.Error = p.Error
			s.ErrorStage = p.ErrorStage
			s.Documents = p.Documents
			s.Pages = p.Pages
			s.Digest = p.Digest
			s.Duration = time.Duration(p.DurationMS) * time.Millisecond
		}
		finished := ev.Timestamp
		s.FinishedAt = &finished
	}
}
