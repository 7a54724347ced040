package pipeline

import (
	"log/slog"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// StateObserver receives every state transition and the final result of each build.
type StateObserver interface {
	OnTransition(buildID string, from, to State)
	OnBuildComplete(res *Result)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnTransition(string, State, State) {}
func (NoopObserver) OnBuildComplete(*Result)           {}

// LogObserver reports transitions and outcomes through slog.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o LogObserver) OnTransition(buildID string, from, to State) {
	o.logger().Info("Build state changed",
		logfields.BuildID(buildID),
		logfields.FromState(from.String()),
		logfields.State(to.String()))
}

func (o LogObserver) OnBuildComplete(res *Result) {
	attrs := []any{
		logfields.BuildID(res.BuildID),
		logfields.Ref(res.Ref),
		logfields.State(res.State.String()),
		logfields.Duration(res.Duration),
	}
	switch {
	case res.Skipped:
		o.logger().Info("Build skipped: push is not to the main branch", attrs...)
	case res.Err != nil:
		attrs = append(attrs, logfields.Stage(res.ErrorStage.String()), logfields.Error(res.Err))
		o.logger().Error("Build failed", attrs...)
	default:
		attrs = append(attrs, logfields.Count(res.Pages))
		o.logger().Info("Build completed", attrs...)
	}
}

// Observers fans out to several observers in order.
type Observers []StateObserver

func (m Observers) OnTransition(buildID string, from, to State) {
	for _, o := range m {
		o.OnTransition(buildID, from, to)
	}
}

func (m Observers) OnBuildComplete(res *Result) {
	for _, o := range m {
		o.OnBuildComplete(res)
	}
}
