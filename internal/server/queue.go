package server

import (
	"context"
	"log/slog"
	"sync/atomic"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/trigger"
)

// ErrQueueFull is returned by Enqueue when no more builds can be queued.
var ErrQueueFull = ferrors.DaemonError("build queue is full").
	WithSeverity(ferrors.SeverityError).
	Retryable().
	Build()

// buildQueue is a bounded FIFO drained by a single runner, so builds run
// one after another and the last to finish determines the published site.
type buildQueue struct {
	ch       chan trigger.PushEvent
	building atomic.Bool
	logger   *slog.Logger
}

func newBuildQueue(size int, logger *slog.Logger) *buildQueue {
	if size < 1 {
		size = 1
	}
	return &buildQueue{ch: make(chan trigger.PushEvent, size), logger: logger}
}

func (q *buildQueue) enqueue(ev trigger.PushEvent) error {
	select {
	case q.ch <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *buildQueue) depth() int { return len(q.ch) }

// run drains the queue until ctx is done.
func (q *buildQueue) run(ctx context.Context, b Builder) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-q.ch:
			q.building.Store(true)
			res, err := b.Handle(ctx, ev)
			q.building.Store(false)
			if err != nil && res == nil {
				q.logger.Error("Build could not start", logfields.Ref(ev.Ref), logfields.Error(err))
			}
		}
	}
}
