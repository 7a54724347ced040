package server

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/trigger"
)

// newScheduler returns a gocron scheduler that enqueues a main-branch
// rebuild every interval, or nil when interval is not positive.
func newScheduler(s *Server, interval time.Duration) (gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to create scheduler").Build()
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.scheduledBuild),
		gocron.WithName("scheduled-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to schedule rebuild").
			WithContext("interval", interval.String()).
			Build()
	}
	s.logger.Info("Scheduled periodic rebuild", logfields.Duration(interval))
	return sched, nil
}

func (s *Server) scheduledBuild() {
	ev := trigger.Manual(s.builder.MainBranch(), trigger.SourceSchedule)
	if _, err := s.Enqueue(ev); err != nil {
		s.logger.Warn("Skipping scheduled rebuild", logfields.Error(err))
	}
}
