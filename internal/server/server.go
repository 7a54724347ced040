// Package server runs the webhook daemon: it receives push events, queues
// builds for a single runner and exposes health, metrics and build history.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/eventstore"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/pipeline"
	"git.home.luguber.info/inful/blogbuilder/internal/server/middleware"
	"git.home.luguber.info/inful/blogbuilder/internal/trigger"
)

// MaxWebhookBody caps the size of accepted webhook payloads.
const MaxWebhookBody = 5 << 20

// Builder runs builds. *pipeline.Orchestrator implements it.
type Builder interface {
	Handle(ctx context.Context, ev trigger.PushEvent) (*pipeline.Result, error)
	MainBranch() string
	Last() *pipeline.Result
}

// History serves recorded builds. *eventstore.SQLiteStore implements it.
type History interface {
	Summaries(ctx context.Context, limit int) ([]eventstore.BuildSummary, error)
	Summary(ctx context.Context, buildID string) (eventstore.BuildSummary, error)
}

// Options configure a Server.
type Options struct {
	Addr          string
	WebhookSecret string
	QueueSize     int
	// Schedule enqueues a main-branch rebuild at this interval when positive.
	Schedule time.Duration
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// History serves GET /builds when set.
	History History
	Version string
	Logger  *slog.Logger
}

// Server is the webhook daemon.
type Server struct {
	builder   Builder
	opts      Options
	queue     *buildQueue
	errors    *ferrors.HTTPErrorAdapter
	logger    *slog.Logger
	startedAt time.Time
	http      *http.Server
}

// New returns a Server for b.
func New(b Builder, opts Options) (*Server, error) {
	if b == nil {
		return nil, ferrors.ConfigError("server requires a builder").Build()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 16
	}
	s := &Server{
		builder:   b,
		opts:      opts,
		queue:     newBuildQueue(opts.QueueSize, opts.Logger),
		errors:    ferrors.NewHTTPErrorAdapter(opts.Logger),
		logger:    opts.Logger,
		startedAt: time.Now(),
	}
	return s, nil
}

// Enqueue queues ev for the build runner, assigning its build id. It fails
// with ErrQueueFull when the queue is at capacity.
func (s *Server) Enqueue(ev trigger.PushEvent) (string, error) {
	if ev.BuildID == "" {
		ev.BuildID = newBuildID()
	}
	if err := s.queue.enqueue(ev); err != nil {
		return "", err
	}
	s.logger.Info("Build queued",
		logfields.BuildID(ev.BuildID),
		logfields.Ref(ev.Ref),
		logfields.Trigger(string(ev.Source)),
		logfields.Count(s.queue.depth()))
	return ev.BuildID, nil
}

// Handler returns the daemon's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /builds", s.handleBuilds)
	mux.HandleFunc("GET /builds/{id}", s.handleBuild)
	if s.opts.Metrics != nil {
		mux.Handle("GET /metrics", s.opts.Metrics)
	}
	return middleware.Chain(s.logger, s.errors)(mux)
}

// Run serves HTTP, drains the build queue and runs the schedule until ctx
// is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to listen").
			WithContext("addr", s.opts.Addr).
			Build()
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched, err := newScheduler(s, s.opts.Schedule)
	if err != nil {
		_ = ln.Close()
		return err
	}
	if sched != nil {
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				s.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		s.queue.run(ctx, s.builder)
	}()

	s.http = &http.Server{Handler: s.Handler(), ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 60 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("Webhook daemon listening", logfields.URL(fmt.Sprintf("http://%s", ln.Addr())))
		serveErr <- s.http.Serve(ln)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			cancel()
			<-runnerDone
			return ferrors.WrapError(err, ferrors.CategoryDaemon, "HTTP server failed").Build()
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer stop()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP shutdown did not complete", logfields.Error(err))
	}
	cancel()
	<-runnerDone
	s.logger.Info("Webhook daemon stopped")
	return nil
}
