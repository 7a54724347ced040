package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/pipeline"
	"git.home.luguber.info/inful/blogbuilder/internal/server"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)" placeholder:"HOST:PORT"`
}

// Run starts the webhook daemon and blocks until interrupted.
func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}

	ctx, stop := signalContext()
	defer stop()

	logger := slog.Default()
	setup := pipeline.Setup{Logger: logger}
	opts := server.Options{
		Addr:          cfg.Server.Addr,
		WebhookSecret: cfg.Server.WebhookSecret,
		QueueSize:     cfg.Server.QueueSize,
		Schedule:      cfg.Server.Schedule,
		Version:       version.String(),
		Logger:        logger,
	}

	if cfg.Metrics.Enabled {
		reg := metrics.NewRegistry()
		setup.Metrics = metrics.NewPrometheusRecorder(reg, cfg.Metrics.Namespace)
		opts.Metrics = metrics.HTTPHandler(reg)
	}
	if history := openHistory(cfg); history != nil {
		defer closeQuietly(history, "build history")
		setup.History = history
		opts.History = history
	}
	if cfg.Server.WebhookSecret == "" {
		logger.Warn("No webhook secret configured; webhook signatures are not verified")
	}

	orch, err := pipeline.FromConfig(ctx, cfg, setup)
	if err != nil {
		return err
	}
	defer closeQuietly(orch, "render cache")

	srv, err := server.New(orch, opts)
	if err != nil {
		return err
	}
	logger.Info("Starting blogbuilder daemon", logfields.URL(cfg.Server.Addr), slog.String("version", version.Version))
	return srv.Run(ctx)
}
