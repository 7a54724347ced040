// Package commands implements the blogbuilder command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/eventstore"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Global carries process-wide collaborators into commands.
type Global struct {
	Stdout io.Writer
	Stderr io.Writer
	// Now is the clock for commands that stamp dates.
	Now func() time.Time
}

// NewGlobal returns a Global bound to the process streams and wall clock.
func NewGlobal() *Global {
	return &Global{Stdout: os.Stdout, Stderr: os.Stderr, Now: time.Now}
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default blogbuilder.yaml)" placeholder:"PATH"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Render the blog and publish it"`
	Check   CheckCmd   `cmd:"" help:"Validate every article without rendering"`
	Serve   ServeCmd   `cmd:"" help:"Run the webhook daemon"`
	Watch   WatchCmd   `cmd:"" help:"Preview the blog locally, rebuilding on change"`
	New     NewCmd     `cmd:"" help:"Create a new article"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	History HistoryCmd `cmd:"" help:"Show recent builds"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// ConfigPath returns the configuration path and whether it was given explicitly.
func (c *CLI) ConfigPath() (string, bool) {
	if c.Config == "" {
		return config.DefaultFileName, false
	}
	return c.Config, true
}

// LoadConfig loads the configuration and reconfigures logging from it. A
// missing default config file yields the built-in defaults.
func (c *CLI) LoadConfig() (*config.Config, error) {
	path, explicit := c.ConfigPath()
	cfg, err := config.LoadOrDefault(path, explicit)
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if c.Verbose {
		level = config.LogLevelDebug
	}
	slog.SetDefault(NewLogger(os.Stderr, level, cfg.Logging.Format))
	slog.Debug("Loaded configuration", logfields.Path(path))
	return cfg, nil
}

// NewLogger builds the process logger.
func NewLogger(w io.Writer, level config.LogLevel, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slogLevel(level)}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// openHistory opens the build history store, or returns nil when history is
// disabled. Failure to open it is logged and history is skipped.
func openHistory(cfg *config.Config) *eventstore.SQLiteStore {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := eventstore.Open(cfg.History.Path)
	if err != nil {
		slog.Warn("Build history unavailable", logfields.Path(cfg.History.Path), logfields.Error(err))
		return nil
	}
	return store
}

func closeQuietly(c io.Closer, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn(fmt.Sprintf("Failed to close %s", what), logfields.Error(err))
	}
}
