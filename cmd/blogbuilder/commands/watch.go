package commands

import (
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/pipeline"
	"git.home.luguber.info/inful/blogbuilder/internal/preview"
	"git.home.luguber.info/inful/blogbuilder/internal/publish"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Addr     string        `default:"localhost:1313" help:"Preview listen address" placeholder:"HOST:PORT"`
	Output   string        `short:"o" help:"Directory the preview site is published to (default: a temporary directory)" placeholder:"DIR"`
	Drafts   bool          `help:"Include draft articles"`
	Debounce time.Duration `default:"300ms" help:"Quiet period before a change triggers a rebuild"`
}

// Run builds once, then rebuilds on every change until interrupted.
func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if w.Drafts {
		cfg.Content.Drafts = true
	}

	out := w.Output
	if out == "" {
		tmp, err := os.MkdirTemp("", "blogbuilder-preview-")
		if err != nil {
			return err
		}
		defer func() {
			if err := os.RemoveAll(tmp); err != nil {
				slog.Warn("Failed to remove preview output", logfields.Path(tmp), logfields.Error(err))
			}
		}()
		out = tmp
	}

	ctx, stop := signalContext()
	defer stop()

	orch, err := pipeline.FromConfig(ctx, cfg, pipeline.Setup{
		Publisher: publish.NewDirPublisher(out),
		Logger:    slog.Default(),
	})
	if err != nil {
		return err
	}
	defer closeQuietly(orch, "render cache")

	dirs := []string{cfg.Content.Dir}
	for _, d := range []string{cfg.Build.TemplatesDir, cfg.Build.StaticDir} {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return preview.New(orch, preview.Options{
		Dirs:      dirs,
		OutputDir: out,
		Addr:      w.Addr,
		Debounce:  w.Debounce,
		Logger:    slog.Default(),
	}).Run(ctx)
}
