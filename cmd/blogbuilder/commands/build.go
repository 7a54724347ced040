package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/pipeline"
	"git.home.luguber.info/inful/blogbuilder/internal/publish"
	"git.home.luguber.info/inful/blogbuilder/internal/trigger"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Ref           string `help:"Ref or branch being built (default: CI environment, then local HEAD, then the main branch)"`
	Output        string `short:"o" help:"Publish into this directory instead of the configured target" placeholder:"DIR"`
	DryRun        bool   `name:"dry-run" help:"Render without publishing"`
	KeepWorkspace bool   `name:"keep-workspace" help:"Keep the build workspace for inspection"`
}

// Run executes the build command.
func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	history := openHistory(cfg)
	if history != nil {
		defer closeQuietly(history, "build history")
	}

	setup := pipeline.Setup{
		Publisher:      b.publisher(),
		Logger:         slog.Default(),
		KeepWorkspaces: b.KeepWorkspace,
	}
	if history != nil {
		setup.History = history
	}
	orch, err := pipeline.FromConfig(ctx, cfg, setup)
	if err != nil {
		return err
	}
	defer closeQuietly(orch, "render cache")

	ev := ResolveEvent(b.Ref, cfg, os.LookupEnv)
	slog.Info("Starting build",
		logfields.Trigger(string(ev.Source)), logfields.Ref(ev.Ref), logfields.Commit(ev.After))

	res, err := orch.Handle(ctx, ev)
	printResult(g, res)
	return err
}

func (b *BuildCmd) publisher() publish.Publisher {
	switch {
	case b.DryRun:
		return publish.Noop{}
	case b.Output != "":
		return publish.NewDirPublisher(b.Output)
	default:
		return nil
	}
}

// ResolveEvent decides which ref a one-shot build is for: an explicit ref
// first, then a recognised CI environment, then HEAD of the local clone, and
// finally the configured main branch.
func ResolveEvent(ref string, cfg *config.Config, lookup func(string) (string, bool)) trigger.PushEvent {
	if ref != "" {
		return trigger.Manual(ref, trigger.SourceManual)
	}
	if ev, ok := trigger.FromEnv(lookup); ok {
		return ev
	}
	ev, err := trigger.FromRepository(cfg.BaseDir())
	if err == nil {
		return ev
	}
	slog.Debug("No local repository, building the main branch", logfields.Error(err))
	return trigger.Manual(cfg.Build.MainBranch, trigger.SourceManual)
}

func printResult(g *Global, res *pipeline.Result) {
	if res == nil {
		return
	}
	switch {
	case res.Skipped:
		_, _ = fmt.Fprintf(g.Stdout, "Skipped build %s: %s is not the main branch\n", res.BuildID, res.Ref)
	case res.Err != nil:
		_, _ = fmt.Fprintf(g.Stdout, "Build %s failed in %s\n", res.BuildID, res.ErrorStage)
	default:
		_, _ = fmt.Fprintf(g.Stdout, "Built %d pages from %d articles in %s (build %s)\n",
			res.Pages, res.Documents, res.Duration.Round(time.Millisecond), res.BuildID)
	}
}
