package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/eventstore"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" default:"10" help:"Number of builds to show (-1 for all)"`
	JSON  bool `name:"json" help:"Print builds as JSON"`
}

// Run prints recent builds, newest first.
func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return ferrors.ConfigError("build history is disabled; set history.enabled in the configuration").Build()
	}
	store, err := eventstore.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer closeQuietly(store, "build history")

	ctx, stop := signalContext()
	defer stop()

	builds, err := store.Summaries(ctx, h.Limit)
	if err != nil {
		return err
	}
	if h.JSON {
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(builds)
	}
	if len(builds) == 0 {
		_, _ = fmt.Fprintln(g.Stdout, "No builds recorded")
		return nil
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD\tSTARTED\tTRIGGER\tREF\tSTATE\tPAGES\tDURATION\tERROR")
	for _, b := range builds {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			shortID(b.BuildID),
			b.StartedAt.Local().Format(time.DateTime),
			b.Trigger,
			b.Ref,
			historyState(b),
			b.Pages,
			b.Duration.Round(time.Millisecond),
			b.Error,
		)
	}
	return tw.Flush()
}

func historyState(b eventstore.BuildSummary) string {
	if b.Skipped {
		return "skipped"
	}
	return b.State
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
