package commands

import (
	"fmt"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct{}

// Run parses every article, drafts included, and reports all problems.
func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	ok, problems := content.NewStore(cfg.Content.Dir).Check(ctx)
	for _, p := range problems {
		_, _ = fmt.Fprintf(g.Stdout, "  %v\n", p)
	}
	if len(problems) > 0 {
		return ferrors.ContentError(fmt.Sprintf("%d of %d articles are invalid", len(problems), ok+len(problems))).
			WithContext("dir", cfg.Content.Dir).
			Build()
	}
	_, _ = fmt.Fprintf(g.Stdout, "%d articles OK\n", ok)
	return nil
}
