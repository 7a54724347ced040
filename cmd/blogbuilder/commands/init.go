package commands

import (
	"fmt"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

// Run writes the example configuration.
func (i *InitCmd) Run(g *Global, root *CLI) error {
	path, _ := root.ConfigPath()
	if err := config.WriteExample(path, i.Force); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Configuration file created: %s\n", path)
	_, _ = fmt.Fprintln(g.Stdout, "Edit the site section, then run: blogbuilder build")
	return nil
}
