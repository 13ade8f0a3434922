package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotview/internal/config"
)

// serveCommand creates the serve command: watch with the web backend and
// plain log output, suited to running unattended.
func (c *CLI) serveCommand() *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Serve a DOT file's rendering over HTTP, updating on change",
		Example: `  dotview serve graph.dot
  dotview serve graph.dot --addr 0.0.0.0:8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.backend = config.ViewerWeb
			opts.noTUI = true
			return c.runWatch(c.context(cmd.Context()), args[0], opts)
		},
	}

	opts.engineFlags.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, then localhost:8080)")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", defaultDebounce, "delay before re-rendering after a change")

	return cmd
}
