package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotview/pkg/dot"
)

// viewOpts holds the command-line flags for the view command.
type viewOpts struct {
	engineFlags
	viewerFlags
}

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view <file|->",
		Short: "Show a DOT file in a window",
		Long: `Render a DOT file and show it in a window.

The desktop backend opens a native window; closing it minimizes it. The web
backend serves the image to a browser tab. Press Ctrl+C to exit.`,
		Example: `  dotview view graph.dot
  dotview view graph.dot --backend web --addr localhost:9090`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(c.context(cmd.Context()), cmd, args[0], opts)
		},
	}

	opts.engineFlags.register(cmd)
	opts.viewerFlags.register(cmd)

	return cmd
}

func (c *CLI) runView(ctx context.Context, cmd *cobra.Command, input string, opts viewOpts) error {
	descriptor, err := readDescriptor(input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	s, err := c.openViewer(opts.viewerFlags, displayName(input))
	if err != nil {
		return err
	}
	runner, ch, err := c.newRunner(ctx, opts.engineFlags, s.handle)
	if err != nil {
		return err
	}
	defer ch.Close()

	return s.run(ctx, func(ctx context.Context) error {
		if err := runner.View(ctx, dot.Text(descriptor), c.options(opts.engineFlags)); err != nil {
			return err
		}
		printSuccess("Showing %s", displayName(input))
		if s.url != "" {
			printKeyValue("URL", StyleLink.Render(s.url))
		}
		return nil
	})
}
