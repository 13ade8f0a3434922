package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotview/pkg/dot"
	"github.com/matzehuels/dotview/pkg/engine"
	"github.com/matzehuels/dotview/pkg/imagestore"
	"github.com/matzehuels/dotview/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	engineFlags
	output string // output file path; "-" writes to stdout
	format string // output format; inferred from output when empty
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <file|->",
		Short: "Render a DOT file to an image",
		Long: `Render a DOT file to an image.

The output format is taken from --format, then from the extension of --output,
and defaults to png. Without --output the result is written next to the input
(graph.dot becomes graph.png); input from stdin is written to stdout.`,
		Example: `  dotview render graph.dot
  dotview render graph.dot -o graph.svg
  dotview render graph.dot -f jpeg -o out.jpg
  cat graph.dot | dotview render - -f svg > graph.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(c.context(cmd.Context()), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (\"-\" for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png (default), svg, "+strings.Join(imagestore.Formats(), ", "))
	opts.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, input string, opts renderOpts) error {
	descriptor, err := readDescriptor(input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	format := resolveFormat(opts.format, opts.output)
	output := opts.output
	if output == "" {
		output = defaultOutput(input, format)
	}

	runner, ch, err := c.newRunner(ctx, opts.engineFlags, nil)
	if err != nil {
		return err
	}
	defer ch.Close()

	popts := c.options(opts.engineFlags)
	popts.Format = format

	if output == "" || output == stdinName {
		return c.renderToStdout(ctx, runner, descriptor, popts)
	}
	popts.Filename = output

	spinner := newSpinnerWithContext(ctx, "Rendering "+displayName(input)+"...")
	spinner.Start()
	err = runner.Save(ctx, dot.Text(descriptor), popts)
	spinner.Stop()
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", displayName(input))
	printFile(output)
	return nil
}

// renderToStdout writes raw engine output. Only engine formats are allowed.
func (c *CLI) renderToStdout(ctx context.Context, runner *pipeline.Runner, descriptor string, opts pipeline.Options) error {
	format, err := engine.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	out, err := runner.Render(ctx, dot.Text(descriptor), opts, format)
	if err != nil {
		return err
	}
	_, err = c.out.Write(out.Data)
	return err
}

// resolveFormat picks the output format from the flag, then the output
// extension, then png.
func resolveFormat(flag, output string) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	if strings.EqualFold(filepath.Ext(output), ".svg") {
		return string(engine.SVG)
	}
	if f := imagestore.FormatFromPath(output); f != "" {
		return f
	}
	return imagestore.DefaultFormat
}
