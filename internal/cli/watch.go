package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotview/pkg/dot"
	"github.com/matzehuels/dotview/pkg/pipeline"
)

// errQuit signals that the user left the watch view.
var errQuit = errors.New("quit")

// watchOpts holds the command-line flags for the watch command.
type watchOpts struct {
	engineFlags
	viewerFlags
	debounce time.Duration
	noTUI    bool
}

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-render a DOT file into the same window whenever it changes",
		Long: `Render a DOT file, show it, and re-render it every time the file is saved.

The window is reused across renders. A failed render keeps the previous image
on screen and shows the engine diagnostic in the terminal.`,
		Example: `  dotview watch graph.dot
  dotview watch graph.dot --backend web --no-tui`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == stdinName {
				return fmt.Errorf("watch needs a file, not stdin")
			}
			err := c.runWatch(c.context(cmd.Context()), args[0], opts)
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		},
	}

	opts.engineFlags.register(cmd)
	opts.viewerFlags.register(cmd)
	cmd.Flags().DurationVar(&opts.debounce, "debounce", defaultDebounce, "delay before re-rendering after a change")
	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "log renders instead of showing a live status view")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, opts watchOpts) error {
	if _, err := os.Stat(input); err != nil {
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

	source := dot.SourceFunc(func(dot.Options) (string, error) {
		return readDescriptor(input, nil)
	})
	popts := c.options(opts.engineFlags)

	return s.run(ctx, func(ctx context.Context) error {
		if opts.noTUI {
			return c.watchLogged(ctx, input, opts.debounce, runner, source, popts, s.url)
		}
		backend := c.Config.Viewer.Backend
		if opts.backend != "" {
			backend = opts.backend
		}
		return c.watchTUI(ctx, input, opts.debounce, runner, source, popts, NewWatchModel(displayName(input), backend, s.url))
	})
}

// renderAndShow renders once and reports the outcome.
func renderAndShow(ctx context.Context, runner *pipeline.Runner, source dot.Source, opts pipeline.Options) renderDoneMsg {
	start := time.Now()
	err := runner.View(ctx, source, opts)
	return renderDoneMsg{at: time.Now(), elapsed: time.Since(start), err: err}
}

func (c *CLI) watchLogged(ctx context.Context, input string, debounce time.Duration, runner *pipeline.Runner, source dot.Source, opts pipeline.Options, url string) error {
	report := func() {
		done := renderAndShow(ctx, runner, source, opts)
		if done.err != nil {
			c.Logger.Error("render failed", "file", input, "err", done.err)
			return
		}
		c.Logger.Info("rendered", "file", input, "elapsed", done.elapsed.Round(time.Millisecond))
	}

	report()
	if url != "" {
		c.Logger.Info("serving", "url", url)
	}
	return watchFile(ctx, input, debounce, c.Logger, report)
}

func (c *CLI) watchTUI(ctx context.Context, input string, debounce time.Duration, runner *pipeline.Runner, source dot.Source, opts pipeline.Options, model WatchModel) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	go func() {
		report := func() {
			p.Send(renderStartMsg{})
			p.Send(renderAndShow(ctx, runner, source, opts))
		}
		report()
		if err := watchFile(ctx, input, debounce, c.Logger, report); err != nil && ctx.Err() == nil {
			p.Send(renderDoneMsg{at: time.Now(), err: fmt.Errorf("watch %s: %w", input, err)})
		}
	}()

	_, err := p.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	return errQuit
}
