package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotview/internal/config"
	"github.com/matzehuels/dotview/pkg/artifact"
	"github.com/matzehuels/dotview/pkg/dot"
	"github.com/matzehuels/dotview/pkg/engine"
)

// publishOpts holds the command-line flags for the publish command.
type publishOpts struct {
	engineFlags
	format string
	name   string
}

// publishCommand creates the publish command and its list subcommand.
func (c *CLI) publishCommand() *cobra.Command {
	var opts publishOpts

	cmd := &cobra.Command{
		Use:   "publish <file|->",
		Short: "Render a DOT file and store the image in the artifact store",
		Long: `Render a DOT file and store the image in the artifact store.

With [store] mongo_uri configured, images go to a MongoDB GridFS bucket.
Otherwise they are kept in a local directory under $XDG_DATA_HOME/dotview.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPublish(c.context(cmd.Context()), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "png", "engine format: png or svg")
	cmd.Flags().StringVar(&opts.name, "name", "", "artifact name (default: input name with format extension)")
	opts.register(cmd)

	cmd.AddCommand(c.publishListCommand())

	return cmd
}

func (c *CLI) publishListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored images, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.context(cmd.Context())
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				printInfo("No published images")
				return nil
			}
			for _, a := range items {
				fmt.Fprintf(c.out, "%s  %s  %s  %s\n",
					StyleHighlight.Render(a.ID),
					StyleValue.Render(a.Name),
					StyleDim.Render(fmt.Sprintf("%d bytes", a.Size)),
					StyleDim.Render(a.Created.Local().Format(time.DateTime)))
			}
			return nil
		},
	}
}

func (c *CLI) runPublish(ctx context.Context, cmd *cobra.Command, input string, opts publishOpts) error {
	format, err := engine.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	descriptor, err := readDescriptor(input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	runner, ch, err := c.newRunner(ctx, opts.engineFlags, nil)
	if err != nil {
		return err
	}
	defer ch.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+displayName(input)+"...")
	spinner.Start()
	out, err := runner.Render(ctx, dot.Text(descriptor), c.options(opts.engineFlags), format)
	spinner.Stop()
	if err != nil {
		return err
	}

	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	name := opts.name
	if name == "" {
		name = filepath.Base(defaultOutput(input, string(format)))
		if input == stdinName {
			name = "stdin." + string(format)
		}
	}
	a, err := store.Put(ctx, name, string(format), out.Data)
	if err != nil {
		return err
	}

	printSuccess("Published %s", name)
	printKeyValue("ID", StyleHighlight.Render(a.ID))
	printKeyValue("Digest", StyleDim.Render(a.Digest))
	return nil
}

// openStore connects to GridFS when configured, else opens the local store.
func (c *CLI) openStore(ctx context.Context) (artifact.Store, error) {
	st := c.Config.Store
	if uri := os.Getenv("DOTVIEW_MONGO_URI"); uri != "" {
		st.MongoURI = uri
	}
	if st.MongoURI != "" {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return artifact.NewGridFS(ctx, artifact.GridFSConfig{
			URI:      st.MongoURI,
			Database: st.Database,
			Bucket:   st.Bucket,
		})
	}

	dir := st.Dir
	if dir == "" {
		dataDir, err := config.DataDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(dataDir, "artifacts")
	}
	return artifact.NewFileStore(dir)
}
