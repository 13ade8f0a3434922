// Package cli implements the dotview command-line interface.
//
// # Commands
//
//   - render: Render a DOT file to PNG, SVG or another image format
//   - view: Show a rendered DOT file in a desktop or browser window
//   - watch: Re-render and re-show a DOT file whenever it changes
//   - serve: Serve a DOT file's rendering over HTTP
//   - publish: Store a rendering in the artifact store
//   - check: Check DOT syntax without rendering
//   - cache: Manage the render cache
//   - version: Print build information
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// enables engine, cache and viewer event logging. The logger travels in the
// command context.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotview/internal/config"
	"github.com/matzehuels/dotview/pkg/buildinfo"
	"github.com/matzehuels/dotview/pkg/cache"
	"github.com/matzehuels/dotview/pkg/logging"
	"github.com/matzehuels/dotview/pkg/observability"
	"github.com/matzehuels/dotview/pkg/pipeline"
	"github.com/matzehuels/dotview/pkg/viewer"
)

// appName is the application name used for display.
const appName = config.AppName

// redisKeyPrefix namespaces render entries on a shared Redis server.
const redisKeyPrefix = appName + ":render:"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	out        io.Writer
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: logging.New(w, level),
		Config: config.Default(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level. At debug level the engine, cache
// and viewer hooks log through the CLI logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetRenderHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetViewerHooks(hooks)
	}
}

// SetOutput redirects command output, mainly for tests.
func (c *CLI) SetOutput(w io.Writer) { c.out = w }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "dotview renders and displays Graphviz graphs",
		Long: `dotview renders DOT graph descriptions with Graphviz and shows the result in a
reusable window, a browser tab, or an image file.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dotview/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

func (c *CLI) context(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, c.Logger)
}

// =============================================================================
// Engine Flags
// =============================================================================

// engineFlags are shared by every command that renders.
type engineFlags struct {
	command string
	builtin bool
	layout  string
	noCache bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.command, "command", "", "layout engine executable (default from config, then \"dot\")")
	cmd.Flags().BoolVar(&f.builtin, "builtin", false, "render in-process with the embedded Graphviz library")
	cmd.Flags().StringVar(&f.layout, "layout", "", "layout for --builtin: dot, neato, fdp, sfdp, circo, twopi")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the render cache")
}

// options merges flags over the configuration.
func (c *CLI) options(f engineFlags) pipeline.Options {
	opts := pipeline.Options{
		Command: c.Config.Engine.Command,
		Builtin: c.Config.Engine.Builtin || f.builtin,
		Layout:  c.Config.Engine.Layout,
	}
	if f.command != "" {
		opts.Command = f.command
	}
	if f.layout != "" {
		opts.Layout = f.layout
	}
	return opts
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The caller closes the
// returned cache.
func (c *CLI) newRunner(ctx context.Context, f engineFlags, window *viewer.Handle) (*pipeline.Runner, cache.Cache, error) {
	ch, err := c.newCache(ctx, f.noCache)
	if err != nil {
		return nil, nil, err
	}
	r := pipeline.NewRunner(ch, window, c.Logger)
	r.TTL = c.Config.Cache.TTL.Duration
	if _, shared := ch.(*cache.RedisCache); shared {
		r.Keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), redisKeyPrefix)
	}
	return r, ch, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: c.Config.Cache.RedisAddr,
			DB:   c.Config.Cache.RedisDB,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, rendering uncached", "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	default:
		dir, err := c.Config.ResolvedCacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}
