package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotview/pkg/cache"
	"github.com/matzehuels/dotview/pkg/dot"
	"github.com/matzehuels/dotview/pkg/engine"
	"github.com/matzehuels/dotview/pkg/imagestore"
	"github.com/matzehuels/dotview/pkg/logging"
	"github.com/matzehuels/dotview/pkg/viewer"
)

// Runner executes the pipeline.
//
// The Runner holds no per-call state; multiple goroutines can use the same
// Runner with different options. Calls that show images share the Runner's
// window, where the last Show wins.
type Runner struct {
	// Renderer overrides the renderer chosen from Options. Nil means an
	// engine.Exec for Options.Command, or engine.Builtin when Options.Builtin
	// is set.
	Renderer engine.Renderer

	// Cache stores successful engine output. Nil disables caching.
	Cache cache.Cache

	// TTL is the lifetime of cache entries. Zero means cache.DefaultTTL.
	TTL time.Duration

	// Keyer derives cache keys. Nil means cache.DefaultKeyer.
	Keyer cache.Keyer

	// Window receives View calls. Nil means viewer.Default().
	Window *viewer.Handle

	Logger *log.Logger
}

// NewRunner creates a runner. Any argument may be nil.
func NewRunner(c cache.Cache, window *viewer.Handle, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Window: window,
		Logger: logger,
	}
}

func (r *Runner) renderer(opts Options) engine.Renderer {
	var rr engine.Renderer
	switch {
	case r.Renderer != nil:
		rr = r.Renderer
	case opts.Builtin:
		rr = engine.NewBuiltin(opts.Layout)
	default:
		rr = engine.NewExec(opts.Command)
	}
	if r.Cache == nil {
		return rr
	}
	if _, null := r.Cache.(cache.NullCache); null {
		return rr
	}
	cached := engine.NewCached(rr, r.Cache)
	if r.TTL > 0 {
		cached.TTL = r.TTL
	}
	if r.Keyer != nil {
		cached.Keyer = r.Keyer
	}
	return cached
}

func (r *Runner) window() *viewer.Handle {
	if r.Window != nil {
		return r.Window
	}
	return viewer.Default()
}

func (r *Runner) context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.Logger != nil {
		ctx = logging.WithLogger(ctx, r.Logger)
	}
	return ctx
}

// Render describes src and runs the engine in format.
func (r *Runner) Render(ctx context.Context, src dot.Source, opts Options, format engine.Format) (engine.Output, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return engine.Output{}, err
	}
	descriptor, err := describe(src, opts)
	if err != nil {
		return engine.Output{}, err
	}
	return r.renderer(opts).Render(r.context(ctx), descriptor, format)
}

// Image renders src as a raster image.
func (r *Runner) Image(ctx context.Context, src dot.Source, opts Options) (image.Image, error) {
	out, err := r.Render(ctx, src, opts, engine.PNG)
	if err != nil {
		return nil, err
	}
	return out.Image, nil
}

// SVG renders src as vector text.
func (r *Runner) SVG(ctx context.Context, src dot.Source, opts Options) (string, error) {
	out, err := r.Render(ctx, src, opts, engine.SVG)
	if err != nil {
		return "", err
	}
	return out.SVG(), nil
}

// View renders src as a raster image and shows it in the Runner's window.
func (r *Runner) View(ctx context.Context, src dot.Source, opts Options) error {
	img, err := r.Image(ctx, src, opts)
	if err != nil {
		return err
	}
	return r.ViewImage(img)
}

// Save renders src and writes it to opts.Filename in opts.Format.
// Nothing is rendered when the destination or format is invalid.
func (r *Runner) Save(ctx context.Context, src dot.Source, opts Options) error {
	if opts.Filename == "" {
		return missingFilename()
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	format, err := opts.saveFormat()
	if err != nil {
		return err
	}

	if format == string(engine.SVG) {
		out, err := r.Render(ctx, src, opts, engine.SVG)
		if err != nil {
			return err
		}
		return imagestore.WriteBytes(out.Data, opts.Filename)
	}

	img, err := r.Image(ctx, src, opts)
	if err != nil {
		return err
	}
	return r.SaveImage(img, Options{Format: format, Filename: opts.Filename})
}

// ViewImage shows img in the Runner's window.
func (r *Runner) ViewImage(img image.Image) error {
	return r.window().Show(img)
}

// SaveImage writes img to opts.Filename in opts.Format.
func (r *Runner) SaveImage(img image.Image, opts Options) error {
	if opts.Filename == "" {
		return missingFilename()
	}
	return imagestore.Write(img, imagestore.NormalizeFormat(opts.Format), opts.Filename)
}
