package viewer

import (
	"context"
	"image"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/dotview/pkg/observability"
)

// Handle is a reusable window. The zero value is not usable; create handles
// with NewHandle or use Default.
type Handle struct {
	id        string
	cfg       Config
	loop      *Loop
	ownLoop   bool
	startLoop sync.Once
	activator Activator
	logger    *log.Logger
	window    *Lazy[Window]
}

// Option configures a Handle.
type Option func(*Handle)

// WithConfig sets the window dimensions and title.
func WithConfig(cfg Config) Option {
	return func(h *Handle) { h.cfg = cfg.withDefaults() }
}

// WithLoop makes the handle queue window work on l. The caller is
// responsible for running l, either with Run or by calling Drain.
// Without this option the handle starts its own loop goroutine on first Show.
func WithLoop(l *Loop) Option {
	return func(h *Handle) {
		h.loop = l
		h.ownLoop = false
	}
}

// WithActivator replaces the platform activator.
func WithActivator(a Activator) Option {
	return func(h *Handle) { h.activator = a }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(h *Handle) { h.logger = l }
}

// WithID sets the handle identifier reported to hooks and logs.
func WithID(id string) Option {
	return func(h *Handle) { h.id = id }
}

// NewHandle returns a handle whose window is built by factory on first use.
func NewHandle(factory Factory, opts ...Option) *Handle {
	h := &Handle{
		id:        uuid.NewString(),
		cfg:       DefaultConfig(),
		loop:      NewLoop(),
		ownLoop:   true,
		activator: SystemActivator(),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.window = NewLazy(func() (Window, error) {
		w, err := factory(h.cfg)
		if err != nil {
			return nil, err
		}
		observability.Viewer().OnWindowCreated(h.id, h.cfg.Width, h.cfg.Height)
		h.logger.Debug("window created", "handle", h.id, "width", h.cfg.Width, "height", h.cfg.Height)
		return w, nil
	})
	return h
}

// ID returns the handle identifier.
func (h *Handle) ID() string { return h.id }

// Config returns the window configuration.
func (h *Handle) Config() Config { return h.cfg }

// Loop returns the loop window work is queued on.
func (h *Handle) Loop() *Loop { return h.loop }

// Window returns the handle's window, building it on first call.
func (h *Handle) Window() (Window, error) {
	return h.window.Get()
}

// Built reports whether the window exists yet.
func (h *Handle) Built() bool {
	return h.window.Built()
}

// Show places img in the window and makes it visible.
//
// The image slot and the visible flag are updated before Show returns. The
// window is then deiconified, raised and focused asynchronously on the
// handle's loop; Show does not wait for that to happen.
func (h *Handle) Show(img image.Image) error {
	w, err := h.window.Get()
	if err != nil {
		return err
	}

	w.SetImage(img)
	w.SetVisible(true)

	var width, height int
	if img != nil {
		b := img.Bounds()
		width, height = b.Dx(), b.Dy()
	}
	observability.Viewer().OnShow(h.id, width, height)

	if h.ownLoop {
		h.startLoop.Do(func() {
			go h.loop.Run(context.Background())
		})
	}
	h.loop.Go(func() { h.raise(w) })
	return nil
}

// raise brings w to the front. It runs on the loop.
func (h *Handle) raise(w Window) {
	w.Deiconify()
	w.SetAlwaysOnTop(true)
	w.Repaint()
	w.RequestFocus()
	w.SetAlwaysOnTop(false)

	if h.activator == nil {
		return
	}
	if err := h.activator.Activate(context.Background()); err != nil {
		h.logger.Debug("window activation failed", "handle", h.id, "err", err)
	}
}

var (
	defaultMu      sync.Mutex
	defaultFactory Factory = NewMemory
	defaultOpts    []Option
	defaultHandle  *Handle
)

// SetDefault configures the handle returned by Default. It has no effect once
// Default has been called.
func SetDefault(factory Factory, opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultHandle != nil {
		return
	}
	if factory != nil {
		defaultFactory = factory
	}
	defaultOpts = opts
}

// Default returns the process-wide handle, creating it on first call.
// Unless SetDefault was called first, its window is a headless Memory window.
func Default() *Handle {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultHandle == nil {
		opts := append([]Option{WithID("default")}, defaultOpts...)
		defaultHandle = NewHandle(defaultFactory, opts...)
	}
	return defaultHandle
}
