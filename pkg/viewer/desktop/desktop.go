// Package desktop is a native window backend for viewer handles, drawn with
// Ebitengine.
//
// Ebitengine owns the main thread and supports a single window per process,
// so an App hosts exactly one window. Run it from main and show images from
// other goroutines:
//
//	app := desktop.NewApp()
//	h := viewer.NewHandle(app.Factory, viewer.WithLoop(app.Loop()))
//	go func() { _ = h.Show(img) }()
//	return app.Run(ctx)
//
// The window manager's close button minimizes the window instead of ending the
// process; Run returns when ctx is done.
package desktop

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/matzehuels/dotview/pkg/viewer"
)

// Background fills the area around the image.
var Background = color.RGBA{R: 0xf4, G: 0xf4, B: 0xf4, A: 0xff}

// ErrWindowExists is returned when a second window is requested from an App.
var ErrWindowExists = errors.New("desktop: only one window per process")

// App runs the Ebitengine game loop and hosts one window.
type App struct {
	loop *viewer.Loop

	mu  sync.Mutex
	win *Window
	cfg viewer.Config

	ctx context.Context
}

// NewApp returns an App with its own loop.
func NewApp() *App {
	return &App{loop: viewer.NewLoop(), cfg: viewer.DefaultConfig()}
}

// Loop returns the loop drained on every frame. Pass it to viewer.WithLoop.
func (a *App) Loop() *viewer.Loop { return a.loop }

// Factory is a viewer.Factory building the App's window.
func (a *App) Factory(cfg viewer.Config) (viewer.Window, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.win != nil {
		return nil, ErrWindowExists
	}
	a.cfg = cfg
	a.win = &Window{}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	return a.win, nil
}

// Run opens the window and blocks until ctx is done. It must be called from
// the main goroutine.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	a.ctx = ctx
	cfg := a.cfg
	a.mu.Unlock()

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)

	err := ebiten.RunGame(a)
	if errors.Is(err, ebiten.Termination) {
		return ctx.Err()
	}
	return err
}

func (a *App) window() *Window {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.win
}

// Update implements ebiten.Game.
func (a *App) Update() error {
	if a.ctx != nil && a.ctx.Err() != nil {
		return ebiten.Termination
	}
	a.loop.Drain()

	if ebiten.IsWindowBeingClosed() {
		if w := a.window(); w != nil {
			w.SetVisible(false)
		} else {
			ebiten.MinimizeWindow()
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(Background)
	w := a.window()
	if w == nil {
		return
	}
	tex := w.texture()
	if tex == nil {
		return
	}

	sb := screen.Bounds()
	tb := tex.Bounds()
	scale := min(float64(sb.Dx())/float64(tb.Dx()), float64(sb.Dy())/float64(tb.Dy()), 1)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(
		(float64(sb.Dx())-float64(tb.Dx())*scale)/2,
		(float64(sb.Dy())-float64(tb.Dy())*scale)/2,
	)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(tex, op)
}

// Layout implements ebiten.Game.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Window is the App's viewer.Window.
type Window struct {
	mu    sync.Mutex
	img   image.Image
	tex   *ebiten.Image
	dirty bool

	visible atomic.Bool
}

func (w *Window) SetImage(img image.Image) {
	w.mu.Lock()
	w.img = img
	w.dirty = true
	w.mu.Unlock()
}

func (w *Window) Image() image.Image {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.img
}

func (w *Window) SetVisible(visible bool) {
	if w.visible.Swap(visible) == visible {
		return
	}
	if !visible {
		ebiten.MinimizeWindow()
	}
}

func (w *Window) Visible() bool { return w.visible.Load() }

func (w *Window) Deiconify() {
	if ebiten.IsWindowMinimized() {
		ebiten.RestoreWindow()
	}
}

func (w *Window) SetAlwaysOnTop(onTop bool) {
	ebiten.SetWindowFloating(onTop)
}

func (w *Window) Repaint() {
	w.mu.Lock()
	w.dirty = true
	w.mu.Unlock()
}

// RequestFocus is left to the handle's activator; Ebitengine has no focus call.
func (w *Window) RequestFocus() {}

// texture returns the GPU image for the current slot. Called from Draw.
func (w *Window) texture() *ebiten.Image {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirty {
		if w.tex != nil {
			w.tex.Deallocate()
			w.tex = nil
		}
		if w.img != nil && !w.img.Bounds().Empty() {
			w.tex = ebiten.NewImageFromImage(w.img)
		}
		w.dirty = false
	}
	return w.tex
}

var (
	_ viewer.Window = (*Window)(nil)
	_ ebiten.Game   = (*App)(nil)
)
