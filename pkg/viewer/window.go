package viewer

import "image"

// Default window dimensions.
const (
	DefaultWidth  = 1024
	DefaultHeight = 768
	DefaultTitle  = "dotview"
)

// Config describes a window before it is built.
type Config struct {
	Width  int
	Height int
	Title  string
}

// DefaultConfig returns a 1024x768 window titled "dotview".
func DefaultConfig() Config {
	return Config{Width: DefaultWidth, Height: DefaultHeight, Title: DefaultTitle}
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	return c
}

// Window is a top-level window holding a single image.
//
// SetImage, Image, SetVisible and Visible may be called from any goroutine.
// The remaining methods are called only from the owning handle's Loop.
// Closing a window hides it; windows are never destroyed.
type Window interface {
	SetImage(img image.Image)
	Image() image.Image
	SetVisible(visible bool)
	Visible() bool

	Deiconify()
	SetAlwaysOnTop(onTop bool)
	Repaint()
	RequestFocus()
}

// Factory builds the window for a handle. It is called at most once per handle.
type Factory func(cfg Config) (Window, error)
