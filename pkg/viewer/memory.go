package viewer

import (
	"image"
	"sync"
)

// Memory is a headless Window. It keeps the same state an on-screen window
// would and records the loop-side operations applied to it.
type Memory struct {
	cfg Config

	mu        sync.Mutex
	img       image.Image
	visible   bool
	iconified bool
	onTop     bool
	repaints  int
	ops       []string
}

// NewMemory is a Factory for headless windows.
func NewMemory(cfg Config) (Window, error) {
	return &Memory{cfg: cfg}, nil
}

// Config returns the configuration the window was built with.
func (m *Memory) Config() Config { return m.cfg }

func (m *Memory) SetImage(img image.Image) {
	m.mu.Lock()
	m.img = img
	m.mu.Unlock()
}

func (m *Memory) Image() image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.img
}

func (m *Memory) SetVisible(visible bool) {
	m.mu.Lock()
	m.visible = visible
	m.mu.Unlock()
}

func (m *Memory) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// Iconify minimizes the window, as a user would.
func (m *Memory) Iconify() {
	m.mu.Lock()
	m.iconified = true
	m.mu.Unlock()
}

// Close hides the window, as the close button would.
func (m *Memory) Close() {
	m.SetVisible(false)
}

func (m *Memory) Deiconify() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.iconified = false
	m.ops = append(m.ops, "deiconify")
}

func (m *Memory) SetAlwaysOnTop(onTop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTop = onTop
	if onTop {
		m.ops = append(m.ops, "ontop")
	} else {
		m.ops = append(m.ops, "notontop")
	}
}

func (m *Memory) Repaint() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repaints++
	m.ops = append(m.ops, "repaint")
}

func (m *Memory) RequestFocus() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, "focus")
}

// Iconified reports whether the window is minimized.
func (m *Memory) Iconified() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.iconified
}

// AlwaysOnTop reports the current stacking flag.
func (m *Memory) AlwaysOnTop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onTop
}

// Ops returns the loop-side operations applied so far, in order.
func (m *Memory) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ops...)
}

var _ Window = (*Memory)(nil)
