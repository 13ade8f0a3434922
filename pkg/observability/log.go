package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level entries to
// a charmbracelet logger. The CLI registers it when --verbose is set.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to l, or to log.Default() when l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

func (h *LogHooks) OnRenderStart(_ context.Context, engine, format string) {
	h.Logger.Debug("render start", "engine", engine, "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, engine, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("render failed", "engine", engine, "format", format, "elapsed", d.Round(time.Millisecond))
		return
	}
	h.Logger.Debug("render done", "engine", engine, "format", format, "bytes", size, "elapsed", d.Round(time.Millisecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnWindowCreated(handle string, width, height int) {
	h.Logger.Debug("window created", "handle", handle, "width", width, "height", height)
}

func (h *LogHooks) OnShow(handle string, width, height int) {
	h.Logger.Debug("show image", "handle", handle, "width", width, "height", height)
}

var (
	_ RenderHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
	_ ViewerHooks = (*LogHooks)(nil)
)
