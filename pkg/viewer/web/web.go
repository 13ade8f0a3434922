// Package web is a browser backend for viewer handles.
//
// A Server is both a viewer.Window and an http.Handler. The index page polls
// the server and reloads the image whenever a new one is shown, so a browser
// tab behaves like a window that follows the latest render.
//
//	srv := web.New()
//	h := viewer.NewHandle(srv.Factory)
//	go srv.ListenAndServe(ctx, "localhost:8080")
//	_ = h.Show(img)
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"image"
	"image/png"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/image/draw"

	"github.com/matzehuels/dotview/pkg/viewer"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = "localhost:8080"

// DefaultRefresh is how often the page polls for a new image.
const DefaultRefresh = time.Second

// ErrWindowExists is returned when a second window is requested from a Server.
var ErrWindowExists = errors.New("web: server already hosts a window")

// Server serves the most recently shown image.
type Server struct {
	refresh time.Duration
	logger  *log.Logger
	router  chi.Router

	mu      sync.RWMutex
	built   bool
	cfg     viewer.Config
	img     image.Image
	encoded []byte
	version uint64
	visible bool
	onTop   bool
}

// Option configures a Server.
type Option func(*Server)

// WithRefresh sets the page polling interval.
func WithRefresh(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.refresh = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New returns a Server with no image.
func New(opts ...Option) *Server {
	s := &Server{
		refresh: DefaultRefresh,
		logger:  log.Default(),
		cfg:     viewer.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(s.logRequests)
	r.Get("/", s.handleIndex)
	r.Get("/image.png", s.handleImage)
	r.Get("/api/state", s.handleState)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router = r
	return s
}

// Factory is a viewer.Factory returning the server itself.
func (s *Server) Factory(cfg viewer.Config) (viewer.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built {
		return nil, ErrWindowExists
	}
	s.built = true
	s.cfg = cfg
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Debug("web viewer listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// Version increases every time an image is shown or repainted.
func (s *Server) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Server) SetImage(img image.Image) {
	s.mu.Lock()
	s.img = img
	s.encoded = nil
	s.version++
	s.mu.Unlock()
}

func (s *Server) Image() image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img
}

func (s *Server) SetVisible(visible bool) {
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()
}

func (s *Server) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// Deiconify is a no-op; a browser tab has no iconified state.
func (s *Server) Deiconify() {}

func (s *Server) SetAlwaysOnTop(onTop bool) {
	s.mu.Lock()
	s.onTop = onTop
	s.mu.Unlock()
}

// Repaint makes open pages reload the image.
func (s *Server) Repaint() {
	s.mu.Lock()
	s.version++
	s.mu.Unlock()
}

// RequestFocus is a no-op; pages cannot be focused from the server.
func (s *Server) RequestFocus() {}

// State is the JSON document served at /api/state.
type State struct {
	Version uint64 `json:"version"`
	Visible bool   `json:"visible"`
	Title   string `json:"title"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	HasImg  bool   `json:"has_image"`
}

func (s *Server) state() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		Version: s.version,
		Visible: s.visible,
		Title:   s.cfg.Title,
		HasImg:  s.img != nil,
	}
	if s.img != nil {
		b := s.img.Bounds()
		st.Width, st.Height = b.Dx(), b.Dy()
	}
	return st
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.state())
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	data, err := s.png()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	if raw := r.URL.Query().Get("w"); raw != "" {
		maxWidth, err := strconv.Atoi(raw)
		if err != nil || maxWidth <= 0 {
			http.Error(w, "invalid width", http.StatusBadRequest)
			return
		}
		data, err = s.scaled(maxWidth)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// png returns the current image as PNG, encoding it once per version.
func (s *Server) png() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		return nil, nil
	}
	if s.encoded == nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, s.img); err != nil {
			return nil, err
		}
		s.encoded = buf.Bytes()
	}
	return s.encoded, nil
}

// scaled returns the current image shrunk to at most maxWidth pixels wide.
func (s *Server) scaled(maxWidth int) ([]byte, error) {
	img := s.Image()
	if img == nil {
		return nil, nil
	}
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return s.png()
	}
	height := max(1, b.Dy()*maxWidth/b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	st := s.state()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexTemplate.Execute(w, struct {
		State
		RefreshMS int64
	}{st, s.refresh.Milliseconds()})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "elapsed", time.Since(start).Round(time.Microsecond))
	})
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; background: #f4f4f4; font-family: system-ui, sans-serif; }
  #empty { color: #888; text-align: center; margin-top: 30vh; }
  img { display: block; max-width: 100vw; max-height: 100vh; margin: auto; }
  .hidden { display: none !important; }
</style>
</head>
<body>
<p id="empty"{{if and .HasImg .Visible}} class="hidden"{{end}}>waiting for an image</p>
<img id="view" src="/image.png?v={{.Version}}" alt=""{{if not (and .HasImg .Visible)}} class="hidden"{{end}}>
<script>
let version = {{.Version}};
async function poll() {
  try {
    const st = await (await fetch("/api/state")).json();
    const show = st.has_image && st.visible;
    document.getElementById("empty").classList.toggle("hidden", show);
    const img = document.getElementById("view");
    img.classList.toggle("hidden", !show);
    if (st.version !== version) {
      version = st.version;
      img.src = "/image.png?v=" + version;
      document.title = st.title;
    }
  } catch (e) {}
  setTimeout(poll, {{.RefreshMS}});
}
setTimeout(poll, {{.RefreshMS}});
</script>
</body>
</html>
`))

var _ viewer.Window = (*Server)(nil)
