package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/dotview/pkg/cache"
	"github.com/matzehuels/dotview/pkg/dot"
	"github.com/matzehuels/dotview/pkg/engine"
	"github.com/matzehuels/dotview/pkg/errors"
	"github.com/matzehuels/dotview/pkg/imagestore"
	"github.com/matzehuels/dotview/pkg/viewer"
)

// stubRenderer returns a fixed-size image for raster requests and echoes the
// descriptor for vector requests.
type stubRenderer struct {
	mu          sync.Mutex
	calls       int
	descriptors []string
	err         error
	w, h        int
}

func (s *stubRenderer) Name() string { return "stub" }

func (s *stubRenderer) Render(_ context.Context, descriptor string, format engine.Format) (engine.Output, error) {
	s.mu.Lock()
	s.calls++
	s.descriptors = append(s.descriptors, descriptor)
	s.mu.Unlock()

	if s.err != nil {
		return engine.Output{}, s.err
	}
	if format == engine.SVG {
		return engine.Output{Format: format, Data: []byte("<svg>" + descriptor + "</svg>")}, nil
	}
	img := image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return engine.Output{Format: format, Data: buf.Bytes(), Image: img}, nil
}

func newStub() *stubRenderer { return &stubRenderer{w: 16, h: 8} }

func testRunner(r engine.Renderer) (*Runner, *viewer.Loop) {
	loop := viewer.NewLoop()
	h := viewer.NewHandle(viewer.NewMemory, viewer.WithLoop(loop), viewer.WithActivator(viewer.NoopActivator{}))
	runner := NewRunner(nil, h, nil)
	runner.Renderer = r
	return runner, loop
}

// withDefaultRenderer points the package-level helpers at r for one test.
func withDefaultRenderer(t *testing.T, r engine.Renderer) {
	t.Helper()
	d := Default()
	prev := d.Renderer
	d.Renderer = r
	t.Cleanup(func() { d.Renderer = prev })
}

var (
	abNodes = []string{"A", "B"}
	abEdges = func(n string) []string {
		if n == "A" {
			return []string{"B"}
		}
		return nil
	}
)

func TestRunnerImage(t *testing.T) {
	stub := newStub()
	r, _ := testRunner(stub)

	img, err := r.Image(context.Background(), dot.Graph(abNodes, abEdges), Options{})
	if err != nil {
		t.Fatalf("Image() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("Image() bounds = %v", b)
	}
	if !strings.Contains(stub.descriptors[0], "n0 -> n1;") {
		t.Errorf("renderer got descriptor %q", stub.descriptors[0])
	}
}

func TestRunnerSVG(t *testing.T) {
	r, _ := testRunner(newStub())

	svg, err := r.SVG(context.Background(), dot.Text("digraph { x }"), Options{})
	if err != nil {
		t.Fatalf("SVG() error: %v", err)
	}
	if svg != "<svg>digraph { x }</svg>" {
		t.Errorf("SVG() = %q", svg)
	}
}

func TestDescriptorOptionsPassThrough(t *testing.T) {
	stub := newStub()
	r, _ := testRunner(stub)

	opts := Options{Descriptor: dot.Options{Undirected: true, Name: "deps"}}
	if _, err := r.Image(context.Background(), dot.Graph(abNodes, abEdges), opts); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stub.descriptors[0], `graph "deps" {`) {
		t.Errorf("descriptor = %q", stub.descriptors[0])
	}
}

func TestErrorsSurfaceUnchanged(t *testing.T) {
	renderErr := &engine.RenderError{Engine: "stub", Descriptor: "x", Stderr: "syntax error"}
	r, _ := testRunner(&stubRenderer{err: renderErr})

	_, err := r.Image(context.Background(), dot.Text("x"), Options{})
	if err != error(renderErr) {
		t.Errorf("Image() error = %v, want the renderer's error", err)
	}

	genErr := stderrors.New("generator failed")
	src := dot.SourceFunc(func(dot.Options) (string, error) { return "", genErr })
	if _, err := r.SVG(context.Background(), src, Options{}); err != genErr {
		t.Errorf("SVG() error = %v, want the generator's error", err)
	}
}

func TestRunnerView(t *testing.T) {
	r, loop := testRunner(newStub())

	if err := r.View(context.Background(), dot.Graph(abNodes, abEdges), Options{}); err != nil {
		t.Fatalf("View() error: %v", err)
	}
	loop.Drain()

	w, _ := r.Window.Window()
	if !w.Visible() || w.Image() == nil {
		t.Error("View() should leave the rendered image visible")
	}
}

func TestRunnerViewRenderFailure(t *testing.T) {
	r, _ := testRunner(&stubRenderer{err: stderrors.New("boom")})

	if err := r.View(context.Background(), dot.Text("x"), Options{}); err == nil {
		t.Fatal("View() should fail when rendering fails")
	}
	if r.Window.Built() {
		t.Error("window should not be built when rendering fails")
	}
}

func TestRunnerSave(t *testing.T) {
	tests := []struct {
		name   string
		format string
		file   string
	}{
		{"default png", "", "out.png"},
		{"jpeg", "jpg", "out.jpg"},
		{"bmp", "bmp", "out.bmp"},
		{"tiff", "tiff", "out.tiff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := testRunner(newStub())
			path := filepath.Join(t.TempDir(), tt.file)

			err := r.Save(context.Background(), dot.Graph(abNodes, abEdges), Options{Format: tt.format, Filename: path})
			if err != nil {
				t.Fatalf("Save() error: %v", err)
			}
			img, err := imagestore.Read(path)
			if err != nil {
				t.Fatalf("read back: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
				t.Errorf("saved image bounds = %v", b)
			}
		})
	}
}

func TestRunnerSaveSVG(t *testing.T) {
	r, _ := testRunner(newStub())
	path := filepath.Join(t.TempDir(), "out.svg")

	if err := r.Save(context.Background(), dot.Text("digraph {}"), Options{Format: "svg", Filename: path}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "<svg>digraph {}</svg>" {
		t.Errorf("saved svg = %q", data)
	}
}

func TestRunnerSaveFormatCase(t *testing.T) {
	r, _ := testRunner(newStub())
	dir := t.TempDir()

	svg := filepath.Join(dir, "out.svg")
	if err := r.Save(context.Background(), dot.Text("digraph {}"), Options{Format: "SVG", Filename: svg}); err != nil {
		t.Fatalf("Save(SVG) = %v", err)
	}
	if data, _ := os.ReadFile(svg); string(data) != "<svg>digraph {}</svg>" {
		t.Errorf("saved svg = %q", data)
	}

	png := filepath.Join(dir, "out.png")
	if err := r.Save(context.Background(), dot.Text("digraph {}"), Options{Format: ".PNG", Filename: png}); err != nil {
		t.Fatalf("Save(.PNG) = %v", err)
	}
	if _, err := imagestore.Read(png); err != nil {
		t.Errorf("saved png unreadable: %v", err)
	}
}

func TestRunnerSaveValidation(t *testing.T) {
	stub := newStub()
	r, _ := testRunner(stub)
	dir := t.TempDir()

	err := r.Save(context.Background(), dot.Text("x"), Options{})
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("Save() without filename = %v, want IO_ERROR", err)
	}

	err = r.Save(context.Background(), dot.Text("x"), Options{Format: "xcf", Filename: filepath.Join(dir, "out.xcf")})
	if !errors.Is(err, errors.ErrCodeUnsupported) || !errors.IsIOError(err) {
		t.Errorf("Save() with unknown format = %v, want UNSUPPORTED", err)
	}

	if stub.calls != 0 {
		t.Errorf("renderer called %d times for invalid saves", stub.calls)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("invalid saves wrote %d files", len(entries))
	}
}

func TestRunnerCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	stub := newStub()
	r, _ := testRunner(stub)
	r.Cache = c

	for i := 0; i < 3; i++ {
		if _, err := r.Image(context.Background(), dot.Graph(abNodes, abEdges), Options{}); err != nil {
			t.Fatal(err)
		}
	}
	if stub.calls != 1 {
		t.Errorf("renderer called %d times, want 1 with a cache", stub.calls)
	}
}

func TestRunnerCacheKeyer(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r, _ := testRunner(newStub())
	r.Cache = c
	r.Keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), "scope:")

	const descriptor = "digraph { a -> b }"
	if _, err := r.Image(context.Background(), dot.Text(descriptor), Options{}); err != nil {
		t.Fatal(err)
	}

	key := r.Keyer.RenderKey("stub", "png", descriptor)
	if !strings.HasPrefix(key, "scope:") {
		t.Fatalf("scoped key = %q", key)
	}
	if _, ok, _ := c.Get(context.Background(), key); !ok {
		t.Error("render should be stored under the scoped key")
	}
}

func TestSaveGraphWithoutFilename(t *testing.T) {
	stub := newStub()
	withDefaultRenderer(t, stub)

	err := SaveGraph(abNodes, abEdges, Options{})
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Fatalf("SaveGraph() error = %v, want IO_ERROR", err)
	}
	if !strings.Contains(err.Error(), "missing destination filename") {
		t.Errorf("SaveGraph() error = %q", err)
	}
	if stub.calls != 0 {
		t.Error("SaveGraph() should not render without a destination")
	}
}

type node struct {
	name     string
	children []*node
}

func TestPackageHelpers(t *testing.T) {
	withDefaultRenderer(t, newStub())
	root := &node{name: "root", children: []*node{{name: "a"}, {name: "b"}}}
	children := func(n *node) []*node { return n.children }
	isBranch := func(n *node) bool { return len(n.children) > 0 }

	if img, err := GraphToImage(abNodes, abEdges, Options{}); err != nil || img == nil {
		t.Errorf("GraphToImage() = %v, %v", img, err)
	}
	if svg, err := GraphToSVG(abNodes, abEdges, Options{}); err != nil || !strings.Contains(svg, "n0 -> n1") {
		t.Errorf("GraphToSVG() = %q, %v", svg, err)
	}
	if img, err := TreeToImage(root, children, isBranch, Options{}); err != nil || img == nil {
		t.Errorf("TreeToImage() = %v, %v", img, err)
	}
	if svg, err := TreeToSVG(root, children, isBranch, Options{}); err != nil || strings.Count(svg, "->") != 2 {
		t.Errorf("TreeToSVG() = %q, %v", svg, err)
	}

	dir := t.TempDir()
	if err := SaveGraph(abNodes, abEdges, Options{Filename: filepath.Join(dir, "g.png")}); err != nil {
		t.Errorf("SaveGraph() error: %v", err)
	}
	if err := SaveTree(root, children, isBranch, Options{Filename: filepath.Join(dir, "t.gif"), Format: "gif"}); err != nil {
		t.Errorf("SaveTree() error: %v", err)
	}

	if err := ViewGraph(abNodes, abEdges, Options{}); err != nil {
		t.Errorf("ViewGraph() error: %v", err)
	}
	if err := ViewTree(root, children, isBranch, Options{}); err != nil {
		t.Errorf("ViewTree() error: %v", err)
	}
	w, err := viewer.Default().Window()
	if err != nil {
		t.Fatal(err)
	}
	if !w.Visible() {
		t.Error("default window should be visible after ViewTree")
	}
}

func TestViewAndSaveImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 6))

	if err := ViewImage(img); err != nil {
		t.Fatalf("ViewImage() error: %v", err)
	}
	w, _ := viewer.Default().Window()
	if w.Image() != image.Image(img) {
		t.Error("ViewImage() should place the image in the default window")
	}

	path := filepath.Join(t.TempDir(), "img.png")
	if err := SaveImage(img, Options{Filename: path}); err != nil {
		t.Fatalf("SaveImage() error: %v", err)
	}
	if err := SaveImage(img, Options{}); !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("SaveImage() without filename = %v, want IO_ERROR", err)
	}
}

func TestExecCommandOption(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake engines are shell scripts")
	}
	script := filepath.Join(t.TempDir(), "echo-engine")
	if err := os.WriteFile(script, []byte("#!/bin/sh\ncat\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	svg, err := NewRunner(nil, nil, nil).SVG(context.Background(), dot.Text("digraph { q }"), Options{Command: script})
	if err != nil {
		t.Fatalf("SVG() error: %v", err)
	}
	if svg != "digraph { q }" {
		t.Errorf("SVG() = %q", svg)
	}
}

func TestRealDot(t *testing.T) {
	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip("graphviz dot not installed")
	}
	r, _ := testRunner(nil)
	r.Renderer = nil

	img, err := r.Image(context.Background(), dot.Graph(abNodes, abEdges), Options{})
	if err != nil {
		t.Fatalf("Image() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		t.Errorf("Image() bounds = %v", b)
	}

	path := filepath.Join(t.TempDir(), "ab.png")
	if err := r.Save(context.Background(), dot.Graph(abNodes, abEdges), Options{Filename: path}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := imagestore.Read(path); err != nil {
		t.Errorf("saved file does not decode: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Command != "dot" || o.Format != "png" || o.Layout != "dot" {
		t.Errorf("defaults = %+v", o)
	}

	for _, format := range []string{"SVG", ".svg", "PNG", "Jpeg"} {
		o := Options{Format: format}
		if err := o.ValidateAndSetDefaults(); err != nil {
			t.Errorf("ValidateAndSetDefaults(%q) = %v", format, err)
		}
		if o.Format != strings.ToLower(strings.TrimPrefix(format, ".")) {
			t.Errorf("ValidateAndSetDefaults(%q) left Format = %q", format, o.Format)
		}
	}

	bad := Options{Format: "pdf"}
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ValidateAndSetDefaults(pdf) = %v, want UNSUPPORTED", err)
	}
}
