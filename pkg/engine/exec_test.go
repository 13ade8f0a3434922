package engine

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
	"testing"
	"time"

	"github.com/matzehuels/dotview/pkg/errors"
)

// fakeEngine writes a shell script standing in for a layout engine and
// returns its path.
func fakeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engines are shell scripts")
	}
	path := filepath.Join(t.TempDir(), "fake-dot")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// pngFixture writes a small PNG to disk and returns its path.
func pngFixture(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "fixture.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecRaster(t *testing.T) {
	fixture := pngFixture(t, 30, 20)
	command := fakeEngine(t, `[ "$1" = "-Tpng" ] || exit 3
cat > /dev/null
cat "`+fixture+`"`)

	out, err := NewExec(command).Render(context.Background(), "digraph { a -> b }", PNG)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if out.Image == nil {
		t.Fatal("Render() should decode raster output")
	}
	if b := out.Image.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("image bounds = %v, want 30x20", b)
	}
}

func TestExecReceivesDescriptor(t *testing.T) {
	command := fakeEngine(t, `[ "$1" = "-Tsvg" ] || exit 3
cat`)

	descriptor := "digraph G {\n  a -> b;\n}\n"
	out, err := NewExec(command).Render(context.Background(), descriptor, SVG)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if out.SVG() != descriptor {
		t.Errorf("engine stdin = %q, want %q", out.SVG(), descriptor)
	}
	if out.Image != nil {
		t.Error("vector output should not be decoded")
	}
}

func TestExecIgnoresExitCode(t *testing.T) {
	fixture := pngFixture(t, 4, 4)
	command := fakeEngine(t, `cat > /dev/null
cat "`+fixture+`"
echo "Warning: something odd" >&2
exit 1`)

	out, err := NewExec(command).Render(context.Background(), "digraph {}", PNG)
	if err != nil {
		t.Fatalf("Render() error = %v, want success despite exit status", err)
	}
	if !strings.Contains(out.Stderr, "Warning") {
		t.Errorf("Stderr = %q, want captured warning", out.Stderr)
	}
}

func TestExecStderrOnly(t *testing.T) {
	command := fakeEngine(t, `echo "Error: <stdin>: syntax error in line 1 near 'x'" >&2
exit 1`)

	descriptor := "x y z"
	_, err := NewExec(command).Render(context.Background(), descriptor, PNG)
	if err == nil {
		t.Fatal("Render() should fail")
	}

	var renderErr *RenderError
	if !asRenderError(err, &renderErr) {
		t.Fatalf("Render() error = %T, want *RenderError", err)
	}
	wantPrefix := "Error: <stdin>: syntax error in line 1 near 'x'\n"
	if !strings.HasPrefix(err.Error(), wantPrefix) {
		t.Errorf("error = %q, want prefix %q", err.Error(), wantPrefix)
	}
	if renderErr.Descriptor != descriptor {
		t.Errorf("Descriptor = %q, want %q", renderErr.Descriptor, descriptor)
	}
	if !errors.Is(err, errors.ErrCodeRender) {
		t.Error("error should carry RENDER_FAILED")
	}
}

func TestExecUndecodableRaster(t *testing.T) {
	command := fakeEngine(t, `cat > /dev/null
echo "this is not a png"`)

	_, err := NewExec(command).Render(context.Background(), "digraph {}", PNG)
	if !errors.Is(err, errors.ErrCodeRender) {
		t.Fatalf("Render() error = %v, want RENDER_FAILED", err)
	}
}

func TestExecEmptyVector(t *testing.T) {
	command := fakeEngine(t, `cat > /dev/null`)

	_, err := NewExec(command).Render(context.Background(), "digraph {}", SVG)
	if !errors.Is(err, errors.ErrCodeRender) {
		t.Fatalf("Render() error = %v, want RENDER_FAILED", err)
	}
}

func TestExecMissingCommand(t *testing.T) {
	_, err := NewExec("dotview-no-such-engine").Render(context.Background(), "digraph {}", PNG)
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Fatalf("Render() error = %v, want IO_ERROR", err)
	}
}

func TestExecNotExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "not-executable")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewExec(path).Render(context.Background(), "digraph {}", PNG)
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Fatalf("Render() error = %v, want IO_ERROR", err)
	}
}

func TestExecCancel(t *testing.T) {
	command := fakeEngine(t, `exec sleep 5`)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewExec(command).Render(ctx, "digraph {}", PNG)
	if err != context.DeadlineExceeded {
		t.Errorf("Render() error = %v, want %v", err, context.DeadlineExceeded)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("cancelled render should return promptly")
	}
}

func TestExecName(t *testing.T) {
	if got := (&Exec{}).Name(); got != DefaultCommand {
		t.Errorf("Name() = %q, want %q", got, DefaultCommand)
	}
	if got := NewExec("neato").Name(); got != "neato" {
		t.Errorf("Name() = %q, want neato", got)
	}
}

func TestExecGraphviz(t *testing.T) {
	if _, err := exec.LookPath(DefaultCommand); err != nil {
		t.Skip("graphviz dot not installed")
	}

	out, err := NewExec("").Render(context.Background(), "digraph G { A -> B; }", PNG)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if b := out.Image.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		t.Errorf("image bounds = %v, want positive dimensions", b)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", PNG, false},
		{"png", PNG, false},
		{"SVG", SVG, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
	if PNG.Flag() != "-Tpng" || !PNG.Raster() || SVG.Raster() {
		t.Error("Format helpers disagree with the engine contract")
	}
}

func asRenderError(err error, target **RenderError) bool {
	return stderrors.As(err, target)
}
