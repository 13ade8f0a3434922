package engine

import (
	"context"
	"fmt"
	"image"
	"strings"
)

// DefaultCommand is the layout engine used when none is configured.
const DefaultCommand = "dot"

// Format selects the engine's output format.
type Format string

const (
	// PNG asks the engine for raster output, decoded into an image.
	PNG Format = "png"
	// SVG asks the engine for vector output, passed through as text.
	SVG Format = "svg"
)

// ParseFormat converts a user-supplied name into a Format.
// The empty string selects PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	default:
		return "", fmt.Errorf("unknown engine format: %q (must be 'png' or 'svg')", s)
	}
}

// Raster reports whether output in this format is decoded as an image.
func (f Format) Raster() bool { return f != SVG }

// Flag returns the engine command-line argument selecting this format.
func (f Format) Flag() string { return "-T" + string(f) }

// Output is the captured result of one engine run.
type Output struct {
	Format Format
	Data   []byte      // raw stdout
	Image  image.Image // decoded Data, set for raster formats only
	Stderr string      // engine diagnostics, possibly non-empty on success
}

// SVG returns the output as vector text.
func (o Output) SVG() string { return string(o.Data) }

// Renderer turns a descriptor into engine output.
type Renderer interface {
	// Render lays out descriptor and returns the output in format.
	Render(ctx context.Context, descriptor string, format Format) (Output, error)

	// Name identifies the engine, for logs and cache keys.
	Name() string
}
