// Package pipeline turns graphs and trees into images.
//
// Every call runs the same three stages:
//
//  1. Describe: a dot.Source produces a descriptor from the caller's data
//  2. Render: an engine.Renderer lays out the descriptor
//  3. Consume: the result is returned, written by imagestore, or shown in a
//     viewer window
//
// # Usage
//
// The package-level helpers use a default Runner backed by the "dot" command
// and the default viewer handle:
//
//	img, err := pipeline.GraphToImage(nodes, adjacent, pipeline.Options{})
//
//	err = pipeline.SaveTree(root, children, isBranch, pipeline.Options{
//	    Filename: "tree.png",
//	})
//
// A Runner gives control over the renderer, cache, window and logger:
//
//	r := pipeline.NewRunner(c, handle, logger)
//	svg, err := r.SVG(ctx, dot.Graph(nodes, adjacent), opts)
//
// Errors from each stage are returned unchanged. No stage retries.
package pipeline

import (
	"strings"

	"github.com/matzehuels/dotview/pkg/dot"
	"github.com/matzehuels/dotview/pkg/engine"
	"github.com/matzehuels/dotview/pkg/errors"
	"github.com/matzehuels/dotview/pkg/imagestore"
)

// DefaultLayout is the in-process layout used when Builtin is set.
const DefaultLayout = "dot"

// Options configures one pipeline call. Options are read-only for the
// duration of the call.
type Options struct {
	// Command is the layout engine executable. Empty means "dot".
	Command string

	// Format is the output format. Rendering accepts "png" and "svg";
	// saving accepts any imagestore format plus "svg". Empty means "png".
	Format string

	// Filename is the destination for Save calls. Required there.
	Filename string

	// Builtin renders in-process with the embedded Graphviz library instead
	// of running Command.
	Builtin bool

	// Layout is the Graphviz layout used when Builtin is set.
	Layout string

	// Descriptor is passed to the descriptor generator unmodified.
	Descriptor dot.Options
}

// ValidateAndSetDefaults normalizes the options in place.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Command == "" {
		o.Command = engine.DefaultCommand
	}
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	o.Format = normalizeFormat(o.Format)
	if o.Format == "" {
		o.Format = string(engine.PNG)
	}
	if o.Format != string(engine.SVG) && !imagestore.Supported(o.Format) {
		return errors.New(errors.ErrCodeUnsupported,
			"unsupported output format %q (available: svg, %v)", o.Format, imagestore.Formats())
	}
	return nil
}

// saveFormat validates the destination format for Save.
func (o Options) saveFormat() (string, error) {
	if normalizeFormat(o.Format) == string(engine.SVG) {
		return string(engine.SVG), nil
	}
	format := imagestore.NormalizeFormat(o.Format)
	if !imagestore.Supported(format) {
		return "", errors.New(errors.ErrCodeUnsupported,
			"unsupported output format %q (available: svg, %v)", o.Format, imagestore.Formats())
	}
	return format, nil
}

// normalizeFormat lowercases format and drops a leading dot, so "SVG" and
// ".svg" name the same format.
func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(format, "."))
}

func missingFilename() error {
	return errors.New(errors.ErrCodeIO, "missing destination filename")
}

func describe(src dot.Source, opts Options) (string, error) {
	return src.Descriptor(opts.Descriptor)
}
