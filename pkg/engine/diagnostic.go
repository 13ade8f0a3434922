package engine

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/matzehuels/dotview/pkg/errors"
)

// FormatDiagnostic renders engineErr followed by descriptor with every line
// numbered, so a syntax error reported as "line 7" can be found at a glance:
//
//	Error: <stdin>: syntax error in line 2 near '->'
//	  1: digraph G {
//
//	  2:   -> b
//
// Line numbers are 1-based and right-aligned to three columns. Each numbered
// line is followed by a blank line.
func FormatDiagnostic(descriptor, engineErr string) string {
	var b strings.Builder
	b.WriteString(engineErr)
	b.WriteString("\n")

	sc := bufio.NewScanner(strings.NewReader(descriptor))
	sc.Buffer(make([]byte, 0, 64*1024), len(descriptor)+1)
	for n := 1; sc.Scan(); n++ {
		fmt.Fprintf(&b, "%3d: %s\n\n", n, sc.Text())
	}
	return b.String()
}

// RenderError reports that the engine produced no usable output.
type RenderError struct {
	Engine     string // engine name, e.g. "dot"
	Descriptor string // the descriptor that failed
	Stderr     string // everything the engine wrote to stderr
	Cause      error  // decode failure for undecodable raster output
}

// Error returns the engine's error text followed by the numbered descriptor.
func (e *RenderError) Error() string {
	return FormatDiagnostic(e.Descriptor, e.Stderr)
}

// Unwrap returns the decode failure, if any.
func (e *RenderError) Unwrap() error { return e.Cause }

// Code classifies the error for errors.Is.
func (e *RenderError) Code() errors.Code { return errors.ErrCodeRender }
