package engine

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dotview/pkg/logging"
	"github.com/matzehuels/dotview/pkg/observability"
)

// Builtin lays out descriptors in process using go-graphviz, a WebAssembly
// build of Graphviz. It needs no Graphviz installation.
//
// Unlike Exec, Builtin reports engine failures directly: a parse or layout
// error is a *RenderError even when partial output was produced.
type Builtin struct {
	// Layout is the Graphviz layout algorithm (dot, neato, fdp, ...).
	// Empty means DefaultCommand.
	Layout string
}

// NewBuiltin returns a Builtin using the given layout algorithm.
func NewBuiltin(layout string) *Builtin {
	return &Builtin{Layout: layout}
}

// Name returns "builtin:<layout>".
func (b *Builtin) Name() string {
	return "builtin:" + b.layout()
}

func (b *Builtin) layout() string {
	if b == nil || b.Layout == "" {
		return DefaultCommand
	}
	return b.Layout
}

// Render implements Renderer.
func (b *Builtin) Render(ctx context.Context, descriptor string, format Format) (Output, error) {
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, b.Name(), string(format))
	start := time.Now()

	out, err := b.render(ctx, descriptor, format)

	elapsed := time.Since(start)
	hooks.OnRenderComplete(ctx, b.Name(), string(format), len(out.Data), elapsed, err)
	if err != nil {
		return Output{}, err
	}
	logging.FromContext(ctx).Debug("builtin engine done", "layout", b.layout(), "format", format,
		"bytes", len(out.Data), "elapsed", elapsed.Round(time.Millisecond))
	return out, nil
}

func (b *Builtin) render(ctx context.Context, descriptor string, format Format) (Output, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return Output{}, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.Layout(b.layout()))

	fail := func(err error) (Output, error) {
		return Output{}, &RenderError{
			Engine:     b.Name(),
			Descriptor: descriptor,
			Stderr:     err.Error(),
			Cause:      err,
		}
	}

	g, err := graphviz.ParseBytes([]byte(descriptor))
	if err != nil {
		return fail(fmt.Errorf("parse DOT: %w", err))
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.Format(format), &buf); err != nil {
		return fail(fmt.Errorf("render: %w", err))
	}

	out := Output{Format: format, Data: buf.Bytes()}
	if err := accept(&out); err != nil {
		return fail(err)
	}
	return out, nil
}

// Validate parses descriptor without laying it out, returning a *RenderError
// describing the first syntax problem.
func Validate(descriptor string) error {
	g, err := graphviz.ParseBytes([]byte(descriptor))
	if err != nil {
		return &RenderError{
			Engine:     "parser",
			Descriptor: descriptor,
			Stderr:     err.Error(),
			Cause:      err,
		}
	}
	return g.Close()
}

var _ Renderer = (*Builtin)(nil)
