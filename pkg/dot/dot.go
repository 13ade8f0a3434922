package dot

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Attrs is a set of Graphviz attributes.
type Attrs map[string]string

// Options configures descriptor generation.
type Options struct {
	// Undirected emits "graph" with "--" edges instead of "digraph" with "->".
	Undirected bool

	// Name is the graph identifier. Empty means "G".
	Name string

	// Graph, Node and Edge are written as default attribute statements.
	// Nil Graph attributes fall back to DefaultGraphAttrs.
	Graph Attrs
	Node  Attrs
	Edge  Attrs

	// Label returns the display label for a node value.
	// Nil means fmt.Sprint.
	Label func(node any) string

	// NodeAttrs returns extra attributes for one node.
	NodeAttrs func(node any) Attrs

	// EdgeAttrs returns extra attributes for the edge from -> to.
	EdgeAttrs func(from, to any) Attrs
}

// DefaultGraphAttrs is used when Options.Graph is nil.
var DefaultGraphAttrs = Attrs{"rankdir": "TB"}

// Source produces a descriptor on demand.
type Source interface {
	Descriptor(opts Options) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(opts Options) (string, error)

// Descriptor calls f.
func (f SourceFunc) Descriptor(opts Options) (string, error) { return f(opts) }

// Text is a Source holding a ready-made descriptor; options are ignored.
type Text string

// Descriptor returns t.
func (t Text) Descriptor(Options) (string, error) { return string(t), nil }

// writer accumulates one descriptor.
type writer struct {
	buf  bytes.Buffer
	opts Options
}

func newWriter(opts Options) *writer {
	w := &writer{opts: opts}
	kind := "digraph"
	if opts.Undirected {
		kind = "graph"
	}
	name := opts.Name
	if name == "" {
		name = "G"
	}
	fmt.Fprintf(&w.buf, "%s %s {\n", kind, quote(name))

	graphAttrs := opts.Graph
	if graphAttrs == nil {
		graphAttrs = DefaultGraphAttrs
	}
	for _, k := range slices.Sorted(maps.Keys(graphAttrs)) {
		fmt.Fprintf(&w.buf, "  %s=%s;\n", quote(k), quote(graphAttrs[k]))
	}
	if len(opts.Node) > 0 {
		fmt.Fprintf(&w.buf, "  node [%s];\n", fmtAttrs(opts.Node))
	}
	if len(opts.Edge) > 0 {
		fmt.Fprintf(&w.buf, "  edge [%s];\n", fmtAttrs(opts.Edge))
	}
	w.buf.WriteString("\n")
	return w
}

func (w *writer) node(id string, value any) {
	attrs := Attrs{"label": w.label(value)}
	if w.opts.NodeAttrs != nil {
		maps.Copy(attrs, w.opts.NodeAttrs(value))
	}
	fmt.Fprintf(&w.buf, "  %s [%s];\n", id, fmtAttrs(attrs))
}

func (w *writer) edge(from, to string, fromValue, toValue any) {
	op := "->"
	if w.opts.Undirected {
		op = "--"
	}
	var attrs Attrs
	if w.opts.EdgeAttrs != nil {
		attrs = w.opts.EdgeAttrs(fromValue, toValue)
	}
	if len(attrs) == 0 {
		fmt.Fprintf(&w.buf, "  %s %s %s;\n", from, op, to)
		return
	}
	fmt.Fprintf(&w.buf, "  %s %s %s [%s];\n", from, op, to, fmtAttrs(attrs))
}

func (w *writer) String() string {
	w.buf.WriteString("}\n")
	return w.buf.String()
}

func (w *writer) label(value any) string {
	if w.opts.Label != nil {
		return w.opts.Label(value)
	}
	return fmt.Sprint(value)
}

func fmtAttrs(attrs Attrs) string {
	parts := make([]string, 0, len(attrs))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		parts = append(parts, fmt.Sprintf("%s=%s", quote(k), quote(attrs[k])))
	}
	return strings.Join(parts, ", ")
}

// quote returns s as a DOT double-quoted string.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func nodeID(i int) string { return fmt.Sprintf("n%d", i) }
