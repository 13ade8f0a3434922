// Package pkg provides the libraries behind dotview.
//
// # Overview
//
// dotview turns Graphviz DOT descriptions into images and shows them in a
// single reusable window. The pkg directory is organized by stage:
//
//  1. [dot] - Descriptor generation from node lists, adjacency functions and trees
//  2. [engine] - Layout engines (an external dot process or embedded Graphviz)
//  3. [imagestore] - Raster encode/decode and file output
//  4. [viewer] - The lazily created, main-loop owned display window
//  5. [pipeline] - Orchestration (describe → render → view or save)
//
// Supporting packages: [cache] for render caching on disk or in Redis,
// [artifact] for published images, [observability] hooks, [logging],
// [retry] and coded [errors].
//
// # Data Flow
//
//	nodes + adjacency / tree
//	         ↓
//	    [dot] package (descriptor text)
//	         ↓
//	    [engine] package (dot -Tpng / -Tsvg)
//	         ↓
//	    image.Image or SVG bytes
//	         ↓
//	    [viewer] window / file / artifact store
//
// # Quick Start
//
//	import "github.com/matzehuels/dotview/pkg/pipeline"
//
//	nodes := []string{"api", "db", "cache"}
//	edges := map[string][]string{"api": {"db", "cache"}}
//	adjacent := func(n string) []string { return edges[n] }
//
//	err := pipeline.ViewGraph(nodes, adjacent, pipeline.Options{})
//
// The window appears on the first view and is reused by later calls.
package pkg
