package pipeline

import (
	"context"
	"image"
	"sync"

	"github.com/matzehuels/dotview/pkg/dot"
)

var (
	defaultOnce   sync.Once
	defaultRunner *Runner
)

// Default returns the Runner used by the package-level helpers: no cache,
// the default viewer handle, and the default logger.
func Default() *Runner {
	defaultOnce.Do(func() {
		defaultRunner = NewRunner(nil, nil, nil)
	})
	return defaultRunner
}

// GraphToImage renders the graph of nodes and adjacent as a raster image.
func GraphToImage[N comparable](nodes []N, adjacent func(N) []N, opts Options) (image.Image, error) {
	return Default().Image(context.Background(), dot.Graph(nodes, adjacent), opts)
}

// GraphToSVG renders the graph of nodes and adjacent as SVG text.
func GraphToSVG[N comparable](nodes []N, adjacent func(N) []N, opts Options) (string, error) {
	return Default().SVG(context.Background(), dot.Graph(nodes, adjacent), opts)
}

// TreeToImage renders the tree rooted at root as a raster image.
func TreeToImage[N any](root N, children func(N) []N, isBranch func(N) bool, opts Options) (image.Image, error) {
	return Default().Image(context.Background(), dot.Tree(root, children, isBranch), opts)
}

// TreeToSVG renders the tree rooted at root as SVG text.
func TreeToSVG[N any](root N, children func(N) []N, isBranch func(N) bool, opts Options) (string, error) {
	return Default().SVG(context.Background(), dot.Tree(root, children, isBranch), opts)
}

// ViewGraph renders the graph and shows it in the default window.
func ViewGraph[N comparable](nodes []N, adjacent func(N) []N, opts Options) error {
	return Default().View(context.Background(), dot.Graph(nodes, adjacent), opts)
}

// ViewTree renders the tree and shows it in the default window.
func ViewTree[N any](root N, children func(N) []N, isBranch func(N) bool, opts Options) error {
	return Default().View(context.Background(), dot.Tree(root, children, isBranch), opts)
}

// SaveGraph renders the graph and writes it to opts.Filename.
func SaveGraph[N comparable](nodes []N, adjacent func(N) []N, opts Options) error {
	return Default().Save(context.Background(), dot.Graph(nodes, adjacent), opts)
}

// SaveTree renders the tree and writes it to opts.Filename.
func SaveTree[N any](root N, children func(N) []N, isBranch func(N) bool, opts Options) error {
	return Default().Save(context.Background(), dot.Tree(root, children, isBranch), opts)
}

// ViewImage shows img in the default window.
func ViewImage(img image.Image) error {
	return Default().ViewImage(img)
}

// SaveImage writes img to opts.Filename in opts.Format.
func SaveImage(img image.Image, opts Options) error {
	return Default().SaveImage(img, opts)
}
