// Package engine runs a graph layout engine over a DOT descriptor and captures
// its output.
//
// # Renderers
//
// Every backend implements [Renderer]:
//
//   - [Exec] spawns an external Graphviz-compatible binary (dot, neato, ...)
//     as `<command> -T<format>`, writes the descriptor to its stdin and
//     captures stdout and stderr.
//   - [Builtin] lays out in process with [github.com/goccy/go-graphviz], for
//     machines without a Graphviz installation.
//   - [Cached] wraps another renderer with a [cache.Cache].
//
// # Success
//
// [Exec] judges success by output alone: stdout must be non-empty and, for
// raster formats, decode as an image. The process exit code is ignored, which
// keeps compatibility with engines that warn through a non-zero status while
// still producing a usable picture. Anything else yields a [*RenderError]
// whose message is the engine's stderr followed by the numbered descriptor
// (see [FormatDiagnostic]).
//
// A missing or non-executable engine is an I/O failure
// ([errors.ErrCodeIO]), not a render failure.
//
// # Blocking
//
// Render blocks until the engine exits and all output has been read. No
// timeout is applied; pass a cancellable context to bound the call.
//
// [cache.Cache]: github.com/matzehuels/dotview/pkg/cache
// [errors.ErrCodeIO]: github.com/matzehuels/dotview/pkg/errors
package engine
