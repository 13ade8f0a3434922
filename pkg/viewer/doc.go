// Package viewer displays rendered images in a reusable window.
//
// A [Handle] owns one window, built lazily through a [Factory] the first time
// it is needed and kept for the rest of the process. Closing the window hides
// it; the next [Handle.Show] brings it back.
//
// # Showing an image
//
//	h := viewer.Default()
//	if err := h.Show(img); err != nil {
//	    return err
//	}
//
// Show replaces the image slot and marks the window visible on the calling
// goroutine, then queues the bring-to-front sequence on the handle's [Loop]
// and returns without waiting for it. OS-level activation through an
// [Activator] is best-effort and its errors are discarded.
//
// # Backends
//
// The package itself ships a headless [Memory] window. Interactive backends
// live in subpackages:
//
//   - viewer/desktop: a native window drawn with Ebitengine
//   - viewer/web: an HTTP page that follows the latest image
//
// # Concurrency
//
// Handles are safe for concurrent use, but concurrent Show calls race and the
// last writer wins. Callers that need ordering serialize their own calls.
package viewer
