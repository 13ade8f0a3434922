// Package artifact stores rendered images for later retrieval.
//
// Two backends are provided:
//
//   - FileStore keeps artifacts in a local directory
//   - GridFS keeps artifacts in a MongoDB GridFS bucket
//
// Artifacts are immutable once stored and identified by the ID the store
// assigns.
package artifact

import (
	"context"
	"time"
)

// Artifact describes one stored image.
type Artifact struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Format  string    `json:"format"`
	Size    int64     `json:"size"`
	Digest  string    `json:"digest"`
	Created time.Time `json:"created"`
}

// Store persists rendered images.
type Store interface {
	// Put stores data under name and returns its metadata.
	Put(ctx context.Context, name, format string, data []byte) (Artifact, error)

	// Get returns the bytes and metadata stored under id.
	// A missing id yields a NOT_FOUND error.
	Get(ctx context.Context, id string) ([]byte, Artifact, error)

	// List returns all artifacts, newest first.
	List(ctx context.Context) ([]Artifact, error)

	Close() error
}
