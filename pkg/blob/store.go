// Package blob provides the checkpoint/milestone asset store: a typed
// Put/List interface over an S3-compatible object store, plus an
// in-memory fallback for tests and local runs.
package blob

import (
	"context"
	"time"
)

// Object describes one stored blob as returned by List.
type Object struct {
	Path       string
	Size       int64
	UploadedAt time.Time
	URL        string
}

// Store abstracts the blob backend. Every Put must be publicly
// readable at the returned URL, per spec.md §4.2.
type Store interface {
	Put(ctx context.Context, path string, data []byte) (url string, err error)
	List(ctx context.Context, prefix string) ([]Object, error)
	Get(ctx context.Context, path string) ([]byte, error)
}
