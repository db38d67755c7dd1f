// Package blob is the storage abstraction for uploaded feed files. Paths are
// workspace-prefixed by callers (<workspace>/<supplier>/<filename>).
package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	// Download returns the stored bytes and the content type recorded at
	// upload time ("" when unknown).
	Download(ctx context.Context, path string) ([]byte, string, error)
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Remove(ctx context.Context, paths []string) error
}
