// Package storage holds announcement photos in an object store.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned for unknown object keys
var ErrNotFound = errors.New("photo not found")

// PhotoStore persists photo bytes and returns a URL clients can fetch them from
type PhotoStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
