package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned for object keys that are empty or carry path separators.
var ErrInvalidKey = errors.New("invalid object key")

// PutOptions describes the object being stored.
type PutOptions struct {
	ContentType string
	Size        int64
}

// Service stores avatar bytes and hands back a URL the browser can load.
type Service interface {
	// Put writes body under key, replacing any object already stored there,
	// and returns the public URL of the object.
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (string, error)
}
