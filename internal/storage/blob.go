package storage

import (
	"io"

	"github.com/cockroachdb/errors"
)

var ErrNotFound = errors.New("blob not found")

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)       // ErrNotFound for a missing key
	SignedURL(key string) (string, error)        // fs returns "file://..." for dev
}
