package storage

import "io"

// BlobStore keeps submission and material files out of the database.
type BlobStore interface {
	Put(key string, r io.Reader) (int64, error) // returns bytes written
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}
