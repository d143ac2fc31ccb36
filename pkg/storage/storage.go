// Package storage abstracts where the entries file and the run report
// live: plain filesystem paths or s3://bucket/key URIs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested path does not exist.
var ErrNotFound = errors.New("not found")

// Storage reads and writes whole documents addressed by path.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Exists(ctx context.Context, path string) (bool, error)
}

// Open resolves a path to the storage backend that serves it and the key
// to use within that backend. Paths of the form s3://bucket/key go to S3
// with the given region; everything else is a local filesystem path.
func Open(ctx context.Context, path, region string) (Storage, string, error) {
	if !strings.HasPrefix(path, "s3://") {
		return NewLocalStorage(), path, nil
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(path, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return nil, "", fmt.Errorf("invalid s3 path %q, expected s3://bucket/key", path)
	}
	s, err := NewS3Storage(ctx, bucket, region)
	if err != nil {
		return nil, "", err
	}
	return s, key, nil
}
