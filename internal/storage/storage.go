// Package storage archives exported attendance reports to object
// storage. Archiving is best-effort: the download response never waits
// on or fails because of the archive.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/kintai-app/apiserver/config"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Bucket() string
}

// Archive stores generated report workbooks under a per-user prefix.
type Archive struct {
	backend ObjectStorage
}

// NewArchive constructs an Archive over the provided backend.
func NewArchive(backend ObjectStorage) *Archive {
	if backend == nil {
		return nil
	}
	return &Archive{backend: backend}
}

// NewFromConfig selects an archive backend from config. Returns
// (nil, nil) when no provider is configured; archiving is optional.
func NewFromConfig(ctx context.Context, cfg config.ArchiveConfig) (*Archive, error) {
	switch cfg.Provider {
	case "minio":
		client, err := NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return NewArchive(client), nil
	case "gcs":
		client, err := NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return NewArchive(client), nil
	default:
		return nil, nil
	}
}

// Store uploads one report under reports/{username}/{filename}.
func (a *Archive) Store(ctx context.Context, username, filename string, data []byte, contentType string) error {
	if a == nil {
		return nil
	}
	if err := a.backend.EnsureBucket(ctx); err != nil {
		return err
	}
	key := fmt.Sprintf("reports/%s/%s", username, filename)
	return a.backend.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
}

// Bucket returns the configured bucket name.
func (a *Archive) Bucket() string {
	return a.backend.Bucket()
}
