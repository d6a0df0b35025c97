package repository

import (
	"context"
	"io"
	"time"
)

// ObjectStorage is the bucket the platform keeps media in: uploaded
// originals under originals/{video_id}/, transcoded HLS output and the
// poster thumbnail under hls/{video_id}/.
type ObjectStorage interface {
	// GeneratePresignedUploadURL returns a URL a client can PUT the
	// original file to directly, valid for expiry.
	GeneratePresignedUploadURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// GeneratePresignedDownloadURL returns a URL the object can be
	// fetched from directly, valid for expiry.
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Upload writes an object. The worker uses this for transcoded output.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Download opens an object for reading. Returns ErrObjectNotFound if
	// the key is absent; the caller closes the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
}
