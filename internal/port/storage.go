package port

import (
	"context"
	"io"
)

// ObjectStorage abstracts the archive staging bucket. Release archives run
// to gigabytes, so both directions stream instead of buffering in memory.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader) error
	Download(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error)
	Exists(ctx context.Context, bucket, key string) (bool, error)
}
