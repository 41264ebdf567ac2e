// Package store persists backup files to an object storage bucket.
//
// Buckets are opened from gocloud.dev URLs, so the same code writes to
// memory (mem://), a local directory (file:///var/backups), S3 (s3://bucket)
// or GCS (gs://bucket).
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// ErrNotAccessible is returned by Ready when the bucket cannot be reached.
var ErrNotAccessible = errors.New("store: bucket not accessible")

// Bucket is a durable key/value blob store.
type Bucket struct {
	bucket *blob.Bucket
}

// Open opens the bucket at urlstr.
func Open(ctx context.Context, urlstr string) (*Bucket, error) {
	bkt, err := blob.OpenBucket(ctx, urlstr)
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	return New(bkt), nil
}

// New wraps an already opened bucket.
func New(bkt *blob.Bucket) *Bucket {
	return &Bucket{bucket: bkt}
}

// Put writes data under key with the given content type.
// Behavior when key already exists is up to the bucket driver.
func (b *Bucket) Put(ctx context.Context, key string, data []byte, contentType string) error {
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := b.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	slog.DebugContext(ctx, "Stored object", "key", key, "bytes", len(data), "contentType", contentType)
	return nil
}

// Ready reports whether the bucket is reachable.
func (b *Bucket) Ready(ctx context.Context) error {
	ok, err := b.bucket.IsAccessible(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAccessible, err)
	}
	if !ok {
		return ErrNotAccessible
	}
	return nil
}

// Close releases the bucket.
func (b *Bucket) Close() error {
	return b.bucket.Close()
}
