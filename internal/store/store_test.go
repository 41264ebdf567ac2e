package store

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"gocloud.dev/blob"
)

func TestBucket_Put(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	bkt, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("Failed to open bucket: %v", err)
	}
	defer bkt.Close()

	s := New(bkt)
	data := bytes.Repeat([]byte{1}, 50000)
	if err := s.Put(ctx, "network_backup_03.05.2024_9-07-AM_8.0.7.unf", data, "application/octet-stream"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	attrs, err := bkt.Attributes(ctx, "network_backup_03.05.2024_9-07-AM_8.0.7.unf")
	if err != nil {
		t.Fatalf("Attributes() error = %v", err)
	}
	if attrs.Size != 50000 {
		t.Errorf("Size = %d, want 50000", attrs.Size)
	}
	if attrs.ContentType != "application/octet-stream" {
		t.Errorf("ContentType = %q", attrs.ContentType)
	}
}

func TestOpen_FileBucket(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, "file://"+filepath.ToSlash(dir))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if err := s.Ready(ctx); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}
	if err := s.Put(ctx, "backup.unf", []byte("payload"), "application/octet-stream"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.bucket.ReadAll(ctx, "backup.unf")
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("ReadAll() = %q, want payload", got)
	}
}

func TestOpen_UnknownScheme(t *testing.T) {
	t.Parallel()
	if _, err := Open(context.Background(), "nosuchscheme://bucket"); err == nil {
		t.Error("expected error for unknown scheme")
	}
}
