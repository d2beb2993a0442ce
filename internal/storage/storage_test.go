package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalClient_ArchiveRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewLocalClient(t.TempDir())

	src := filepath.Join(t.TempDir(), "chicken_settlement_20250916_20250930.xlsx")
	if err := os.WriteFile(src, []byte("workbook"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	key, err := ArchiveFile(ctx, store, "2025-09-16_2025-09-30", src)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if key != "2025-09-16_2025-09-30/chicken_settlement_20250916_20250930.xlsx" {
		t.Fatalf("unexpected key %s", key)
	}

	objects, err := store.ListObjects(ctx, "2025-09-16_2025-09-30")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 1 || objects[0].Key != key {
		t.Fatalf("unexpected objects: %+v", objects)
	}

	dest := filepath.Join(t.TempDir(), "out", "copy.xlsx")
	if err := store.DownloadObject(ctx, key, dest); err != nil {
		t.Fatalf("download: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil || string(got) != "workbook" {
		t.Fatalf("downloaded content %q err=%v", got, err)
	}
}

func TestNewS3Client_Validation(t *testing.T) {
	t.Parallel()

	cases := []S3Config{
		{},
		{Endpoint: "s3.example.com"},
		{Endpoint: "s3.example.com", AccessKey: "a", SecretKey: "b"},
	}
	for i, cfg := range cases {
		if _, err := NewS3Client(cfg); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestUploadObject_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewLocalClient(t.TempDir()).UploadObject(ctx, "k", []byte("v")); err == nil {
		t.Fatalf("expected error on cancelled context")
	}
}
