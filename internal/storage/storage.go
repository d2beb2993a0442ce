package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// ObjectStorage captures the minimal S3-compatible operations the archive needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// ArchiveFile uploads a local file under folder and returns the object key.
func ArchiveFile(ctx context.Context, store ObjectStorage, folder, localPath string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", localPath, err)
	}
	key := path.Join(folder, filepath.Base(localPath))
	if err := store.UploadObject(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}
