package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FilesystemStore keeps blobs under a root directory, one subdirectory per
// container. Containers are created lazily on first EnsureContainer call.
type FilesystemStore struct {
	root string
}

// NewFilesystem constructs a filesystem-backed blob store rooted at root.
func NewFilesystem(root string) *FilesystemStore {
	return &FilesystemStore{root: root}
}

func (s *FilesystemStore) EnsureContainer(_ context.Context, container string) error {
	if err := os.MkdirAll(filepath.Join(s.root, container), 0o750); err != nil {
		return fmt.Errorf("ensure container %q: %w", container, err)
	}
	return nil
}

func (s *FilesystemStore) PutObject(_ context.Context, container, key, _ string, data []byte) (string, error) {
	path := filepath.Join(s.root, container, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return "file://" + path, nil
}
