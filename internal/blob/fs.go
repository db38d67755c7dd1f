package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSStore keeps blobs on the local filesystem under a root directory, with a
// sidecar file per blob recording the content type.
type FSStore struct {
	root string
}

type blobMeta struct {
	ContentType string `json:"contentType"`
}

func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) Download(_ context.Context, path string) ([]byte, string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("read blob %s: %w", path, err)
	}

	contentType := ""
	if metaBytes, err := os.ReadFile(full + ".meta"); err == nil {
		var meta blobMeta
		if json.Unmarshal(metaBytes, &meta) == nil {
			contentType = meta.ContentType
		}
	}
	return data, contentType, nil
}

func (s *FSStore) Upload(_ context.Context, path string, data []byte, contentType string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", path, err)
	}
	if contentType != "" {
		metaBytes, _ := json.Marshal(blobMeta{ContentType: contentType})
		if err := os.WriteFile(full+".meta", metaBytes, 0o644); err != nil {
			return fmt.Errorf("write blob meta %s: %w", path, err)
		}
	}
	return nil
}

func (s *FSStore) Remove(_ context.Context, paths []string) error {
	for _, path := range paths {
		full, err := s.resolve(path)
		if err != nil {
			return err
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove blob %s: %w", path, err)
		}
		_ = os.Remove(full + ".meta")
	}
	return nil
}

// resolve rejects any path that would escape the root.
func (s *FSStore) resolve(path string) (string, error) {
	cleaned := filepath.Clean("/" + path)
	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return filepath.Join(s.root, cleaned), nil
}
