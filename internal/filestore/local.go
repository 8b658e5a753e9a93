package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type localStore struct {
	dir string
}

func newLocalStore(dir string) (Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("local export store dir is required")
	}
	return &localStore{dir: dir}, nil
}

func validKey(key string) bool {
	return key != "" && !strings.Contains(key, "/") && !strings.Contains(key, "\\") && !strings.Contains(key, "..")
}

func (s *localStore) Save(ctx context.Context, key string, data []byte) error {
	_ = ctx
	if !validKey(key) {
		return fmt.Errorf("invalid export key")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, key), data, 0o644)
}

func (s *localStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	_ = ctx
	if !validKey(key) {
		return nil, fmt.Errorf("invalid export key")
	}
	return os.Open(filepath.Join(s.dir, key))
}
