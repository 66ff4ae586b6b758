package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore serves source objects from a directory. Object keys are
// slash-separated paths relative to the root.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("local source directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve local source directory: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

func (s *LocalStore) Fetch(ctx context.Context, key string) (Object, error) {
	select {
	case <-ctx.Done():
		return Object{}, ctx.Err()
	default:
	}

	path, err := s.resolve(key)
	if err != nil {
		return Object{}, classifyFetchError(key, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return Object{}, classifyFetchError(key, err)
	}

	return Object{Body: data}, nil
}

// resolve keeps keys from escaping the root. Escaping keys are reported as
// missing rather than forbidden.
func (s *LocalStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash("/" + key))
	path := filepath.Join(s.root, clean)
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ErrNotFound
	}
	return path, nil
}
