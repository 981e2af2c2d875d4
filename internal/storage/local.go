package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStorage stores blobs as files under a single root directory.
// Locations are absolute paths with random filenames, so two uploads never
// overwrite each other regardless of content or timing.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

func (s *LocalStorage) Place(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	err := os.MkdirAll(s.root, 0755)
	if err != nil {
		return "", err
	}

	location, err := filepath.Abs(filepath.Join(s.root, uuid.New().String()))
	if err != nil {
		return "", err
	}

	err = os.WriteFile(location, data, 0644)
	if err != nil {
		return "", err
	}

	return location, nil
}

func (s *LocalStorage) Read(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(location)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}

	return data, err
}

func (s *LocalStorage) Delete(ctx context.Context, location string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(location)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalStorage) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.MkdirAll(s.root, 0755)
}
