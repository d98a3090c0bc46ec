package disk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"invigil.io/infrastructure/logger"
)

var ErrInvalidName = errors.New("snapshot name escapes the snapshot directory")

// DiskSnapshotStore writes snapshots below Dir.
type DiskSnapshotStore struct {
	Dir string
}

func (store *DiskSnapshotStore) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	return filepath.Join(store.Dir, clean), nil
}

func (store *DiskSnapshotStore) Upload(_ context.Context, name string, data []byte, _ string) (string, error) {
	path, err := store.path(name)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Error("could not create snapshot directory", logger.LoggerOptions{Key: "error", Data: err})
		return "", err
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		logger.Error("could not write snapshot", logger.LoggerOptions{Key: "error", Data: err}, logger.LoggerOptions{Key: "path", Data: path})
		return "", err
	}
	return path, nil
}

func (store *DiskSnapshotStore) Exists(_ context.Context, name string) (bool, error) {
	path, err := store.path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (store *DiskSnapshotStore) Delete(_ context.Context, name string) error {
	path, err := store.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
