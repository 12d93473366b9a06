package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// FileKV stores each key as a JSON file inside a data directory, the
// same layout the rest of the tool uses for its config. An optional
// byte quota makes quota failures reproducible without filling a disk.
type FileKV struct {
	dir        string
	quotaBytes int64 // 0 means unlimited
}

// NewFileKV creates a file-backed KV store rooted at dir.
func NewFileKV(dir string, quotaBytes int64) *FileKV {
	return &FileKV{dir: dir, quotaBytes: quotaBytes}
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get reads the value stored under key.
func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes value under key, overwriting any prior value.
func (f *FileKV) Set(_ context.Context, key, value string) error {
	if f.quotaBytes > 0 && int64(len(value)) > f.quotaBytes {
		return fmt.Errorf("%w: %d bytes over %d byte limit", ErrQuotaExceeded, len(value), f.quotaBytes)
	}

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := os.WriteFile(f.path(key), []byte(value), 0644); err != nil {
		if errors.Is(err, syscall.ENOSPC) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key. Deleting an absent key is
// not an error.
func (f *FileKV) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
