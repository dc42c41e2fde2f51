// Package filex has small filesystem helpers for the client data directory.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates dir (and parents) if missing and returns its absolute
// path. Relative paths are resolved against the working directory.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// ReadPhoto reads a photo file for submission, refusing directories and
// anything above limit bytes before reading it into memory.
func ReadPhoto(path string, limit int64) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if limit > 0 && fi.Size() > limit {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", path, fi.Size(), limit)
	}
	return os.ReadFile(path)
}
