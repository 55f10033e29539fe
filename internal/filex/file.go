// Package filex holds filesystem helpers for staging uploaded files on local
// disk before they are pushed to object storage.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EnsureDir creates dirName if needed and returns its absolute path. A
// relative name is resolved against the working directory.
func EnsureDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// Stage copies r into a new file in dir whose name keeps the extension of
// original, and returns the file's path. The caller owns the file.
func Stage(dir, original string, r io.Reader) (string, error) {
	f, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(filepath.Base(original)))
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close staged file: %w", err)
	}

	return f.Name(), nil
}
