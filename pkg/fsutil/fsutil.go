// Package fsutil holds the filesystem conventions shared by every artifact:
// directories that may already exist, and files that are deleted and
// recreated on every generation.
package fsutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"

	"igloo/pkg/errors"
	"igloo/pkg/logger"
)

// EnsureDir creates path. An already existing directory is logged and
// treated as success so artifacts can be regenerated into an existing tree;
// every other failure is returned.
func EnsureDir(path string) error {
	err := os.Mkdir(path, 0755)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			logger.Logger.Debugw("directory already exists", "path", path)
			return nil
		}
		return errors.Wrapf(err, "%s exists and is not a directory", path)
	}
	return errors.Wrapf(err, "failed to create directory %s", path)
}

// WriteResult describes one regenerated file.
type WriteResult struct {
	Path string
	// Unchanged is true when the new content hashes equal to the file that
	// was replaced
	Unchanged bool
}

// Rewrite replaces the file at path with content. An existing file is
// removed first, then the file is created and written through an append
// handle. Partial content may remain if the write fails; the next
// generation replaces it.
func Rewrite(path string, content []byte) (WriteResult, error) {
	result := WriteResult{Path: path}

	previous, err := os.ReadFile(path)
	switch {
	case err == nil:
		result.Unchanged = bytes.Equal(Hash(previous), Hash(content))
		if err := os.Remove(path); err != nil {
			return result, errors.Wrapf(err, "failed to remove %s", path)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return result, errors.Wrapf(err, "failed to read %s", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return result, errors.Wrapf(err, "failed to create %s", path)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return result, errors.Wrapf(err, "failed to write %s", path)
	}
	if err := f.Close(); err != nil {
		return result, errors.Wrapf(err, "failed to close %s", path)
	}
	logger.Logger.Debugw("rewrote file", "path", path, "sha256", HashString(content), "unchanged", result.Unchanged)
	return result, nil
}

// Hash returns the sha256 digest of data.
func Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// HashString returns the hex sha256 digest of data.
func HashString(data []byte) string {
	return fmt.Sprintf("%x", Hash(data))
}
