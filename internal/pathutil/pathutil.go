// Package pathutil normalizes source-file paths for the module import
// cache: two different relative spellings of the same file must collapse
// to one cache key.
package pathutil

import (
	"path/filepath"

	"github.com/pkg/errors"
)

// Abs returns the absolute, cleaned form of path, resolved relative to
// base (the directory of the importing script) when path is relative.
func Abs(base, path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	joined := filepath.Join(base, path)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", errors.Wrapf(err, "resolve import path %q", path)
	}
	return abs, nil
}

// Dir returns the directory component of path, suitable as the base for
// a nested import.
func Dir(path string) string {
	return filepath.Dir(path)
}
