package fileutil

import (
	"os"
	"path/filepath"

	"go.skia.org/imgdiff/go/skerr"
)

// EnsureDirExists checks whether the given path to a directory exits and creates it
// if necessary. Returns the absolute path that corresponds to the input path
// and an error indicating a problem.
func EnsureDirExists(dirPath string) (string, error) {
	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return "", skerr.Wrap(err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return "", skerr.Wrapf(err, "creating %s", absPath)
	}
	return absPath, nil
}

// FileExists returns true if the given path exists and false otherwise.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir returns true if path exists and is a directory.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
