package util

import (
	"io"
	"os"
	"path/filepath"

	"go.skia.org/imgdiff/go/skerr"
	"go.skia.org/imgdiff/go/sklog"
)

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Close wraps an io.Closer and logs an error if one is returned.
func Close(c io.Closer) {
	if err := c.Close(); err != nil {
		// Don't start the stacktrace here, but at the caller's location
		sklog.ErrorfWithDepth(1, "Failed to Close(): %v", err)
	}
}

// Remove removes the specified file and logs an error if one is returned.
func Remove(name string) {
	if err := os.Remove(name); err != nil {
		sklog.ErrorfWithDepth(1, "Failed to Remove(%s): %v", name, err)
	}
}

// ChunkIter calls fn for consecutive [start, end) ranges that cover
// [0, length), each at most chunkSize long. It does nothing if length is 0.
func ChunkIter(length, chunkSize int, fn func(int, int) error) error {
	if chunkSize < 1 {
		return skerr.Fmt("Chunk size may not be less than 1.")
	}
	for chunkStart := 0; chunkStart < length; chunkStart += chunkSize {
		if err := fn(chunkStart, MinInt(length, chunkStart+chunkSize)); err != nil {
			return err
		}
	}
	return nil
}

// WithWriteFile provides an interface for writing to a backing file using a
// temporary intermediate file for more atomicity in case a long-running write
// gets interrupted. Readers of file never observe a partially written file.
func WithWriteFile(file string, writeFn func(io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(file), filepath.Base(file)+".tmp*")
	if err != nil {
		return skerr.Wrapf(err, "creating temporary file for %s", file)
	}
	if err := writeFn(f); err != nil {
		Close(f)
		Remove(f.Name())
		return err
	}
	// CreateTemp makes files readable by the owner only.
	if err := f.Chmod(0644); err != nil {
		Close(f)
		Remove(f.Name())
		return skerr.Wrapf(err, "setting permissions of temporary file for %s", file)
	}
	if err := f.Close(); err != nil {
		Remove(f.Name())
		return skerr.Wrapf(err, "closing temporary file for %s", file)
	}
	if err := os.Rename(f.Name(), file); err != nil {
		Remove(f.Name())
		return skerr.Wrapf(err, "renaming temporary file to %s", file)
	}
	return nil
}

// WithReadFile opens the given file for reading and runs the given function.
func WithReadFile(file string, fn func(f io.Reader) error) error {
	f, err := os.Open(file)
	if err != nil {
		return skerr.Wrap(err)
	}
	defer Close(f)
	return fn(f)
}
