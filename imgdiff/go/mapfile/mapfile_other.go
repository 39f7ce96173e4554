//go:build !unix

package mapfile

import (
	"os"

	"go.skia.org/imgdiff/go/skerr"
)

// Open reads the named file into memory.
func Open(path string) (*File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	if fi.IsDir() {
		return nil, skerr.Fmt("%s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	return &File{data: data}, nil
}
