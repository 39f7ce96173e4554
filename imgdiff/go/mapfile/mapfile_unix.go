//go:build unix

package mapfile

import (
	"os"

	"golang.org/x/sys/unix"

	"go.skia.org/imgdiff/go/skerr"
	"go.skia.org/imgdiff/go/util"
)

// Open maps the named file read-only.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	defer util.Close(f)

	fi, err := f.Stat()
	if err != nil {
		return nil, skerr.Wrapf(err, "stat %s", path)
	}
	if fi.IsDir() {
		return nil, skerr.Fmt("%s is a directory", path)
	}
	size := fi.Size()
	if size == 0 {
		// mmap rejects zero length mappings.
		return &File{data: []byte{}}, nil
	}
	if int64(int(size)) != size {
		return nil, skerr.Fmt("%s is too large to map: %d bytes", path, size)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, skerr.Wrapf(err, "mapping %s", path)
	}
	// The mapping stays valid after the descriptor is closed.
	return &File{
		data: data,
		unmap: func() error {
			return skerr.Wrap(unix.Munmap(data))
		},
	}, nil
}
