// Package mapfile gives read-only access to whole files, memory mapped where
// the platform allows it.
package mapfile

// File is the contents of a file opened with Open. Bytes must not be used
// after Close.
type File struct {
	data  []byte
	unmap func() error
}

// Bytes returns the contents of the file. The slice is read-only.
func (f *File) Bytes() []byte {
	return f.data
}

// Len returns the size of the file in bytes.
func (f *File) Len() int {
	return len(f.data)
}

// Close releases the mapping.
func (f *File) Close() error {
	f.data = nil
	if f.unmap == nil {
		return nil
	}
	unmap := f.unmap
	f.unmap = nil
	return unmap()
}
