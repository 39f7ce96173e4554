// Package artifactstore persists diff images in a flat directory, naming each
// file by a hash of its own pixels so identical artifacts are written once.
package artifactstore

import (
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"

	"go.skia.org/imgdiff/go/fileutil"
	"go.skia.org/imgdiff/go/metrics2"
	"go.skia.org/imgdiff/go/skerr"
	"go.skia.org/imgdiff/go/util"
	"go.skia.org/imgdiff/imgdiff/go/bitmap"
	"go.skia.org/imgdiff/imgdiff/go/codec"
)

const (
	artifactsMetric = "imgdiff_artifacts"

	// knownKeysCacheSize bounds how many keys are remembered as present on
	// disk, so repeated diffs skip the stat call.
	knownKeysCacheSize = 10000
)

// Store persists bitmaps by content.
type Store interface {
	// Put makes sure bm is stored and returns its key. Storing the same
	// pixels twice returns the same key and writes nothing the second time.
	Put(bm *bitmap.Bitmap) (string, error)

	// Path returns the location of the artifact with the given key.
	Path(key string) string
}

// ContentKey returns the 16 hex digit xxHash64 of the width and height of bm
// followed by its pixel words, all as little-endian uint32s. Bitmaps with the
// same pixels but a different shape get different keys.
func ContentKey(bm *bitmap.Bitmap) string {
	h := xxhash.New()
	var buf [4 * 1024]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(bm.Width))
	binary.LittleEndian.PutUint32(buf[4:], uint32(bm.Height))
	n := 8
	for _, p := range bm.Pix {
		binary.LittleEndian.PutUint32(buf[n:], p)
		n += 4
		if n == len(buf) {
			_, _ = h.Write(buf[:n])
			n = 0
		}
	}
	_, _ = h.Write(buf[:n])
	return fmt.Sprintf("%016x", h.Sum64())
}

// DiskStore implements Store on a local directory.
type DiskStore struct {
	dir   string
	codec codec.Codec

	// known holds keys that have been seen on disk or written by this store.
	known *lru.Cache

	hits   int64
	misses int64

	hitCounter  metrics2.Counter
	missCounter metrics2.Counter
}

// New returns a DiskStore that writes into dir, creating it if needed.
func New(dir string, c codec.Codec) (*DiskStore, error) {
	absDir, err := fileutil.EnsureDirExists(dir)
	if err != nil {
		return nil, skerr.Wrapf(err, "creating artifact directory")
	}
	known, err := lru.New(knownKeysCacheSize)
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	return &DiskStore{
		dir:         absDir,
		codec:       c,
		known:       known,
		hitCounter:  metrics2.GetCounter(artifactsMetric, map[string]string{"result": "hit"}),
		missCounter: metrics2.GetCounter(artifactsMetric, map[string]string{"result": "miss"}),
	}, nil
}

// Dir returns the absolute path of the artifact directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Path implements the Store interface.
func (s *DiskStore) Path(key string) string {
	return filepath.Join(s.dir, FileName(key, s.codec.Extension()))
}

// Put implements the Store interface. A concurrent Put of the same pixels may
// encode twice, but each writer renames a complete file into place so readers
// never see a partial artifact.
func (s *DiskStore) Put(bm *bitmap.Bitmap) (string, error) {
	key := ContentKey(bm)
	path := s.Path(key)
	if s.exists(key, path) {
		atomic.AddInt64(&s.hits, 1)
		s.hitCounter.Inc(1)
		return key, nil
	}
	atomic.AddInt64(&s.misses, 1)
	s.missCounter.Inc(1)
	err := util.WithWriteFile(path, func(w io.Writer) error {
		return s.codec.Encode(w, bm)
	})
	if err != nil {
		return "", skerr.Wrapf(err, "writing artifact %s", key)
	}
	s.known.Add(key, struct{}{})
	return key, nil
}

func (s *DiskStore) exists(key, path string) bool {
	if s.known.Contains(key) {
		return true
	}
	if !fileutil.FileExists(path) {
		return false
	}
	s.known.Add(key, struct{}{})
	return true
}

// Hits returns how many Put calls found their artifact already on disk.
func (s *DiskStore) Hits() int64 {
	return atomic.LoadInt64(&s.hits)
}

// Misses returns how many Put calls had to write their artifact.
func (s *DiskStore) Misses() int64 {
	return atomic.LoadInt64(&s.misses)
}

// FileName returns the base name of the artifact with the given key.
func FileName(key, ext string) string {
	return fmt.Sprintf("%s.%s", key, ext)
}

// Make sure DiskStore fulfills the Store interface.
var _ Store = (*DiskStore)(nil)
