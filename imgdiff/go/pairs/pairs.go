// Package pairs finds the images in a baseline tree and pairs each of them
// with the file at the same relative path in a candidate tree.
package pairs

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.skia.org/imgdiff/go/fileutil"
	"go.skia.org/imgdiff/go/skerr"
	"go.skia.org/imgdiff/go/sklog"
	"go.skia.org/imgdiff/imgdiff/go/types"
)

// DefaultExtension is the suffix of the files that are compared when none is
// given.
const DefaultExtension = ".png"

// Find walks goodRoot in lexical order and returns one WorkItem per file whose
// name ends in ext. The candidate path is the same relative path under
// badRoot; whether it exists is left to the comparator.
//
// A goodRoot that is missing or is not a directory is an error. Directories
// below it that cannot be read are logged and skipped.
func Find(goodRoot, badRoot, ext string) ([]types.WorkItem, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	if !fileutil.IsDir(goodRoot) {
		return nil, skerr.Fmt("baseline %s is missing or not a directory", goodRoot)
	}

	var ret []types.WorkItem
	err := filepath.WalkDir(goodRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == goodRoot {
				return skerr.Wrapf(err, "listing %s", goodRoot)
			}
			sklog.Warningf("Skipping %s: %s", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !matches(d.Name(), ext) || !isRegular(path, d) {
			return nil
		}
		rel, err := filepath.Rel(goodRoot, path)
		if err != nil {
			return skerr.Wrap(err)
		}
		ret = append(ret, types.WorkItem{
			GoodPath: path,
			BadPath:  filepath.Join(badRoot, rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sklog.Infof("Found %d %s files under %s", len(ret), ext, goodRoot)
	return ret, nil
}

// matches returns true if name ends with ext and has at least one character
// before it.
func matches(name, ext string) bool {
	return len(name) > len(ext) && strings.HasSuffix(name, ext)
}

// isRegular returns true for regular files and for symlinks that point at one.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
