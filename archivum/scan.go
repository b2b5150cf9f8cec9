package archivum

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// preEntry is what the scanner emits before part assignment (C3) and
// hashing (C2) have happened; TarPart and SHA256 are filled in later.
type preEntry struct {
	path          string
	entryType     EntryType
	size          uint64
	mtime         int64
	unixMode      uint32
	symlinkTarget string
	absPath       string
}

// scanTree walks root depth-first, pre-order, with each directory's
// children sorted lexicographically by name — the determinism hook spec
// section 4.1 requires. The root itself is never emitted. A path matches
// an exclude pattern if the pattern matches its root-relative,
// forward-slash form; a matched directory's subtree is pruned entirely.
func scanTree(root string, excludes []string, cancel *CancelFlag) ([]preEntry, error) {
	root = filepath.Clean(root)
	var out []preEntry

	var walk func(dir, relPrefix string) error
	walk = func(dir, relPrefix string) error {
		if cancel.Cancelled() {
			return cancelledErr()
		}
		names, err := readSortedDirNames(dir)
		if err != nil {
			return wrapIo(dir, err)
		}
		for _, name := range names {
			if cancel.Cancelled() {
				return cancelledErr()
			}
			abs := filepath.Join(dir, name)
			rel := name
			if relPrefix != "" {
				rel = relPrefix + "/" + name
			}

			if matchesAny(excludes, rel) {
				continue
			}

			info, err := os.Lstat(abs)
			if err != nil {
				return wrapIo(abs, err)
			}

			switch {
			case info.Mode()&os.ModeSymlink != 0:
				target, err := os.Readlink(abs)
				if err != nil {
					return wrapIo(abs, err)
				}
				out = append(out, preEntry{
					path:          rel,
					entryType:     EntryTypeSymlink,
					mtime:         info.ModTime().Unix(),
					unixMode:      uint32(info.Mode().Perm()),
					symlinkTarget: target,
					absPath:       abs,
				})
			case info.IsDir():
				out = append(out, preEntry{
					path:      rel,
					entryType: EntryTypeDirectory,
					mtime:     info.ModTime().Unix(),
					unixMode:  uint32(info.Mode().Perm()),
					absPath:   abs,
				})
				if err := walk(abs, rel); err != nil {
					return err
				}
			default:
				out = append(out, preEntry{
					path:      rel,
					entryType: EntryTypeFile,
					size:      uint64(info.Size()),
					mtime:     info.ModTime().Unix(),
					unixMode:  uint32(info.Mode().Perm()),
					absPath:   abs,
				})
			}
		}
		return nil
	}

	if err := walk(root, ""); err != nil {
		return nil, err
	}
	return out, nil
}

func readSortedDirNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// matchesAny reports whether rel matches any of the given doublestar
// exclude patterns. Malformed patterns never match.
func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// matchesFilter is the same matching rule used by restore/extract
// filters: an empty filter list matches everything.
func matchesFilter(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(patterns, rel)
}
