package archivum

import (
	"sort"

	"github.com/fulmenhq/archivum/archivum/archash"
)

// Diff implements the C8 differ: scan the live source and join it
// against the archive's index on path, classifying each path as added,
// removed, modified, or unchanged per spec section 4.8.
func Diff(opts DiffOptions) ([]DriftEntry, error) {
	idx, _, err := loadIndex(opts.ArchiveDir)
	if err != nil {
		return nil, err
	}

	pre, err := scanTree(opts.SourceRoot, opts.ExcludePatterns, nil)
	if err != nil {
		return nil, err
	}

	byPathIdx := make(map[string]Entry, len(idx.Entries))
	for _, e := range idx.Entries {
		byPathIdx[e.Path] = e
	}
	byPathSrc := make(map[string]preEntry, len(pre))
	for _, p := range pre {
		byPathSrc[p.path] = p
	}

	var out []DriftEntry
	for path, src := range byPathSrc {
		old, existed := byPathIdx[path]
		if !existed {
			out = append(out, DriftEntry{Path: path, Kind: DriftAdded})
			continue
		}
		if driftChanged(opts, old, src) {
			out = append(out, DriftEntry{Path: path, Kind: DriftModified})
		} else {
			out = append(out, DriftEntry{Path: path, Kind: DriftUnchanged})
		}
	}
	for path := range byPathIdx {
		if _, ok := byPathSrc[path]; !ok {
			out = append(out, DriftEntry{Path: path, Kind: DriftRemoved})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func driftChanged(opts DiffOptions, old Entry, src preEntry) bool {
	if old.EntryType != src.entryType {
		return true
	}
	if old.EntryType == EntryTypeSymlink {
		return old.SymlinkTarget == nil || *old.SymlinkTarget != src.symlinkTarget
	}
	if old.EntryType != EntryTypeFile {
		return false
	}
	if old.Size != src.size {
		return true
	}
	if opts.Checksum {
		sum, err := archash.HashFile(src.absPath)
		if err != nil {
			return true
		}
		return old.SHA256 == nil || *old.SHA256 != sum
	}
	return old.Mtime == nil || *old.Mtime != src.mtime
}
