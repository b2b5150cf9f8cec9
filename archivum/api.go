package archivum

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fulmenhq/archivum/archivum/archash"
)

// List returns every entry recorded in the archive's index, sorted by
// (tar_part, path) as written by Create. Use Filter patterns to narrow
// the result the same way Restore does.
func List(archiveDir string, filter []string) ([]Entry, error) {
	idx, _, err := loadIndex(archiveDir)
	if err != nil {
		return nil, err
	}
	if len(filter) == 0 {
		return idx.Entries, nil
	}
	out := make([]Entry, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		if matchesFilter(filter, e.Path) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Search finds entries whose path matches any of the given doublestar
// patterns, a thin convenience wrapper over List kept distinct because
// the CLI's `search` subcommand reports match count separately from
// `list`'s full listing.
func Search(archiveDir string, patterns []string) ([]Entry, error) {
	if len(patterns) == 0 {
		return nil, usageErr("search requires at least one pattern")
	}
	return List(archiveDir, patterns)
}

// Info loads an archive's header without touching any part file.
func Info(archiveDir string) (IndexHeader, error) {
	idx, _, err := loadIndex(archiveDir)
	if err != nil {
		return IndexHeader{}, err
	}
	return idx.IndexHeader, nil
}

// Stats loads the header and measures the on-disk size of every part
// file to report a compression ratio against total_size.
func Stats(archiveDir string) (StatsReport, error) {
	idx, _, err := loadIndex(archiveDir)
	if err != nil {
		return StatsReport{}, err
	}

	base := "data"
	if len(idx.PartBases) > 0 {
		base = idx.PartBases[0]
	}
	alg, err := compressionToAlgorithm(idx.Compression)
	if err != nil {
		return StatsReport{}, err
	}

	var compressed uint64
	for p := 0; p < idx.TotalParts; p++ {
		path := filepath.Join(archiveDir, partFileName(base, p, alg))
		info, err := os.Stat(path)
		if err != nil {
			return StatsReport{}, wrapIo(path, err)
		}
		compressed += uint64(info.Size())
	}

	return StatsReport{
		Header:           idx.IndexHeader,
		CompressedSize:   compressed,
		CompressionRatio: compressionRatio(idx.TotalSize, compressed),
	}, nil
}

// Cat streams a single file entry's payload to w without writing it to
// disk, opening only the part that holds it. It shares Extract's
// seal-check and dedup-following logic by reading the archive the same
// way; unlike Extract it never creates a destination file.
func Cat(archiveDir, entryPath string, w io.Writer) error {
	idx, raw, err := loadIndex(archiveDir)
	if err != nil {
		return err
	}
	seal, err := loadSeal(archiveDir)
	if err != nil {
		return err
	}
	if archash.SealIndex(raw) != seal {
		return tamperedErr(filepath.Join(archiveDir, indexFileName))
	}
	if !isSafeEntryPath(entryPath) {
		return pathTraversalErr(entryPath)
	}

	var target *Entry
	for i := range idx.Entries {
		if idx.Entries[i].Path == entryPath {
			target = &idx.Entries[i]
			break
		}
	}
	if target == nil {
		return newErrf(ErrKindIo, "path %q not found in archive", entryPath)
	}
	sourcePath := target.Path
	if target.DedupOf != nil {
		sourcePath = *target.DedupOf
		for i := range idx.Entries {
			if idx.Entries[i].Path == sourcePath {
				target = &idx.Entries[i]
				break
			}
		}
	}

	base := "data"
	if len(idx.PartBases) > 0 {
		base = idx.PartBases[0]
	}
	alg, err := compressionToAlgorithm(idx.Compression)
	if err != nil {
		return err
	}

	return streamPartEntry(archiveDir, base, int(target.TarPart), alg, sourcePath, w)
}

// Prune deletes archive directories older than maxAgeUnix, keeping at
// least keepMin of the most recent ones regardless of age. It operates
// on a set of sibling archive directories produced by repeated Create or
// Update calls (e.g. a backup rotation), never on a single archive's
// internal parts.
func Prune(archiveDirs []string, mtimeUnix map[string]int64, maxAgeUnix int64, keepMin int) ([]string, error) {
	type candidate struct {
		dir   string
		mtime int64
	}
	cands := make([]candidate, 0, len(archiveDirs))
	for _, d := range archiveDirs {
		cands = append(cands, candidate{dir: d, mtime: mtimeUnix[d]})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].mtime > cands[j].mtime })

	var removed []string
	for i, c := range cands {
		if i < keepMin {
			continue
		}
		if c.mtime >= maxAgeUnix {
			continue
		}
		if err := os.RemoveAll(c.dir); err != nil {
			return removed, wrapIo(c.dir, err)
		}
		removed = append(removed, c.dir)
	}
	return removed, nil
}
