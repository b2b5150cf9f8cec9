package archivum

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"

	"github.com/fulmenhq/archivum/archivum/archash"
	"github.com/fulmenhq/archivum/archivum/codec"
)

// Update produces a new archive directory combining entries unchanged
// since the old archive (copied from its parts without re-hashing) with
// entries taken fresh from the live source, per spec section 4.8. The
// old archive is never modified.
func Update(opts UpdateOptions, nowUnix int64) (Index, error) {
	oldIdx, oldRaw, err := loadIndex(opts.OldArchiveDir)
	if err != nil {
		return Index{}, err
	}
	oldSeal, err := loadSeal(opts.OldArchiveDir)
	if err != nil {
		return Index{}, err
	}
	if archash.SealIndex(oldRaw) != oldSeal {
		return Index{}, tamperedErr(filepath.Join(opts.OldArchiveDir, indexFileName))
	}

	drift, err := Diff(DiffOptions{
		ArchiveDir:      opts.OldArchiveDir,
		SourceRoot:      opts.SourceRoot,
		ExcludePatterns: opts.ExcludePatterns,
	})
	if err != nil {
		return Index{}, err
	}
	kind := make(map[string]DriftKind, len(drift))
	for _, d := range drift {
		kind[d.Path] = d.Kind
	}

	pre, err := scanTree(opts.SourceRoot, opts.ExcludePatterns, nil)
	if err != nil {
		return Index{}, err
	}
	preByPath := make(map[string]preEntry, len(pre))
	for _, p := range pre {
		preByPath[p.path] = p
	}

	outBase := "data"
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Index{}, wrapIo(opts.OutputDir, err)
	}

	oldByPath := make(map[string]Entry, len(oldIdx.Entries))
	for _, e := range oldIdx.Entries {
		oldByPath[e.Path] = e
	}
	oldBase := "data"
	if len(oldIdx.PartBases) > 0 {
		oldBase = oldIdx.PartBases[0]
	}
	oldAlg, err := compressionToAlgorithm(oldIdx.Compression)
	if err != nil {
		return Index{}, err
	}

	var finalPre []preEntry
	var finalDigest []string
	var finalCanonical []int

	for _, path := range sortedKindKeys(kind) {
		k := kind[path]
		if k == DriftRemoved {
			continue
		}

		if k == DriftUnchanged {
			old := oldByPath[path]
			p := preByPath[path]
			finalPre = append(finalPre, p)
			if old.SHA256 != nil {
				finalDigest = append(finalDigest, *old.SHA256)
			} else {
				finalDigest = append(finalDigest, "")
			}
			finalCanonical = append(finalCanonical, -1)
			continue
		}

		// ADDED or MODIFIED: take fresh content from the live source.
		p := preByPath[path]
		if p.entryType == EntryTypeFile {
			sum, err := archash.HashFile(p.absPath)
			if err != nil {
				return Index{}, wrapIo(p.absPath, err)
			}
			finalDigest = append(finalDigest, sum)
		} else {
			finalDigest = append(finalDigest, "")
		}
		finalPre = append(finalPre, p)
		finalCanonical = append(finalCanonical, -1)
	}

	tarParts := assignParts(finalPre, opts.SplitBytes, opts.SplitFiles)

	entries := make([]Entry, len(finalPre))
	for i, e := range finalPre {
		entries[i] = Entry{
			Path:      e.path,
			EntryType: e.entryType,
			Size:      e.size,
			Mtime:     int64Ptr(e.mtime),
			UnixMode:  u32Ptr(e.unixMode),
			TarPart:   tarParts[i],
		}
		if e.entryType == EntryTypeSymlink {
			entries[i].SymlinkTarget = strPtr(e.symlinkTarget)
		}
		if e.entryType == EntryTypeFile {
			entries[i].SHA256 = strPtr(finalDigest[i])
		}
	}

	nParts := totalParts(tarParts)
	for p := 0; p < nParts; p++ {
		pw, err := openPartWriter(opts.OutputDir, outBase, p, opts.Compression, opts.ZstdLevel)
		if err != nil {
			return Index{}, err
		}
		writeErr := func() error {
			for i, e := range finalPre {
				if int(entries[i].TarPart) != p {
					continue
				}
				switch e.entryType {
				case EntryTypeDirectory:
					if err := pw.writeDirHeader(&e); err != nil {
						return wrapIo(e.absPath, err)
					}
				case EntryTypeSymlink:
					if err := pw.writeSymlinkHeader(&e); err != nil {
						return wrapIo(e.absPath, err)
					}
				case EntryTypeFile:
					if kind[e.path] == DriftUnchanged {
						old := oldByPath[e.path]
						if err := copyPayloadFromOldPart(pw, &e, opts.OldArchiveDir, oldBase, oldAlg, int(old.TarPart)); err != nil {
							return err
						}
					} else if err := pw.writeFileHeaderAndBody(&e); err != nil {
						return err
					}
				}
			}
			return nil
		}()
		if writeErr != nil {
			pw.abort()
			return Index{}, writeErr
		}
		if err := pw.close(); err != nil {
			return Index{}, wrapIo(opts.OutputDir, err)
		}
	}

	idx := buildIndex(entries, nowUnix, opts.Compression, opts.ZstdLevel, []string{outBase}, opts.Notes)
	if err := writeIndexAndSeal(opts.OutputDir, idx, archash.SealIndex); err != nil {
		return Index{}, err
	}
	return idx, nil
}

// copyPayloadFromOldPart streams a single file's bytes out of the old
// archive's part and into the new part writer without re-reading the
// live source, since the file is known unchanged.
func copyPayloadFromOldPart(pw *partWriter, e *preEntry, oldArchiveDir, oldBase string, alg codec.Algorithm, oldPartIdx int) error {
	partPath := filepath.Join(oldArchiveDir, partFileName(oldBase, oldPartIdx, alg))
	f, err := os.Open(partPath)
	if err != nil {
		return wrapIo(partPath, err)
	}
	defer func() { _ = f.Close() }()

	r, err := codec.OpenReader(alg, f)
	if err != nil {
		return wrapIo(partPath, err)
	}
	defer func() { _ = r.Close() }()

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return partMissingErr(oldPartIdx)
		}
		if err != nil {
			return wrapIo(partPath, err)
		}
		if trimTarDirSlash(hdr.Name) != e.path {
			continue
		}
		return pw.writeHeaderAndCopy(e, tr)
	}
}

func sortedKindKeys(kind map[string]DriftKind) []string {
	keys := make([]string, 0, len(kind))
	for k := range kind {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
