package archivum

import (
	"os"
	"path/filepath"

	"github.com/fulmenhq/archivum/archivum/archash"
)

// Create scans opts.SourceRoot, hashes file payloads, assigns parts,
// writes the tar streams, and seals a fresh index in opts.OutputDir. It
// implements the create data flow from spec section 2: scan -> assign
// parts -> hash -> write tar -> write index -> seal index.
func Create(opts CreateOptions, nowUnix int64) (Index, error) {
	base := opts.Base
	if base == "" {
		base = "data"
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Index{}, wrapIo(opts.OutputDir, err)
	}

	pre, err := scanTree(opts.SourceRoot, opts.ExcludePatterns, opts.Cancel)
	if err != nil {
		return Index{}, err
	}

	tarParts := assignParts(pre, opts.SplitBytes, opts.SplitFiles)

	filePaths := make([]string, 0, len(pre))
	fileIdx := make([]int, 0, len(pre))
	for i, e := range pre {
		if e.entryType == EntryTypeFile {
			filePaths = append(filePaths, e.absPath)
			fileIdx = append(fileIdx, i)
		}
	}

	threads := opts.Threads
	if threads <= 0 {
		threads = archash.DefaultWorkers
	}
	digests, err := archash.HashFiles(filePaths, threads)
	if err != nil {
		return Index{}, wrapIo("", err)
	}

	digestByIdx := make([]string, len(pre))
	for k, idx := range fileIdx {
		digestByIdx[idx] = digests[k]
	}

	canonicalOf := make([]int, len(pre))
	for i := range canonicalOf {
		canonicalOf[i] = -1
	}
	if opts.Dedup {
		seen := map[string]int{}
		for _, idx := range fileIdx {
			d := digestByIdx[idx]
			if first, ok := seen[d]; ok {
				canonicalOf[idx] = first
			} else {
				seen[d] = idx
			}
		}
	}

	entries := make([]Entry, len(pre))
	for i, e := range pre {
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
			if canonicalOf[i] >= 0 {
				entries[i].DedupOf = strPtr(pre[canonicalOf[i]].path)
			} else {
				entries[i].SHA256 = strPtr(digestByIdx[i])
			}
		}

		if opts.Cancel.Cancelled() {
			return Index{}, cancelledErr()
		}
		opts.Progress.Add(1)
	}

	if err := writeParts(opts.OutputDir, base, pre, entries, canonicalOf, opts.Compression, opts.ZstdLevel, opts.Cancel); err != nil {
		return Index{}, err
	}

	idx := buildIndex(entries, nowUnix, opts.Compression, opts.ZstdLevel, []string{base}, opts.Notes)
	if err := writeIndexAndSeal(opts.OutputDir, idx, archash.SealIndex); err != nil {
		return Index{}, err
	}
	return idx, nil
}

// writeParts streams each part's tar payload. Entries with a non-nil
// DedupOf are metadata-only and excluded from the tar stream, per spec
// section 4.4.
func writeParts(dir, base string, pre []preEntry, entries []Entry, canonicalOf []int, comp Compression, zstdLevel int, cancel *CancelFlag) error {
	nParts := totalParts(entryTarParts(entries))
	for p := 0; p < nParts; p++ {
		if cancel.Cancelled() {
			return cancelledErr()
		}
		pw, err := openPartWriter(dir, base, p, comp, zstdLevel)
		if err != nil {
			return err
		}

		writeErr := func() error {
			for i, e := range pre {
				if int(entries[i].TarPart) != p {
					continue
				}
				if cancel.Cancelled() {
					return cancelledErr()
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
					if canonicalOf[i] >= 0 {
						continue
					}
					if err := pw.writeFileHeaderAndBody(&e); err != nil {
						return err
					}
				}
			}
			return nil
		}()

		if writeErr != nil {
			pw.abort()
			return writeErr
		}
		if err := pw.close(); err != nil {
			return wrapIo(filepath.Join(dir, base), err)
		}
	}
	return nil
}

func entryTarParts(entries []Entry) []uint32 {
	out := make([]uint32, len(entries))
	for i, e := range entries {
		out[i] = e.TarPart
	}
	return out
}
