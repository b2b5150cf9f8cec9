package archivum

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"

	"github.com/fulmenhq/archivum/archivum/archash"
	"github.com/fulmenhq/archivum/archivum/codec"
)

// mergeSource pairs a retained entry with the archive it must be read
// from, since last-wins resolution can draw different paths from
// different input archives.
type mergeSource struct {
	entry      Entry
	archiveDir string
	base       string
	alg        codec.Algorithm
}

// Merge concatenates the entries of two or more previously created
// archives into one new archive, per spec section 4.8. On a path
// collision, the archive listed later in opts.ArchiveDirs wins. Instead
// of widening tar_part into a (base_index, part_index) tuple (left open
// by spec section 9), Merge re-streams every retained file's payload
// through opts.Compression so the merged header describes one codec and
// tar_part stays a flat index.
func Merge(opts MergeOptions, nowUnix int64) (Index, error) {
	if len(opts.ArchiveDirs) < 2 {
		return Index{}, usageErr("merge requires at least two archives")
	}
	base := opts.Base
	if base == "" {
		base = "data"
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Index{}, wrapIo(opts.OutputDir, err)
	}

	byPath := map[string]mergeSource{}
	var order []string

	for _, dir := range opts.ArchiveDirs {
		idx, raw, err := loadIndex(dir)
		if err != nil {
			return Index{}, err
		}
		seal, err := loadSeal(dir)
		if err != nil {
			return Index{}, err
		}
		if archash.SealIndex(raw) != seal {
			return Index{}, tamperedErr(filepath.Join(dir, indexFileName))
		}

		srcBase := "data"
		if len(idx.PartBases) > 0 {
			srcBase = idx.PartBases[0]
		}
		alg, err := compressionToAlgorithm(idx.Compression)
		if err != nil {
			return Index{}, err
		}

		for _, e := range idx.Entries {
			if _, existed := byPath[e.Path]; !existed {
				order = append(order, e.Path)
			}
			byPath[e.Path] = mergeSource{entry: e, archiveDir: dir, base: srcBase, alg: alg}
		}
	}

	mergedEntries := make([]Entry, 0, len(order))
	sources := make([]mergeSource, 0, len(order))
	for _, p := range sortedStrings(order) {
		mergedEntries = append(mergedEntries, byPath[p].entry)
		sources = append(sources, byPath[p])
	}

	sizes := make([]uint64, len(mergedEntries))
	types := make([]EntryType, len(mergedEntries))
	for i, e := range mergedEntries {
		sizes[i] = e.Size
		types[i] = e.EntryType
	}
	tarParts := assignMergeParts(types, sizes, opts.SplitBytes, opts.SplitFiles)
	for i := range mergedEntries {
		mergedEntries[i].TarPart = tarParts[i]
	}

	nParts := totalParts(tarParts)
	for p := 0; p < nParts; p++ {
		pw, err := openPartWriter(opts.OutputDir, base, p, opts.Compression, opts.ZstdLevel)
		if err != nil {
			return Index{}, err
		}
		writeErr := writeMergedPart(pw, p, mergedEntries, sources)
		if writeErr != nil {
			pw.abort()
			return Index{}, writeErr
		}
		if err := pw.close(); err != nil {
			return Index{}, wrapIo(opts.OutputDir, err)
		}
	}

	idx := buildIndex(mergedEntries, nowUnix, opts.Compression, opts.ZstdLevel, []string{base}, opts.Notes)
	if err := writeIndexAndSeal(opts.OutputDir, idx, archash.SealIndex); err != nil {
		return Index{}, err
	}
	return idx, nil
}

func writeMergedPart(pw *partWriter, partIdx int, entries []Entry, sources []mergeSource) error {
	for i, e := range entries {
		if int(e.TarPart) != partIdx {
			continue
		}
		pe := preEntry{path: e.Path, entryType: e.EntryType, size: e.Size}
		if e.Mtime != nil {
			pe.mtime = *e.Mtime
		}
		if e.UnixMode != nil {
			pe.unixMode = *e.UnixMode
		}
		switch e.EntryType {
		case EntryTypeDirectory:
			if err := pw.writeDirHeader(&pe); err != nil {
				return err
			}
		case EntryTypeSymlink:
			pe.symlinkTarget = *e.SymlinkTarget
			if err := pw.writeSymlinkHeader(&pe); err != nil {
				return err
			}
		case EntryTypeFile:
			if e.DedupOf != nil {
				continue
			}
			if err := copyMergedPayload(pw, &pe, sources[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyMergedPayload(pw *partWriter, pe *preEntry, src mergeSource) error {
	srcPartPath := filepath.Join(src.archiveDir, partFileName(src.base, int(src.entry.TarPart), src.alg))
	f, err := os.Open(srcPartPath)
	if err != nil {
		return wrapIo(srcPartPath, err)
	}
	defer func() { _ = f.Close() }()

	r, err := codec.OpenReader(src.alg, f)
	if err != nil {
		return wrapIo(srcPartPath, err)
	}
	defer func() { _ = r.Close() }()

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return partMissingErr(int(src.entry.TarPart))
		}
		if err != nil {
			return wrapIo(srcPartPath, err)
		}
		if trimTarDirSlash(hdr.Name) != pe.path {
			continue
		}
		if err := pw.writeHeaderAndCopy(pe, tr); err != nil {
			return err
		}
		return nil
	}
}

func sortedStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// assignMergeParts is the packer algorithm from pack.go adapted to
// operate on bare type/size slices, since merged entries do not carry a
// preEntry (no absolute path on disk until copied).
func assignMergeParts(types []EntryType, sizes []uint64, splitBytes uint64, splitFiles int) []uint32 {
	tarParts := make([]uint32, len(types))
	var partIdx uint32
	var curBytes uint64
	var curFiles int

	for i, t := range types {
		isFile := t == EntryTypeFile
		if isFile && splitBytes > 0 && curFiles > 0 && curBytes+sizes[i] > splitBytes {
			partIdx++
			curBytes = 0
			curFiles = 0
		} else if splitFiles > 0 && curFiles >= splitFiles {
			partIdx++
			curBytes = 0
			curFiles = 0
		}
		tarParts[i] = partIdx
		if isFile {
			curBytes += sizes[i]
		}
		curFiles++
	}
	return tarParts
}
