package archivum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	indexFileName = "index.arc.json"
	sealFileName  = "index.arc.json.b3"
)

// buildIndex assembles the header counters from the finished entry list.
// Entries must already carry their final TarPart and SHA256 values.
func buildIndex(entries []Entry, createdAtUnix int64, comp Compression, zstdLevel int, partBases []string, notes string) Index {
	hdr := IndexHeader{
		Version:        IndexVersion,
		CreatedAtUnix:  createdAtUnix,
		CreatedAtHuman: createdAtHuman(createdAtUnix),
		Compression:    comp,
		Notes:          notes,
		PartBases:      partBases,
	}
	if comp == CompressionZstd {
		hdr.ZstdLevel = zstdLevel
	}

	for _, e := range entries {
		switch e.EntryType {
		case EntryTypeFile:
			hdr.TotalFiles++
			hdr.TotalSize += e.Size
		case EntryTypeDirectory:
			hdr.TotalDirs++
		case EntryTypeSymlink:
			hdr.TotalSymlinks++
		}
	}
	hdr.TotalParts = int(maxTarPart(entries)) + 1
	if len(entries) == 0 {
		hdr.TotalParts = 0
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sortEntries(sorted)

	return Index{IndexHeader: hdr, Entries: sorted}
}

func maxTarPart(entries []Entry) uint32 {
	var max uint32
	for _, e := range entries {
		if e.TarPart > max {
			max = e.TarPart
		}
	}
	return max
}

// sortEntries enforces invariant 6: entries ordered by (tar_part, path).
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TarPart != entries[j].TarPart {
			return entries[i].TarPart < entries[j].TarPart
		}
		return entries[i].Path < entries[j].Path
	})
}

// marshalIndex serializes the index with json.MarshalIndent; struct field
// order is fixed by declaration order in types.go, giving the canonical
// key order spec section 3.2 requires without a custom encoder.
func marshalIndex(idx Index) ([]byte, error) {
	b, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// writeIndexAndSeal writes index.arc.json and its Blake3 seal atomically
// (temp file, fsync, rename), per spec section 4.2.
func writeIndexAndSeal(dir string, idx Index, sealHex func([]byte) string) error {
	data, err := marshalIndex(idx)
	if err != nil {
		return newErrf(ErrKindSchemaError, "marshal index: %v", err)
	}

	indexPath := filepath.Join(dir, indexFileName)
	if err := atomicWriteFile(indexPath, data); err != nil {
		return wrapIo(indexPath, err)
	}

	seal := sealHex(data) + "\n"
	sealPath := filepath.Join(dir, sealFileName)
	if err := atomicWriteFile(sealPath, []byte(seal)); err != nil {
		return wrapIo(sealPath, err)
	}
	return nil
}

func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

// loadIndex reads and strictly parses index.arc.json, rejecting an
// unknown version before any invariant check runs.
func loadIndex(dir string) (Index, []byte, error) {
	path := filepath.Join(dir, indexFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return Index{}, nil, wrapIo(path, err)
	}

	var idx Index
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&idx); err != nil {
		return Index{}, nil, schemaErr("index", err.Error())
	}
	if idx.Version != IndexVersion {
		return Index{}, nil, schemaErr("version", fmt.Sprintf("unsupported index version %d", idx.Version))
	}
	return idx, data, nil
}

func loadSeal(dir string) (string, error) {
	path := filepath.Join(dir, sealFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", wrapIo(path, err)
	}
	return trimTrailingNewline(string(data)), nil
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// validateInvariants checks spec section 3.4 invariants 1-5 and 7 (6 and
// 8 are enforced structurally by sortEntries and the seal check).
// Invariant 1 is checked against the entries' highest tar_part, not the
// part files on disk, and for invariant 4 only the presence of sha256 is
// checked; payload hashes are compared by Verify.
func validateInvariants(idx Index) error {
	if idx.TotalParts != int(maxTarPart(idx.Entries))+1 && len(idx.Entries) > 0 {
		return invariantErr("total_parts mismatch")
	}

	var files, dirs, symlinks int
	var size uint64
	bySHA := map[string][]Entry{}
	byPath := map[string]Entry{}
	for _, e := range idx.Entries {
		byPath[e.Path] = e
	}

	for _, e := range idx.Entries {
		if !isSafeEntryPath(e.Path) {
			return invariantErr("unsafe entry path: " + e.Path)
		}
		switch e.EntryType {
		case EntryTypeFile:
			files++
			size += e.Size
			if e.DedupOf == nil {
				if e.SHA256 == nil {
					return invariantErr("file entry missing sha256: " + e.Path)
				}
				bySHA[*e.SHA256] = append(bySHA[*e.SHA256], e)
			} else {
				canon, ok := byPath[*e.DedupOf]
				if !ok || canon.EntryType != EntryTypeFile || canon.DedupOf != nil {
					return invariantErr("dedup_of references missing canonical entry: " + e.Path)
				}
				if canon.Size != e.Size {
					return invariantErr("dedup_of size mismatch: " + e.Path)
				}
			}
		case EntryTypeDirectory:
			dirs++
		case EntryTypeSymlink:
			symlinks++
		}
	}

	if files != idx.TotalFiles || dirs != idx.TotalDirs || symlinks != idx.TotalSymlinks {
		return invariantErr("header counts do not match entries")
	}
	if size != idx.TotalSize {
		return invariantErr("total_size mismatch")
	}
	return nil
}
