package archivum

import (
	"archive/tar"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fulmenhq/archivum/archivum/archash"
	"github.com/fulmenhq/archivum/archivum/codec"
)

// Repair reconstructs an index from orphan part files found in
// opts.ArchiveDir (an index.arc.json that is missing, unreadable, or
// whose seal no longer matches). The part files are copied into
// opts.OutputDir beside the new index and seal, so that directory holds a
// complete archive. Per spec section 4.8, no guarantee is
// made about recovering the original notes or created_at_* values.
func Repair(opts RepairOptions, nowUnix int64) (Index, error) {
	base := opts.Base
	if base == "" {
		base = "data"
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Index{}, wrapIo(opts.OutputDir, err)
	}

	parts, err := findOrphanParts(opts.ArchiveDir, base)
	if err != nil {
		return Index{}, err
	}
	if len(parts) == 0 {
		return Index{}, newErrf(ErrKindIo, "no part files found for base %q in %s", base, opts.ArchiveDir)
	}

	var entries []Entry
	for _, op := range parts {
		found, err := reconstructPart(op)
		if err != nil {
			return Index{}, err
		}
		entries = append(entries, found...)
	}

	sortEntries(entries)

	if filepath.Clean(opts.OutputDir) != filepath.Clean(opts.ArchiveDir) {
		for _, op := range parts {
			in, err := os.Open(op.path)
			if err != nil {
				return Index{}, wrapIo(op.path, err)
			}
			err = writeFileAtomically(filepath.Join(opts.OutputDir, filepath.Base(op.path)), in, Entry{}, false)
			_ = in.Close()
			if err != nil {
				return Index{}, err
			}
		}
	}

	idx := buildIndex(entries, nowUnix, parts[0].alg.toCompression(), 0, []string{base}, opts.Notes)
	if err := writeIndexAndSeal(opts.OutputDir, idx, archash.SealIndex); err != nil {
		return Index{}, err
	}
	return idx, nil
}

type orphanPart struct {
	index int
	path  string
	alg   compressionAlgorithm
}

type compressionAlgorithm codec.Algorithm

func (a compressionAlgorithm) toCompression() Compression {
	return algorithmToCompression(codec.Algorithm(a))
}

func findOrphanParts(dir, base string) ([]orphanPart, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, wrapIo(dir, err)
	}

	var out []orphanPart
	prefix := base + ".part"
	for _, de := range entries {
		if de.IsDir() || !strings.HasPrefix(de.Name(), prefix) {
			continue
		}
		rest := de.Name()[len(prefix):]
		numEnd := strings.IndexByte(rest, '.')
		if numEnd < 0 {
			continue
		}
		n, err := strconv.Atoi(rest[:numEnd])
		if err != nil {
			continue
		}
		ext := rest[numEnd+1:]
		alg, ok := algorithmFromExtension(ext)
		if !ok {
			continue
		}
		out = append(out, orphanPart{index: n, path: filepath.Join(dir, de.Name()), alg: compressionAlgorithm(alg)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out, nil
}

func algorithmFromExtension(ext string) (codec.Algorithm, bool) {
	for _, a := range codec.List() {
		if a.Extension() == ext {
			return a, true
		}
	}
	return 0, false
}

func reconstructPart(op orphanPart) ([]Entry, error) {
	f, err := os.Open(op.path)
	if err != nil {
		return nil, wrapIo(op.path, err)
	}
	defer func() { _ = f.Close() }()

	r, err := codec.OpenReader(codec.Algorithm(op.alg), f)
	if err != nil {
		return nil, wrapIo(op.path, err)
	}
	defer func() { _ = r.Close() }()

	var out []Entry
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapIo(op.path, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			out = append(out, Entry{
				Path:      trimTarDirSlash(hdr.Name),
				EntryType: EntryTypeDirectory,
				Mtime:     int64Ptr(hdr.ModTime.Unix()),
				UnixMode:  u32Ptr(uint32(hdr.Mode)),
				TarPart:   uint32(op.index),
			})
		case tar.TypeSymlink, tar.TypeLink:
			out = append(out, Entry{
				Path:          hdr.Name,
				EntryType:     EntryTypeSymlink,
				Mtime:         int64Ptr(hdr.ModTime.Unix()),
				UnixMode:      u32Ptr(uint32(hdr.Mode)),
				TarPart:       uint32(op.index),
				SymlinkTarget: strPtr(hdr.Linkname),
			})
		case tar.TypeReg:
			h := sha256.New()
			if _, err := io.Copy(h, tr); err != nil {
				return nil, wrapIo(op.path, err)
			}
			out = append(out, Entry{
				Path:      hdr.Name,
				EntryType: EntryTypeFile,
				Size:      uint64(hdr.Size),
				Mtime:     int64Ptr(hdr.ModTime.Unix()),
				UnixMode:  u32Ptr(uint32(hdr.Mode)),
				SHA256:    strPtr(hex.EncodeToString(h.Sum(nil))),
				TarPart:   uint32(op.index),
			})
		}
	}
	return out, nil
}
