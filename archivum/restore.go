package archivum

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fulmenhq/archivum/archivum/archash"
	"github.com/fulmenhq/archivum/archivum/codec"
)

// Restore rebuilds a tree under opts.TargetDir from the archive at
// opts.ArchiveDir, per the C6 design in spec section 4.6: verify the
// seal, reject unsafe paths before writing anything, then group entries
// by part so each part is opened and streamed exactly once.
func Restore(opts RestoreOptions) error {
	idx, raw, err := loadIndex(opts.ArchiveDir)
	if err != nil {
		return err
	}
	seal, err := loadSeal(opts.ArchiveDir)
	if err != nil {
		return err
	}
	if archash.SealIndex(raw) != seal {
		return tamperedErr(filepath.Join(opts.ArchiveDir, indexFileName))
	}
	if err := validateInvariants(idx); err != nil {
		return err
	}

	filtered := make([]Entry, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		if !isSafeEntryPath(e.Path) {
			return pathTraversalErr(e.Path)
		}
		if matchesFilter(opts.Filter, e.Path) {
			filtered = append(filtered, e)
		}
	}

	if err := os.MkdirAll(opts.TargetDir, 0o755); err != nil {
		return wrapIo(opts.TargetDir, err)
	}

	byPart := groupByPart(filtered)
	base := "data"
	if len(idx.PartBases) > 0 {
		base = idx.PartBases[0]
	}
	alg, err := compressionToAlgorithm(idx.Compression)
	if err != nil {
		return err
	}

	restoredPaths := map[string]bool{}
	var failures []error
	for _, partIdx := range sortedPartKeys(byPart) {
		if opts.Cancel.Cancelled() {
			return cancelledErr()
		}
		expected := byPart[partIdx]
		if err := restorePart(opts, base, partIdx, alg, expected, restoredPaths); err != nil {
			if !opts.ContinueOnError {
				return err
			}
			failures = append(failures, err)
		}
	}

	if err := materializeDedup(opts, filtered, restoredPaths); err != nil {
		if len(failures) == 0 {
			return err
		}
		failures = append(failures, err)
	}
	return errors.Join(failures...)
}

func groupByPart(entries []Entry) map[int][]Entry {
	out := map[int][]Entry{}
	for _, e := range entries {
		out[int(e.TarPart)] = append(out[int(e.TarPart)], e)
	}
	return out
}

func sortedPartKeys(m map[int][]Entry) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// restorePart opens one part exactly once and streams its tar entries in
// order, matching each against the expected-for-this-part set by path.
// Unmatched tar entries (filtered out by a restore filter) are skipped
// without seeking.
func restorePart(opts RestoreOptions, base string, partIdx int, alg codec.Algorithm, expected []Entry, restoredPaths map[string]bool) error {
	path := filepath.Join(opts.ArchiveDir, partFileName(base, partIdx, alg))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return partMissingErr(partIdx)
		}
		return wrapIo(path, err)
	}
	defer func() { _ = f.Close() }()

	r, err := codec.OpenReader(alg, f)
	if err != nil {
		return wrapIo(path, err)
	}
	defer func() { _ = r.Close() }()

	// Dedup entries carry no tar payload; they are materialized in a
	// later pass, but are kept in this map so the path is recognized and
	// not mistaken for an entry belonging to a different tar_part.
	want := make(map[string]Entry, len(expected))
	for _, e := range expected {
		want[e.Path] = e
	}

	tr := tar.NewReader(r)
	for {
		if opts.Cancel.Cancelled() {
			return cancelledErr()
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return wrapIo(path, err)
		}

		name := trimTarDirSlash(hdr.Name)
		e, ok := want[name]
		if !ok {
			continue
		}
		if e.DedupOf != nil {
			continue
		}

		if err := restoreOneFromTar(opts, e, hdr, tr); err != nil {
			return err
		}
		if e.EntryType == EntryTypeFile {
			restoredPaths[e.Path] = true
		}
	}
	return nil
}

func trimTarDirSlash(name string) string {
	if len(name) > 0 && name[len(name)-1] == '/' {
		return name[:len(name)-1]
	}
	return name
}

func restoreOneFromTar(opts RestoreOptions, e Entry, hdr *tar.Header, tr *tar.Reader) error {
	dest, ok := resolveUnderRoot(opts.TargetDir, e.Path)
	if !ok {
		return pathTraversalErr(e.Path)
	}

	switch e.EntryType {
	case EntryTypeDirectory:
		mode := os.FileMode(0o755)
		if opts.RestorePermissions && e.UnixMode != nil {
			mode = os.FileMode(*e.UnixMode)
		}
		return wrapIoIfErr(dest, os.MkdirAll(dest, mode))

	case EntryTypeSymlink:
		if runtime.GOOS == "windows" {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return wrapIo(dest, err)
		}
		if _, err := os.Lstat(dest); err == nil {
			if !opts.Force {
				return alreadyExistsErr(e.Path)
			}
			_ = os.Remove(dest)
		}
		return wrapIoIfErr(dest, os.Symlink(hdr.Linkname, dest))

	case EntryTypeFile:
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return wrapIo(dest, err)
		}
		if _, err := os.Stat(dest); err == nil && !opts.Force {
			return alreadyExistsErr(e.Path)
		}
		return writeFileAtomically(dest, tr, e, opts.RestorePermissions)
	}
	return nil
}

func writeFileAtomically(dest string, r io.Reader, e Entry, restorePerms bool) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".restore-*")
	if err != nil {
		return wrapIo(dest, err)
	}
	name := tmp.Name()
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return wrapIo(dest, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return wrapIo(dest, err)
	}
	if err := os.Rename(name, dest); err != nil {
		_ = os.Remove(name)
		return wrapIo(dest, err)
	}
	if restorePerms {
		if e.UnixMode != nil {
			_ = os.Chmod(dest, os.FileMode(*e.UnixMode))
		}
		if e.Mtime != nil {
			t := unixTime(*e.Mtime)
			_ = os.Chtimes(dest, t, t)
		}
	}
	return nil
}

// materializeDedup is the second restore pass from spec section 4.6:
// copy each shadow entry's bytes from its now-on-disk canonical sibling.
func materializeDedup(opts RestoreOptions, filtered []Entry, restoredPaths map[string]bool) error {
	for _, e := range filtered {
		if e.EntryType != EntryTypeFile || e.DedupOf == nil {
			continue
		}
		if !restoredPaths[*e.DedupOf] {
			return dedupSourceMissingErr(e.Path, *e.DedupOf)
		}
		src, ok := resolveUnderRoot(opts.TargetDir, *e.DedupOf)
		if !ok {
			return pathTraversalErr(*e.DedupOf)
		}
		dest, ok := resolveUnderRoot(opts.TargetDir, e.Path)
		if !ok {
			return pathTraversalErr(e.Path)
		}
		if _, err := os.Stat(dest); err == nil && !opts.Force {
			return alreadyExistsErr(e.Path)
		}
		in, err := os.Open(src)
		if err != nil {
			return wrapIo(src, err)
		}
		if err := writeFileAtomically(dest, in, e, opts.RestorePermissions); err != nil {
			_ = in.Close()
			return err
		}
		_ = in.Close()
	}
	return nil
}

func wrapIoIfErr(path string, err error) error {
	if err == nil {
		return nil
	}
	return wrapIo(path, err)
}

// Extract restores a single archive path into destPath, opening only the
// part that contains it.
func Extract(archiveDir, entryPath, destPath string, force bool) error {
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

	base := "data"
	if len(idx.PartBases) > 0 {
		base = idx.PartBases[0]
	}
	alg, err := compressionToAlgorithm(idx.Compression)
	if err != nil {
		return err
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

	if _, err := os.Stat(destPath); err == nil && !force {
		return alreadyExistsErr(entryPath)
	}

	var pipeErr error
	out, err := os.CreateTemp(filepath.Dir(destPath), ".restore-*")
	if err != nil {
		return wrapIo(destPath, err)
	}
	tmpName := out.Name()
	pipeErr = streamPartEntry(archiveDir, base, int(target.TarPart), alg, sourcePath, out)
	_ = out.Close()
	if pipeErr != nil {
		_ = os.Remove(tmpName)
		return pipeErr
	}
	return wrapIoIfErr(destPath, os.Rename(tmpName, destPath))
}

// streamPartEntry opens exactly one part, decodes it through the
// declared codec, and copies the single matching tar entry's payload to
// w. Used by both Extract and Cat.
func streamPartEntry(archiveDir, base string, partIdx int, alg codec.Algorithm, entryPath string, w io.Writer) error {
	partPath := filepath.Join(archiveDir, partFileName(base, partIdx, alg))
	f, err := os.Open(partPath)
	if err != nil {
		if os.IsNotExist(err) {
			return partMissingErr(partIdx)
		}
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
			return newErrf(ErrKindPartMissing, "payload for %q not found in part %d", entryPath, partIdx)
		}
		if err != nil {
			return wrapIo(partPath, err)
		}
		if trimTarDirSlash(hdr.Name) != entryPath {
			continue
		}
		if _, err := io.Copy(w, tr); err != nil {
			return wrapIo(partPath, err)
		}
		return nil
	}
}
