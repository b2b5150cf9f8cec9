package archivum

import (
	"archive/tar"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/fulmenhq/archivum/archivum/archash"
	"github.com/fulmenhq/archivum/archivum/codec"
)

// Verify implements the C7 checks from spec section 4.7: seal check,
// part existence, then a re-hash of every file payload through the
// codec. Failures are collected into a VerifyReport. Without
// ContinueOnError it returns at the first missing part or the first part
// with a checksum mismatch; with it, every missing part is recorded and
// the parts that are present are still re-hashed. A tampered seal is
// reported at once and no further stage runs.
func Verify(opts VerifyOptions) (VerifyReport, error) {
	idx, raw, err := loadIndex(opts.ArchiveDir)
	if err != nil {
		return VerifyReport{}, err
	}
	seal, err := loadSeal(opts.ArchiveDir)
	if err != nil {
		return VerifyReport{}, err
	}

	report := VerifyReport{Ok: true}
	if archash.SealIndex(raw) != seal {
		report.Ok = false
		report.TamperedIndex = true
		return report, nil
	}

	if err := validateInvariants(idx); err != nil {
		return VerifyReport{}, err
	}

	base := "data"
	if len(idx.PartBases) > 0 {
		base = idx.PartBases[0]
	}
	alg, err := compressionToAlgorithm(idx.Compression)
	if err != nil {
		return VerifyReport{}, err
	}

	missing := map[int]bool{}
	for p := 0; p < idx.TotalParts; p++ {
		partPath := filepath.Join(opts.ArchiveDir, partFileName(base, p, alg))
		if _, err := os.Stat(partPath); err != nil {
			report.Ok = false
			report.MissingParts = append(report.MissingParts, p)
			missing[p] = true
			if !opts.ContinueOnError {
				return report, nil
			}
		}
	}

	byPart := groupByPart(idx.Entries)
	for _, partIdx := range sortedPartKeys(byPart) {
		if missing[partIdx] {
			continue
		}
		if opts.Cancel.Cancelled() {
			return VerifyReport{}, cancelledErr()
		}
		mismatches, checked, err := verifyPart(opts.ArchiveDir, base, partIdx, alg, byPart[partIdx])
		if err != nil {
			return VerifyReport{}, err
		}
		report.FilesChecked += checked
		if len(mismatches) > 0 {
			report.Ok = false
			report.ChecksumMismatches = append(report.ChecksumMismatches, mismatches...)
			if !opts.ContinueOnError {
				return report, nil
			}
		}
	}

	return report, nil
}

func verifyPart(archiveDir, base string, partIdx int, alg codec.Algorithm, expected []Entry) ([]ChecksumMismatch, int, error) {
	want := map[string]Entry{}
	for _, e := range expected {
		if e.EntryType == EntryTypeFile && e.DedupOf == nil {
			want[e.Path] = e
		}
	}
	if len(want) == 0 {
		return nil, 0, nil
	}

	partPath := filepath.Join(archiveDir, partFileName(base, partIdx, alg))
	f, err := os.Open(partPath)
	if err != nil {
		return nil, 0, wrapIo(partPath, err)
	}
	defer func() { _ = f.Close() }()

	r, err := codec.OpenReader(alg, f)
	if err != nil {
		return nil, 0, wrapIo(partPath, err)
	}
	defer func() { _ = r.Close() }()

	var mismatches []ChecksumMismatch
	checked := 0
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, checked, wrapIo(partPath, err)
		}
		name := trimTarDirSlash(hdr.Name)
		e, ok := want[name]
		if !ok {
			continue
		}

		h := sha256.New()
		if _, err := io.Copy(h, tr); err != nil {
			return nil, checked, wrapIo(partPath, err)
		}
		got := hex.EncodeToString(h.Sum(nil))
		checked++
		if e.SHA256 == nil || got != *e.SHA256 {
			expected := ""
			if e.SHA256 != nil {
				expected = *e.SHA256
			}
			mismatches = append(mismatches, ChecksumMismatch{Path: e.Path, Expected: expected, Got: got})
		}
	}
	return mismatches, checked, nil
}
