package archivum

import (
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

func setCancelFlag(c *CancelFlag)     { atomic.StoreInt32(&c.flag, 1) }
func cancelFlagSet(c *CancelFlag) bool { return atomic.LoadInt32(&c.flag) != 0 }
func addProgress(p *ProgressCounter, n int64) { atomic.AddInt64(&p.count, n) }
func loadProgress(p *ProgressCounter) int64   { return atomic.LoadInt64(&p.count) }

// toSlash normalizes a filesystem path to the forward-slash form stored
// in the index, regardless of host OS.
func toSlash(p string) string {
	return filepath.ToSlash(p)
}

// isSafeEntryPath rejects anything that isn't a clean, relative,
// forward-slash path with no ".." segment, per spec invariant 7. It is
// checked before any entry is written during restore or extract.
func isSafeEntryPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") {
		return false
	}
	if filepath.IsAbs(p) {
		return false
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}

// resolveUnderRoot joins root and rel, then verifies the result is still
// inside root after cleaning. It defends against both ".." traversal and
// an absolute rel silently escaping root.
func resolveUnderRoot(root, rel string) (string, bool) {
	if !isSafeEntryPath(rel) {
		return "", false
	}
	joined := filepath.Join(root, filepath.FromSlash(rel))
	cleanRoot := filepath.Clean(root)
	if joined != cleanRoot && !strings.HasPrefix(joined, cleanRoot+string(filepath.Separator)) {
		return "", false
	}
	return joined, true
}

// compressionRatio is uncompressed/compressed, saturating at 1.0 when
// compressedSize is zero to avoid a divide-by-zero for empty archives.
func compressionRatio(totalSize, compressedSize uint64) float64 {
	if compressedSize == 0 {
		return 1.0
	}
	return float64(totalSize) / float64(compressedSize)
}

func unixTime(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }
func u32Ptr(v uint32) *uint32 { return &v }
