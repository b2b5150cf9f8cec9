package archivum

import "time"

// EntryType discriminates the three kinds of entry an archive can hold.
type EntryType string

const (
	// EntryTypeFile is a regular file with payload bytes in a tar part.
	EntryTypeFile EntryType = "file"

	// EntryTypeDirectory is a directory; represented by a tar header only.
	EntryTypeDirectory EntryType = "directory"

	// EntryTypeSymlink is a symbolic link; its target is stored verbatim.
	EntryTypeSymlink EntryType = "symlink"
)

// Compression identifies the codec used for a part's tar stream.
type Compression string

const (
	CompressionNone  Compression = "none"
	CompressionGzip  Compression = "gzip"
	CompressionZstd  Compression = "zstd"
	CompressionBzip2 Compression = "bzip2"
	CompressionLZ4   Compression = "lz4"
)

// Entry is one record in the index, per spec section 3.1. Field order
// mirrors the JSON wire layout produced by the index writer.
type Entry struct {
	Path          string      `json:"path"`
	EntryType     EntryType   `json:"entry_type"`
	Size          uint64      `json:"size"`
	Mtime         *int64      `json:"mtime,omitempty"`
	UnixMode      *uint32     `json:"unix_mode,omitempty"`
	SHA256        *string     `json:"sha256,omitempty"`
	TarPart       uint32      `json:"tar_part"`
	DedupOf       *string     `json:"dedup_of,omitempty"`
	SymlinkTarget *string     `json:"symlink_target,omitempty"`
}

// IsFile, IsDir, and IsSymlink are convenience predicates used throughout
// the packer, tar writer, and restore engine.
func (e *Entry) IsFile() bool    { return e.EntryType == EntryTypeFile }
func (e *Entry) IsDir() bool     { return e.EntryType == EntryTypeDirectory }
func (e *Entry) IsSymlink() bool { return e.EntryType == EntryTypeSymlink }

// IndexHeader carries the archive-wide metadata described in spec section
// 3.3. Version is currently always 3.
type IndexHeader struct {
	Version        int      `json:"version"`
	CreatedAtUnix  int64    `json:"created_at_unix"`
	CreatedAtHuman string   `json:"created_at_human"`
	TotalFiles     int      `json:"total_files"`
	TotalDirs      int      `json:"total_dirs"`
	TotalSymlinks  int      `json:"total_symlinks"`
	TotalSize      uint64   `json:"total_size"`
	TotalParts     int      `json:"total_parts"`
	Compression    Compression `json:"compression"`
	ZstdLevel      int      `json:"zstd_level,omitempty"`
	Notes          string   `json:"notes"`
	PartBases      []string `json:"part_bases"`
}

// Index is the full deserialized contents of index.arc.json.
type Index struct {
	IndexHeader
	Entries []Entry `json:"entries"`
}

const IndexVersion = 3

// CreateOptions configures Create.
type CreateOptions struct {
	// SourceRoot is the directory to scan.
	SourceRoot string

	// OutputDir is the directory the archive's files are written into.
	// Created if absent; must be empty or non-existent.
	OutputDir string

	// Base names the part-file stem; defaults to "data".
	Base string

	// ExcludePatterns are doublestar glob patterns matched against the
	// forward-slash path relative to SourceRoot.
	ExcludePatterns []string

	// SplitBytes caps the uncompressed payload bytes per part. Zero
	// means unbounded (a single part unless SplitFiles also caps it).
	SplitBytes uint64

	// SplitFiles caps the entry count per part. Zero means unbounded.
	SplitFiles int

	// Compression selects the part codec.
	Compression Compression

	// ZstdLevel is used only when Compression is CompressionZstd.
	ZstdLevel int

	// Dedup, when true, collapses files with identical SHA-256 into a
	// single stored payload.
	Dedup bool

	// Threads bounds the SHA-256 worker pool. Zero selects the default.
	Threads int

	// Notes is stored verbatim in the index header.
	Notes string

	// ContinueOnError is not consulted by Create: any scan error aborts
	// the whole operation.
	ContinueOnError bool

	// Cancel, when non-nil, is polled at file boundaries; a true value
	// aborts the operation and leaves no index or seal behind.
	Cancel *CancelFlag

	// Progress, when non-nil, is incremented once for every index entry
	// as Create builds the index, before any part is written. Never
	// required for correctness.
	Progress *ProgressCounter
}

// RestoreOptions configures Restore.
type RestoreOptions struct {
	// ArchiveDir is the directory holding index.arc.json and its parts.
	ArchiveDir string

	// TargetDir is the directory entries are written into. Created if
	// absent.
	TargetDir string

	// Filter, if non-empty, restricts restore to entries whose path
	// matches one of these doublestar glob patterns.
	Filter []string

	// Force allows overwriting existing files at the target.
	Force bool

	// RestorePermissions applies stored unix_mode and mtime to restored
	// regular files. For directories it only passes unix_mode to
	// MkdirAll, so a directory that already exists keeps its mode;
	// directory mtimes are not restored.
	RestorePermissions bool

	// ContinueOnError keeps restoring the remaining parts after one
	// fails, then returns every failure joined into one error. A failure
	// inside a part stops the rest of that part.
	ContinueOnError bool

	Cancel   *CancelFlag
	Progress *ProgressCounter
}

// VerifyOptions configures Verify.
type VerifyOptions struct {
	ArchiveDir      string
	ContinueOnError bool
	Cancel          *CancelFlag
}

// VerifyReport is the structured result of Verify.
type VerifyReport struct {
	Ok                bool
	TamperedIndex     bool
	MissingParts      []int
	ChecksumMismatches []ChecksumMismatch
	FilesChecked      int
}

// ChecksumMismatch records one file whose payload no longer matches its
// recorded SHA-256.
type ChecksumMismatch struct {
	Path     string
	Expected string
	Got      string
}

// DriftKind classifies one path's status in a Diff report.
type DriftKind string

const (
	DriftAdded     DriftKind = "added"
	DriftRemoved   DriftKind = "removed"
	DriftModified  DriftKind = "modified"
	DriftUnchanged DriftKind = "unchanged"
)

// DriftEntry is one path's classification produced by Diff.
type DriftEntry struct {
	Path string
	Kind DriftKind
}

// DiffOptions configures Diff.
type DiffOptions struct {
	ArchiveDir string
	SourceRoot string
	// Checksum, when true, compares SHA-256 instead of size+mtime to
	// decide MODIFIED vs UNCHANGED.
	Checksum bool
	ExcludePatterns []string
}

// UpdateOptions configures Update, which always produces a new archive
// directory rather than mutating OldArchiveDir.
type UpdateOptions struct {
	OldArchiveDir string
	SourceRoot    string
	OutputDir     string
	ExcludePatterns []string
	Compression   Compression
	ZstdLevel     int
	SplitBytes    uint64
	SplitFiles    int
	Threads       int
	Notes         string
}

// MergeOptions configures Merge over two or more previously created
// archives. Entries are re-encoded into a single target codec so the
// merged archive's header describes one uniform compression, rather than
// widening tar_part into a (base_index, part_index) tuple per source.
type MergeOptions struct {
	ArchiveDirs []string
	OutputDir   string
	Base        string
	Compression Compression
	ZstdLevel   int
	SplitBytes  uint64
	SplitFiles  int
	Notes       string
}

// RepairOptions configures Repair, which rebuilds an index from orphan
// part files found in a directory with no usable index.
type RepairOptions struct {
	ArchiveDir string
	OutputDir  string
	Base       string
	Notes      string
}

// StatsReport summarizes an archive for the `stats` subcommand.
type StatsReport struct {
	Header           IndexHeader
	CompressedSize   uint64
	CompressionRatio float64
}

// CancelFlag is a lock-free cooperative cancellation signal. Create polls
// it at file boundaries during scan and write; the SHA-256 hash pool
// (archash.HashFiles) does not poll it, so a started hash phase runs to
// completion. Restore and Verify poll it as well.
type CancelFlag struct {
	flag int32
}

// Cancel marks the flag as tripped.
func (c *CancelFlag) Cancel() {
	if c == nil {
		return
	}
	setCancelFlag(c)
}

// Cancelled reports whether the flag has been tripped.
func (c *CancelFlag) Cancelled() bool {
	if c == nil {
		return false
	}
	return cancelFlagSet(c)
}

// ProgressCounter is a monotonic, lock-free entry counter. Create
// increments it once per index entry; the hash pool and the part writer
// do not touch it.
type ProgressCounter struct {
	count int64
}

// Add increments the counter by n and returns nothing; callers that need
// the running total call Count.
func (p *ProgressCounter) Add(n int64) {
	if p == nil {
		return
	}
	addProgress(p, n)
}

// Count returns the current value.
func (p *ProgressCounter) Count() int64 {
	if p == nil {
		return 0
	}
	return loadProgress(p)
}

// createdAtHuman formats a unix timestamp the way the index header wants
// it: a UTC string suitable for display, not for parsing.
func createdAtHuman(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
