// Package archivum implements a deterministic, content-verifiable
// directory archiver: a source tree is scanned, packed into size- and
// count-bounded parts, streamed into (optionally compressed) ustar tar
// files, and sealed behind a Blake3-hashed JSON index that records a
// SHA-256 per file payload.
//
// # Core operations
//
//   - Create   scans a source tree and writes a new archive directory.
//   - Restore  rebuilds a tree from an archive, grouping entries by part
//     so each part is opened exactly once.
//   - Extract  retrieves a single file without touching the rest of the
//     archive.
//   - Verify   checks the index seal, part presence, and per-file content
//     hashes.
//   - Diff     compares a live source tree against a previously created
//     archive.
//   - Update, Merge, and Repair always produce a new archive directory;
//     Archivum never mutates an existing archive in place.
//
// # Determinism
//
// Two Create calls against the same tree at the same instant produce
// byte-identical index entries and byte-identical part contents. This
// follows from a fixed traversal order (depth-first, pre-order, children
// sorted by name) and a two-pass pack/write pipeline that assigns part
// indices before any bytes are streamed.
//
// # Security
//
// Restore and single-file extraction reject any entry whose path contains
// a ".." segment or is absolute before writing anything, and check that
// every destination path, joined onto the target directory, still lies
// under it. The check is lexical: symlinks already present under the
// target directory are not resolved, so it does not stop an escape
// through such a symlink.
package archivum
