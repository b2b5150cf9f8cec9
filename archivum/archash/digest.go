// Package archash provides the content-hashing primitives Archivum uses to
// make an archive verifiable: parallel SHA-256 over file payloads, and a
// Blake3 seal over the serialized index.
//
// The entry points are HashFile for one file, HashFiles for a worker-pool
// batch over many files, and SealIndex for the index seal. Digest wraps a
// computed hash and FileError names the path a hashing call failed on.
package archash

import (
	"encoding/hex"
	"fmt"
)

// Digest is a computed content hash.
type Digest struct {
	bytes []byte
}

// Hex returns the lowercase hexadecimal representation of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.bytes)
}

// Bytes returns the raw digest bytes.
func (d Digest) Bytes() []byte {
	return d.bytes
}

func newDigest(b []byte) Digest {
	return Digest{bytes: b}
}

// FileError identifies which path a batch hashing operation failed on.
type FileError struct {
	Path  string
	Cause error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("archash: hashing %s: %v", e.Path, e.Cause)
}

func (e *FileError) Unwrap() error {
	return e.Cause
}
