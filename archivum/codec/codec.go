// Package codec implements the compression capability interface the tar
// writer (C4) and restore/verify engines dispatch through: one polymorphic
// {OpenWriter, OpenReader} pair per supported algorithm, picked by a tagged
// Algorithm enum rather than by inheritance.
//
// The shape is grounded on nabbar-golib's archive/compress package
// (Algorithm enum with List/String/Extension plus Parse) and its
// archive/archive/types package (capability Reader/Writer interfaces);
// XZ is replaced with Zstd to match the spec's required codec set.
package codec

import (
	"fmt"
	"io"
)

// Algorithm identifies a supported part compression codec.
type Algorithm uint8

const (
	None Algorithm = iota
	Gzip
	Zstd
	Bzip2
	LZ4
)

// List returns every supported algorithm in a stable order.
func List() []Algorithm {
	return []Algorithm{None, Gzip, Zstd, Bzip2, LZ4}
}

// String returns the header `compression` value for the algorithm.
func (a Algorithm) String() string {
	switch a {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case Bzip2:
		return "bzip2"
	case LZ4:
		return "lz4"
	default:
		return "none"
	}
}

// Extension returns the part file suffix for the algorithm, e.g. "tar.gz".
func (a Algorithm) Extension() string {
	switch a {
	case Gzip:
		return "tar.gz"
	case Zstd:
		return "tar.zst"
	case Bzip2:
		return "tar.bz2"
	case LZ4:
		return "tar.lz4"
	default:
		return "tar"
	}
}

// Parse maps a header/flag string ("none", "gzip", "zstd", "bzip2", "lz4")
// to an Algorithm. An empty string is treated as "none".
func Parse(s string) (Algorithm, error) {
	switch s {
	case "", "none":
		return None, nil
	case "gzip":
		return Gzip, nil
	case "zstd":
		return Zstd, nil
	case "bzip2":
		return Bzip2, nil
	case "lz4":
		return LZ4, nil
	default:
		return None, fmt.Errorf("codec: unsupported compression %q", s)
	}
}

// Writer is the capability every codec exposes for producing a compressed
// part stream. Gzip, Zstd, Bzip2 and LZ4 map the level onto their own
// settings; None ignores it.
type Writer interface {
	io.WriteCloser
}

// Reader is the streaming decompression capability; no implementation
// buffers the entire decompressed part in memory.
type Reader interface {
	io.ReadCloser
}

// OpenWriter wraps the destination file in the codec's compressing writer.
func OpenWriter(a Algorithm, dst io.Writer, level int) (Writer, error) {
	switch a {
	case None:
		return newIdentityWriter(dst), nil
	case Gzip:
		return newGzipWriter(dst, level)
	case Zstd:
		return newZstdWriter(dst, level)
	case Bzip2:
		return newBzip2Writer(dst, level)
	case LZ4:
		return newLZ4Writer(dst, level)
	default:
		return nil, fmt.Errorf("codec: unsupported compression algorithm %d", a)
	}
}

// OpenReader wraps the source file in the codec's streaming decompressing
// reader.
func OpenReader(a Algorithm, src io.Reader) (Reader, error) {
	switch a {
	case None:
		return newIdentityReader(src), nil
	case Gzip:
		return newGzipReader(src)
	case Zstd:
		return newZstdReader(src)
	case Bzip2:
		return newBzip2Reader(src)
	case LZ4:
		return newLZ4Reader(src), nil
	default:
		return nil, fmt.Errorf("codec: unsupported compression algorithm %d", a)
	}
}
