package codec

import (
	"compress/gzip"
	"io"
)

func newGzipWriter(dst io.Writer, level int) (Writer, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return gzip.NewWriterLevel(dst, level)
}

func newGzipReader(src io.Reader) (Reader, error) {
	return gzip.NewReader(src)
}
