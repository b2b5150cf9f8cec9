package codec

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// bzip2 needs dsnet/compress rather than the standard library, which only
// implements a bzip2 reader: Archivum needs to write bzip2 parts too.
func newBzip2Writer(dst io.Writer, level int) (Writer, error) {
	if level <= 0 || level > 9 {
		level = bzip2.DefaultCompression
	}
	return bzip2.NewWriter(dst, &bzip2.WriterConfig{Level: level})
}

func newBzip2Reader(src io.Reader) (Reader, error) {
	return bzip2.NewReader(src, nil)
}
