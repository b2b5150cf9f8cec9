package codec

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

func lz4Level(level int) lz4.CompressionLevel {
	switch {
	case level <= 0:
		return lz4.Fast
	case level <= 3:
		return lz4.Level1
	case level <= 6:
		return lz4.Level5
	default:
		return lz4.Level9
	}
}

func newLZ4Writer(dst io.Writer, level int) (Writer, error) {
	w := lz4.NewWriter(dst)
	if err := w.Apply(lz4.CompressionLevelOption(lz4Level(level))); err != nil {
		return nil, err
	}
	return w, nil
}

// lz4ReadCloser adapts *lz4.Reader (a plain io.Reader) to io.ReadCloser;
// the frame format has no footer that needs an explicit close.
type lz4ReadCloser struct {
	*lz4.Reader
}

func (lz4ReadCloser) Close() error { return nil }

func newLZ4Reader(src io.Reader) Reader {
	return lz4ReadCloser{Reader: lz4.NewReader(src)}
}
