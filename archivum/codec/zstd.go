package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdLevelToPreset maps the index header's numeric zstd_level (1-22, the
// convention used by the reference zstd CLI) onto klauspost/compress's
// coarser EncoderLevel presets, since that library tunes for a small set
// of speed/ratio tradeoffs rather than every integer level.
func zstdLevelToPreset(level int) zstd.EncoderLevel {
	switch {
	case level <= 0:
		return zstd.SpeedDefault
	case level <= 3:
		return zstd.SpeedFastest
	case level <= 9:
		return zstd.SpeedDefault
	case level <= 15:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

func newZstdWriter(dst io.Writer, level int) (Writer, error) {
	return zstd.NewWriter(dst, zstd.WithEncoderLevel(zstdLevelToPreset(level)))
}

// zstdReadCloser adapts *zstd.Decoder (whose Close has no return value) to
// io.ReadCloser.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func newZstdReader(src io.Reader) (Reader, error) {
	d, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}
	return &zstdReadCloser{Decoder: d}, nil
}
