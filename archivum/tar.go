package archivum

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fulmenhq/archivum/archivum/codec"
)

// partWriter owns one part file's lifecycle: temp file, codec sink, tar
// writer. Entries are appended in assignment order; Close flushes the
// tar end-of-archive marker, closes the codec sink, and atomically
// renames the temp file into place.
type partWriter struct {
	finalPath string
	tmpFile   *os.File
	sink      codec.Writer
	tw        *tar.Writer
}

func openPartWriter(dir, base string, partIdx int, comp Compression, zstdLevel int) (*partWriter, error) {
	alg, err := compressionToAlgorithm(comp)
	if err != nil {
		return nil, err
	}
	finalPath := filepath.Join(dir, partFileName(base, partIdx, alg))

	tmp, err := os.CreateTemp(dir, fmt.Sprintf(".%s.part%03d.*.tmp", base, partIdx))
	if err != nil {
		return nil, wrapIo(finalPath, err)
	}

	level := 0
	if comp == CompressionZstd {
		level = zstdLevel
	}
	sink, err := codec.OpenWriter(alg, tmp, level)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, wrapIo(finalPath, err)
	}

	return &partWriter{
		finalPath: finalPath,
		tmpFile:   tmp,
		sink:      sink,
		tw:        tar.NewWriter(sink),
	}, nil
}

// writeDirHeader, writeSymlinkHeader, and writeFileHeaderAndBody mirror
// spec section 4.4: directories as type '5', symlinks as type '2' with
// linkname set, regular files as type '0' with their payload streamed
// immediately after the header.
func (w *partWriter) writeDirHeader(e *preEntry) error {
	hdr := &tar.Header{
		Typeflag: tar.TypeDir,
		Name:     e.path + "/",
		Mode:     int64(e.unixMode),
		ModTime:  unixTime(e.mtime),
		Format:   tar.FormatPAX,
	}
	return w.tw.WriteHeader(hdr)
}

func (w *partWriter) writeSymlinkHeader(e *preEntry) error {
	hdr := &tar.Header{
		Typeflag: tar.TypeSymlink,
		Name:     e.path,
		Linkname: e.symlinkTarget,
		Mode:     int64(e.unixMode),
		ModTime:  unixTime(e.mtime),
		Format:   tar.FormatPAX,
	}
	return w.tw.WriteHeader(hdr)
}

func (w *partWriter) writeFileHeaderAndBody(e *preEntry) error {
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     e.path,
		Size:     int64(e.size),
		Mode:     int64(e.unixMode),
		ModTime:  unixTime(e.mtime),
		Format:   tar.FormatPAX,
	}
	if err := w.tw.WriteHeader(hdr); err != nil {
		return err
	}

	f, err := os.Open(e.absPath)
	if err != nil {
		return wrapIo(e.absPath, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(w.tw, f); err != nil {
		return wrapIo(e.absPath, err)
	}
	return nil
}

// writeHeaderAndCopy writes e's file header and then copies its payload
// from an already-open reader, for callers (update, merge) that source
// bytes from another archive's part rather than from disk.
func (w *partWriter) writeHeaderAndCopy(e *preEntry, r io.Reader) error {
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     e.path,
		Size:     int64(e.size),
		Mode:     int64(e.unixMode),
		ModTime:  unixTime(e.mtime),
		Format:   tar.FormatPAX,
	}
	if err := w.tw.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := io.Copy(w.tw, r); err != nil {
		return err
	}
	return nil
}

// close flushes the tar trailer, closes the codec sink, fsyncs the temp
// file, and renames it into place.
func (w *partWriter) close() error {
	if err := w.tw.Close(); err != nil {
		return err
	}
	if err := w.sink.Close(); err != nil {
		return err
	}
	if err := w.tmpFile.Sync(); err != nil {
		return err
	}
	if err := w.tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(w.tmpFile.Name(), w.finalPath)
}

func (w *partWriter) abort() {
	_ = w.tw.Close()
	_ = w.sink.Close()
	_ = w.tmpFile.Close()
	_ = os.Remove(w.tmpFile.Name())
}

func compressionToAlgorithm(c Compression) (codec.Algorithm, error) {
	switch c {
	case CompressionNone, "":
		return codec.None, nil
	case CompressionGzip:
		return codec.Gzip, nil
	case CompressionZstd:
		return codec.Zstd, nil
	case CompressionBzip2:
		return codec.Bzip2, nil
	case CompressionLZ4:
		return codec.LZ4, nil
	default:
		return 0, newErrf(ErrKindSchemaError, "unknown compression %q", c)
	}
}

func algorithmToCompression(a codec.Algorithm) Compression {
	switch a {
	case codec.Gzip:
		return CompressionGzip
	case codec.Zstd:
		return CompressionZstd
	case codec.Bzip2:
		return CompressionBzip2
	case codec.LZ4:
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

func partFileName(base string, partIdx int, alg codec.Algorithm) string {
	return fmt.Sprintf("%s.part%03d.%s", base, partIdx, alg.Extension())
}
