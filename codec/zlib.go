package codec

import (
	"compress/zlib"
	"fmt"
	"io"
)

// InflateReader returns a reader over the zlib-decompressed stream read
// from r. The caller is responsible for closing the returned reader,
// which in turn releases the zlib reader's internal buffers.
func InflateReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("codec: zlib header: %w", err)
	}
	return zr, nil
}

// InflateBounded reads and zlib-inflates r entirely, refusing to produce
// more than max bytes of output. Used for loose-object and pack-entry
// bodies where the caller already knows the expected size from the
// object header and wants corruption (a body that keeps expanding past
// its declared size) surfaced as ErrOverflow rather than an unbounded
// allocation.
func InflateBounded(r io.Reader, max int64) ([]byte, error) {
	zr, err := InflateReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	lr := &io.LimitedReader{R: zr, N: max + 1}
	buf, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("codec: zlib inflate: %w", err)
	}
	if int64(len(buf)) > max {
		return nil, ErrOverflow
	}
	return buf, nil
}

// Deflate writes the zlib-compressed form of p to w at the given
// compression level (use zlib.DefaultCompression for -1).
func Deflate(w io.Writer, p []byte, level int) error {
	zw, err := zlib.NewWriterLevel(w, level)
	if err != nil {
		return fmt.Errorf("codec: zlib writer: %w", err)
	}
	if _, err := zw.Write(p); err != nil {
		zw.Close()
		return fmt.Errorf("codec: zlib write: %w", err)
	}
	return zw.Close()
}
