package objfile

import (
	"compress/zlib"
	"fmt"
	"io"

	"github.com/vcscore/corevcs/hash"
	"github.com/vcscore/corevcs/plumbing"
)

// Writer frames content into a loose object's on-disk form: the
// "<type> <size>\x00" header followed by the raw content, the whole
// thing zlib-compressed, with the canonical identity computed over the
// uncompressed bytes as they're written.
type Writer struct {
	w    io.Writer
	zw   *zlib.Writer
	hash *hash.Hash

	size    int64
	written int64

	headerWritten bool
}

// NewWriter wraps dest. WriteHeader must be called before Write.
func NewWriter(dest io.Writer) *Writer {
	return &Writer{w: dest, hash: hash.New()}
}

// WriteHeader declares the object's type and uncompressed size and
// emits the framing preamble.
func (w *Writer) WriteHeader(t plumbing.ObjectType, size int64) error {
	if !t.Valid() {
		return plumbing.ErrInvalidType
	}
	if size < 0 {
		return ErrNegativeSize
	}

	header := fmt.Appendf(nil, "%s %d", t, size)
	w.hash.Write(header)
	w.hash.Write([]byte{0})

	w.zw = zlib.NewWriter(w.w)
	if _, err := w.zw.Write(header); err != nil {
		return err
	}
	if _, err := w.zw.Write([]byte{0}); err != nil {
		return err
	}

	w.size = size
	w.headerWritten = true
	return nil
}

// Write streams content, refusing to accept more than the size declared
// to WriteHeader.
func (w *Writer) Write(p []byte) (int, error) {
	overflow := w.written+int64(len(p)) - w.size
	if overflow > 0 {
		p = p[:int64(len(p))-overflow]
	}

	n, err := w.zw.Write(p)
	if n > 0 {
		w.hash.Write(p[:n])
		w.written += int64(n)
	}
	if err == nil && overflow > 0 {
		err = ErrOverflow
	}
	return n, err
}

// Hash returns the identity computed over the content written so far.
func (w *Writer) Hash() plumbing.ID { return w.hash.Sum() }

// Size reports how many content bytes have been written.
func (w *Writer) Size() int64 { return w.written }

// Close flushes and closes the zlib stream.
func (w *Writer) Close() error {
	if w.zw == nil {
		return nil
	}
	return w.zw.Close()
}
