// Package objfile reads and writes the loose-object wire format:
// zlib("<type> <size>\x00<content>"), spec.md §6's on-disk framing for
// every object not yet packed.
package objfile

import (
	"bufio"
	"errors"
	"io"
	"strconv"

	"github.com/vcscore/corevcs/codec"
	"github.com/vcscore/corevcs/hash"
	"github.com/vcscore/corevcs/plumbing"
)

var (
	ErrHeader      = errors.New("objfile: invalid header")
	ErrNegativeSize = errors.New("objfile: negative size")
	ErrOverflow     = errors.New("objfile: write content exceeds declared size")
)

// Reader decompresses a loose object's framing and content, computing
// the canonical identity as it streams so it can be checked against the
// expected one after the last byte is read.
type Reader struct {
	zr   io.ReadCloser
	br   *bufio.Reader
	hash *hash.Hash

	typ  plumbing.ObjectType
	size int64
	read int64

	headerDone bool
}

// NewReader wraps source, immediately inflating the zlib stream. The
// type+size header is not parsed until Header is called.
func NewReader(source io.Reader) (*Reader, error) {
	zr, err := codec.InflateReader(source)
	if err != nil {
		return nil, ErrHeader
	}

	return &Reader{
		zr:   zr,
		br:   bufio.NewReader(zr),
		hash: hash.New(),
	}, nil
}

// Header reads and parses the "<type> <size>\x00" preamble.
func (r *Reader) Header() (plumbing.ObjectType, int64, error) {
	if r.headerDone {
		return r.typ, r.size, nil
	}

	typeBytes, err := r.br.ReadBytes(' ')
	if err != nil {
		return plumbing.InvalidObject, 0, ErrHeader
	}
	typeBytes = typeBytes[:len(typeBytes)-1]

	typ, err := plumbing.ParseObjectType(string(typeBytes))
	if err != nil {
		return plumbing.InvalidObject, 0, ErrHeader
	}

	sizeBytes, err := r.br.ReadBytes(0)
	if err != nil {
		return plumbing.InvalidObject, 0, ErrHeader
	}
	sizeBytes = sizeBytes[:len(sizeBytes)-1]

	size, err := strconv.ParseInt(string(sizeBytes), 10, 64)
	if err != nil || size < 0 {
		return plumbing.InvalidObject, 0, ErrHeader
	}

	r.hash.Write(typeBytes)
	r.hash.Write([]byte{' '})
	r.hash.Write(sizeBytes)
	r.hash.Write([]byte{0})

	r.typ = typ
	r.size = size
	r.headerDone = true
	return typ, size, nil
}

// Read streams the object's content, after Header has been called.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.br.Read(p)
	if n > 0 {
		r.hash.Write(p[:n])
		r.read += int64(n)
	}
	return n, err
}

// Hash returns the identity computed over everything read so far. It is
// only the final canonical identity once Read has been driven to EOF.
func (r *Reader) Hash() plumbing.ID { return r.hash.Sum() }

// Close releases the underlying zlib stream.
func (r *Reader) Close() error { return r.zr.Close() }
