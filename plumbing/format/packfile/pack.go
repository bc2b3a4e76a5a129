// Package packfile reads and writes pack files: spec.md §6's
// concatenated-object transfer and storage format, with ofs-delta and
// ref-delta chain resolution.
package packfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vcscore/corevcs/hash"
	"github.com/vcscore/corevcs/plumbing"
)

var signature = [4]byte{'P', 'A', 'C', 'K'}

// Version is the only pack format version this module produces or
// accepts on read.
const Version = 2

var (
	ErrBadSignature = errors.New("packfile: bad signature")
	ErrBadVersion   = errors.New("packfile: unsupported version")
	ErrBadChecksum  = errors.New("packfile: trailer checksum mismatch")
)

// Header is the 12-byte pack preamble: signature, format version, and
// the number of objects that follow.
type Header struct {
	Version uint32
	Count   uint32
}

// ReadHeader parses and validates the 12-byte pack preamble.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [12]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("packfile: read header: %w", err)
	}
	if [4]byte(buf[:4]) != signature {
		return Header{}, ErrBadSignature
	}
	version := binary.BigEndian.Uint32(buf[4:8])
	if version != Version {
		return Header{}, ErrBadVersion
	}
	count := binary.BigEndian.Uint32(buf[8:12])
	return Header{Version: version, Count: count}, nil
}

// WriteHeader emits the 12-byte pack preamble.
func WriteHeader(w io.Writer, count uint32) error {
	var buf [12]byte
	copy(buf[:4], signature[:])
	binary.BigEndian.PutUint32(buf[4:8], Version)
	binary.BigEndian.PutUint32(buf[8:12], count)
	_, err := w.Write(buf[:])
	return err
}

// countingHash wraps a writer, hashing and counting every byte written
// to it — used to both frame pack content and compute the trailing
// whole-pack checksum in a single pass.
type countingHash struct {
	w     io.Writer
	h     *hash.Hash
	count int64
}

func newCountingHash(w io.Writer) *countingHash {
	return &countingHash{w: w, h: hash.New()}
}

func (c *countingHash) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.h.Write(p[:n])
	c.count += int64(n)
	return n, err
}

func (c *countingHash) Sum() plumbing.ID { return c.h.Sum() }
