// Package codec implements the small set of binary encodings shared by the
// pack and loose-object formats: the two variable-length integer schemes
// used in packs, and a bounded streaming zlib framing shared by loose
// objects and pack entries.
package codec

import (
	"errors"
	"io"
)

// ErrOverflow is returned when a decoded size would exceed a caller
// supplied bound.
var ErrOverflow = errors.New("codec: encoded size exceeds bound")

// ErrTruncated is returned when more input is required than is available.
var ErrTruncated = errors.New("codec: truncated varint")

// ReadTypeSize decodes the pack object header: a one-shot 4-bit nibble
// (the low 4 bits of the size, and 3 bits of object type) followed by
// 7-bit continuation bytes each contributing further size bits, high bit
// set meaning "more bytes follow".
func ReadTypeSize(r io.ByteReader) (typ int, size uint64, err error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	typ = int((b >> 4) & 0x07)
	size = uint64(b & 0x0f)
	shift := uint(4)
	for b&0x80 != 0 {
		b, err = r.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		size |= uint64(b&0x7f) << shift
		shift += 7
	}
	return typ, size, nil
}

// WriteTypeSize encodes the pack object type+size header.
func WriteTypeSize(w io.ByteWriter, typ int, size uint64) error {
	b := byte(typ&0x07) << 4
	b |= byte(size & 0x0f)
	size >>= 4
	if size != 0 {
		b |= 0x80
	}
	if err := w.WriteByte(b); err != nil {
		return err
	}
	for size != 0 {
		b = byte(size & 0x7f)
		size >>= 7
		if size != 0 {
			b |= 0x80
		}
		if err := w.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}

// ReadOffset decodes a delta base offset: 7 payload bits per byte, high
// bit set means "more bytes follow", and each continuation adds
// 1<<(7*k) to the running value (the "ofs-delta" varint used to locate a
// delta's base by backward offset rather than identity).
func ReadOffset(r io.ByteReader) (uint64, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	v := uint64(b & 0x7f)
	for b&0x80 != 0 {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		v = ((v + 1) << 7) | uint64(b&0x7f)
	}
	return v, nil
}

// WriteOffset encodes a delta base offset using the scheme ReadOffset
// decodes.
func WriteOffset(w io.ByteWriter, v uint64) error {
	var buf [10]byte
	n := 0
	buf[n] = byte(v & 0x7f)
	n++
	v >>= 7
	for v != 0 {
		v--
		buf[n] = byte(v&0x7f) | 0x80
		n++
		v >>= 7
	}
	// bytes were generated least-significant-chunk first; the wire
	// format wants most-significant-chunk first.
	for i := n - 1; i >= 0; i-- {
		if err := w.WriteByte(buf[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadLengthDelta decodes a copy/insert instruction size or offset field
// used inside a delta body: a plain little-endian value built from
// present byte slots flagged by a leading command byte.
func ReadLengthDelta(r io.ByteReader, cmd byte, nbytes int) (uint64, error) {
	var v uint64
	for i := 0; i < nbytes; i++ {
		if cmd&(1<<uint(i)) != 0 {
			b, err := r.ReadByte()
			if err != nil {
				return 0, ErrTruncated
			}
			v |= uint64(b) << (8 * uint(i))
		}
	}
	return v, nil
}
