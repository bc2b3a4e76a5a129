package packfile

import (
	"bytes"
	"errors"
	"io"

	"github.com/vcscore/corevcs/codec"
)

// See https://github.com/git/git/blob/master/delta.h for the delta
// instruction encoding this decodes: each instruction is a command byte
// followed by zero or more fields; the high bit of the command byte
// distinguishes copy-from-base (fields select which offset/size bytes
// are present) from insert-literal (the low 7 bits are the literal
// length).
var (
	ErrInvalidDelta = errors.New("packfile: invalid delta")
	ErrDeltaCmd     = errors.New("packfile: unrecognized delta command")
)

const maxCopySize = 0x10000

// patchDelta applies delta to src and returns the reconstructed target.
func patchDelta(src, delta []byte) ([]byte, error) {
	r := bytes.NewReader(delta)

	// The two size headers are little-endian base-128 varints, unlike
	// the ofs-delta offset that codec.ReadOffset decodes.
	readSize := func() (uint64, error) {
		var v uint64
		for shift := uint(0); ; shift += 7 {
			b, err := r.ReadByte()
			if err != nil {
				return 0, err
			}
			v |= uint64(b&0x7f) << shift
			if b&0x80 == 0 {
				return v, nil
			}
		}
	}

	srcSize, err := readSize()
	if err != nil {
		return nil, ErrInvalidDelta
	}
	if uint64(len(src)) != srcSize {
		return nil, ErrInvalidDelta
	}

	targetSize, err := readSize()
	if err != nil {
		return nil, ErrInvalidDelta
	}

	dst := make([]byte, 0, targetSize)

	for uint64(len(dst)) < targetSize {
		cmd, err := r.ReadByte()
		if err != nil {
			return nil, ErrInvalidDelta
		}

		switch {
		case cmd&0x80 != 0:
			offset, err := codec.ReadLengthDelta(r, cmd, 4)
			if err != nil {
				return nil, ErrInvalidDelta
			}
			size, err := codec.ReadLengthDelta(r, cmd>>4, 3)
			if err != nil {
				return nil, ErrInvalidDelta
			}
			if size == 0 {
				size = maxCopySize
			}
			if offset+size > srcSize || offset+size < offset {
				return nil, ErrInvalidDelta
			}
			dst = append(dst, src[offset:offset+size]...)

		case cmd != 0:
			size := int(cmd)
			lit := make([]byte, size)
			if _, err := io.ReadFull(r, lit); err != nil {
				return nil, ErrInvalidDelta
			}
			dst = append(dst, lit...)

		default:
			return nil, ErrDeltaCmd
		}
	}

	if uint64(len(dst)) != targetSize {
		return nil, ErrInvalidDelta
	}

	return dst, nil
}
