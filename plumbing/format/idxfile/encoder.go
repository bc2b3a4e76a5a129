package idxfile

import (
	"encoding/binary"
	"io"

	"github.com/vcscore/corevcs/hash"
	"github.com/vcscore/corevcs/plumbing"
)

// Encode writes idx (already sorted by NewFromEntries/Decode) as a v2
// index file, trailed by packChecksum and the checksum of everything
// written before it.
func Encode(w io.Writer, idx *Index, packChecksum plumbing.ID) (plumbing.ID, error) {
	h := hash.New()
	mw := io.MultiWriter(w, h)

	if _, err := mw.Write(magic[:]); err != nil {
		return plumbing.ZeroID, err
	}
	if err := writeUint32(mw, Version); err != nil {
		return plumbing.ZeroID, err
	}

	var fanout [256]uint32
	for _, e := range idx.entries {
		fanout[e.ID[0]]++
	}
	for i := 1; i < 256; i++ {
		fanout[i] += fanout[i-1]
	}
	for _, v := range fanout {
		if err := writeUint32(mw, v); err != nil {
			return plumbing.ZeroID, err
		}
	}

	for _, e := range idx.entries {
		if _, err := mw.Write(e.ID[:]); err != nil {
			return plumbing.ZeroID, err
		}
	}

	for _, e := range idx.entries {
		if err := writeUint32(mw, e.CRC32); err != nil {
			return plumbing.ZeroID, err
		}
	}

	var large []int64
	for _, e := range idx.entries {
		if e.Offset > 0x7fffffff {
			large = append(large, e.Offset)
			if err := writeUint32(mw, is64BitMask|uint32(len(large)-1)); err != nil {
				return plumbing.ZeroID, err
			}
			continue
		}
		if err := writeUint32(mw, uint32(e.Offset)); err != nil {
			return plumbing.ZeroID, err
		}
	}
	for _, off := range large {
		if err := writeUint64(mw, uint64(off)); err != nil {
			return plumbing.ZeroID, err
		}
	}

	if _, err := mw.Write(packChecksum[:]); err != nil {
		return plumbing.ZeroID, err
	}

	sum := h.Sum()
	if _, err := w.Write(sum[:]); err != nil {
		return plumbing.ZeroID, err
	}
	return sum, nil
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}
