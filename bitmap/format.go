package bitmap

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/vcscore/corevcs/codec"
	"github.com/vcscore/corevcs/hash"
	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/ewah"
)

var magic = [4]byte{'B', 'I', 'T', 'M'}

// Version is the only on-disk bitmap index format this package
// produces or accepts.
const Version = 1

var (
	ErrBadMagic   = errors.New("bitmap: bad magic")
	ErrBadVersion = errors.New("bitmap: unsupported version")
)

// headerFlags is reserved for future options (e.g. a hash-cache
// extension); always zero on write, ignored past the low bits on read.
type headerFlags uint32

// WriteTo encodes idx as: magic, version, flags, pack checksum, entry
// count, the four type bitmaps in (commit, tree, blob, tag) order,
// then each commit entry as (position, xor-offset, flags byte,
// bitmap).
func (idx *Index) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64

	n, err := bw.Write(magic[:])
	written += int64(n)
	if err != nil {
		return written, err
	}
	if err := binary.Write(bw, binary.BigEndian, uint32(Version)); err != nil {
		return written, err
	}
	written += 4
	if err := binary.Write(bw, binary.BigEndian, uint32(0)); err != nil { // flags
		return written, err
	}
	written += 4
	checksumBytes := idx.PackChecksum
	if _, err := bw.Write(checksumBytes[:]); err != nil {
		return written, err
	}
	written += int64(hash.Size)

	if err := binary.Write(bw, binary.BigEndian, uint32(len(idx.entries))); err != nil {
		return written, err
	}
	written += 4

	for _, tb := range idx.typeBitmaps {
		n64, err := tb.WriteTo(bw)
		written += n64
		if err != nil {
			return written, err
		}
	}

	for _, e := range idx.entries {
		if err := codec.WriteOffset(bw, uint64(e.Position)); err != nil {
			return written, err
		}
		if err := codec.WriteOffset(bw, uint64(e.XorOffset)); err != nil {
			return written, err
		}
		if err := bw.WriteByte(byte(e.Flags)); err != nil {
			return written, err
		}
		n64, err := e.Bitmap.WriteTo(bw)
		written += n64
		if err != nil {
			return written, err
		}
	}

	return written, bw.Flush()
}

// ReadFrom decodes an index previously written by WriteTo. order and
// positions (a pack's full position/id mapping, from positionsFromIdx)
// must be supplied by the caller, since the file itself does not repeat
// the pack's object identities.
func ReadFrom(r io.Reader, order []plumbing.ID, positions map[plumbing.ID]uint32) (*Index, error) {
	br := bufio.NewReader(r)

	var got [4]byte
	if _, err := io.ReadFull(br, got[:]); err != nil {
		return nil, err
	}
	if got != magic {
		return nil, ErrBadMagic
	}

	var version, flags uint32
	if err := binary.Read(br, binary.BigEndian, &version); err != nil {
		return nil, err
	}
	if version != Version {
		return nil, ErrBadVersion
	}
	if err := binary.Read(br, binary.BigEndian, &flags); err != nil {
		return nil, err
	}

	checksum := make([]byte, hash.Size)
	if _, err := io.ReadFull(br, checksum); err != nil {
		return nil, err
	}
	packChecksum, err := hash.FromBytes(checksum)
	if err != nil {
		return nil, err
	}

	var count uint32
	if err := binary.Read(br, binary.BigEndian, &count); err != nil {
		return nil, err
	}

	idx := &Index{
		PackChecksum: packChecksum,
		order:        order,
		positions:    positions,
		byPosition:   make(map[uint32]int, count),
		cache:        make(map[uint32]*ewah.Bitmap, count),
	}

	for i := range idx.typeBitmaps {
		tb, err := ewah.ReadFrom(br)
		if err != nil {
			return nil, err
		}
		idx.typeBitmaps[i] = tb
	}

	for i := uint32(0); i < count; i++ {
		pos, err := codec.ReadOffset(br)
		if err != nil {
			return nil, err
		}
		xor, err := codec.ReadOffset(br)
		if err != nil {
			return nil, err
		}
		flagByte, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		bm, err := ewah.ReadFrom(br)
		if err != nil {
			return nil, err
		}

		idx.entries = append(idx.entries, commitEntry{
			Position:  uint32(pos),
			XorOffset: uint32(xor),
			Flags:     EntryFlag(flagByte),
			Bitmap:    bm,
		})
		idx.byPosition[uint32(pos)] = len(idx.entries) - 1
	}

	return idx, nil
}
