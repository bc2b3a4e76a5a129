// Package idxfile reads and writes pack index v2 files: spec.md §6's
// 256-entry fan-out table over a sorted identity array, paired with CRC
// and offset arrays (the latter spilling into a 64-bit extension table
// for packs over 2GiB), letting a reader locate any object's pack
// position without scanning the pack itself.
package idxfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"sort"

	"github.com/vcscore/corevcs/hash"
	"github.com/vcscore/corevcs/plumbing"
)

var magic = [4]byte{255, 't', 'O', 'c'}

// Version is the only index format version this module produces or
// accepts on read.
const Version = 2

var (
	ErrBadMagic   = errors.New("idxfile: bad magic")
	ErrBadVersion = errors.New("idxfile: unsupported version")
	ErrNotFound   = plumbing.ErrNotFound
)

const is64BitMask = uint32(1) << 31

// Entry is one object's position and integrity record.
type Entry struct {
	ID     plumbing.ID
	Offset int64
	CRC32  uint32
}

// Index is the fully decoded, in-memory form of a pack index. Objects
// are kept sorted by identity, matching the on-disk layout, so lookup
// is a binary search and iteration is already in canonical order.
type Index struct {
	entries []Entry

	// byOffset supports FindByOffset (an ofs-delta base lookup, or a
	// reverse-index query); built lazily since many callers never need
	// it.
	byOffset map[int64]int
}

// Count returns the number of objects indexed.
func (idx *Index) Count() int { return len(idx.entries) }

// Entries returns the entries in sorted-identity order. The slice must
// not be mutated.
func (idx *Index) Entries() []Entry { return idx.entries }

// FindOffset returns the pack offset of id, or ErrNotFound.
func (idx *Index) FindOffset(id plumbing.ID) (int64, error) {
	e, ok := idx.find(id)
	if !ok {
		return 0, ErrNotFound
	}
	return e.Offset, nil
}

// FindCRC32 returns the stored CRC32 of id's compressed pack entry, or
// ErrNotFound.
func (idx *Index) FindCRC32(id plumbing.ID) (uint32, error) {
	e, ok := idx.find(id)
	if !ok {
		return 0, ErrNotFound
	}
	return e.CRC32, nil
}

// Contains reports whether id is indexed.
func (idx *Index) Contains(id plumbing.ID) bool {
	_, ok := idx.find(id)
	return ok
}

func (idx *Index) find(id plumbing.ID) (Entry, bool) {
	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].ID.Compare(id) >= 0
	})
	if i < len(idx.entries) && idx.entries[i].ID == id {
		return idx.entries[i], true
	}
	return Entry{}, false
}

// FindID returns the identity stored at offset, or ErrNotFound — the
// "reverse index" query spec.md's Object Store lookup path uses to name
// a delta's ofs-delta base without a second linear scan.
func (idx *Index) FindID(offset int64) (plumbing.ID, error) {
	if idx.byOffset == nil {
		idx.byOffset = make(map[int64]int, len(idx.entries))
		for i, e := range idx.entries {
			idx.byOffset[e.Offset] = i
		}
	}
	i, ok := idx.byOffset[offset]
	if !ok {
		return plumbing.ZeroID, ErrNotFound
	}
	return idx.entries[i].ID, nil
}

// NewFromEntries builds an Index directly from a list of entries (in any
// order; they are sorted by identity), used right after parsing a pack
// so the index never has to be decoded from bytes that were just encoded.
func NewFromEntries(entries []Entry) *Index {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.Compare(sorted[j].ID) < 0
	})
	return &Index{entries: sorted}
}

// Decode reads a full v2 index file from r.
func Decode(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)

	var hdr [8]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, err
	}
	if [4]byte(hdr[:4]) != magic {
		return nil, ErrBadMagic
	}
	if binary.BigEndian.Uint32(hdr[4:8]) != Version {
		return nil, ErrBadVersion
	}

	var fanout [256]uint32
	for i := range fanout {
		var b [4]byte
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return nil, err
		}
		fanout[i] = binary.BigEndian.Uint32(b[:])
	}
	count := int(fanout[255])

	ids := make([]plumbing.ID, count)
	for i := range ids {
		if _, err := io.ReadFull(br, ids[i][:]); err != nil {
			return nil, err
		}
	}

	crcs := make([]uint32, count)
	for i := range crcs {
		var b [4]byte
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return nil, err
		}
		crcs[i] = binary.BigEndian.Uint32(b[:])
	}

	offs32 := make([]uint32, count)
	var needs64 []int
	for i := range offs32 {
		var b [4]byte
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return nil, err
		}
		offs32[i] = binary.BigEndian.Uint32(b[:])
		if offs32[i]&is64BitMask != 0 {
			needs64 = append(needs64, i)
		}
	}

	offs64 := make(map[int]int64, len(needs64))
	for _, i := range needs64 {
		var b [8]byte
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return nil, err
		}
		offs64[i] = int64(binary.BigEndian.Uint64(b[:]))
	}

	// trailer: pack checksum + index checksum, both 20 bytes; not
	// independently useful once decoded into entries, so read and
	// discard rather than store.
	var trailer [hash.Size * 2]byte
	if _, err := io.ReadFull(br, trailer[:]); err != nil {
		return nil, err
	}

	entries := make([]Entry, count)
	for i := range entries {
		off := int64(offs32[i])
		if offs32[i]&is64BitMask != 0 {
			off = offs64[i]
		}
		entries[i] = Entry{ID: ids[i], Offset: off, CRC32: crcs[i]}
	}

	return &Index{entries: entries}, nil
}
