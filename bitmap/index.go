// Package bitmap implements the Bitmap Index (spec.md §4.6): a
// precomputed reachability bitmap per selected commit, chained by
// XOR-lookback to keep the on-disk representation small, plus four
// type bitmaps partitioning every object a commit's full bitmap can
// reference. It turns "what objects does the remote already have"
// negotiation into a handful of bitmap ANDs instead of a full graph
// walk, falling back to package revision's Walker for any tip the
// index doesn't cover.
//
// Grounded on plumbing/ewah for the compressed bitmap codec itself and
// on plumbing/format/idxfile for the pack-position numbering a bitmap
// entry is defined against.
package bitmap

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/ewah"
	"github.com/vcscore/corevcs/plumbing/format/idxfile"
)

// objType indexes the four type bitmaps; deliberately distinct from
// plumbing.ObjectType so the on-disk order (commit, tree, blob, tag) is
// independent of that type's own iota values.
type objType int

const (
	typeCommit objType = iota
	typeTree
	typeBlob
	typeTag
	numTypes
)

func objTypeOf(t plumbing.ObjectType) objType {
	switch t {
	case plumbing.CommitObject:
		return typeCommit
	case plumbing.TreeObject:
		return typeTree
	case plumbing.BlobObject:
		return typeBlob
	case plumbing.TagObject:
		return typeTag
	default:
		return -1
	}
}

// EntryFlag marks properties of one commit-bitmap entry.
type EntryFlag uint8

// FlagReusable marks an entry whose position ReusablePrefix may use as
// a reuse boundary. Build sets it on every entry it writes.
const FlagReusable EntryFlag = 1 << 0

type commitEntry struct {
	Position  uint32
	XorOffset uint32 // 0 = none, else "entry index - XorOffset" is the base
	Flags     EntryFlag
	Bitmap    *ewah.Bitmap // a delta (XOR of full against base) if XorOffset != 0, else full
}

// Index is one decoded (or freshly built) bitmap index, scoped to a
// single pack.
type Index struct {
	PackChecksum plumbing.ID

	order     []plumbing.ID          // position -> object id
	positions map[plumbing.ID]uint32 // object id -> position

	entries    []commitEntry
	byPosition map[uint32]int // position -> index into entries

	typeBitmaps [numTypes]*ewah.Bitmap

	cache map[uint32]*ewah.Bitmap // position -> materialized full bitmap

	log *logrus.Entry // set via SetLogger; nil skips diagnostic logging
}

// SetLogger attaches the Repository's bitmap-component logger, used to
// report tips Query had to fall back to a full graph walk for (spec.md
// §7's NotSupported/fallback diagnostic for this component).
func (idx *Index) SetLogger(log *logrus.Entry) { idx.log = log }

// positionsFromIdx assigns pack positions 0..N-1 in ascending pack
// offset order, the standard bitmap convention (so position order
// matches the order objects actually appear in the pack, letting a
// prefix of positions double as a streamable byte range).
func positionsFromIdx(idx *idxfile.Index) ([]plumbing.ID, map[plumbing.ID]uint32) {
	entries := append([]idxfile.Entry(nil), idx.Entries()...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Offset < entries[j].Offset })

	order := make([]plumbing.ID, len(entries))
	positions := make(map[plumbing.ID]uint32, len(entries))
	for i, e := range entries {
		order[i] = e.ID
		positions[e.ID] = uint32(i)
	}
	return order, positions
}

// ObjectTypes pairs an object's id with its type, the input Build needs
// to partition the type bitmaps (a caller typically gets this from
// IterEncodedObjects(storer.AnyObject) over the pack being indexed).
type ObjectTypes map[plumbing.ID]plumbing.ObjectType

// SelectedCommit is one commit a caller wants represented in the index,
// in the order it should be considered for XOR-lookback (most recent
// first is the conventional choice, since near-in-time commits share
// the most reachable objects).
type SelectedCommit struct {
	ID     plumbing.ID
	Bitmap *ewah.Bitmap // the full, dense reachability bitmap over positions
}

// Build assembles an Index from idx (giving every object its pack
// position), types (every object's type, for the four type bitmaps),
// and selected (the commits to store, in XOR-lookback consideration
// order).
func Build(idx *idxfile.Index, types ObjectTypes, selected []SelectedCommit) *Index {
	order, positions := positionsFromIdx(idx)

	bld := [numTypes]*ewah.Builder{}
	for i := range bld {
		bld[i] = ewah.NewBuilder()
	}
	for id, t := range types {
		pos, ok := positions[id]
		if !ok {
			continue
		}
		ot := objTypeOf(t)
		if ot < 0 {
			continue
		}
		bld[ot].Set(uint64(pos))
	}

	idxOut := &Index{
		order:      order,
		positions:  positions,
		byPosition: make(map[uint32]int, len(selected)),
		cache:      make(map[uint32]*ewah.Bitmap, len(selected)),
	}
	for i := range bld {
		idxOut.typeBitmaps[i] = bld[i].Build()
	}

	for i, sc := range selected {
		// Every stored entry is marked FlagReusable, making its position
		// a candidate reuse boundary for ReusablePrefix.
		entry := commitEntry{Position: positions[sc.ID], Bitmap: sc.Bitmap, Flags: FlagReusable}

		if i > 0 {
			base := selected[i-1].Bitmap
			delta := ewah.Xor(base, sc.Bitmap)
			if delta.Cardinality() < sc.Bitmap.Cardinality() {
				entry.XorOffset = 1
				entry.Bitmap = delta
			}
		}

		idxOut.entries = append(idxOut.entries, entry)
		idxOut.byPosition[entry.Position] = len(idxOut.entries) - 1
		idxOut.cache[entry.Position] = sc.Bitmap
	}

	return idxOut
}

// Position returns id's pack position, if the index covers it.
func (idx *Index) Position(id plumbing.ID) (uint32, bool) {
	p, ok := idx.positions[id]
	return p, ok
}

// ID returns the object at pack position pos.
func (idx *Index) ID(pos uint32) (plumbing.ID, bool) {
	if int(pos) >= len(idx.order) {
		return plumbing.ZeroID, false
	}
	return idx.order[pos], true
}

// HasCommit reports whether id has a stored bitmap entry.
func (idx *Index) HasCommit(id plumbing.ID) bool {
	pos, ok := idx.positions[id]
	if !ok {
		return false
	}
	_, ok = idx.byPosition[pos]
	return ok
}
