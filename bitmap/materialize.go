package bitmap

import (
	"fmt"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/ewah"
)

// ErrCorrupt is returned when an entry's XOR-lookback chain cannot be
// followed (a corrupt or truncated index); callers should treat this
// as BitmapCorrupt per spec.md §4.6 and fall back to a full walk
// instead of trusting a partial bitmap.
var ErrCorrupt = fmt.Errorf("bitmap: corrupt xor-lookback chain")

// Materialize returns id's full reachability bitmap, reconstructing it
// through as many XOR-lookback steps as its entry requires. Results are
// memoized, so a chain is only walked once no matter how many queries
// touch it.
func (idx *Index) Materialize(id plumbing.ID) (*ewah.Bitmap, bool, error) {
	pos, ok := idx.positions[id]
	if !ok {
		return nil, false, nil
	}
	bm, err := idx.materializePosition(pos)
	if err != nil {
		return nil, false, err
	}
	if bm == nil {
		return nil, false, nil
	}
	return bm, true, nil
}

func (idx *Index) materializePosition(pos uint32) (*ewah.Bitmap, error) {
	if bm, ok := idx.cache[pos]; ok {
		return bm, nil
	}

	i, ok := idx.byPosition[pos]
	if !ok {
		return nil, nil
	}
	entry := idx.entries[i]

	if entry.XorOffset == 0 {
		idx.cache[pos] = entry.Bitmap
		return entry.Bitmap, nil
	}

	baseIdx := i - int(entry.XorOffset)
	if baseIdx < 0 || baseIdx >= len(idx.entries) {
		return nil, ErrCorrupt
	}
	base, err := idx.materializePosition(idx.entries[baseIdx].Position)
	if err != nil {
		return nil, err
	}
	full := ewah.Xor(base, entry.Bitmap)
	idx.cache[pos] = full
	return full, nil
}
