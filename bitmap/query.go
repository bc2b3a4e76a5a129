package bitmap

import (
	"fmt"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/ewah"
)

// ReachabilityFunc computes the full set of objects reachable from
// tips, for tips the index has no stored bitmap for. A caller
// typically backs this with package revision's Walker; Query only
// calls it when at least one requested tip falls outside the index.
type ReachabilityFunc func(tips []plumbing.ID) ([]plumbing.ID, error)

// Query answers "what does want have that have doesn't" (spec.md
// §4.6's query(want, have)) as a bitmap of pack positions: every
// bitmapped tip contributes its stored bitmap directly; any tip the
// index doesn't cover falls back to walk, and whatever objects it
// reports are OR'd in by position for the ones that belong to this
// pack.
func (idx *Index) Query(want, have []plumbing.ID, walk ReachabilityFunc) (*ewah.Bitmap, error) {
	wantBM, err := idx.reachable(want, walk)
	if err != nil {
		return nil, err
	}
	haveBM, err := idx.reachable(have, walk)
	if err != nil {
		return nil, err
	}
	return ewah.AndNot(wantBM, haveBM), nil
}

func (idx *Index) reachable(tips []plumbing.ID, walk ReachabilityFunc) (*ewah.Bitmap, error) {
	acc := ewah.NewBuilder().Build()

	var uncovered []plumbing.ID
	for _, t := range tips {
		bm, ok, err := idx.Materialize(t)
		if err != nil {
			return nil, err
		}
		if !ok {
			uncovered = append(uncovered, t)
			continue
		}
		acc = ewah.Or(acc, bm)
	}

	if len(uncovered) == 0 {
		return acc, nil
	}
	if walk == nil {
		return nil, fmt.Errorf("bitmap: %d tip(s) not covered by the index and no fallback walker supplied", len(uncovered))
	}
	if idx.log != nil {
		idx.log.WithField("uncovered_tips", len(uncovered)).Debug("bitmap miss, falling back to graph walk")
	}
	ids, err := walk(uncovered)
	if err != nil {
		return nil, err
	}

	b := ewah.NewBuilder()
	for _, id := range ids {
		if pos, ok := idx.positions[id]; ok {
			b.Set(uint64(pos))
		}
	}
	return ewah.Or(acc, b.Build()), nil
}

// IDs converts a bitmap of pack positions (as returned by Query) back
// into object identities, in ascending position order.
func (idx *Index) IDs(bm *ewah.Bitmap) []plumbing.ID {
	var out []plumbing.ID
	bm.ForEach(func(pos uint64) bool {
		if id, ok := idx.ID(uint32(pos)); ok {
			out = append(out, id)
		}
		return true
	})
	return out
}

// ByType restricts result (as from Query) to objects of type t, the
// "type enumeration" spec.md §4.6 describes as an AND against the
// matching type bitmap.
func (idx *Index) ByType(result *ewah.Bitmap, t plumbing.ObjectType) *ewah.Bitmap {
	ot := objTypeOf(t)
	if ot < 0 {
		return ewah.NewBuilder().Build()
	}
	return ewah.And(result, idx.typeBitmaps[ot])
}
