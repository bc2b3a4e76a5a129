package bitmap

import "github.com/vcscore/corevcs/plumbing/ewah"

// ReusablePrefix returns the number of leading pack positions (0..n-1)
// that can be streamed byte-for-byte from the indexed pack to satisfy a
// request, instead of being re-deltified object by object (spec.md
// §4.6's "partial reuse"). It is the longest prefix of positions that
// is entirely contained in want, found by scanning want from position 0
// until the first gap.
//
// The length is then rounded down by nearestReusableBoundary to the
// position of a FlagReusable commit entry. The pack's delta chains are
// not examined: an object inside the returned prefix may still have its
// delta base outside it.
func (idx *Index) ReusablePrefix(want *ewah.Bitmap) uint32 {
	var n uint32
	for {
		if !want.Get(uint64(n)) {
			break
		}
		n++
	}
	return idx.nearestReusableBoundary(n)
}

// nearestReusableBoundary rounds n down to the highest position <= n
// held by a FlagReusable commit entry. If no entry is marked reusable
// at or below n, it returns 0 (no reuse).
func (idx *Index) nearestReusableBoundary(n uint32) uint32 {
	best := uint32(0)
	found := false
	for _, e := range idx.entries {
		if e.Flags&FlagReusable == 0 {
			continue
		}
		if e.Position <= n && (!found || e.Position > best) {
			best = e.Position
			found = true
		}
	}
	if !found {
		return 0
	}
	return best
}
