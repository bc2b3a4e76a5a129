package blame

// entry attributes final output lines [finalStart, finalStart+length)
// to originStart..originStart+length in its origin's content. The
// scoreboard keeps entries in final-line order; splitting an entry
// during assign_blame replaces it in place with the runs produced by
// diffing its origin against a parent.
//
// spec.md §4.7 describes this as a doubly-linked list; this
// implementation keeps the same entries-in-final-order invariant over
// a plain slice instead, which splices at least as simply and removes
// a class of pointer-update bugs a hand-rolled list invites.
type entry struct {
	finalStart  int
	originStart int
	length      int
	origin      *origin
}
