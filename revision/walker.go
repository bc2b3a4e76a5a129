package revision

import (
	"fmt"
	"io"
	"sort"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/object"
	"github.com/vcscore/corevcs/plumbing/storer"
)

// Order selects how Walker.Next produces commits once the interesting
// set has been computed.
type Order int

const (
	// DateOrder emits commits by committer date, most recent first
	// (ties broken by hash for determinism).
	DateOrder Order = iota
	// TopoOrder emits commits so that no commit appears before all of
	// its children in the result set have already been emitted,
	// breaking remaining ties by committer date.
	TopoOrder
)

// Walker computes the set of commits reachable from a group of "want"
// tips but not reachable (except via a boundary edge) from any "have"
// tip, per spec.md §4.5, and hands them back in the requested Order.
//
// The walk is not streaming: New fully resolves the interesting set up
// front (flooding UNINTERESTING from the have tips first), trading the
// fully lazy, incremental propagation spec.md describes for a simpler,
// provably correct two-pass computation. This is recorded as a
// deliberate simplification, not an oversight.
type Walker struct {
	s storer.EncodedObjectStorer

	flags map[plumbing.ID]flag
	order []*object.Commit // final emission order
	pos   int

	boundary []*object.Commit
}

// New resolves want and have to commits (following one tag dereference
// each, like object.GetCommit) and computes the walk.
func New(s storer.EncodedObjectStorer, want, have []plumbing.ID, order Order) (*Walker, error) {
	w := &Walker{s: s, flags: make(map[plumbing.ID]flag)}

	haveCommits, err := resolveAll(s, have)
	if err != nil {
		return nil, err
	}
	if err := w.flood(haveCommits); err != nil {
		return nil, err
	}

	wantCommits, err := resolveAll(s, want)
	if err != nil {
		return nil, err
	}
	interesting, err := w.collect(wantCommits)
	if err != nil {
		return nil, err
	}

	switch order {
	case TopoOrder:
		w.order, err = topoSort(interesting)
	default:
		w.order = dateSort(interesting)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func resolveAll(s storer.EncodedObjectStorer, ids []plumbing.ID) ([]*object.Commit, error) {
	out := make([]*object.Commit, 0, len(ids))
	for _, id := range ids {
		c, err := object.GetCommit(s, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// flood marks every ancestor of tips UNINTERESTING (spec.md's negative
// side), and records the direct interesting-side edge of that set so
// Boundary can report it once the positive walk runs.
func (w *Walker) flood(tips []*object.Commit) error {
	queue := append([]*object.Commit(nil), tips...)
	for _, c := range tips {
		w.flags[c.Hash] |= flagSeen | flagUninteresting
	}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		iter := c.Parents()
		for {
			p, err := iter.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if w.flags[p.Hash]&flagSeen != 0 {
				continue
			}
			w.flags[p.Hash] |= flagSeen | flagUninteresting
			queue = append(queue, p)
		}
	}
	return nil
}

// collect walks from tips, skipping anything already marked
// UNINTERESTING, and returns every commit reached. Parents that are
// themselves uninteresting are recorded as boundary commits rather than
// walked further.
func (w *Walker) collect(tips []*object.Commit) ([]*object.Commit, error) {
	var result []*object.Commit
	queue := append([]*object.Commit(nil), tips...)
	for _, c := range tips {
		if w.flags[c.Hash]&flagUninteresting != 0 {
			continue
		}
		w.flags[c.Hash] |= flagSeen
	}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if w.flags[c.Hash]&flagUninteresting != 0 {
			continue
		}
		result = append(result, c)

		iter := c.Parents()
		for {
			p, err := iter.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			if w.flags[p.Hash]&flagUninteresting != 0 {
				if w.flags[p.Hash]&flagBoundary == 0 {
					w.flags[p.Hash] |= flagBoundary
					w.boundary = append(w.boundary, p)
				}
				continue
			}
			if w.flags[p.Hash]&flagSeen != 0 {
				continue
			}
			w.flags[p.Hash] |= flagSeen
			queue = append(queue, p)
		}
	}
	return result, nil
}

func dateSort(commits []*object.Commit) []*object.Commit {
	out := append([]*object.Commit(nil), commits...)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Committer.When, out[j].Committer.When
		if ti.Equal(tj) {
			return out[i].Hash.String() < out[j].Hash.String()
		}
		return ti.After(tj)
	})
	return out
}

// topoSort orders commits so a commit is only emitted once every other
// commit in the set that names it as a parent has already been
// emitted, using committer date (via dateQueue) to break ties among
// commits that become ready simultaneously.
func topoSort(commits []*object.Commit) ([]*object.Commit, error) {
	inSet := make(map[plumbing.ID]*object.Commit, len(commits))
	for _, c := range commits {
		inSet[c.Hash] = c
	}

	remainingChildren := make(map[plumbing.ID]int, len(commits))
	for _, c := range commits {
		remainingChildren[c.Hash] = 0
	}
	for _, c := range commits {
		for _, ph := range c.ParentHashes {
			if _, ok := inSet[ph]; ok {
				remainingChildren[ph]++
			}
		}
	}

	q := newDateQueue()
	for _, c := range commits {
		if remainingChildren[c.Hash] == 0 {
			q.push(c)
		}
	}

	var out []*object.Commit
	for !q.empty() {
		c := q.popMax()
		out = append(out, c)
		for _, ph := range c.ParentHashes {
			if _, ok := inSet[ph]; !ok {
				continue
			}
			remainingChildren[ph]--
			if remainingChildren[ph] == 0 {
				q.push(inSet[ph])
			}
		}
	}
	if len(out) != len(commits) {
		return nil, fmt.Errorf("revision: cycle detected while computing topological order")
	}
	return out, nil
}

// Next returns the next commit in the walk, or io.EOF once exhausted.
func (w *Walker) Next() (*object.Commit, error) {
	if w.pos >= len(w.order) {
		return nil, io.EOF
	}
	c := w.order[w.pos]
	w.pos++
	return c, nil
}

// ForEach calls fn for every commit in order, stopping early (without
// error) if fn returns storer.ErrStop.
func (w *Walker) ForEach(fn func(*object.Commit) error) error {
	for {
		c, err := w.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			if err == storer.ErrStop {
				return nil
			}
			return err
		}
	}
}

// Boundary returns the uninteresting commits that are direct parents of
// an interesting one — the excluded edge of the walked range.
func (w *Walker) Boundary() []*object.Commit { return w.boundary }
