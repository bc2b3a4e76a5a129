package blame

import (
	"io"

	"github.com/vcscore/corevcs/plumbing/storer"
)

// scoreboard holds the final file's content and the current
// attribution of every line, as a slice of entries kept in final-line
// order (see entry.go for why this replaces a hand-linked list).
type scoreboard struct {
	s       storer.EncodedObjectStorer
	entries []*entry
}

// assignBlame is the main loop spec.md §4.7 calls assign_blame: starting
// from root (which owns every line), it repeatedly looks at one
// not-yet-exhausted origin, diffs it against the next commit upstream
// that still has the file (following a rename if the direct path is
// gone), and reassigns whichever lines turn out to be unchanged there.
// Lines a diff shows as introduced by the current origin stop
// propagating — that origin is their final answer.
func (sb *scoreboard) assignBlame(root *origin) error {
	pending := []*origin{root}
	visited := map[string]bool{}

	for len(pending) > 0 {
		o := pending[0]
		pending = pending[1:]

		if o.refs == 0 {
			continue
		}
		key := o.commit.Hash.String() + "|" + o.path
		if visited[key] {
			continue
		}
		visited[key] = true

		parentOrigin, fate, err := sb.nextOrigin(o)
		if err != nil {
			return err
		}
		if parentOrigin == nil {
			continue // root commit, or no parent retains the file: entries stay with o
		}

		sb.propagate(o, parentOrigin, fate)
		if parentOrigin.refs > 0 {
			pending = append(pending, parentOrigin)
		}
	}
	return nil
}

// nextOrigin finds the first parent of o.commit that still has the
// file (by path, or by exact-rename match) and returns its origin
// along with the line-fate mapping from o's content onto it.
func (sb *scoreboard) nextOrigin(o *origin) (*origin, []lineFate, error) {
	iter := o.commit.Parents()
	for {
		p, err := iter.Next()
		if err == io.EOF {
			return nil, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}

		if lines, blob, err := resolveFile(sb.s, p, o.path); err == nil {
			po := newOrigin(p, o.path, lines, blob)
			return po, diffFate(o.lines, lines), nil
		}

		if path, lines, err := findRename(sb.s, p, o.blob); err == nil {
			po := newOrigin(p, path, lines, o.blob)
			// The blob is byte-identical at this parent, so every line
			// is, trivially, an equal run mapped 1:1.
			fate := make([]lineFate, len(o.lines))
			for i := range fate {
				fate[i] = lineFate{equal: true, pLine: i}
			}
			return po, fate, nil
		}
	}
}

// propagate splits every entry currently owned by o according to
// fate, reassigning "equal" runs to parentOrigin and leaving "changed"
// runs with o.
func (sb *scoreboard) propagate(o, parentOrigin *origin, fate []lineFate) {
	for i := 0; i < len(sb.entries); i++ {
		e := sb.entries[i]
		if e.origin != o {
			continue
		}

		runs := splitRuns(fate, e.originStart, e.length)
		replacement := make([]*entry, 0, len(runs))
		finalCursor := e.finalStart
		for _, r := range runs {
			ne := &entry{finalStart: finalCursor, length: r.length}
			if r.equal {
				ne.origin = parentOrigin
				ne.originStart = r.startP
				parentOrigin.refs++
			} else {
				ne.origin = o
				ne.originStart = r.startOriginal
				o.refs++
			}
			replacement = append(replacement, ne)
			finalCursor += r.length
		}
		o.refs-- // e's own reference to o is being removed

		sb.entries = append(sb.entries[:i], append(replacement, sb.entries[i+1:]...)...)
		i += len(replacement) - 1
	}
}
