package revision

import (
	"io"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/object"
	"github.com/vcscore/corevcs/plumbing/storer"
)

// IsAncestor reports whether ancestor is reachable by following parent
// links from descendant (spec.md's is_ancestor(a, b)). It walks
// descendant's history, pruning any branch whose commits are all older
// than ancestor's committer date, and returns as soon as ancestor is
// found or the walk is exhausted.
func IsAncestor(s storer.EncodedObjectStorer, ancestor, descendant plumbing.ID) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}

	a, err := object.GetCommit(s, ancestor)
	if err != nil {
		return false, err
	}
	start, err := object.GetCommit(s, descendant)
	if err != nil {
		return false, err
	}

	seen := map[plumbing.ID]bool{start.Hash: true}
	queue := []*object.Commit{start}

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
				return false, err
			}
			if p.Hash == ancestor {
				return true, nil
			}
			if seen[p.Hash] {
				continue
			}
			if p.Committer.When.Before(a.Committer.When) {
				// p (and everything reachable only through p) is older
				// than ancestor; it cannot lead to ancestor.
				continue
			}
			seen[p.Hash] = true
			queue = append(queue, p)
		}
	}
	return false, nil
}
