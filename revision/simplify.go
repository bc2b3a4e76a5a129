package revision

import (
	"github.com/vcscore/corevcs/plumbing/object"
)

// SimplifyByPath filters commits down to those that actually change
// path, matching git's "history simplification" (spec.md §4.5): a
// commit is kept only if path's entry hash under its tree differs from
// path's entry hash under every parent's tree (a root commit is kept
// whenever path exists in it at all). Entries the path never reached in
// a given commit are treated as absent, so additions and deletions of
// path both count as changes.
func SimplifyByPath(commits []*object.Commit, path string) ([]*object.Commit, error) {
	var out []*object.Commit
	for _, c := range commits {
		changed, err := changesPath(c, path)
		if err != nil {
			return nil, err
		}
		if changed {
			out = append(out, c)
		}
	}
	return out, nil
}

func changesPath(c *object.Commit, path string) (bool, error) {
	tree, err := c.Tree()
	if err != nil {
		return false, err
	}
	cur, curErr := tree.FindEntry(path)

	if c.NumParents() == 0 {
		return curErr == nil, nil
	}

	// A commit (merge or not) is TREESAME, and so dropped, if path is
	// unchanged relative to at least one parent — matching git's rule
	// that a merge which resolves cleanly on one side is not itself a
	// change to path.
	for i := 0; i < c.NumParents(); i++ {
		parent, err := c.Parent(i)
		if err != nil {
			return false, err
		}
		ptree, err := parent.Tree()
		if err != nil {
			return false, err
		}
		prev, prevErr := ptree.FindEntry(path)

		sameAsParent := curErr != nil && prevErr != nil ||
			curErr == nil && prevErr == nil && cur.Hash == prev.Hash
		if sameAsParent {
			return false, nil
		}
	}
	return true, nil
}
