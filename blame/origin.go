package blame

import (
	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/object"
)

// origin is one (commit, path) pairing considered during the blame
// walk: the file's content as of that commit, and how many blame
// entries currently attribute a line to it. Grounded on spec.md §4.7's
// description of origin records carrying a refcount so the walk can
// tell when a commit has nothing left to explain and can be dropped.
type origin struct {
	commit *object.Commit
	path   string
	lines  []string
	blob   plumbing.ID

	refs int
}

func newOrigin(c *object.Commit, path string, lines []string, blob plumbing.ID) *origin {
	return &origin{commit: c, path: path, lines: lines, blob: blob}
}
