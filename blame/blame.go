package blame

import (
	"sort"

	"github.com/vcscore/corevcs/plumbing/object"
	"github.com/vcscore/corevcs/plumbing/storer"
)

// Line is one final line of the blamed file: its 0-based index, the
// commit credited for it, and the path that commit knew it by (which
// may differ from the path Blame was asked about, across a detected
// rename).
type Line struct {
	Number int
	Text   string
	Commit *object.Commit
	Path   string
}

// Result is the completed blame of one file as of one commit.
type Result struct {
	Path  string
	Lines []Line
}

// Blame computes line-level attribution for path as it exists in
// commit, per spec.md §4.7: every line is walked back through history
// until the commit that introduced it (rather than merely carried it
// forward unchanged) is found.
func Blame(s storer.EncodedObjectStorer, commit *object.Commit, path string) (*Result, error) {
	lines, blobID, err := resolveFile(s, commit, path)
	if err != nil {
		return nil, err
	}

	root := newOrigin(commit, path, lines, blobID)
	root.refs = 1

	sb := &scoreboard{s: s}
	if len(lines) > 0 {
		sb.entries = []*entry{{finalStart: 0, originStart: 0, length: len(lines), origin: root}}
	}

	if err := sb.assignBlame(root); err != nil {
		return nil, err
	}

	sort.Slice(sb.entries, func(i, j int) bool { return sb.entries[i].finalStart < sb.entries[j].finalStart })

	result := &Result{Path: path}
	for _, e := range sb.entries {
		for i := 0; i < e.length; i++ {
			result.Lines = append(result.Lines, Line{
				Number: e.finalStart + i,
				Text:   lines[e.finalStart+i],
				Commit: e.origin.commit,
				Path:   e.origin.path,
			})
		}
	}
	return result, nil
}
