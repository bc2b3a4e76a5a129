package blame

import (
	"strings"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/filemode"
	"github.com/vcscore/corevcs/plumbing/object"
	"github.com/vcscore/corevcs/plumbing/storer"
)

// resolveFile reads path's blob content out of c, splitting it into
// lines. It is pass 1 of spec.md §4.7's two-pass line-passing: the
// straightforward "same path exists in this commit" case.
func resolveFile(s storer.EncodedObjectStorer, c *object.Commit, path string) ([]string, plumbing.ID, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, plumbing.ZeroID, err
	}
	e, err := tree.FindEntry(path)
	if err != nil {
		return nil, plumbing.ZeroID, ErrPathNotInCommit
	}
	if e.Mode != filemode.Regular && e.Mode != filemode.Executable {
		return nil, plumbing.ZeroID, ErrBlobUnreadable
	}
	lines, err := readBlobLines(s, e.Hash)
	if err != nil {
		return nil, plumbing.ZeroID, err
	}
	return lines, e.Hash, nil
}

func readBlobLines(s storer.EncodedObjectStorer, id plumbing.ID) ([]string, error) {
	blob, err := object.GetBlob(s, id)
	if err != nil {
		return nil, ErrBlobUnreadable
	}
	r, err := blob.Reader()
	if err != nil {
		return nil, ErrBlobUnreadable
	}
	defer r.Close()

	buf := make([]byte, 0, blob.Size)
	tmp := make([]byte, 32*1024)
	for {
		n, err := r.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
		}
		if err != nil {
			break
		}
	}
	return splitLines(string(buf)), nil
}

// findRename is pass 2: when path does not exist in parent, it
// searches parent's tree for a blob whose content hash exactly matches
// targetBlob, the exact-rename/copy detection spec.md §4.7 calls for.
// It does not attempt similarity-based detection of a modified-and-
// renamed file; an exact match is the only case handled.
func findRename(s storer.EncodedObjectStorer, parent *object.Commit, targetBlob plumbing.ID) (string, []string, error) {
	tree, err := parent.Tree()
	if err != nil {
		return "", nil, err
	}
	path, err := findBlobPath(s, tree, "", targetBlob)
	if err != nil {
		return "", nil, err
	}
	lines, err := readBlobLines(s, targetBlob)
	if err != nil {
		return "", nil, err
	}
	return path, lines, nil
}

func findBlobPath(s storer.EncodedObjectStorer, t *object.Tree, prefix string, target plumbing.ID) (string, error) {
	for _, e := range t.Entries {
		full := e.Name
		if prefix != "" {
			full = prefix + "/" + e.Name
		}
		if e.Mode == filemode.Dir {
			sub, err := object.GetTree(s, e.Hash)
			if err != nil {
				continue
			}
			if p, err := findBlobPath(s, sub, full, target); err == nil {
				return p, nil
			}
			continue
		}
		if e.Hash == target {
			return full, nil
		}
	}
	return "", ErrPathNotInCommit
}

// splitLines splits raw text content into lines the way Blame tracks
// them: '\n'-delimited, dropping one trailing empty element produced
// by a final newline so line counts match the file's visible line
// numbers.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
