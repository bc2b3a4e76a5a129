package object

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vcscore/corevcs/hash"
	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/filemode"
	"github.com/vcscore/corevcs/plumbing/storer"
)

var (
	ErrUnsupportedObject = errors.New("object: unsupported object type")
	ErrEntryNotFound      = errors.New("object: tree entry not found")
	ErrDuplicateEntryName = plumbing.NewCorrupt("tree", "duplicate entry name", nil)
)

// TreeEntry is one (mode, name, id) member of a Tree.
type TreeEntry struct {
	Name string
	Mode filemode.FileMode
	Hash plumbing.ID
}

// Tree is an ordered set of TreeEntry, sorted by path-order: a
// directory's sort key is its name with a trailing '/', so "a" (a
// directory) sorts after "a.c" but before "ab".
type Tree struct {
	Hash    plumbing.ID
	Entries []TreeEntry

	s storer.EncodedObjectStorer
}

// sortKey returns the key spec.md §3 defines for path-order comparison.
func sortKey(e TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}

// SortEntries sorts entries in place into canonical tree order.
func SortEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return sortKey(entries[i]) < sortKey(entries[j])
	})
}

// Decode parses o's content into t. Entries are expected in canonical
// order already (as every writer in this module produces); Decode does
// not re-sort, so a corrupt tree's mis-ordering is detectable by a
// caller that checks order explicitly (see VerifyOrder).
func (t *Tree) Decode(s storer.EncodedObjectStorer, o plumbing.EncodedObject) error {
	if o.Type() != plumbing.TreeObject {
		return ErrUnsupportedObject
	}

	t.Hash = o.ID()
	t.s = s
	t.Entries = nil

	if o.Size() == 0 {
		return nil
	}

	r, err := o.Reader()
	if err != nil {
		return err
	}
	defer r.Close()

	br := bufio.NewReader(r)
	for {
		modeStr, err := br.ReadString(' ')
		if err == io.EOF {
			break
		}
		if err != nil {
			return plumbing.NewCorrupt("tree", "truncated entry mode", err)
		}
		modeStr = modeStr[:len(modeStr)-1]

		mode, err := filemode.New(modeStr)
		if err != nil {
			return plumbing.NewCorrupt("tree", "bad entry mode", err)
		}

		name, err := br.ReadString(0)
		if err != nil {
			return plumbing.NewCorrupt("tree", "truncated entry name", err)
		}
		name = name[:len(name)-1]

		var raw [hash.Size]byte
		if _, err := io.ReadFull(br, raw[:]); err != nil {
			return plumbing.NewCorrupt("tree", "truncated entry hash", err)
		}

		t.Entries = append(t.Entries, TreeEntry{
			Name: name,
			Mode: mode,
			Hash: plumbing.ID(raw),
		})
	}

	return nil
}

// VerifyOrder reports ErrDuplicateEntryName (or a generic corruption
// error) if entries are not in strict canonical order with no
// duplicate names — spec.md §3's tree-ordering invariant.
func VerifyOrder(entries []TreeEntry) error {
	for i := 1; i < len(entries); i++ {
		prev, cur := sortKey(entries[i-1]), sortKey(entries[i])
		if prev == cur {
			return ErrDuplicateEntryName
		}
		if prev > cur {
			return plumbing.NewCorrupt("tree", fmt.Sprintf("entries out of order: %q before %q", entries[i-1].Name, entries[i].Name), nil)
		}
	}
	return nil
}

// Encode writes t's canonical byte encoding (sorted, deduplicated input
// required) to w.
func (t *Tree) Encode(w io.Writer) error {
	if err := VerifyOrder(t.Entries); err != nil {
		return err
	}
	for _, e := range t.Entries {
		if _, err := fmt.Fprintf(w, "%s %s\x00", e.Mode, e.Name); err != nil {
			return err
		}
		if _, err := w.Write(e.Hash[:]); err != nil {
			return err
		}
	}
	return nil
}

// WriteTree canonicalizes, sorts, and stores entries as a new tree
// object.
func WriteTree(s storer.EncodedObjectStorer, entries []TreeEntry) (plumbing.ID, error) {
	dup := append([]TreeEntry(nil), entries...)
	SortEntries(dup)
	if err := VerifyOrder(dup); err != nil {
		return plumbing.ZeroID, err
	}

	obj := s.NewEncodedObject()
	obj.SetType(plumbing.TreeObject)
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroID, err
	}
	t := &Tree{Entries: dup}
	if err := t.Encode(w); err != nil {
		w.Close()
		return plumbing.ZeroID, err
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroID, err
	}
	return s.SetEncodedObject(obj)
}

// entry looks up a direct child by name.
func (t *Tree) entry(name string) (*TreeEntry, error) {
	for i := range t.Entries {
		if t.Entries[i].Name == name {
			return &t.Entries[i], nil
		}
	}
	return nil, ErrEntryNotFound
}

// FindEntry resolves a slash-separated path to its TreeEntry, descending
// through subtrees as needed.
func (t *Tree) FindEntry(path string) (*TreeEntry, error) {
	parts := strings.Split(path, "/")
	cur := t
	for i, part := range parts {
		e, err := cur.entry(part)
		if err != nil {
			return nil, err
		}
		if i == len(parts)-1 {
			return e, nil
		}
		if e.Mode != filemode.Dir {
			return nil, ErrEntryNotFound
		}
		sub, err := GetTree(cur.s, e.Hash)
		if err != nil {
			return nil, err
		}
		cur = sub
	}
	return nil, ErrEntryNotFound
}

// GetTree reads and decodes the tree named by id.
func GetTree(s storer.EncodedObjectStorer, id plumbing.ID) (*Tree, error) {
	o, err := s.EncodedObject(plumbing.TreeObject, id)
	if err != nil {
		return nil, err
	}
	t := &Tree{}
	return t, t.Decode(s, o)
}

// emptyTreeHash is the identity of a tree with no entries.
var emptyTreeHash = func() plumbing.ID {
	return hashOf(plumbing.TreeObject, nil)
}()

func hashOf(t plumbing.ObjectType, content []byte) plumbing.ID {
	h := hash.New()
	fmt.Fprintf(h, "%s %d\x00", t, len(content))
	h.Write(content)
	return h.Sum()
}
