// Package object is the decoded, structural view of the four object
// variants sitting on top of plumbing.EncodedObject: Blob, Tree, Commit,
// and Tag. Everything here works in terms of storer.EncodedObjectStorer
// so it has no opinion on whether the bytes came from a loose file, a
// pack, or memory.
package object

import (
	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/storer"
)

// DecodeObject dispatches on o's type and returns the matching decoded
// value as one of *Commit, *Tree, *Blob, *Tag.
func DecodeObject(s storer.EncodedObjectStorer, o plumbing.EncodedObject) (any, error) {
	switch o.Type() {
	case plumbing.CommitObject:
		c := &Commit{}
		return c, c.Decode(s, o)
	case plumbing.TreeObject:
		t := &Tree{}
		return t, t.Decode(s, o)
	case plumbing.BlobObject:
		b := &Blob{}
		return b, b.Decode(o)
	case plumbing.TagObject:
		t := &Tag{}
		return t, t.Decode(s, o)
	default:
		return nil, ErrUnsupportedObject
	}
}

// GetObject reads id from s and decodes it according to its stored
// type.
func GetObject(s storer.EncodedObjectStorer, id plumbing.ID) (any, error) {
	o, err := s.EncodedObject(storer.AnyObject, id)
	if err != nil {
		return nil, err
	}
	return DecodeObject(s, o)
}
