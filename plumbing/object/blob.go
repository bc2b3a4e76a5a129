package object

import (
	"io"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/storer"
)

// Blob is an opaque byte sequence. It carries no structure of its own;
// Decode/Encode exist only to satisfy the same (Hash, Size, Reader)
// contract as the other three object variants.
type Blob struct {
	Hash plumbing.ID
	Size int64
	obj  plumbing.EncodedObject
}

// Decode populates b from the raw stored object o.
func (b *Blob) Decode(o plumbing.EncodedObject) error {
	if o.Type() != plumbing.BlobObject {
		return ErrUnsupportedObject
	}
	b.Hash = o.ID()
	b.Size = o.Size()
	b.obj = o
	return nil
}

// Reader streams the blob's content.
func (b *Blob) Reader() (io.ReadCloser, error) {
	return b.obj.Reader()
}

// GetBlob reads and decodes the blob named by id.
func GetBlob(s storer.EncodedObjectStorer, id plumbing.ID) (*Blob, error) {
	o, err := s.EncodedObject(plumbing.BlobObject, id)
	if err != nil {
		return nil, err
	}
	b := &Blob{}
	return b, b.Decode(o)
}
