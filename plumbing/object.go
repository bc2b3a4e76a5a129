// Package plumbing holds the types shared across every layer of corevcs:
// object identity re-exported from hash, the four object-type tags, the
// EncodedObject storage contract, and the reference namespace.
package plumbing

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vcscore/corevcs/hash"
)

// ID is the object identity type, re-exported so callers need not import
// the hash package directly for ordinary plumbing work.
type ID = hash.ID

// ZeroID is the null identity.
var ZeroID = hash.Zero

// IDFromHex parses a full 40-character hex identity, as found in a
// commit or tag header's "tree"/"parent"/"object" field.
func IDFromHex(s string) (ID, error) {
	return hash.FromHex(s)
}

// ObjectType identifies one of the four object variants.
type ObjectType int8

const (
	InvalidObject ObjectType = iota
	CommitObject
	TreeObject
	BlobObject
	TagObject
	// DeltaObject and OffsetDeltaObject are pack-internal pseudo-types: a
	// delta body is not a real object type, it is a base type plus a
	// patch, but the pack type-size header uses these tags to say which
	// kind of base reference (identity vs. offset) follows.
	DeltaObject       ObjectType = 7
	OffsetDeltaObject ObjectType = 6
)

var objectTypeNames = [...]string{
	InvalidObject:     "invalid",
	CommitObject:      "commit",
	TreeObject:        "tree",
	BlobObject:        "blob",
	TagObject:         "tag",
	DeltaObject:       "ref-delta",
	OffsetDeltaObject: "ofs-delta",
}

func (t ObjectType) String() string {
	if int(t) < 0 || int(t) >= len(objectTypeNames) {
		return "unknown"
	}
	return objectTypeNames[t]
}

// Bytes renders the type the way a loose-object header needs it. Only
// valid for the four base object types.
func (t ObjectType) Bytes() []byte { return []byte(t.String()) }

// Valid reports whether t is one of the four storable object types (as
// opposed to a pack-internal delta tag).
func (t ObjectType) Valid() bool {
	switch t {
	case CommitObject, TreeObject, BlobObject, TagObject:
		return true
	default:
		return false
	}
}

// ParseObjectType maps a loose-object header token back to an ObjectType.
func ParseObjectType(s string) (ObjectType, error) {
	switch s {
	case "commit":
		return CommitObject, nil
	case "tree":
		return TreeObject, nil
	case "blob":
		return BlobObject, nil
	case "tag":
		return TagObject, nil
	default:
		return InvalidObject, fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// EncodedObject is the storage-level view of an object: a type, a size,
// and a stream of its canonical byte content. It says nothing about the
// object's decoded structure — that is plumbing/object's job.
type EncodedObject interface {
	ID() ID
	Type() ObjectType
	Size() int64
	Reader() (io.ReadCloser, error)
	Writer() (io.WriteCloser, error)
	SetType(ObjectType)
	SetSize(int64)
}

// MemoryObject is an EncodedObject held entirely in memory. It is the
// object passed to ObjectStorer.SetEncodedObject when building objects
// from decoded domain values.
type MemoryObject struct {
	typ  ObjectType
	size int64
	buf  bytes.Buffer
	id   ID
	hash bool
}

var _ EncodedObject = (*MemoryObject)(nil)

func (o *MemoryObject) Type() ObjectType     { return o.typ }
func (o *MemoryObject) SetType(t ObjectType) { o.typ = t }
func (o *MemoryObject) Size() int64          { return o.size }
func (o *MemoryObject) SetSize(s int64)      { o.size = s }

func (o *MemoryObject) Reader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(o.buf.Bytes())), nil
}

func (o *MemoryObject) Writer() (io.WriteCloser, error) {
	o.buf.Reset()
	o.size = 0
	o.hash = false
	return nopWriteCloser{o}, nil
}

// Write appends p to the object's content, keeping Size in step with it.
func (o *MemoryObject) Write(p []byte) (int, error) {
	n, err := o.buf.Write(p)
	o.size += int64(n)
	o.hash = false
	return n, err
}

// ID computes (and memoizes) the canonical identity of the object: the
// hash of "<type> <size>\0<content>".
func (o *MemoryObject) ID() ID {
	if o.hash {
		return o.id
	}
	h := hash.New()
	fmt.Fprintf(h, "%s %d\x00", o.typ, o.buf.Len())
	h.Write(o.buf.Bytes())
	o.id = h.Sum()
	o.hash = true
	return o.id
}

// Bytes returns the raw content written to the object.
func (o *MemoryObject) Bytes() []byte { return o.buf.Bytes() }

// NewMemoryObject builds a MemoryObject directly from content, as a
// convenience for encoders that already have the full payload.
func NewMemoryObject(t ObjectType, content []byte) *MemoryObject {
	o := &MemoryObject{typ: t, size: int64(len(content))}
	o.buf.Write(content)
	return o
}

type nopWriteCloser struct{ w io.Writer }

func (n nopWriteCloser) Write(p []byte) (int, error) { return n.w.Write(p) }
func (n nopWriteCloser) Close() error                { return nil }
