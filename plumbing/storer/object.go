// Package storer defines the capability-bundle interfaces the design
// notes ask for in place of a class hierarchy: an object backend and a
// reference backend, each abstracting over "files-based" and
// "packed-only" / in-memory variants.
package storer

import (
	"io"

	"github.com/vcscore/corevcs/plumbing"
)

// EncodedObjectStorer is the Object Store's public surface (spec.md
// §4.2): metadata lookup, full read, write, existence check, and
// iteration over loose and packed objects.
type EncodedObjectStorer interface {
	// NewEncodedObject returns a new, empty EncodedObject ready to be
	// populated and passed to SetEncodedObject.
	NewEncodedObject() plumbing.EncodedObject
	// SetEncodedObject canonicalizes, compresses, and stores obj,
	// returning its identity. Writing the same (type, content) twice is
	// a no-op on disk after the first.
	SetEncodedObject(plumbing.EncodedObject) (plumbing.ID, error)
	// EncodedObject returns the full object. t may be AnyObject to
	// accept any type; plumbing.ErrNotFound if absent.
	EncodedObject(t plumbing.ObjectType, id plumbing.ID) (plumbing.EncodedObject, error)
	// IterEncodedObjects iterates all objects of type t (or all types,
	// for AnyObject) across loose and packed storage.
	IterEncodedObjects(t plumbing.ObjectType) (EncodedObjectIter, error)
	// HasEncodedObject reports existence without materializing content.
	HasEncodedObject(plumbing.ID) error
	// EncodedObjectSize returns the decompressed size of the object
	// without reading its content.
	EncodedObjectSize(plumbing.ID) (int64, error)
}

// AnyObject matches every object type in EncodedObject/IterEncodedObjects
// calls.
const AnyObject = plumbing.InvalidObject

// DeltaObjectStorer is implemented by object backends that can hand back
// a still-undeltified representation alongside its base chain, letting a
// caller (the pack encoder, primarily) reuse delta data instead of
// recomputing it.
type DeltaObjectStorer interface {
	DeltaObject(t plumbing.ObjectType, id plumbing.ID) (plumbing.EncodedObject, error)
}

// Transactioner is implemented by object backends that support grouping
// a batch of writes so that a failure rolls every write in the batch
// back, rather than leaving a partially-written set of loose objects.
type Transactioner interface {
	Begin() Transaction
}

// Transaction groups a batch of object writes.
type Transaction interface {
	SetEncodedObject(plumbing.EncodedObject) (plumbing.ID, error)
	Commit() error
	Rollback() error
}

// EncodedObjectIter iterates over a sequence of EncodedObjects.
type EncodedObjectIter interface {
	Next() (plumbing.EncodedObject, error)
	ForEach(func(plumbing.EncodedObject) error) error
	Close()
}

type encodedObjectSliceIter struct {
	series []plumbing.EncodedObject
	pos    int
}

// NewEncodedObjectSliceIter returns an iterator over a pre-built slice.
func NewEncodedObjectSliceIter(series []plumbing.EncodedObject) EncodedObjectIter {
	return &encodedObjectSliceIter{series: series}
}

func (i *encodedObjectSliceIter) Next() (plumbing.EncodedObject, error) {
	if i.pos >= len(i.series) {
		return nil, io.EOF
	}
	o := i.series[i.pos]
	i.pos++
	return o, nil
}

func (i *encodedObjectSliceIter) ForEach(cb func(plumbing.EncodedObject) error) error {
	for {
		o, err := i.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := cb(o); err != nil {
			if err == ErrStop {
				return nil
			}
			return err
		}
	}
}

func (i *encodedObjectSliceIter) Close() { i.pos = len(i.series) }

// ErrStop is returned by an iteration callback to request early
// termination without propagating an error.
var ErrStop = errStop{}

type errStop struct{}

func (errStop) Error() string { return "storer: stop iteration" }

type multiEncodedObjectIter struct {
	iters []EncodedObjectIter
}

// NewMultiEncodedObjectIter chains several iterators, exhausting each in
// order — used to present loose objects followed by each open pack as a
// single sequence.
func NewMultiEncodedObjectIter(iters []EncodedObjectIter) EncodedObjectIter {
	return &multiEncodedObjectIter{iters: iters}
}

func (m *multiEncodedObjectIter) Next() (plumbing.EncodedObject, error) {
	for len(m.iters) > 0 {
		o, err := m.iters[0].Next()
		if err == io.EOF {
			m.iters[0].Close()
			m.iters = m.iters[1:]
			continue
		}
		return o, err
	}
	return nil, io.EOF
}

func (m *multiEncodedObjectIter) ForEach(cb func(plumbing.EncodedObject) error) error {
	for {
		o, err := m.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := cb(o); err != nil {
			if err == ErrStop {
				return nil
			}
			return err
		}
	}
}

func (m *multiEncodedObjectIter) Close() {
	for _, it := range m.iters {
		it.Close()
	}
	m.iters = nil
}
