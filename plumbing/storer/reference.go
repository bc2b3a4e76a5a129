package storer

import (
	"io"

	"github.com/vcscore/corevcs/plumbing"
)

// ReferenceStorer is the Reference Store's public surface (spec.md §4.3):
// direct get/set/remove plus prefix iteration. Resolution of symbolic
// chains and peeling live one layer up, since a storer only needs to
// hand back exactly what is recorded for one name.
type ReferenceStorer interface {
	SetReference(*plumbing.Reference) error
	// CheckAndSetReference sets new only if the ref currently holds the
	// value recorded in old (or old is nil, meaning "ref must not yet
	// exist" when new creates it). Used by the Transaction Layer's
	// optimistic-concurrency check.
	CheckAndSetReference(new, old *plumbing.Reference) error
	Reference(plumbing.ReferenceName) (*plumbing.Reference, error)
	IterReferences() (ReferenceIter, error)
	RemoveReference(plumbing.ReferenceName) error
	CountLooseRefs() (int, error)
	PackRefs() error
}

// ReferenceIter iterates over a sequence of References.
type ReferenceIter interface {
	Next() (*plumbing.Reference, error)
	ForEach(func(*plumbing.Reference) error) error
	Close()
}

type referenceSliceIter struct {
	series []*plumbing.Reference
	pos    int
}

// NewReferenceSliceIter returns an iterator over a pre-built slice.
func NewReferenceSliceIter(series []*plumbing.Reference) ReferenceIter {
	return &referenceSliceIter{series: series}
}

func (i *referenceSliceIter) Next() (*plumbing.Reference, error) {
	if i.pos >= len(i.series) {
		return nil, io.EOF
	}
	r := i.series[i.pos]
	i.pos++
	return r, nil
}

func (i *referenceSliceIter) ForEach(cb func(*plumbing.Reference) error) error {
	for {
		r, err := i.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := cb(r); err != nil {
			if err == ErrStop {
				return nil
			}
			return err
		}
	}
}

func (i *referenceSliceIter) Close() { i.pos = len(i.series) }
