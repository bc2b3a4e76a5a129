package filesystem

import (
	"errors"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/storer"
	"github.com/vcscore/corevcs/refupdate"
)

var _ storer.ReferenceStorer = (*Storage)(nil)

// SetReference stores ref unconditionally, as git itself does for a
// plain `update-ref` with no old-value check. It commits a one-update
// refupdate transaction with Force set, so concurrent, conflicting
// writers still serialize on the same per-ref lock file
// CheckAndSetReference and the Transaction Layer use.
func (s *Storage) SetReference(ref *plumbing.Reference) error {
	t := refupdate.New(s.dir)
	if err := t.AddUpdate(refupdate.Update{Name: ref.Name(), New: ref, Flags: refupdate.Force, Reason: "update-ref"}); err != nil {
		return err
	}
	return t.Commit()
}

// CheckAndSetReference sets new only if the ref currently holds old's
// value (nil old means "must not yet exist"), the optimistic-
// concurrency primitive the Transaction Layer's prepare phase also
// uses for a whole batch; here it is one single-ref transaction.
func (s *Storage) CheckAndSetReference(new, old *plumbing.Reference) error {
	u := refupdate.Update{Name: new.Name(), New: new, Reason: "update-ref"}
	if old != nil {
		h := old.Hash()
		u.Old = &h
	} else {
		zero := plumbing.ZeroID
		u.Old = &zero
	}

	t := refupdate.New(s.dir)
	if err := t.AddUpdate(u); err != nil {
		return err
	}
	if err := t.Commit(); err != nil {
		if errors.Is(err, refupdate.ErrRefMismatch) {
			return storer.ErrReferenceHasChanged
		}
		return err
	}
	return nil
}

// Reference resolves name's direct (possibly symbolic) value without
// following symbolic indirection — chain resolution is
// plumbing/storer.ResolveReference's job, one layer up.
func (s *Storage) Reference(name plumbing.ReferenceName) (*plumbing.Reference, error) {
	return s.dir.ReadRef(name)
}

// IterReferences iterates every stored reference, loose and packed.
func (s *Storage) IterReferences() (storer.ReferenceIter, error) {
	refs, err := s.dir.Refs()
	if err != nil {
		return nil, err
	}
	return storer.NewReferenceSliceIter(refs), nil
}

// RemoveReference deletes name outright, bypassing the Transaction
// Layer's expected-old check — used by porcelain callers (branch -D)
// that have already decided no check is wanted.
func (s *Storage) RemoveReference(name plumbing.ReferenceName) error {
	return s.dir.RemoveRef(name)
}

func (s *Storage) CountLooseRefs() (int, error) { return s.dir.CountLooseRefs() }

func (s *Storage) PackRefs() error { return s.dir.PackRefs() }
