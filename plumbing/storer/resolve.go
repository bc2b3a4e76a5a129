package storer

import (
	"strings"

	"github.com/vcscore/corevcs/plumbing"
)

// ResolveFlags control ResolveReference's behaviour (spec.md §4.3).
type ResolveFlags uint8

const (
	// AllowBadName returns the name even when it fails
	// plumbing.ValidateName, for error-reporting callers that want to
	// echo the bad name back rather than abort immediately.
	AllowBadName ResolveFlags = 1 << iota
	// Reading fails if the final target does not exist, instead of
	// returning the dangling symbolic reference's name.
	Reading
	// NoRecurse stops at the first symbolic reference instead of
	// following the chain to a hash reference.
	NoRecurse
)

// MaxSymbolicRefDepth bounds symbolic reference chain following,
// matching spec.md §4.3's "bounded depth (5)".
const MaxSymbolicRefDepth = 5

// ResolveReference follows name through at most MaxSymbolicRefDepth
// symbolic indirections, returning the final reference (a
// HashReference, unless NoRecurse stopped early on a SymbolicReference).
func ResolveReference(s ReferenceStorer, name plumbing.ReferenceName, flags ResolveFlags) (*plumbing.Reference, error) {
	if err := plumbing.ValidateName(name); err != nil && flags&AllowBadName == 0 {
		return nil, err
	}

	r, err := s.Reference(name)
	if err != nil {
		if flags&Reading != 0 {
			return nil, err
		}
		return nil, err
	}

	for depth := 0; r.Type() == plumbing.SymbolicReference; depth++ {
		if flags&NoRecurse != 0 {
			return r, nil
		}
		if depth >= MaxSymbolicRefDepth {
			return nil, plumbing.NewCorrupt("reference-store", "symbolic reference chain too deep", nil)
		}
		next, err := s.Reference(r.Target())
		if err != nil {
			if flags&Reading != 0 {
				return nil, err
			}
			return r, nil
		}
		r = next
	}
	return r, nil
}

// ForEachPrefix iterates every reference whose name begins with prefix,
// in the order IterReferences produces (ascending name order for the
// filesystem and memory backends in this module).
func ForEachPrefix(s ReferenceStorer, prefix string, fn func(*plumbing.Reference) error) error {
	iter, err := s.IterReferences()
	if err != nil {
		return err
	}
	defer iter.Close()

	return iter.ForEach(func(r *plumbing.Reference) error {
		if !strings.HasPrefix(string(r.Name()), prefix) {
			return nil
		}
		return fn(r)
	})
}
