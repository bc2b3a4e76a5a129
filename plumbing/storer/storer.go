package storer

import "errors"

// ErrReferenceHasChanged is returned by CheckAndSetReference when the
// recorded value no longer matches the expected old value — the
// optimistic-concurrency failure the Transaction Layer's prepare phase
// surfaces as RefMismatch.
var ErrReferenceHasChanged = errors.New("storer: reference has changed concurrently")

// Storer bundles the Object Store and Reference Store capability sets
// into the one value a Repository context needs to hold, per the design
// notes' "capability bundle rather than a class hierarchy" guidance.
type Storer interface {
	EncodedObjectStorer
	ReferenceStorer
}

// Initializer is implemented by storers that must perform setup the
// first time a repository is created at a location (creating the
// objects/ and refs/ directory skeleton, for instance).
type Initializer interface {
	Init() error
}
