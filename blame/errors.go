package blame

import "errors"

// ErrPathNotInCommit is returned when path does not exist (as a blob)
// in the commit Blame was asked to start from.
var ErrPathNotInCommit = errors.New("blame: path not found in commit")

// ErrBlobUnreadable is returned when path resolves to a tree entry that
// is not a regular blob (a submodule gitlink, for instance), or the
// blob's content could not be read.
var ErrBlobUnreadable = errors.New("blame: entry is not a readable blob")
