package plumbing

import (
	"fmt"
	"strings"
)

// ReservedReferences are top-level names outside the refs/ hierarchy that
// are nonetheless legal reference names.
var ReservedReferences = map[string]bool{
	"HEAD":             true,
	"MERGE_HEAD":       true,
	"FETCH_HEAD":       true,
	"ORIG_HEAD":        true,
	"CHERRY_PICK_HEAD": true,
}

// HEAD is the name of the reference conventionally used to track the
// current branch.
const HEAD ReferenceName = "HEAD"

const (
	refHeadPrefix   = "refs/heads/"
	refTagPrefix    = "refs/tags/"
	refRemotePrefix = "refs/remotes/"
	refNotePrefix   = "refs/notes/"
)

// ReferenceName is a reference's textual name.
type ReferenceName string

func (n ReferenceName) String() string { return string(n) }

// Short strips the "refs/heads/", "refs/tags/" or "refs/remotes/"
// prefix (keeping every path component after it), and only the leading
// "refs/" of a name under "refs/notes/"; it returns the full name
// unchanged otherwise, matching the teacher's behaviour for HEAD and
// other reserved names.
func (n ReferenceName) Short() string {
	s := string(n)
	res := strings.Split(s, "/")
	if len(res) == 1 {
		return s
	}

	switch {
	case strings.HasPrefix(s, refHeadPrefix):
		return strings.Join(res[2:], "/")
	case strings.HasPrefix(s, refTagPrefix):
		return strings.Join(res[2:], "/")
	case strings.HasPrefix(s, refRemotePrefix):
		return strings.Join(res[2:], "/")
	case strings.HasPrefix(s, refNotePrefix):
		return strings.Join(res[1:], "/")
	}
	return s
}

func (n ReferenceName) IsBranch() bool { return strings.HasPrefix(string(n), refHeadPrefix) }
func (n ReferenceName) IsTag() bool    { return strings.HasPrefix(string(n), refTagPrefix) }
func (n ReferenceName) IsRemote() bool { return strings.HasPrefix(string(n), refRemotePrefix) }
func (n ReferenceName) IsNote() bool   { return strings.HasPrefix(string(n), refNotePrefix) }

func NewBranchReferenceName(name string) ReferenceName { return ReferenceName(refHeadPrefix + name) }
func NewTagReferenceName(name string) ReferenceName     { return ReferenceName(refTagPrefix + name) }
func NewNoteReferenceName(name string) ReferenceName    { return ReferenceName(refNotePrefix + name) }
func NewRemoteReferenceName(remote, name string) ReferenceName {
	return ReferenceName(refRemotePrefix + remote + "/" + name)
}
func NewRemoteHEADReferenceName(remote string) ReferenceName {
	return ReferenceName(refRemotePrefix + remote + "/HEAD")
}

// ValidateName checks a reference name against spec.md §3's legality
// rules: no component may begin with '.', contain "..", contain an ASCII
// control character or one of ": ? [ \ ^ ~ SP TAB", the name may not end
// with '/' or ".lock", and it may not contain "@{".
func ValidateName(name ReferenceName) error {
	s := string(name)
	if s == "" {
		return NewInvalidArgument("reference name", "empty")
	}
	if !ReservedReferences[s] && !strings.HasPrefix(s, "refs/") {
		return NewInvalidArgument("reference name", "must be under refs/ or a reserved name")
	}
	if strings.Contains(s, "..") {
		return NewInvalidArgument("reference name", "contains '..'")
	}
	if strings.Contains(s, "@{") {
		return NewInvalidArgument("reference name", "contains '@{'")
	}
	if strings.HasSuffix(s, "/") || strings.HasSuffix(s, ".lock") {
		return NewInvalidArgument("reference name", "ends with '/' or '.lock'")
	}
	for _, c := range []string{":", "?", "[", "\\", "^", "~", " ", "\t"} {
		if strings.Contains(s, c) {
			return NewInvalidArgument("reference name", fmt.Sprintf("contains illegal character %q", c))
		}
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return NewInvalidArgument("reference name", "contains a control character")
		}
	}
	for _, part := range strings.Split(s, "/") {
		if strings.HasPrefix(part, ".") {
			return NewInvalidArgument("reference name", "a path component begins with '.'")
		}
		if part == "" {
			return NewInvalidArgument("reference name", "contains an empty path component")
		}
	}
	return nil
}

// ReferenceType distinguishes a direct (hash) reference from a symbolic
// one.
type ReferenceType int8

const (
	InvalidReference ReferenceType = iota
	HashReference
	SymbolicReference
)

func (r ReferenceType) String() string {
	switch r {
	case HashReference:
		return "hash-reference"
	case SymbolicReference:
		return "symbolic-reference"
	default:
		return "invalid-reference"
	}
}

// Reference is a named, mutable pointer: either directly to an object
// identity, or to another reference name.
type Reference struct {
	t      ReferenceType
	n      ReferenceName
	h      ID
	target ReferenceName
}

func (r *Reference) Type() ReferenceType  { return r.t }
func (r *Reference) Name() ReferenceName  { return r.n }
func (r *Reference) Hash() ID             { return r.h }
func (r *Reference) Target() ReferenceName { return r.target }

func (r *Reference) String() string {
	switch r.t {
	case HashReference:
		return r.h.String()
	case SymbolicReference:
		return "ref: " + string(r.target)
	default:
		return ""
	}
}

// Strings renders the (name, value) pair the way a loose ref file or a
// packed-refs line stores it.
func (r *Reference) Strings() [2]string {
	var o [2]string
	o[0] = r.Name().String()
	switch r.Type() {
	case HashReference:
		o[1] = r.Hash().String()
	case SymbolicReference:
		o[1] = fmt.Sprintf("ref: %s", r.Target())
	}
	return o
}

// NewReferenceFromStrings parses a (name, value) pair as loose ref
// content or a packed-refs line would present it.
func NewReferenceFromStrings(name, target string) *Reference {
	n := ReferenceName(name)
	if strings.HasPrefix(target, "ref: ") {
		return NewSymbolicReference(n, ReferenceName(target[5:]))
	}
	return NewHashReference(n, NewHash(target))
}

func NewHashReference(n ReferenceName, h ID) *Reference {
	return &Reference{t: HashReference, n: n, h: h}
}

func NewSymbolicReference(n, target ReferenceName) *Reference {
	return &Reference{t: SymbolicReference, n: n, target: target}
}

// NewHash parses s as a hex identity, returning the zero ID if it does
// not parse — used where the teacher's API returns a bare Hash rather
// than (Hash, error) for ergonomics at call sites that have already
// validated their input.
func NewHash(s string) ID {
	id, err := idFromHexLenient(s)
	if err != nil {
		return ZeroID
	}
	return id
}
