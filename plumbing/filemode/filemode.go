// Package filemode implements the restricted set of tree-entry modes a
// corevcs tree may hold.
package filemode

import (
	"fmt"
	"strconv"
)

// FileMode is the mode of a tree entry. Unlike a POSIX mode, only a
// small fixed set of values is legal.
type FileMode uint32

const (
	Empty       FileMode = 0
	Dir         FileMode = 0o040000
	Regular     FileMode = 0o100644
	Deprecated  FileMode = 0o100664
	Executable  FileMode = 0o100755
	Symlink     FileMode = 0o120000
	Submodule   FileMode = 0o160000
)

// IsMalformed reports whether m is outside the set of modes a tree entry
// may legally carry.
func (m FileMode) IsMalformed() bool {
	switch m {
	case Dir, Regular, Deprecated, Executable, Symlink, Submodule:
		return false
	default:
		return true
	}
}

// IsRegular reports whether m names a non-directory, non-symlink,
// non-submodule blob (either executability level).
func (m FileMode) IsRegular() bool {
	return m == Regular || m == Deprecated || m == Executable
}

// String renders m the way a tree object encodes it: octal, no leading
// zero-padding beyond what the value needs.
func (m FileMode) String() string {
	return fmt.Sprintf("%o", uint32(m))
}

// New parses the ASCII-octal mode used in a tree entry's on-disk form.
func New(s string) (FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("filemode: invalid mode %q: %w", s, err)
	}
	return FileMode(v), nil
}
