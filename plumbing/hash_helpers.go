package plumbing

import (
	"encoding/hex"

	"github.com/vcscore/corevcs/hash"
)

// idFromHexLenient decodes s leniently, the way git's own plumbing.NewHash
// does: truncate or zero-pad rather than failing, since callers that use
// it have typically already validated the string elsewhere (or are
// constructing test fixtures).
func idFromHexLenient(s string) (ID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return hash.Zero, err
	}
	var id ID
	n := len(b)
	if n > hash.Size {
		n = hash.Size
	}
	copy(id[:n], b[:n])
	return id, nil
}
