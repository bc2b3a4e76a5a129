// Package hash implements the object identity used throughout corevcs: a
// 160-bit digest of an object's canonical byte encoding.
package hash

import (
	"bytes"
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"sort"

	"github.com/pjbgf/sha1cd"
)

// Size is the length in bytes of an object identity.
const Size = 20

// HexSize is the length of the hexadecimal rendering of an identity.
const HexSize = Size * 2

// ErrInvalidHex is returned when a string cannot be parsed as a hex identity.
var ErrInvalidHex = errors.New("hash: invalid hex identity")

// ID is a 160-bit object identity. The zero value is the null identity,
// denoting "no object".
type ID [Size]byte

// Zero is the null identity.
var Zero ID

// IsZero reports whether id is the null identity.
func (id ID) IsZero() bool {
	return id == Zero
}

// String renders id as 40 lowercase hex digits.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Compare orders identities byte-wise; it gives a total, deterministic
// order suitable for sorted index structures.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

// FromHex parses a 40-character hex string into an ID.
func FromHex(s string) (ID, error) {
	var id ID
	if len(s) != HexSize {
		return id, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	copy(id[:], b)
	return id, nil
}

// MustFromHex is like FromHex but panics on error; reserved for constants
// and tests.
func MustFromHex(s string) ID {
	id, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromBytes copies a raw 20-byte digest into an ID.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != Size {
		return id, fmt.Errorf("%w: wrong length %d", ErrInvalidHex, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ValidHex reports whether s could name an identity.
func ValidHex(s string) bool {
	if len(s) != HexSize {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// Hasher is the streaming interface used to compute object identities. It
// is satisfied by *Hash.
type Hasher interface {
	io.Writer
	Sum() ID
}

// Hash wraps the collision-detecting SHA-1 implementation go-git adopted
// (sha1cd) behind the streaming init/update/finalize contract §4.1 asks
// for.
type Hash struct {
	h hash.Hash
}

// New returns a ready-to-use streaming hasher.
func New() *Hash {
	return &Hash{h: sha1cd.New()}
}

func (h *Hash) Write(p []byte) (int, error) { return h.h.Write(p) }

func (h *Hash) Reset() { h.h.Reset() }

// Sum finalizes the hash and returns the resulting identity. It does not
// reset the underlying state; callers that want to keep writing must not
// rely on Sum being idempotent across further Writes.
func (h *Hash) Sum() ID {
	var id ID
	copy(id[:], h.h.Sum(nil))
	return id
}

// Of is a convenience one-shot hash of a single byte slice.
func Of(b []byte) ID {
	h := New()
	h.Write(b)
	return h.Sum()
}

// CryptoHash identifies which crypto.Hash backs New(), for callers (such
// as the pack encoder) that need to size buffers or register verifiers.
const CryptoHash = crypto.SHA1

// Sort sorts a slice of IDs in ascending byte order, as required by the
// pack index and packed-refs formats.
func Sort(ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
}
