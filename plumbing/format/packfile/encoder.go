package packfile

import (
	"bufio"
	"io"

	"github.com/vcscore/corevcs/codec"
	"github.com/vcscore/corevcs/plumbing"
)

// Encoder writes a pack stream. It always emits full (non-delta)
// entries — delta compression on write is a deliberate simplification;
// see the design notes.
type Encoder struct {
	dest io.Writer
	hash *countingHash
	bw   *bufio.Writer
}

// NewEncoder wraps w.
func NewEncoder(w io.Writer) *Encoder {
	h := newCountingHash(w)
	return &Encoder{dest: w, hash: h, bw: bufio.NewWriter(h)}
}

// Encode writes count objects produced by next, followed by the
// whole-pack checksum trailer. next must return objects in an order a
// caller is prepared to read them back in (the Object Store does not
// require any particular order, but writing commits/trees/blobs
// together tends to help on-disk locality).
func (e *Encoder) Encode(count uint32, next func() (plumbing.EncodedObject, error)) (plumbing.ID, error) {
	if err := WriteHeader(e.bw, count); err != nil {
		return plumbing.ZeroID, err
	}

	for i := uint32(0); i < count; i++ {
		o, err := next()
		if err != nil {
			return plumbing.ZeroID, err
		}
		if err := e.writeEntry(o); err != nil {
			return plumbing.ZeroID, err
		}
	}

	if err := e.bw.Flush(); err != nil {
		return plumbing.ZeroID, err
	}

	sum := e.hash.Sum()
	if _, err := e.dest.Write(sum[:]); err != nil {
		return plumbing.ZeroID, err
	}
	return sum, nil
}

func (e *Encoder) writeEntry(o plumbing.EncodedObject) error {
	if err := codec.WriteTypeSize(e.bw, int(o.Type()), uint64(o.Size())); err != nil {
		return err
	}

	r, err := o.Reader()
	if err != nil {
		return err
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	return codec.Deflate(e.bw, content, -1)
}
