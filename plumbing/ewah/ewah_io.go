package ewah

import (
	"encoding/binary"
	"io"
)

// ReadFrom decodes a bitmap written by WriteTo: a big-endian 4-byte bit
// count, a 4-byte word count, then that many RLW words.
func ReadFrom(r io.Reader) (*Bitmap, error) {
	var bits uint32
	if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
		return nil, err
	}

	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}

	words := make([]uint64, count)
	if count > 0 {
		if err := binary.Read(r, binary.BigEndian, &words); err != nil {
			return nil, err
		}
	}

	return &Bitmap{words: words, bits: bits}, nil
}

// WriteTo encodes b as a bit count, a word count, and the raw RLW
// words themselves — the bitmap package wraps this with its own
// 'BITM' file framing (magic, version, per-entry headers); this is
// just the payload for a single bitmap.
func (b *Bitmap) WriteTo(w io.Writer) (int64, error) {
	n := int64(0)

	if err := binary.Write(w, binary.BigEndian, b.bits); err != nil {
		return n, err
	}
	n += 4

	if err := binary.Write(w, binary.BigEndian, uint32(len(b.words))); err != nil {
		return n, err
	}
	n += 4

	if len(b.words) > 0 {
		if err := binary.Write(w, binary.BigEndian, b.words); err != nil {
			return n, err
		}
		n += int64(len(b.words) * 8)
	}

	return n, nil
}
