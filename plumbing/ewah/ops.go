package ewah

// And returns the bitwise intersection of a and b.
func And(a, b *Bitmap) *Bitmap { return combine(a, b, func(x, y uint64) uint64 { return x & y }) }

// Or returns the bitwise union of a and b.
func Or(a, b *Bitmap) *Bitmap { return combine(a, b, func(x, y uint64) uint64 { return x | y }) }

// AndNot returns the bits set in a but not in b — the "subtract" used
// to turn a full-reachability bitmap into one scoped to commits newer
// than the nearest bitmapped ancestor.
func AndNot(a, b *Bitmap) *Bitmap { return combine(a, b, func(x, y uint64) uint64 { return x &^ y }) }

// Xor returns the symmetric difference of a and b — self-inverse, so
// the Bitmap Index's XOR-lookback entries both encode (full XOR base)
// and reconstruct (delta XOR base) through this same operation.
func Xor(a, b *Bitmap) *Bitmap { return combine(a, b, func(x, y uint64) uint64 { return x ^ y }) }

// combine decompresses both operands into dense words, applies op
// word-by-word into a third dense slice, and recompresses the result.
// This spends more memory than a real streaming EWAH merge (which never
// fully materializes either operand) in exchange for a much simpler,
// obviously correct implementation — a fine trade at the object counts
// a single repository's bitmap index covers.
func combine(a, b *Bitmap, op func(x, y uint64) uint64) *Bitmap {
	da, db := a.toDense(), b.toDense()
	n := len(da)
	if len(db) > n {
		n = len(db)
	}
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		var x, y uint64
		if i < len(da) {
			x = da[i]
		}
		if i < len(db) {
			y = db[i]
		}
		out[i] = op(x, y)
	}

	bits := a.bits
	if b.bits > bits {
		bits = b.bits
	}
	return compress(out, bits)
}

// Cardinality returns the number of set bits.
func (b *Bitmap) Cardinality() uint64 {
	var n uint64
	b.ForEach(func(uint64) bool { n++; return true })
	return n
}

// Equal reports whether a and b have the same set bits, ignoring any
// difference in addressable length past the highest set bit in either.
func Equal(a, b *Bitmap) bool {
	da, db := a.toDense(), b.toDense()
	n := len(da)
	if len(db) > n {
		n = len(db)
	}
	for i := 0; i < n; i++ {
		var x, y uint64
		if i < len(da) {
			x = da[i]
		}
		if i < len(db) {
			y = db[i]
		}
		if x != y {
			return false
		}
	}
	return true
}
