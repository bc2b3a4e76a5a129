package packfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vcscore/corevcs/codec"
	"github.com/vcscore/corevcs/hash"
	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/storer"
)

// DefaultMaxDeltaDepth bounds how many links a delta chain may have
// before Parse gives up and reports corruption, guarding against a
// pathological or maliciously crafted chain turning delta resolution
// into unbounded base lookups. Configurable per the design notes'
// resolved open question; this is the default.
const DefaultMaxDeltaDepth = 50

// rawEntry is one still-unresolved entry read from the pack stream: its
// byte offset (the address ofs-delta children reference), declared
// type, and inflated payload — either an object's full content, or (for
// the two delta tags) an undecoded delta body plus a reference to its
// base.
type rawEntry struct {
	offset  int64
	typ     plumbing.ObjectType
	content []byte // full content, for a base object
	delta   []byte // delta body, for a delta entry
	baseID  plumbing.ID
	baseOfs int64
	isOfs   bool
	isRefD  bool
}

// Parser reads a full pack stream and materializes every object into a
// destination store, resolving ofs-delta and ref-delta chains as it
// goes.
type Parser struct {
	r             *packReader
	storer        storer.EncodedObjectStorer
	maxDeltaDepth int

	// offsetToID / idToOffset map a pack-relative byte offset to the
	// identity assigned to the object that started there (and back),
	// used to resolve ofs-delta bases and to hand a caller the table an
	// idxfile encoder needs.
	offsetToID map[int64]plumbing.ID
	idToOffset map[plumbing.ID]int64
	depth      map[plumbing.ID]int
}

// NewParser wraps r, which must begin at the pack's 12-byte header.
func NewParser(r io.Reader, s storer.EncodedObjectStorer) *Parser {
	return &Parser{
		r:             &packReader{r: bufio.NewReaderSize(r, 32*1024)},
		storer:        s,
		maxDeltaDepth: DefaultMaxDeltaDepth,
	}
}

// SetMaxDeltaDepth overrides DefaultMaxDeltaDepth.
func (p *Parser) SetMaxDeltaDepth(n int) { p.maxDeltaDepth = n }

// Result summarizes a completed parse: the checksum recorded in the
// pack trailer, and an identity→offset table a caller can hand straight
// to an idxfile encoder.
type Result struct {
	Checksum plumbing.ID
	Offsets  map[plumbing.ID]int64
}

// Parse reads the header, every object entry, and the trailing checksum,
// writing every decoded object to the destination store and returning
// the pack's own recorded checksum for the caller to verify against an
// independently computed one.
func (p *Parser) Parse() (*Result, error) {
	hdr, err := ReadHeader(p.r)
	if err != nil {
		return nil, err
	}

	p.offsetToID = make(map[int64]plumbing.ID, hdr.Count)
	p.idToOffset = make(map[plumbing.ID]int64, hdr.Count)
	p.depth = make(map[plumbing.ID]int, hdr.Count)
	pending := make(map[int64]*rawEntry)

	for i := uint32(0); i < hdr.Count; i++ {
		offset := p.r.n
		entry, err := p.readEntry(offset)
		if err != nil {
			return nil, fmt.Errorf("packfile: entry %d at offset %d: %w", i, offset, err)
		}

		switch entry.typ {
		case plumbing.OffsetDeltaObject, plumbing.DeltaObject:
			pending[offset] = entry
		default:
			id, err := p.store(entry.typ, entry.content)
			if err != nil {
				return nil, err
			}
			p.offsetToID[offset] = id
			p.idToOffset[id] = offset
		}
	}

	if err := p.resolvePending(pending); err != nil {
		return nil, err
	}

	var trailer [hash.Size]byte
	if _, err := io.ReadFull(p.r, trailer[:]); err != nil {
		return nil, fmt.Errorf("packfile: read trailer: %w", err)
	}

	return &Result{
		Checksum: plumbing.ID(trailer),
		Offsets:  p.idToOffset,
	}, nil
}

// resolvePending repeatedly resolves any delta entry whose base is
// already known, looping until no entry makes further progress. This
// naturally handles chains arriving in any order: an ofs-delta base
// always precedes its child in a well-formed pack, but a ref-delta's
// base may be recorded anywhere, including outside this pack entirely
// (a "thin pack"), in which case lookupBase falls back to the
// destination store.
func (p *Parser) resolvePending(pending map[int64]*rawEntry) error {
	for len(pending) > 0 {
		progressed := false

		for offset, entry := range pending {
			base, baseType, depth, ok, err := p.lookupBase(entry)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if depth+1 > p.maxDeltaDepth {
				return plumbing.NewCorrupt("packfile", "delta chain too deep", nil)
			}

			content, err := patchDelta(base, entry.delta)
			if err != nil {
				return plumbing.NewCorrupt("packfile", "delta application failed", err)
			}

			id, err := p.store(baseType, content)
			if err != nil {
				return err
			}
			p.offsetToID[offset] = id
			p.idToOffset[id] = offset
			p.depth[id] = depth + 1

			delete(pending, offset)
			progressed = true
		}

		if !progressed {
			return plumbing.NewCorrupt("packfile", "unresolvable delta chain (missing base)", nil)
		}
	}
	return nil
}

// lookupBase resolves entry's base to its materialized content, type,
// and chain depth, reporting ok=false if the base is not available yet:
// for either delta kind, a base that is itself still a pending delta in
// this same pack, or, for a ref-delta, a base found neither in this pack
// nor in the storer.
func (p *Parser) lookupBase(entry *rawEntry) ([]byte, plumbing.ObjectType, int, bool, error) {
	var baseID plumbing.ID
	if entry.isOfs {
		id, ok := p.offsetToID[entry.baseOfs]
		if !ok {
			return nil, 0, 0, false, nil
		}
		baseID = id
	} else {
		baseID = entry.baseID
		if _, ok := p.idToOffset[baseID]; !ok {
			o, err := p.storer.EncodedObject(storer.AnyObject, baseID)
			if err == plumbing.ErrNotFound {
				return nil, 0, 0, false, nil
			}
			if err != nil {
				return nil, 0, 0, false, err
			}
			content, err := readAll(o)
			if err != nil {
				return nil, 0, 0, false, err
			}
			return content, o.Type(), 0, true, nil
		}
	}

	o, err := p.storer.EncodedObject(storer.AnyObject, baseID)
	if err != nil {
		return nil, 0, 0, false, err
	}
	content, err := readAll(o)
	if err != nil {
		return nil, 0, 0, false, err
	}
	return content, o.Type(), p.depth[baseID], true, nil
}

func readAll(o plumbing.EncodedObject) ([]byte, error) {
	r, err := o.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (p *Parser) store(t plumbing.ObjectType, content []byte) (plumbing.ID, error) {
	obj := p.storer.NewEncodedObject()
	obj.SetType(t)
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroID, err
	}
	if _, err := w.Write(content); err != nil {
		w.Close()
		return plumbing.ZeroID, err
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroID, err
	}
	return p.storer.SetEncodedObject(obj)
}

// readEntry reads one pack entry's type+size header, its base reference
// (for delta types), and its zlib-inflated body.
func (p *Parser) readEntry(offset int64) (*rawEntry, error) {
	typInt, size, err := codec.ReadTypeSize(p.r)
	if err != nil {
		return nil, err
	}
	typ := plumbing.ObjectType(typInt)

	entry := &rawEntry{offset: offset, typ: typ}

	switch typ {
	case plumbing.OffsetDeltaObject:
		rel, err := codec.ReadOffset(p.r)
		if err != nil {
			return nil, err
		}
		entry.isOfs = true
		entry.baseOfs = offset - int64(rel)
	case plumbing.DeltaObject:
		var raw [hash.Size]byte
		if _, err := io.ReadFull(p.r, raw[:]); err != nil {
			return nil, err
		}
		entry.isRefD = true
		entry.baseID = plumbing.ID(raw)
	}

	// A delta body can legitimately be larger than the final object it
	// reconstructs to (many small copy/insert instructions), so the
	// inflate bound is generous rather than exactly size.
	body, err := codec.InflateBounded(p.r, int64(size)*4+4096)
	if err != nil {
		return nil, err
	}

	if entry.isOfs || entry.isRefD {
		entry.delta = body
	} else {
		if uint64(len(body)) != size {
			return nil, plumbing.NewCorrupt("packfile", "inflated size mismatch", nil)
		}
		entry.content = body
	}

	return entry, nil
}

// packReader wraps a single shared bufio.Reader over the whole pack
// stream and tracks exactly how many bytes have been delivered to its
// callers. It implements ReadByte itself (delegating to the bufio
// Reader's own ReadByte) specifically so compress/zlib uses it directly
// instead of adding a second, independent read-ahead buffer of its own:
// with only one buffering layer, the bytes an entry's zlib stream
// doesn't consume are left sitting in that same buffer, correctly
// positioned to be the next entry's header.
type packReader struct {
	r *bufio.Reader
	n int64
}

func (p *packReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.n += int64(n)
	return n, err
}

func (p *packReader) ReadByte() (byte, error) {
	b, err := p.r.ReadByte()
	if err == nil {
		p.n++
	}
	return b, err
}
