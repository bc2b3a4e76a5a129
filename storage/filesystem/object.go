// Package filesystem implements the Object Store (spec.md §4.2) and
// Reference Store (§4.3) over a real (or in-memory, under test)
// filesystem, using package dotgit for the on-disk layout and
// plumbing/format/{objfile,packfile,idxfile} for the wire formats.
package filesystem

import (
	"io"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/sync/singleflight"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/cache"
	"github.com/vcscore/corevcs/plumbing/format/idxfile"
	"github.com/vcscore/corevcs/plumbing/format/objfile"
	"github.com/vcscore/corevcs/plumbing/format/packfile"
	"github.com/vcscore/corevcs/plumbing/storer"
	"github.com/vcscore/corevcs/storage/filesystem/dotgit"
)

// Storage is the loose+pack Object Store and loose+packed Reference
// Store over one git directory.
type Storage struct {
	dir *dotgit.DotGit

	objectCache   *cache.Object
	maxDeltaDepth int

	// writes collapses concurrent SetEncodedObject calls for the same
	// identity into a single temp-file-plus-rename: two callers racing
	// to store identical content should not both pay the write cost,
	// and must not observe a half-written loose object in between.
	writes singleflight.Group

	packs []openPack
}

type openPack struct {
	checksum plumbing.ID
	idx      *idxfile.Index
}

// NewStorage opens (without requiring Init) the git directory rooted at
// fs.
func NewStorage(fs billy.Filesystem) *Storage {
	return &Storage{
		dir:           dotgit.New(fs),
		objectCache:   cache.NewObjectLRU(cache.DefaultMaxObjectSize),
		maxDeltaDepth: packfile.DefaultMaxDeltaDepth,
	}
}

// Init creates the directory skeleton.
func (s *Storage) Init() error { return s.dir.Init() }

// SetMaxDeltaDepth overrides the default delta chain depth bound
// (SPEC_FULL.md's Open Question: a Repository-level configurable).
func (s *Storage) SetMaxDeltaDepth(n int) { s.maxDeltaDepth = n }

var _ storer.EncodedObjectStorer = (*Storage)(nil)

func (s *Storage) NewEncodedObject() plumbing.EncodedObject { return &plumbing.MemoryObject{} }

// SetEncodedObject writes obj as a loose object: header
// "<type> <size>\0" prepended to content, hashed over that whole
// stream, written to a temp file and renamed into place (spec.md §4.2).
// Writing the same (type, content) twice is a no-op after the first.
func (s *Storage) SetEncodedObject(obj plumbing.EncodedObject) (plumbing.ID, error) {
	id := obj.ID()
	if s.HasEncodedObject(id) == nil {
		return id, nil
	}

	_, err, _ := s.writes.Do(id.String(), func() (interface{}, error) {
		if s.HasEncodedObject(id) == nil {
			return nil, nil
		}

		tmp, err := s.dir.NewObject()
		if err != nil {
			return nil, err
		}

		w := objfile.NewWriter(tmp)
		if err := w.WriteHeader(obj.Type(), obj.Size()); err != nil {
			w.Close()
			return nil, err
		}

		r, err := obj.Reader()
		if err != nil {
			w.Close()
			return nil, err
		}
		_, err = io.Copy(w, r)
		r.Close()
		if err != nil {
			w.Close()
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}

		return nil, s.dir.SaveObject(tmp, id)
	})
	if err != nil {
		return plumbing.ZeroID, err
	}
	return id, nil
}

// EncodedObject implements the Object Store's read lookup order: object
// cache, loose, then each open pack most-recently-used first.
func (s *Storage) EncodedObject(t plumbing.ObjectType, id plumbing.ID) (plumbing.EncodedObject, error) {
	// A cached entry holds the object's type in its first byte, then its
	// content.
	if cached, ok := s.objectCache.Get(id); ok {
		return s.matchType(plumbing.NewMemoryObject(plumbing.ObjectType(cached[0]), cached[1:]), t)
	}

	if o, err := s.looseObject(id); err == nil {
		s.objectCache.Put(id, append([]byte{byte(o.Type())}, o.(*plumbing.MemoryObject).Bytes()...))
		return s.matchType(o, t)
	} else if err != plumbing.ErrNotFound {
		return nil, err
	}

	if err := s.ensurePacksLoaded(); err != nil {
		return nil, err
	}
	for i := len(s.packs) - 1; i >= 0; i-- {
		p := s.packs[i]
		if _, err := p.idx.FindOffset(id); err != nil {
			continue
		}
		o, err := s.readFromPack(p, id)
		if err != nil {
			return nil, err
		}
		// Move the pack that answered to the end, where the search starts.
		s.packs = append(append(s.packs[:i:i], s.packs[i+1:]...), p)
		s.objectCache.Put(id, append([]byte{byte(o.Type())}, o.(*plumbing.MemoryObject).Bytes()...))
		return s.matchType(o, t)
	}

	return nil, plumbing.ErrNotFound
}

func (s *Storage) matchType(o plumbing.EncodedObject, t plumbing.ObjectType) (plumbing.EncodedObject, error) {
	if t != storer.AnyObject && o.Type() != t {
		return nil, plumbing.ErrNotFound
	}
	return o, nil
}

func (s *Storage) looseObject(id plumbing.ID) (plumbing.EncodedObject, error) {
	f, err := s.dir.Object(id)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := objfile.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	t, size, err := r.Header()
	if err != nil {
		return nil, err
	}
	content := make([]byte, size)
	if _, err := io.ReadFull(r, content); err != nil && err != io.EOF {
		return nil, err
	}
	if r.Hash() != id {
		return nil, plumbing.NewCorrupt("object-store", "loose object identity mismatch", nil)
	}
	return plumbing.NewMemoryObject(t, content), nil
}

func (s *Storage) ensurePacksLoaded() error {
	if s.packs != nil {
		return nil
	}
	checksums, err := s.dir.ObjectPacks()
	if err != nil {
		return err
	}
	for _, sum := range checksums {
		idxF, err := s.dir.ObjectPackIdx(sum)
		if err != nil {
			return err
		}
		idx, err := idxfile.Decode(idxF)
		idxF.Close()
		if err != nil {
			return err
		}
		s.packs = append(s.packs, openPack{checksum: sum, idx: idx})
	}
	return nil
}

func (s *Storage) readFromPack(p openPack, id plumbing.ID) (plumbing.EncodedObject, error) {
	packF, err := s.dir.ObjectPack(p.checksum)
	if err != nil {
		return nil, err
	}
	defer packF.Close()

	dest := newPackDestination()
	parser := packfile.NewParser(packF, dest)
	parser.SetMaxDeltaDepth(s.maxDeltaDepth)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	o, err := dest.EncodedObject(storer.AnyObject, id)
	if err != nil {
		return nil, plumbing.ErrNotFound
	}
	return o, nil
}

func (s *Storage) HasEncodedObject(id plumbing.ID) error {
	if _, ok := s.objectCache.Get(id); ok {
		return nil
	}
	if s.dir.HasObject(id) {
		return nil
	}
	if err := s.ensurePacksLoaded(); err != nil {
		return err
	}
	for _, p := range s.packs {
		if p.idx.Contains(id) {
			return nil
		}
	}
	return plumbing.ErrNotFound
}

func (s *Storage) EncodedObjectSize(id plumbing.ID) (int64, error) {
	o, err := s.EncodedObject(storer.AnyObject, id)
	if err != nil {
		return 0, err
	}
	return o.Size(), nil
}

func (s *Storage) IterEncodedObjects(t plumbing.ObjectType) (storer.EncodedObjectIter, error) {
	ids, err := s.dir.Objects()
	if err != nil {
		return nil, err
	}
	if err := s.ensurePacksLoaded(); err != nil {
		return nil, err
	}
	for _, p := range s.packs {
		for _, e := range p.idx.Entries() {
			ids = append(ids, e.ID)
		}
	}

	var series []plumbing.EncodedObject
	for _, id := range ids {
		o, err := s.EncodedObject(t, id)
		if err == plumbing.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		series = append(series, o)
	}
	return storer.NewEncodedObjectSliceIter(series), nil
}

// packDestination is the in-memory object.Storer a Parser writes a
// pack's resolved objects into; it is scoped to one EncodedObject
// lookup rather than the whole pack's contents, since only the
// requested object's bytes are wanted, but the Parser needs a full
// store to resolve delta chains through.
type packDestination struct {
	objects map[plumbing.ID]plumbing.EncodedObject
}

func newPackDestination() *packDestination {
	return &packDestination{objects: make(map[plumbing.ID]plumbing.EncodedObject)}
}

func (p *packDestination) NewEncodedObject() plumbing.EncodedObject { return &plumbing.MemoryObject{} }

func (p *packDestination) SetEncodedObject(o plumbing.EncodedObject) (plumbing.ID, error) {
	id := o.ID()
	p.objects[id] = o
	return id, nil
}

func (p *packDestination) EncodedObject(t plumbing.ObjectType, id plumbing.ID) (plumbing.EncodedObject, error) {
	o, ok := p.objects[id]
	if !ok {
		return nil, plumbing.ErrNotFound
	}
	if t != storer.AnyObject && o.Type() != t {
		return nil, plumbing.ErrNotFound
	}
	return o, nil
}

func (p *packDestination) HasEncodedObject(id plumbing.ID) error {
	if _, ok := p.objects[id]; ok {
		return nil
	}
	return plumbing.ErrNotFound
}

func (p *packDestination) EncodedObjectSize(id plumbing.ID) (int64, error) {
	o, ok := p.objects[id]
	if !ok {
		return 0, plumbing.ErrNotFound
	}
	return o.Size(), nil
}

func (p *packDestination) IterEncodedObjects(t plumbing.ObjectType) (storer.EncodedObjectIter, error) {
	var series []plumbing.EncodedObject
	for _, o := range p.objects {
		if t == storer.AnyObject || o.Type() == t {
			series = append(series, o)
		}
	}
	return storer.NewEncodedObjectSliceIter(series), nil
}
