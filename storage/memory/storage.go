// Package memory provides a pure in-memory implementation of the
// storage.Storer capability bundle: an Object Store and Reference Store
// that never touch a filesystem. Grounded on the teacher's
// storage/memory package. Used by tests across the module. The Blame
// Engine builds no working-tree commit and does not use this package.
package memory

import (
	"sort"
	"sync"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/storer"
)

// Storage is an in-memory object+reference store.
type Storage struct {
	mu sync.RWMutex

	objects map[plumbing.ID]plumbing.EncodedObject
	index   map[plumbing.ObjectType][]plumbing.ID

	refs map[plumbing.ReferenceName]*plumbing.Reference
}

var (
	_ storer.EncodedObjectStorer = (*Storage)(nil)
	_ storer.ReferenceStorer     = (*Storage)(nil)
)

// NewStorage builds an empty in-memory store.
func NewStorage() *Storage {
	return &Storage{
		objects: make(map[plumbing.ID]plumbing.EncodedObject),
		index:   make(map[plumbing.ObjectType][]plumbing.ID),
		refs:    make(map[plumbing.ReferenceName]*plumbing.Reference),
	}
}

func (s *Storage) NewEncodedObject() plumbing.EncodedObject {
	return &plumbing.MemoryObject{}
}

func (s *Storage) SetEncodedObject(o plumbing.EncodedObject) (plumbing.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := o.ID()
	if _, ok := s.objects[id]; ok {
		return id, nil
	}

	content, err := readAllObject(o)
	if err != nil {
		return plumbing.ZeroID, err
	}
	stored := plumbing.NewMemoryObject(o.Type(), content)
	s.objects[id] = stored
	s.index[o.Type()] = append(s.index[o.Type()], id)
	return id, nil
}

func readAllObject(o plumbing.EncodedObject) ([]byte, error) {
	r, err := o.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	buf := make([]byte, 0, o.Size())
	tmp := make([]byte, 32*1024)
	for {
		n, err := r.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
		}
		if err != nil {
			break
		}
	}
	return buf, nil
}

func (s *Storage) EncodedObject(t plumbing.ObjectType, id plumbing.ID) (plumbing.EncodedObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objects[id]
	if !ok {
		return nil, plumbing.ErrNotFound
	}
	if t != storer.AnyObject && o.Type() != t {
		return nil, plumbing.ErrNotFound
	}
	return o, nil
}

func (s *Storage) HasEncodedObject(id plumbing.ID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[id]; !ok {
		return plumbing.ErrNotFound
	}
	return nil
}

func (s *Storage) EncodedObjectSize(id plumbing.ID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[id]
	if !ok {
		return 0, plumbing.ErrNotFound
	}
	return o.Size(), nil
}

func (s *Storage) IterEncodedObjects(t plumbing.ObjectType) (storer.EncodedObjectIter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var series []plumbing.EncodedObject
	if t == storer.AnyObject {
		for _, o := range s.objects {
			series = append(series, o)
		}
	} else {
		for _, id := range s.index[t] {
			series = append(series, s.objects[id])
		}
	}
	return storer.NewEncodedObjectSliceIter(series), nil
}

func (s *Storage) SetReference(r *plumbing.Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[r.Name()] = r
	return nil
}

func (s *Storage) CheckAndSetReference(new, old *plumbing.Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.refs[new.Name()]
	if old == nil {
		if cur != nil {
			return storer.ErrReferenceHasChanged
		}
	} else if cur == nil || cur.Hash() != old.Hash() {
		return storer.ErrReferenceHasChanged
	}
	s.refs[new.Name()] = new
	return nil
}

func (s *Storage) Reference(n plumbing.ReferenceName) (*plumbing.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.refs[n]
	if !ok {
		return nil, plumbing.ErrNotFound
	}
	return r, nil
}

func (s *Storage) IterReferences() (storer.ReferenceIter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series := make([]*plumbing.Reference, 0, len(s.refs))
	for _, r := range s.refs {
		series = append(series, r)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Name() < series[j].Name() })
	return storer.NewReferenceSliceIter(series), nil
}

func (s *Storage) RemoveReference(n plumbing.ReferenceName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refs, n)
	return nil
}

func (s *Storage) CountLooseRefs() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.refs), nil
}

// PackRefs is a no-op: an in-memory store has no loose/packed
// distinction to consolidate.
func (s *Storage) PackRefs() error { return nil }
