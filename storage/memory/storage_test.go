package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/storer"
)

func TestSetAndGetEncodedObject(t *testing.T) {
	s := NewStorage()
	o := plumbing.NewMemoryObject(plumbing.BlobObject, []byte("hello\n"))

	id, err := s.SetEncodedObject(o)
	require.NoError(t, err)
	require.Equal(t, o.ID(), id)

	got, err := s.EncodedObject(plumbing.BlobObject, id)
	require.NoError(t, err)
	require.Equal(t, int64(6), got.Size())

	_, err = s.EncodedObject(plumbing.CommitObject, id)
	require.ErrorIs(t, err, plumbing.ErrNotFound)
}

func TestIterEncodedObjectsByType(t *testing.T) {
	s := NewStorage()
	blob, _ := s.SetEncodedObject(plumbing.NewMemoryObject(plumbing.BlobObject, []byte("a")))
	_, _ = s.SetEncodedObject(plumbing.NewMemoryObject(plumbing.TreeObject, []byte("b")))

	iter, err := s.IterEncodedObjects(plumbing.BlobObject)
	require.NoError(t, err)

	var seen []plumbing.ID
	require.NoError(t, iter.ForEach(func(o plumbing.EncodedObject) error {
		seen = append(seen, o.ID())
		return nil
	}))
	require.Equal(t, []plumbing.ID{blob}, seen)
}

func TestCheckAndSetReferenceDetectsConflict(t *testing.T) {
	s := NewStorage()
	main := plumbing.NewHashReference("refs/heads/main", plumbing.NewHash("6ecf0ef2c2dffb796033e5a02219af86ec6584e5"))
	require.NoError(t, s.SetReference(main))

	stale := plumbing.NewHashReference("refs/heads/main", plumbing.ZeroID)
	next := plumbing.NewHashReference("refs/heads/main", plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd"))

	err := s.CheckAndSetReference(next, stale)
	require.ErrorIs(t, err, storer.ErrReferenceHasChanged)

	require.NoError(t, s.CheckAndSetReference(next, main))
	got, err := s.Reference("refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, next.Hash(), got.Hash())
}

func TestCheckAndSetReferenceNilOldRequiresAbsence(t *testing.T) {
	s := NewStorage()
	create := plumbing.NewHashReference("refs/heads/feature", plumbing.NewHash("6ecf0ef2c2dffb796033e5a02219af86ec6584e5"))

	require.NoError(t, s.CheckAndSetReference(create, nil))

	again := plumbing.NewHashReference("refs/heads/feature", plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd"))
	err := s.CheckAndSetReference(again, nil)
	require.ErrorIs(t, err, storer.ErrReferenceHasChanged)
}
