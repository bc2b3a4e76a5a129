package filesystem

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/storer"
)

func TestSetAndGetEncodedObjectLoose(t *testing.T) {
	fs := memfs.New()
	s := NewStorage(fs)
	require.NoError(t, s.Init())

	o := plumbing.NewMemoryObject(plumbing.BlobObject, []byte("hello\n"))
	id, err := s.SetEncodedObject(o)
	require.NoError(t, err)
	require.Equal(t, o.ID(), id)

	require.NoError(t, s.HasEncodedObject(id))

	got, err := s.EncodedObject(storer.AnyObject, id)
	require.NoError(t, err)
	require.Equal(t, int64(6), got.Size())
	require.Equal(t, plumbing.BlobObject, got.Type())
}

func TestEncodedObjectNotFound(t *testing.T) {
	fs := memfs.New()
	s := NewStorage(fs)
	require.NoError(t, s.Init())

	_, err := s.EncodedObject(storer.AnyObject, plumbing.ZeroID)
	require.ErrorIs(t, err, plumbing.ErrNotFound)
}

func TestSetEncodedObjectTwiceIsNoOp(t *testing.T) {
	fs := memfs.New()
	s := NewStorage(fs)
	require.NoError(t, s.Init())

	o := plumbing.NewMemoryObject(plumbing.BlobObject, []byte("same content"))
	id1, err := s.SetEncodedObject(o)
	require.NoError(t, err)
	id2, err := s.SetEncodedObject(plumbing.NewMemoryObject(plumbing.BlobObject, []byte("same content")))
	require.NoError(t, err)
	require.Equal(t, id1, id2)
}

func TestIterEncodedObjectsLoose(t *testing.T) {
	fs := memfs.New()
	s := NewStorage(fs)
	require.NoError(t, s.Init())

	blobID, err := s.SetEncodedObject(plumbing.NewMemoryObject(plumbing.BlobObject, []byte("a")))
	require.NoError(t, err)
	_, err = s.SetEncodedObject(plumbing.NewMemoryObject(plumbing.TreeObject, []byte("b")))
	require.NoError(t, err)

	iter, err := s.IterEncodedObjects(plumbing.BlobObject)
	require.NoError(t, err)
	var seen []plumbing.ID
	require.NoError(t, iter.ForEach(func(o plumbing.EncodedObject) error {
		seen = append(seen, o.ID())
		return nil
	}))
	require.Equal(t, []plumbing.ID{blobID}, seen)
}
