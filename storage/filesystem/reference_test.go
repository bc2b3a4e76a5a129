package filesystem

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/storer"
)

func TestSetAndReadReference(t *testing.T) {
	fs := memfs.New()
	s := NewStorage(fs)
	require.NoError(t, s.Init())

	ref := plumbing.NewHashReference("refs/heads/main", plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd"))
	require.NoError(t, s.SetReference(ref))

	got, err := s.Reference("refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, ref.Hash(), got.Hash())
}

func TestCheckAndSetReferenceRejectsStaleOld(t *testing.T) {
	fs := memfs.New()
	s := NewStorage(fs)
	require.NoError(t, s.Init())

	main := plumbing.NewHashReference("refs/heads/main", plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd"))
	require.NoError(t, s.SetReference(main))

	stale := plumbing.NewHashReference("refs/heads/main", plumbing.ZeroID)
	next := plumbing.NewHashReference("refs/heads/main", plumbing.NewHash("6ecf0ef2c2dffb796033e5a02219af86ec6584e5"))

	err := s.CheckAndSetReference(next, stale)
	require.ErrorIs(t, err, storer.ErrReferenceHasChanged)

	require.NoError(t, s.CheckAndSetReference(next, main))
	got, err := s.Reference("refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, next.Hash(), got.Hash())
}

func TestCheckAndSetReferenceNilOldRequiresAbsence(t *testing.T) {
	fs := memfs.New()
	s := NewStorage(fs)
	require.NoError(t, s.Init())

	create := plumbing.NewHashReference("refs/heads/feature", plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd"))
	require.NoError(t, s.CheckAndSetReference(create, nil))

	again := plumbing.NewHashReference("refs/heads/feature", plumbing.NewHash("6ecf0ef2c2dffb796033e5a02219af86ec6584e5"))
	err := s.CheckAndSetReference(again, nil)
	require.ErrorIs(t, err, storer.ErrReferenceHasChanged)
}

func TestIterReferencesAndRemove(t *testing.T) {
	fs := memfs.New()
	s := NewStorage(fs)
	require.NoError(t, s.Init())

	require.NoError(t, s.SetReference(plumbing.NewHashReference("refs/heads/main", plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd"))))
	require.NoError(t, s.SetReference(plumbing.NewHashReference("refs/heads/dev", plumbing.NewHash("6ecf0ef2c2dffb796033e5a02219af86ec6584e5"))))

	iter, err := s.IterReferences()
	require.NoError(t, err)
	var names []plumbing.ReferenceName
	require.NoError(t, iter.ForEach(func(r *plumbing.Reference) error {
		names = append(names, r.Name())
		return nil
	}))
	require.Len(t, names, 2)

	require.NoError(t, s.RemoveReference("refs/heads/dev"))
	_, err = s.Reference("refs/heads/dev")
	require.ErrorIs(t, err, plumbing.ErrNotFound)
}
