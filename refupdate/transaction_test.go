package refupdate

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/storage/filesystem/dotgit"
)

func newTestDir(t *testing.T) *dotgit.DotGit {
	t.Helper()
	d := dotgit.New(memfs.New())
	require.NoError(t, d.Init())
	return d
}

func TestCommitCreatesRef(t *testing.T) {
	d := newTestDir(t)
	txn := New(d)

	id := plumbing.NewHash("6ecf0ef2c2dffb796033e5a02219af86ec6584e5")
	require.NoError(t, txn.AddUpdate(Update{
		Name:   plumbing.ReferenceName("refs/heads/master"),
		New:    plumbing.NewHashReference("refs/heads/master", id),
		Reason: "create master",
	}))
	require.NoError(t, txn.Commit())

	r, err := d.ReadRef("refs/heads/master")
	require.NoError(t, err)
	require.Equal(t, id, r.Hash())

	log, err := d.ReadReflog("refs/heads/master")
	require.NoError(t, err)
	require.Len(t, log, 1)
	require.Equal(t, "create master", log[0].Message)
}

func TestCommitRejectsStaleExpectedOld(t *testing.T) {
	d := newTestDir(t)
	first := plumbing.NewHash("6ecf0ef2c2dffb796033e5a02219af86ec6584e5")
	second := plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd")

	txn := New(d)
	require.NoError(t, txn.AddUpdate(Update{
		Name: "refs/heads/master",
		New:  plumbing.NewHashReference("refs/heads/master", first),
	}))
	require.NoError(t, txn.Commit())

	stale := plumbing.ZeroID
	txn2 := New(d)
	require.NoError(t, txn2.AddUpdate(Update{
		Name: "refs/heads/master",
		New:  plumbing.NewHashReference("refs/heads/master", second),
		Old:  &stale,
	}))
	err := txn2.Commit()
	require.ErrorIs(t, err, ErrRefMismatch)

	r, err := d.ReadRef("refs/heads/master")
	require.NoError(t, err)
	require.Equal(t, first, r.Hash())
}

func TestCommitRejectsNameConflict(t *testing.T) {
	d := newTestDir(t)
	id := plumbing.NewHash("6ecf0ef2c2dffb796033e5a02219af86ec6584e5")

	txn := New(d)
	require.NoError(t, txn.AddUpdate(Update{
		Name: "refs/heads/topic",
		New:  plumbing.NewHashReference("refs/heads/topic", id),
	}))
	require.NoError(t, txn.Commit())

	txn2 := New(d)
	require.NoError(t, txn2.AddUpdate(Update{
		Name: "refs/heads/topic/sub",
		New:  plumbing.NewHashReference("refs/heads/topic/sub", id),
	}))
	err := txn2.Commit()
	require.ErrorIs(t, err, ErrNameConflict)
}

func TestCommitDeletesRef(t *testing.T) {
	d := newTestDir(t)
	id := plumbing.NewHash("6ecf0ef2c2dffb796033e5a02219af86ec6584e5")

	txn := New(d)
	require.NoError(t, txn.AddUpdate(Update{
		Name: "refs/heads/gone",
		New:  plumbing.NewHashReference("refs/heads/gone", id),
	}))
	require.NoError(t, txn.Commit())

	txn2 := New(d)
	require.NoError(t, txn2.AddUpdate(Update{Name: "refs/heads/gone"}))
	require.NoError(t, txn2.Commit())

	_, err := d.ReadRef("refs/heads/gone")
	require.ErrorIs(t, err, plumbing.ErrNotFound)
}
