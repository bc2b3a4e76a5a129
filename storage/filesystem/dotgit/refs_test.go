package dotgit

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/vcscore/corevcs/plumbing"
)

func TestWriteReadRemoveRef(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	require.NoError(t, d.Init())

	ref := plumbing.NewHashReference("refs/heads/main", plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd"))
	require.NoError(t, d.WriteRef(ref))

	got, err := d.ReadRef("refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, ref.Hash(), got.Hash())

	require.NoError(t, d.RemoveRef("refs/heads/main"))
	_, err = d.ReadRef("refs/heads/main")
	require.ErrorIs(t, err, plumbing.ErrNotFound)
}

func TestRemoveRefAbsentIsNotError(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	require.NoError(t, d.Init())
	require.NoError(t, d.RemoveRef("refs/heads/never-existed"))
}

func TestLockRefRejectsDoubleAcquire(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	require.NoError(t, d.Init())

	lock, err := d.LockRef("refs/heads/main")
	require.NoError(t, err)
	defer lock.Abort()

	_, err = d.LockRef("refs/heads/main")
	require.ErrorIs(t, err, ErrLockHeld)
}

func TestLockCommitPublishesValue(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	require.NoError(t, d.Init())

	ref := plumbing.NewHashReference("refs/heads/main", plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd"))

	lock, err := d.LockRef("refs/heads/main")
	require.NoError(t, err)
	require.NoError(t, lock.Write(ref.Strings()[1]+"\n"))
	require.NoError(t, lock.Commit())

	got, err := d.ReadRef("refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, ref.Hash(), got.Hash())
}

func TestAppendAndReadReflog(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	require.NoError(t, d.Init())

	e1 := ReflogEntry{Old: plumbing.ZeroID, New: plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd"), Name: "tester", Email: "tester@example.com", Time: time.Unix(1000, 0).UTC(), Message: "first"}
	e2 := ReflogEntry{Old: e1.New, New: plumbing.NewHash("6ecf0ef2c2dffb796033e5a02219af86ec6584e5"), Name: "tester", Email: "tester@example.com", Time: time.Unix(2000, 0).UTC(), Message: "second"}

	require.NoError(t, d.AppendReflog("refs/heads/main", e1))
	require.NoError(t, d.AppendReflog("refs/heads/main", e2))

	entries, err := d.ReadReflog("refs/heads/main")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "first", entries[0].Message)
	require.Equal(t, "second", entries[1].Message)
}

func TestWriteReflogOverwrites(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	require.NoError(t, d.Init())

	e1 := ReflogEntry{Name: "tester", Email: "tester@example.com", Time: time.Unix(1000, 0).UTC(), Message: "first"}
	e2 := ReflogEntry{Name: "tester", Email: "tester@example.com", Time: time.Unix(2000, 0).UTC(), Message: "second"}
	require.NoError(t, d.AppendReflog("refs/heads/main", e1))
	require.NoError(t, d.AppendReflog("refs/heads/main", e2))

	require.NoError(t, d.WriteReflog("refs/heads/main", []ReflogEntry{e2}))

	entries, err := d.ReadReflog("refs/heads/main")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "second", entries[0].Message)
}

func TestRefsListsLooseRefs(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	require.NoError(t, d.Init())

	require.NoError(t, d.WriteRef(plumbing.NewHashReference("refs/heads/main", plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd"))))
	require.NoError(t, d.WriteRef(plumbing.NewHashReference("refs/heads/dev", plumbing.NewHash("6ecf0ef2c2dffb796033e5a02219af86ec6584e5"))))

	refs, err := d.Refs()
	require.NoError(t, err)
	require.Len(t, refs, 2)

	n, err := d.CountLooseRefs()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
