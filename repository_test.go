package corevcs

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/object"
	"github.com/vcscore/corevcs/refupdate"
)

func newCommit(t *testing.T, r *Repository) *object.Commit {
	t.Helper()
	treeID, err := object.WriteTree(r.Storer, nil)
	require.NoError(t, err)

	sig := object.Signature{Name: "tester", Email: "tester@example.com", When: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := &object.Commit{Author: sig, Committer: sig, TreeHash: treeID, Message: "initial"}
	id, err := object.WriteCommit(r.Storer, c)
	require.NoError(t, err)

	got, err := object.GetCommit(r.Storer, id)
	require.NoError(t, err)
	return got
}

func TestInitAndOpen(t *testing.T) {
	fs := memfs.New()
	r, err := Init(fs)
	require.NoError(t, err)
	require.NotNil(t, r.Storer)
	require.Equal(t, 50, r.Config.MaxDeltaDepth)
}

func TestRepositoryTransactionAndPeel(t *testing.T) {
	fs := memfs.New()
	r, err := Init(fs)
	require.NoError(t, err)

	c := newCommit(t, r)

	tx := r.NewTransaction()
	require.NoError(t, tx.AddUpdate(refupdate.Update{
		Name:   "refs/heads/main",
		New:    plumbing.NewHashReference("refs/heads/main", c.Hash),
		Reason: "commit",
	}))
	require.NoError(t, tx.Commit())

	id, typ, err := r.Peel("refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, c.Hash, id)
	require.Equal(t, plumbing.CommitObject, typ)
}

func TestRepositoryHiddenRefs(t *testing.T) {
	fs := memfs.New()
	r, err := Init(fs)
	require.NoError(t, err)
	r.Config.HiddenRefPrefixes = []string{"refs/hidden/"}
	r.hiddenPrefixes = r.Config.HiddenRefPrefixes

	c := newCommit(t, r)

	require.NoError(t, r.Storer.SetReference(plumbing.NewHashReference("refs/heads/main", c.Hash)))
	require.NoError(t, r.Storer.SetReference(plumbing.NewHashReference("refs/hidden/secret", c.Hash)))

	var seen []plumbing.ReferenceName
	require.NoError(t, r.ForEachVisibleRef(func(ref *plumbing.Reference) error {
		seen = append(seen, ref.Name())
		return nil
	}))
	require.Equal(t, []plumbing.ReferenceName{"refs/heads/main"}, seen)
}
