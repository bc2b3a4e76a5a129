package blame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/filemode"
	"github.com/vcscore/corevcs/plumbing/object"
	"github.com/vcscore/corevcs/storage/memory"
)

func writeBlob(t *testing.T, s *memory.Storage, content string) plumbing.ID {
	t.Helper()
	obj := plumbing.NewMemoryObject(plumbing.BlobObject, []byte(content))
	id, err := s.SetEncodedObject(obj)
	require.NoError(t, err)
	return id
}

func writeTreeWithFile(t *testing.T, s *memory.Storage, name string, blob plumbing.ID) plumbing.ID {
	t.Helper()
	id, err := object.WriteTree(s, []object.TreeEntry{{Name: name, Mode: filemode.Regular, Hash: blob}})
	require.NoError(t, err)
	return id
}

func writeCommit(t *testing.T, s *memory.Storage, tree plumbing.ID, when time.Time, parents ...plumbing.ID) *object.Commit {
	t.Helper()
	sig := object.Signature{Name: "tester", Email: "tester@example.com", When: when}
	c := &object.Commit{Author: sig, Committer: sig, TreeHash: tree, ParentHashes: parents, Message: "msg"}
	id, err := object.WriteCommit(s, c)
	require.NoError(t, err)
	got, err := object.GetCommit(s, id)
	require.NoError(t, err)
	return got
}

func TestBlameSingleCommit(t *testing.T) {
	s := memory.NewStorage()
	blob := writeBlob(t, s, "line one\nline two\n")
	tree := writeTreeWithFile(t, s, "file.txt", blob)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := writeCommit(t, s, tree, base)

	res, err := Blame(s, c, "file.txt")
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	require.Equal(t, c.Hash, res.Lines[0].Commit.Hash)
	require.Equal(t, c.Hash, res.Lines[1].Commit.Hash)
}

func TestBlameTracksLineAcrossUnrelatedEdit(t *testing.T) {
	s := memory.NewStorage()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	blob1 := writeBlob(t, s, "alpha\nbeta\ngamma\n")
	tree1 := writeTreeWithFile(t, s, "file.txt", blob1)
	c1 := writeCommit(t, s, tree1, base)

	blob2 := writeBlob(t, s, "alpha\nbeta\ngamma\ndelta\n")
	tree2 := writeTreeWithFile(t, s, "file.txt", blob2)
	c2 := writeCommit(t, s, tree2, base.Add(time.Minute), c1.Hash)

	res, err := Blame(s, c2, "file.txt")
	require.NoError(t, err)
	require.Len(t, res.Lines, 4)
	require.Equal(t, c1.Hash, res.Lines[0].Commit.Hash)
	require.Equal(t, c1.Hash, res.Lines[1].Commit.Hash)
	require.Equal(t, c1.Hash, res.Lines[2].Commit.Hash)
	require.Equal(t, c2.Hash, res.Lines[3].Commit.Hash)
}

func TestBlameFollowsExactRename(t *testing.T) {
	s := memory.NewStorage()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	blob := writeBlob(t, s, "only line\n")
	tree1 := writeTreeWithFile(t, s, "old.txt", blob)
	c1 := writeCommit(t, s, tree1, base)

	tree2 := writeTreeWithFile(t, s, "new.txt", blob)
	c2 := writeCommit(t, s, tree2, base.Add(time.Minute), c1.Hash)

	res, err := Blame(s, c2, "new.txt")
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	require.Equal(t, c1.Hash, res.Lines[0].Commit.Hash)
	require.Equal(t, "old.txt", res.Lines[0].Path)
}

func TestBlamePathNotInCommit(t *testing.T) {
	s := memory.NewStorage()
	tree := writeTreeWithFile(t, s, "file.txt", writeBlob(t, s, "x\n"))
	c := writeCommit(t, s, tree, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := Blame(s, c, "missing.txt")
	require.ErrorIs(t, err, ErrPathNotInCommit)
}
