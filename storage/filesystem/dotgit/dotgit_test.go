package dotgit

import (
	"io"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/vcscore/corevcs/plumbing"
)

func TestInitCreatesSkeleton(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	require.NoError(t, d.Init())

	for _, p := range []string{"objects", "objects/pack", "refs", "refs/heads", "refs/tags", "logs"} {
		fi, err := fs.Stat(p)
		require.NoError(t, err, p)
		require.True(t, fi.IsDir())
	}
}

func TestSaveAndReadLooseObject(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	require.NoError(t, d.Init())

	id := plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd")

	require.False(t, d.HasObject(id))

	tmp, err := d.NewObject()
	require.NoError(t, err)
	_, err = tmp.Write([]byte("blob 5\x00hello"))
	require.NoError(t, err)
	require.NoError(t, tmp.Close())

	require.NoError(t, d.SaveObject(tmp, id))
	require.True(t, d.HasObject(id))

	f, err := d.Object(id)
	require.NoError(t, err)
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	f.Close()
	require.Equal(t, "blob 5\x00hello", string(content))

	ids, err := d.Objects()
	require.NoError(t, err)
	require.Equal(t, []plumbing.ID{id}, ids)
}

func TestSaveObjectIsNoOpOnSecondWrite(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	require.NoError(t, d.Init())

	id := plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd")

	tmp1, err := d.NewObject()
	require.NoError(t, err)
	require.NoError(t, tmp1.Close())
	require.NoError(t, d.SaveObject(tmp1, id))

	tmp2, err := d.NewObject()
	require.NoError(t, err)
	require.NoError(t, tmp2.Close())
	require.NoError(t, d.SaveObject(tmp2, id))

	require.True(t, d.HasObject(id))
}

func TestObjectNotFound(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	require.NoError(t, d.Init())

	_, err := d.Object(plumbing.ZeroID)
	require.ErrorIs(t, err, plumbing.ErrNotFound)
}

func TestPackLifecycle(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	require.NoError(t, d.Init())

	checksum := plumbing.NewHash("a3fed42da1e8189a077c0e6846c040dcf73fc9dd")

	tmp, err := d.NewObjectPack()
	require.NoError(t, err)
	_, err = tmp.Write([]byte("pack-data"))
	require.NoError(t, err)
	require.NoError(t, tmp.Close())

	path, err := d.SavePack(tmp, checksum)
	require.NoError(t, err)
	require.Contains(t, path, checksum.String())

	idxTmp, err := d.NewObjectPackIdx()
	require.NoError(t, err)
	require.NoError(t, idxTmp.Close())
	require.NoError(t, d.SaveIdx(idxTmp, checksum))

	checksums, err := d.ObjectPacks()
	require.NoError(t, err)
	require.Equal(t, []plumbing.ID{checksum}, checksums)

	packF, err := d.ObjectPack(checksum)
	require.NoError(t, err)
	packF.Close()

	idxF, err := d.ObjectPackIdx(checksum)
	require.NoError(t, err)
	idxF.Close()
}

func TestObjectPacksEmptyWhenDirMissing(t *testing.T) {
	fs := memfs.New()
	d := New(fs)
	checksums, err := d.ObjectPacks()
	require.NoError(t, err)
	require.Nil(t, checksums)
}
