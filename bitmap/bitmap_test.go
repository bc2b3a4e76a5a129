package bitmap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/ewah"
	"github.com/vcscore/corevcs/plumbing/format/idxfile"
)

func idAt(b byte) plumbing.ID {
	var id plumbing.ID
	id[0] = b
	id[19] = b
	return id
}

func testIdx(n int) *idxfile.Index {
	entries := make([]idxfile.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = idxfile.Entry{ID: idAt(byte(i + 1)), Offset: int64(i * 100), CRC32: uint32(i)}
	}
	return idxfile.NewFromEntries(entries)
}

func fullBitmap(positions ...uint64) *ewah.Bitmap {
	b := ewah.NewBuilder()
	for _, p := range positions {
		b.Set(p)
	}
	return b.Build()
}

func TestBuildAndMaterializeXorChain(t *testing.T) {
	idx := testIdx(5)
	types := ObjectTypes{
		idAt(1): plumbing.CommitObject,
		idAt(2): plumbing.CommitObject,
		idAt(3): plumbing.TreeObject,
		idAt(4): plumbing.BlobObject,
		idAt(5): plumbing.BlobObject,
	}

	c1 := idAt(1)
	c2 := idAt(2)

	selected := []SelectedCommit{
		{ID: c1, Bitmap: fullBitmap(0, 2, 3)},
		{ID: c2, Bitmap: fullBitmap(0, 1, 2, 3, 4)},
	}

	b := Build(idx, types, selected)

	bm1, ok, err := b.Materialize(c1)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, ewah.Equal(bm1, fullBitmap(0, 2, 3)))

	bm2, ok, err := b.Materialize(c2)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, ewah.Equal(bm2, fullBitmap(0, 1, 2, 3, 4)))
}

func TestRoundTripFormat(t *testing.T) {
	idx := testIdx(3)
	types := ObjectTypes{idAt(1): plumbing.CommitObject, idAt(2): plumbing.TreeObject, idAt(3): plumbing.BlobObject}
	selected := []SelectedCommit{{ID: idAt(1), Bitmap: fullBitmap(0, 1, 2)}}

	b := Build(idx, types, selected)
	b.PackChecksum = idAt(9)

	var buf bytes.Buffer
	_, err := b.WriteTo(&buf)
	require.NoError(t, err)

	order, positions := positionsFromIdx(idx)
	decoded, err := ReadFrom(&buf, order, positions)
	require.NoError(t, err)
	require.Equal(t, b.PackChecksum, decoded.PackChecksum)

	bm, ok, err := decoded.Materialize(idAt(1))
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, ewah.Equal(bm, fullBitmap(0, 1, 2)))
}

func TestQueryWantMinusHave(t *testing.T) {
	idx := testIdx(5)
	types := ObjectTypes{
		idAt(1): plumbing.CommitObject,
		idAt(2): plumbing.CommitObject,
	}
	c1, c2 := idAt(1), idAt(2)

	selected := []SelectedCommit{
		{ID: c1, Bitmap: fullBitmap(0, 1, 2)},
		{ID: c2, Bitmap: fullBitmap(0, 1, 2, 3, 4)},
	}
	b := Build(idx, types, selected)

	result, err := b.Query([]plumbing.ID{c2}, []plumbing.ID{c1}, nil)
	require.NoError(t, err)
	require.True(t, ewah.Equal(result, fullBitmap(3, 4)))

	ids := b.IDs(result)
	require.ElementsMatch(t, []plumbing.ID{idAt(4), idAt(5)}, ids)
}

func TestQueryFallsBackForUncoveredTip(t *testing.T) {
	idx := testIdx(3)
	c1 := idAt(1)
	selected := []SelectedCommit{{ID: c1, Bitmap: fullBitmap(0)}}
	b := Build(idx, nil, selected)

	uncovered := idAt(2)
	called := false
	result, err := b.Query([]plumbing.ID{uncovered}, nil, func(tips []plumbing.ID) ([]plumbing.ID, error) {
		called = true
		require.Equal(t, []plumbing.ID{uncovered}, tips)
		return []plumbing.ID{uncovered, idAt(3)}, nil
	})
	require.NoError(t, err)
	require.True(t, called)
	require.True(t, ewah.Equal(result, fullBitmap(1, 2)))
}

func TestByType(t *testing.T) {
	idx := testIdx(3)
	types := ObjectTypes{idAt(1): plumbing.CommitObject, idAt(2): plumbing.TreeObject, idAt(3): plumbing.BlobObject}
	selected := []SelectedCommit{{ID: idAt(1), Bitmap: fullBitmap(0, 1, 2)}}
	b := Build(idx, types, selected)

	result, _, err := b.Materialize(idAt(1))
	require.NoError(t, err)

	trees := b.ByType(result, plumbing.TreeObject)
	require.True(t, ewah.Equal(trees, fullBitmap(1)))
}
