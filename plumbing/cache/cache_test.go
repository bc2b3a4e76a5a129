package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vcscore/corevcs/plumbing"
)

func TestObjectLRUEvictsOldest(t *testing.T) {
	c := NewObjectLRU(10)

	var id1, id2 plumbing.ID
	id1[0], id2[0] = 1, 2

	c.Put(id1, []byte("0123456789"))
	_, ok := c.Get(id1)
	require.True(t, ok)

	c.Put(id2, []byte("0123456789"))
	_, ok = c.Get(id1)
	require.False(t, ok)
	_, ok = c.Get(id2)
	require.True(t, ok)
}

func TestObjectLRUTouchOnGetKeepsRecentlyUsed(t *testing.T) {
	c := NewObjectLRU(12)

	var idA, idB, idC plumbing.ID
	idA[0], idB[0], idC[0] = 1, 2, 3

	c.Put(idA, []byte("aaaaa"))
	c.Put(idB, []byte("bbbbb"))

	_, ok := c.Get(idA)
	require.True(t, ok)

	c.Put(idC, []byte("ccccc"))

	_, ok = c.Get(idA)
	require.True(t, ok)
	_, ok = c.Get(idB)
	require.False(t, ok)
}

func TestObjectLRUClear(t *testing.T) {
	c := NewObjectLRU(1 * KiByte)
	var id plumbing.ID
	c.Put(id, []byte("x"))
	c.Clear()
	require.Equal(t, 0, c.Len())
}

func TestDeltaBaseLRUEvictsOldest(t *testing.T) {
	c := NewDeltaBaseLRU(10)

	c.Put(0, []byte("0123456789"))
	_, ok := c.Get(0)
	require.True(t, ok)

	c.Put(100, []byte("0123456789"))
	_, ok = c.Get(0)
	require.False(t, ok)
	_, ok = c.Get(100)
	require.True(t, ok)
}
