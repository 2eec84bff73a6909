package dict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterator_Empty(t *testing.T) {
	d := New(IntKeys[int, struct{}](), struct{}{})

	it := d.Iterator()
	assert.Nil(t, it.Next())
	assert.Nil(t, it.Next())
}

func TestIterator_VisitsEveryEntryOnce(t *testing.T) {
	d := New(IntKeys[int, struct{}](), struct{}{})
	for i := range 300 {
		require.NoError(t, d.Add(i, i*2))
	}

	seen := map[int]int{}
	it := d.Iterator()
	for e := it.Next(); e != nil; e = it.Next() {
		seen[e.Key()]++
		assert.Equal(t, e.Key()*2, e.Value())
	}

	require.Len(t, seen, 300)
	for k, n := range seen {
		require.Equalf(t, 1, n, "key %d visited %d times", k, n)
	}
}

func TestIterator_DeleteCurrent(t *testing.T) {
	// Everything lands in one chain so deletion exercises the captured successor.
	typ := &Type[int, int, struct{}]{Hash: func(k int) uint64 { return uint64(k % 3) }}
	d := New(typ, struct{}{})
	for i := range 12 {
		require.NoError(t, d.Add(i, i))
	}

	seen := map[int]int{}
	it := d.Iterator()
	for e := it.Next(); e != nil; e = it.Next() {
		seen[e.Key()]++
		require.NoError(t, d.Delete(e.Key()))
	}

	assert.Len(t, seen, 12)
	for _, n := range seen {
		assert.Equal(t, 1, n)
	}
	assert.Equal(t, 0, d.Len())
}

func TestDict_All(t *testing.T) {
	d := New(StringCopyKey[int, struct{}](), struct{}{})
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		require.NoError(t, d.Add(k, v))
	}

	got := map[string]int{}
	for k, v := range d.All() {
		got[k] = v
		if k == "b" {
			require.NoError(t, d.Delete(k))
		}
	}

	assert.Equal(t, want, got)
	assert.Equal(t, 2, d.Len())
}

func TestDict_AllBreak(t *testing.T) {
	d := New(IntKeys[int, struct{}](), struct{}{})
	for i := range 10 {
		require.NoError(t, d.Add(i, i))
	}

	n := 0
	for range d.All() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}
