package server

import (
	"fmt"
	"testing"

	"github.com/momentics/hioload-kv/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_SetGetReplace(t *testing.T) {
	s, _ := newTestServer(t)
	db, err := s.DB(0)
	require.NoError(t, err)

	first := s.NewStringObject("v1")
	require.NoError(t, db.Set("k", first))
	o, ok := db.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v1", o.Str())
	assert.Equal(t, 1, o.RefCount())

	second := s.NewStringObject("v2")
	require.NoError(t, db.Set("k", second))
	o, _ = db.Get("k")
	assert.Equal(t, "v2", o.Str())
	// the replaced value was released and recycled
	assert.Equal(t, 0, first.RefCount())
	assert.Equal(t, 1, db.Len())
	assert.Equal(t, int64(2), s.Dirty())
}

func TestDB_SetSameObject(t *testing.T) {
	s, _ := newTestServer(t)
	db, _ := s.DB(0)

	o := s.NewStringObject("v")
	require.NoError(t, db.Set("k", o))
	s.IncrRefCount(o)
	require.NoError(t, db.Set("k", o))
	assert.Equal(t, 1, o.RefCount())
	got, _ := db.Get("k")
	assert.Equal(t, "v", got.Str())
}

func TestDB_SetNX(t *testing.T) {
	s, _ := newTestServer(t)
	db, _ := s.DB(0)

	require.NoError(t, db.SetNX("k", s.NewStringObject("a")))
	other := s.NewStringObject("b")
	err := db.SetNX("k", other)
	assert.ErrorIs(t, err, api.ErrKeyExists)
	assert.Equal(t, 1, other.RefCount())

	o, _ := db.Get("k")
	assert.Equal(t, "a", o.Str())
}

func TestDB_DeleteExists(t *testing.T) {
	s, _ := newTestServer(t)
	db, _ := s.DB(1)

	o := s.NewStringObject("v")
	require.NoError(t, db.Set("k", o))
	assert.True(t, db.Exists("k"))

	require.NoError(t, db.Delete("k"))
	assert.False(t, db.Exists("k"))
	assert.Equal(t, 0, o.RefCount())
	assert.ErrorIs(t, db.Delete("k"), api.ErrNotFound)
}

func TestDB_Isolation(t *testing.T) {
	s, _ := newTestServer(t)
	db0, _ := s.DB(0)
	db1, _ := s.DB(1)

	require.NoError(t, db0.Set("k", s.NewStringObject("zero")))
	assert.False(t, db1.Exists("k"))

	_, err := s.DB(4)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	_, err = s.DB(-1)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestDB_Rename(t *testing.T) {
	s, _ := newTestServer(t)
	db, _ := s.DB(0)

	o := s.NewStringObject("v")
	require.NoError(t, db.Set("a", o))
	require.NoError(t, db.Set("b", s.NewStringObject("old")))

	require.NoError(t, db.Rename("a", "b"))
	assert.False(t, db.Exists("a"))
	got, ok := db.Get("b")
	require.True(t, ok)
	assert.Same(t, o, got)
	assert.Equal(t, 1, o.RefCount())

	assert.ErrorIs(t, db.Rename("missing", "x"), api.ErrNotFound)
	assert.ErrorIs(t, db.Rename("b", "b"), api.ErrInvalidArgument)
}

func TestDB_RandomKeyAndKeys(t *testing.T) {
	s, _ := newTestServer(t)
	db, _ := s.DB(0)

	_, ok := db.RandomKey()
	assert.False(t, ok)

	for i := 0; i < 10; i++ {
		require.NoError(t, db.Set(fmt.Sprintf("user:%d", i), s.NewStringObject("x")))
	}
	require.NoError(t, db.Set("other", s.NewStringObject("y")))

	key, ok := db.RandomKey()
	require.True(t, ok)
	assert.True(t, db.Exists(key))

	keys, err := db.Keys("user:*")
	require.NoError(t, err)
	assert.Len(t, keys, 10)
	assert.Equal(t, "user:0", keys[0])

	all, err := db.Keys("*")
	require.NoError(t, err)
	assert.Len(t, all, 11)

	_, err = db.Keys("[")
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestDB_Flush(t *testing.T) {
	s, _ := newTestServer(t)
	db, _ := s.DB(0)

	objs := make([]*Object, 5)
	for i := range objs {
		objs[i] = s.NewStringObject("v")
		require.NoError(t, db.Set(fmt.Sprint(i), objs[i]))
	}
	db.Flush()
	assert.Equal(t, 0, db.Len())
	assert.Equal(t, 0, db.Dict().Size())
	for _, o := range objs {
		assert.Equal(t, 0, o.RefCount())
	}
}

func TestDB_Sets(t *testing.T) {
	s, _ := newTestServer(t)
	db, _ := s.DB(0)

	added, err := db.SAdd("s", "a")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = db.SAdd("s", "a")
	require.NoError(t, err)
	assert.False(t, added)
	_, err = db.SAdd("s", "b")
	require.NoError(t, err)

	n, err := db.SCard("s")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	member, err := db.SIsMember("s", "b")
	require.NoError(t, err)
	assert.True(t, member)

	members, err := db.SMembers("s")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, members)

	removed, err := db.SRem("s", "a")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = db.SRem("s", "a")
	require.NoError(t, err)
	assert.False(t, removed)

	// missing keys behave as empty sets
	n, err = db.SCard("nope")
	require.NoError(t, err)
	assert.Zero(t, n)
	member, err = db.SIsMember("nope", "a")
	require.NoError(t, err)
	assert.False(t, member)
}

func TestDB_MemberWriteErrorsSurface(t *testing.T) {
	s, _ := newTestServer(t)
	db, _ := s.DB(0)
	before := s.Dirty()

	ok, err := db.applied(api.ErrKeyExists.WithContext("key", "m"), api.ErrKeyExists)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = db.applied(api.ErrOutOfMemory.WithContext("size", int64(1)<<31), api.ErrKeyExists)
	assert.ErrorIs(t, err, api.ErrOutOfMemory)
	assert.False(t, ok)
	assert.Equal(t, before, s.Dirty())

	ok, err = db.applied(nil, api.ErrNotFound)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, before+1, s.Dirty())
}

func TestDB_WrongType(t *testing.T) {
	s, _ := newTestServer(t)
	db, _ := s.DB(0)

	require.NoError(t, db.Set("str", s.NewStringObject("v")))
	_, err := db.SAdd("str", "m")
	assert.ErrorIs(t, err, api.ErrWrongType)
	_, _, err = db.HGet("str", "f")
	assert.ErrorIs(t, err, api.ErrWrongType)
}

func TestDB_Hashes(t *testing.T) {
	s, _ := newTestServer(t)
	db, _ := s.DB(0)

	isNew, err := db.HSet("h", "f", "1")
	require.NoError(t, err)
	assert.True(t, isNew)
	isNew, err = db.HSet("h", "f", "2")
	require.NoError(t, err)
	assert.False(t, isNew)

	v, ok, err := db.HGet("h", "f")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	deleted, err := db.HDel("h", "f")
	require.NoError(t, err)
	assert.True(t, deleted)
	_, ok, err = db.HGet("h", "f")
	require.NoError(t, err)
	assert.False(t, ok)
}
