// File: server/db.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Keyspace operations over one database table. Writes bump the server's
// dirty counter, which drives save points.

package server

import (
	"errors"
	"path"
	"slices"

	"github.com/momentics/hioload-kv/api"
)

// DB is one numbered keyspace.
type DB struct {
	id   int
	srv  *Server
	dict *KeySpace
}

// ID returns the database index.
func (db *DB) ID() int { return db.id }

// Dict exposes the underlying table.
func (db *DB) Dict() *KeySpace { return db.dict }

// Len returns the number of keys.
func (db *DB) Len() int { return db.dict.Len() }

// Get returns the object stored at key without taking a reference.
func (db *DB) Get(key string) (*Object, bool) {
	return db.dict.Fetch(key)
}

// Set stores o at key, replacing any previous value. The database takes
// over the caller's reference.
func (db *DB) Set(key string, o *Object) error {
	if cur, ok := db.dict.Fetch(key); ok && cur == o {
		db.srv.DecrRefCount(o)
		return nil
	}
	if err := db.dict.Replace(key, o); err != nil {
		return err
	}
	db.srv.dirty++
	return nil
}

// SetNX stores o at key only if key is absent. On api.ErrKeyExists the
// caller keeps its reference.
func (db *DB) SetNX(key string, o *Object) error {
	if err := db.dict.Add(key, o); err != nil {
		return err
	}
	db.srv.dirty++
	return nil
}

// Delete removes key and drops its value reference.
func (db *DB) Delete(key string) error {
	if err := db.dict.Delete(key); err != nil {
		return err
	}
	db.srv.dirty++
	return nil
}

// Exists reports whether key is present.
func (db *DB) Exists(key string) bool {
	return db.dict.Find(key) != nil
}

// RandomKey returns a random key, or false on an empty database.
func (db *DB) RandomKey() (string, bool) {
	e := db.dict.RandomEntry()
	if e == nil {
		return "", false
	}
	return e.Key(), true
}

// Keys returns the keys matching a glob pattern, sorted.
func (db *DB) Keys(pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, api.ErrInvalidArgument.WithContext("pattern", pattern)
	}
	var keys []string
	for key := range db.dict.All() {
		if pattern == "*" {
			keys = append(keys, key)
			continue
		}
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Flush removes every key.
func (db *DB) Flush() {
	db.srv.dirty += int64(db.dict.Len())
	db.dict.Clear()
}

// Rename moves the value at from to to, overwriting to.
func (db *DB) Rename(from, to string) error {
	if from == to {
		return api.ErrInvalidArgument.WithContext("key", from)
	}
	o, ok := db.dict.Fetch(from)
	if !ok {
		return api.ErrNotFound.WithContext("key", from)
	}
	db.srv.IncrRefCount(o)
	if err := db.dict.Replace(to, o); err != nil {
		db.srv.DecrRefCount(o)
		return err
	}
	if err := db.dict.Delete(from); err != nil {
		return err
	}
	db.srv.dirty++
	return nil
}

func (db *DB) lookupSet(key string, create bool) (*SetDict, error) {
	o, ok := db.dict.Fetch(key)
	if !ok {
		if !create {
			return nil, nil
		}
		o = db.srv.NewSetObject()
		if err := db.dict.Add(key, o); err != nil {
			db.srv.DecrRefCount(o)
			return nil, err
		}
	}
	if o.Type != TypeSet {
		return nil, api.ErrWrongType.WithContext("key", key)
	}
	return o.Set(), nil
}

// SAdd adds member to the set at key, creating it. It reports whether the
// member was new.
func (db *DB) SAdd(key, member string) (bool, error) {
	set, err := db.lookupSet(key, true)
	if err != nil {
		return false, err
	}
	return db.applied(set.Add(member, struct{}{}), api.ErrKeyExists)
}

// applied turns the result of a member write into a changed flag. noop is
// the error meaning nothing changed; any other error is returned.
func (db *DB) applied(err error, noop *api.Error) (bool, error) {
	switch {
	case err == nil:
		db.srv.dirty++
		return true, nil
	case errors.Is(err, noop):
		return false, nil
	default:
		return false, err
	}
}

// SRem removes member from the set at key.
func (db *DB) SRem(key, member string) (bool, error) {
	set, err := db.lookupSet(key, false)
	if err != nil || set == nil {
		return false, err
	}
	return db.applied(set.Delete(member), api.ErrNotFound)
}

// SIsMember reports whether member is in the set at key.
func (db *DB) SIsMember(key, member string) (bool, error) {
	set, err := db.lookupSet(key, false)
	if err != nil || set == nil {
		return false, err
	}
	return set.Find(member) != nil, nil
}

// SCard returns the cardinality of the set at key.
func (db *DB) SCard(key string) (int, error) {
	set, err := db.lookupSet(key, false)
	if err != nil || set == nil {
		return 0, err
	}
	return set.Len(), nil
}

// SMembers returns the members of the set at key, sorted.
func (db *DB) SMembers(key string) ([]string, error) {
	set, err := db.lookupSet(key, false)
	if err != nil || set == nil {
		return nil, err
	}
	members := make([]string, 0, set.Len())
	for m := range set.All() {
		members = append(members, m)
	}
	slices.Sort(members)
	return members, nil
}

func (db *DB) lookupHash(key string, create bool) (*HashDict, error) {
	o, ok := db.dict.Fetch(key)
	if !ok {
		if !create {
			return nil, nil
		}
		o = db.srv.NewHashObject()
		if err := db.dict.Add(key, o); err != nil {
			db.srv.DecrRefCount(o)
			return nil, err
		}
	}
	if o.Type != TypeHash {
		return nil, api.ErrWrongType.WithContext("key", key)
	}
	return o.Hash(), nil
}

// HSet sets field in the hash at key, creating it. It reports whether the
// field was new.
func (db *DB) HSet(key, field, value string) (bool, error) {
	h, err := db.lookupHash(key, true)
	if err != nil {
		return false, err
	}
	isNew := h.Find(field) == nil
	if err := h.Replace(field, value); err != nil {
		return false, err
	}
	db.srv.dirty++
	return isNew, nil
}

// HGet returns field of the hash at key.
func (db *DB) HGet(key, field string) (string, bool, error) {
	h, err := db.lookupHash(key, false)
	if err != nil || h == nil {
		return "", false, err
	}
	v, ok := h.Fetch(field)
	return v, ok, nil
}

// HDel removes field from the hash at key.
func (db *DB) HDel(key, field string) (bool, error) {
	h, err := db.lookupHash(key, false)
	if err != nil || h == nil {
		return false, err
	}
	return db.applied(h.Delete(field), api.ErrNotFound)
}
