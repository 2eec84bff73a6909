// File: dict/dict.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package dict

import (
	"errors"
	"math/rand/v2"

	"github.com/momentics/hioload-kv/api"
)

const (
	// MinSize is the bucket count of a freshly allocated table.
	MinSize = 16
	// MaxSize caps the bucket array; larger requests fail with api.ErrOutOfMemory.
	MaxSize = 1 << 30
)

// Dict is a chained hash table. See the package doc for its invariants.
type Dict[K comparable, V any, C any] struct {
	table    []*Entry[K, V]
	size     int
	sizeMask uint64
	used     int

	typ *Type[K, V, C]
	ctx C

	intn func(n int) int
}

// New returns an empty table. No bucket array is allocated until the first insert.
func New[K comparable, V any, C any](typ *Type[K, V, C], ctx C) *Dict[K, V, C] {
	if typ == nil || typ.Hash == nil {
		panic("dict: Type.Hash is required")
	}
	return &Dict[K, V, C]{
		typ:  typ,
		ctx:  ctx,
		intn: rand.IntN,
	}
}

// Len returns the number of stored entries.
func (d *Dict[K, V, C]) Len() int { return d.used }

// Size returns the bucket count (0 while unallocated).
func (d *Dict[K, V, C]) Size() int { return d.size }

// Context returns the caller context handed to the Type callbacks.
func (d *Dict[K, V, C]) Context() C { return d.ctx }

// SetRand overrides the random source used by RandomEntry.
func (d *Dict[K, V, C]) SetRand(r *rand.Rand) {
	d.intn = r.IntN
}

// Expand rebuilds the table into a bucket array sized to the smallest power
// of two >= max(hint, MinSize). Every entry is relinked at hash(key) masked
// with the new size.
func (d *Dict[K, V, C]) Expand(hint int) error {
	if hint < d.used {
		return api.ErrWouldShrinkBelowUsed.
			WithContext("used", d.used).
			WithContext("hint", hint)
	}
	realSize, err := nextPower(hint)
	if err != nil {
		return err
	}

	table := make([]*Entry[K, V], realSize)
	mask := uint64(realSize - 1)
	for i, e := range d.table {
		for e != nil {
			next := e.next
			h := d.hashKey(e.key) & mask
			e.next = table[h]
			table[h] = e
			e = next
		}
		d.table[i] = nil
	}

	d.table = table
	d.size = realSize
	d.sizeMask = mask
	return nil
}

// ShrinkToFit resizes the table to the minimal size holding all entries.
func (d *Dict[K, V, C]) ShrinkToFit() error {
	return d.Expand(max(d.used, MinSize))
}

// Add inserts key/val. It fails with api.ErrKeyExists if an equal key is present.
func (d *Dict[K, V, C]) Add(key K, val V) error {
	idx, err := d.keyIndex(key)
	if err != nil {
		return err
	}

	e := &Entry[K, V]{next: d.table[idx]}
	d.table[idx] = e
	d.setKey(e, key)
	d.setVal(e, val)
	d.used++
	return nil
}

// Replace adds key/val, or overwrites the value of an existing key in place.
// The stored key is kept; the previous value goes through ValDestroy.
func (d *Dict[K, V, C]) Replace(key K, val V) error {
	err := d.Add(key, val)
	if err == nil || !errors.Is(err, api.ErrKeyExists) {
		return err
	}

	e := d.Find(key)
	old := *e
	// Set the new value before releasing the old one: they may be the same
	// reference-counted object.
	d.setVal(e, val)
	d.freeVal(&old)
	return nil
}

// Find returns the entry for key, or nil.
func (d *Dict[K, V, C]) Find(key K) *Entry[K, V] {
	if d.size == 0 {
		return nil
	}
	h := d.hashKey(key) & d.sizeMask
	for e := d.table[h]; e != nil; e = e.next {
		if d.keysEqual(key, e.key) {
			return e
		}
	}
	return nil
}

// Fetch returns the value stored under key.
func (d *Dict[K, V, C]) Fetch(key K) (V, bool) {
	if e := d.Find(key); e != nil {
		return e.val, true
	}
	var zero V
	return zero, false
}

// Delete removes key and releases its payload through the destructors.
func (d *Dict[K, V, C]) Delete(key K) error {
	return d.genericDelete(key, true)
}

// DeleteNoFree removes key without calling the destructors.
func (d *Dict[K, V, C]) DeleteNoFree(key K) error {
	return d.genericDelete(key, false)
}

func (d *Dict[K, V, C]) genericDelete(key K, freePayload bool) error {
	if d.size == 0 {
		return api.ErrNotFound
	}
	h := d.hashKey(key) & d.sizeMask
	var prev *Entry[K, V]
	for e := d.table[h]; e != nil; e = e.next {
		if !d.keysEqual(key, e.key) {
			prev = e
			continue
		}
		if prev != nil {
			prev.next = e.next
		} else {
			d.table[h] = e.next
		}
		if freePayload {
			d.freeKey(e)
			d.freeVal(e)
		}
		e.next = nil
		d.used--
		return nil
	}
	return api.ErrNotFound
}

// Clear destroys every entry and returns the table to its unallocated state.
func (d *Dict[K, V, C]) Clear() {
	for i, e := range d.table {
		for e != nil {
			next := e.next
			d.freeKey(e)
			d.freeVal(e)
			e.next = nil
			e = next
		}
		d.table[i] = nil
	}
	d.table = nil
	d.size = 0
	d.sizeMask = 0
	d.used = 0
}

func (d *Dict[K, V, C]) expandIfNeeded() error {
	if d.size == 0 {
		return d.Expand(MinSize)
	}
	if d.used == d.size {
		return d.Expand(d.size * 2)
	}
	return nil
}

// keyIndex returns the bucket a new key belongs to, growing the table first
// if needed.
func (d *Dict[K, V, C]) keyIndex(key K) (uint64, error) {
	if err := d.expandIfNeeded(); err != nil {
		return 0, err
	}
	h := d.hashKey(key) & d.sizeMask
	for e := d.table[h]; e != nil; e = e.next {
		if d.keysEqual(e.key, key) {
			return 0, api.ErrKeyExists
		}
	}
	return h, nil
}

func nextPower(size int) (int, error) {
	if size > MaxSize {
		return 0, api.ErrOutOfMemory.WithContext("buckets", size)
	}
	i := MinSize
	for i < size {
		i *= 2
	}
	return i, nil
}
