// File: dict/type.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package dict

// Type bundles the behavior a Dict delegates to. C is the caller context
// handed to every callback except Hash.
//
// Hash is required. A nil KeyDup/ValDup makes the table store the caller's
// handle as is, a nil KeyEqual falls back to ==, and nil destructors leave
// payloads untouched (they are borrowed, not owned).
type Type[K comparable, V any, C any] struct {
	Hash       func(key K) uint64
	KeyDup     func(ctx C, key K) K
	ValDup     func(ctx C, val V) V
	KeyEqual   func(ctx C, a, b K) bool
	KeyDestroy func(ctx C, key K)
	ValDestroy func(ctx C, val V)
}

func (d *Dict[K, V, C]) hashKey(key K) uint64 {
	return d.typ.Hash(key)
}

func (d *Dict[K, V, C]) keysEqual(a, b K) bool {
	if d.typ.KeyEqual != nil {
		return d.typ.KeyEqual(d.ctx, a, b)
	}
	return a == b
}

func (d *Dict[K, V, C]) setKey(e *Entry[K, V], key K) {
	if d.typ.KeyDup != nil {
		e.key = d.typ.KeyDup(d.ctx, key)
		return
	}
	e.key = key
}

func (d *Dict[K, V, C]) setVal(e *Entry[K, V], val V) {
	if d.typ.ValDup != nil {
		e.val = d.typ.ValDup(d.ctx, val)
		return
	}
	e.val = val
}

func (d *Dict[K, V, C]) freeKey(e *Entry[K, V]) {
	if d.typ.KeyDestroy != nil {
		d.typ.KeyDestroy(d.ctx, e.key)
	}
}

func (d *Dict[K, V, C]) freeVal(e *Entry[K, V]) {
	if d.typ.ValDestroy != nil {
		d.typ.ValDestroy(d.ctx, e.val)
	}
}
