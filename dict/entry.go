// File: dict/entry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package dict

// Entry is a key/value pair linked into its bucket chain.
type Entry[K comparable, V any] struct {
	key  K
	val  V
	next *Entry[K, V]
}

// Key returns the stored key.
func (e *Entry[K, V]) Key() K { return e.key }

// Value returns the stored value.
func (e *Entry[K, V]) Value() V { return e.val }

// chainLen counts the entries reachable from e.
func chainLen[K comparable, V any](e *Entry[K, V]) int {
	n := 0
	for ; e != nil; e = e.next {
		n++
	}
	return n
}
