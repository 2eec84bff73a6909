// File: dict/iterator.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package dict

import "iter"

// Iterator walks a table in bucket order, chain order within a bucket.
// The successor of the current entry is captured before the entry is
// returned, so the caller may delete the entry it was just given.
type Iterator[K comparable, V any, C any] struct {
	d         *Dict[K, V, C]
	index     int
	entry     *Entry[K, V]
	nextEntry *Entry[K, V]
}

// Iterator returns a single-pass cursor over d.
func (d *Dict[K, V, C]) Iterator() *Iterator[K, V, C] {
	return &Iterator[K, V, C]{d: d, index: -1}
}

// Next returns the next entry, or nil once the table is exhausted.
func (it *Iterator[K, V, C]) Next() *Entry[K, V] {
	for {
		if it.entry == nil {
			it.index++
			if it.index >= it.d.size {
				return nil
			}
			it.entry = it.d.table[it.index]
		} else {
			it.entry = it.nextEntry
		}
		if it.entry != nil {
			it.nextEntry = it.entry.next
			return it.entry
		}
	}
}

// All ranges over d with an Iterator. Deleting the yielded key inside the
// loop body is safe.
func (d *Dict[K, V, C]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		it := d.Iterator()
		for e := it.Next(); e != nil; e = it.Next() {
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}
