// File: dict/random.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package dict

// RandomEntry returns a random entry, or nil if the table is empty.
//
// A non-empty bucket is picked uniformly, then a position in its chain.
// Entries sharing a long chain are individually less likely to be returned
// than entries alone in their bucket.
func (d *Dict[K, V, C]) RandomEntry() *Entry[K, V] {
	if d.used == 0 {
		return nil
	}

	var e *Entry[K, V]
	for e == nil {
		e = d.table[d.intn(d.size)]
	}

	for i := d.intn(chainLen(e)); i > 0; i-- {
		e = e.next
	}
	return e
}
