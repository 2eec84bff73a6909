// File: dict/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package dict implements a resizable, chained hash table parameterized over
// pluggable hashing, comparison and ownership behavior (a Type).
//
// Bucket arrays are always a power of two, at least MinSize long. Allocation
// is deferred to the first insert, the table doubles when the used count
// reaches the bucket count, and it never shrinks on delete. Rehashing is done
// in one shot.
//
// A Dict is not safe for concurrent use. It must not be resized while an
// Iterator is live; deleting the entry an Iterator just returned is safe.
package dict
