// File: dict/hash.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package dict

import "github.com/cespare/xxhash/v2"

// GenHash is the djb2 byte hash (hash*33 + c, seeded with 5381).
func GenHash(buf []byte) uint64 {
	h := uint32(5381)
	for _, c := range buf {
		h = (h << 5) + h + uint32(c)
	}
	return uint64(h)
}

// StringHash is the default hash of the string flavors.
func StringHash(s string) uint64 {
	return xxhash.Sum64String(s)
}

// IntHash is Thomas Wang's 32 bit mix function.
func IntHash(key uint32) uint32 {
	key += ^(key << 15)
	key ^= key >> 10
	key += key << 3
	key ^= key >> 6
	key += ^(key << 11)
	key ^= key >> 16
	return key
}

// IdentityHash returns key unchanged, for keys that are already well spread.
func IdentityHash(key uint32) uint32 {
	return key
}
