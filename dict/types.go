// File: dict/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package dict

import "strings"

// StringCopyKey copies keys on insert and leaves values untouched.
func StringCopyKey[V any, C any]() *Type[string, V, C] {
	return &Type[string, V, C]{
		Hash:     StringHash,
		KeyDup:   func(_ C, key string) string { return strings.Clone(key) },
		KeyEqual: func(_ C, a, b string) bool { return a == b },
	}
}

// StringCopyKeyValue copies both keys and values on insert.
func StringCopyKeyValue[C any]() *Type[string, string, C] {
	return &Type[string, string, C]{
		Hash:     StringHash,
		KeyDup:   func(_ C, key string) string { return strings.Clone(key) },
		ValDup:   func(_ C, val string) string { return strings.Clone(val) },
		KeyEqual: func(_ C, a, b string) bool { return a == b },
	}
}

// HeapStrings stores the caller's strings as they are.
func HeapStrings[C any]() *Type[string, string, C] {
	return &Type[string, string, C]{
		Hash: StringHash,
	}
}

// IntKeys hashes integer keys with IntHash and compares them by identity.
func IntKeys[V any, C any]() *Type[int, V, C] {
	return &Type[int, V, C]{
		Hash: func(key int) uint64 {
			k := uint64(key)
			return uint64(IntHash(uint32(k) ^ uint32(k>>32)))
		},
	}
}
