// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"time"

	"github.com/momentics/hioload-kv/dict"
)

const (
	// Version is reported by Info.
	Version = "0.07"

	// QueryBufLen is the read chunk size for client queries.
	QueryBufLen = 1024
	// MaxQueryLen bounds an unconsumed query buffer; larger clients are dropped.
	MaxQueryLen = 1024 * 1024

	// MaxObjFreeList caps the number of recycled objects.
	MaxObjFreeList = 1000000

	// HTMinFill is the fill percentage below which a table is shrunk.
	HTMinFill = 10
	// HTMinSlots is the bucket count under which tables are never shrunk.
	HTMinSlots = 16384

	statsLogEvery  = 5
	idleCheckEvery = 10
)

// ObjectType tags the payload of an Object.
type ObjectType uint8

const (
	TypeString ObjectType = iota
	TypeSet
	TypeHash
)

func (t ObjectType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeSet:
		return "set"
	case TypeHash:
		return "hash"
	}
	return "unknown"
}

// SetDict backs set objects; values are unused.
type SetDict = dict.Dict[string, struct{}, *Server]

// HashDict backs hash objects.
type HashDict = dict.Dict[string, string, *Server]

// KeySpace is the per-database table.
type KeySpace = dict.Dict[string, *Object, *Server]

// Object is a reference-counted value. The server owns one reference per
// database slot holding it.
type Object struct {
	Type     ObjectType
	Ptr      any
	refcount int
}

// Str returns the payload of a string object.
func (o *Object) Str() string {
	s, _ := o.Ptr.(string)
	return s
}

// Set returns the payload of a set object, or nil.
func (o *Object) Set() *SetDict {
	d, _ := o.Ptr.(*SetDict)
	return d
}

// Hash returns the payload of a hash object, or nil.
func (o *Object) Hash() *HashDict {
	d, _ := o.Ptr.(*HashDict)
	return d
}

// RefCount returns the number of live references.
func (o *Object) RefCount() int { return o.refcount }

// SavePoint mirrors control.SavePoint in duration form.
type SavePoint struct {
	After   time.Duration
	Changes int64
}
