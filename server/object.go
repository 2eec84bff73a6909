// File: server/object.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reference-counted values with a bounded free list for recycling.

package server

import (
	"github.com/momentics/hioload-kv/dict"
)

func (s *Server) createObject(typ ObjectType, ptr any) *Object {
	var o *Object
	if s.objFreeList.Length() > 0 {
		o = s.objFreeList.Remove().(*Object)
	} else {
		o = &Object{}
	}
	o.Type = typ
	o.Ptr = ptr
	o.refcount = 1
	return o
}

// NewStringObject creates a string object holding one reference.
func (s *Server) NewStringObject(v string) *Object {
	return s.createObject(TypeString, v)
}

// NewSetObject creates an empty set object holding one reference.
func (s *Server) NewSetObject() *Object {
	return s.createObject(TypeSet, dict.New(dict.StringCopyKey[struct{}, *Server](), s))
}

// NewHashObject creates an empty hash object holding one reference.
func (s *Server) NewHashObject() *Object {
	return s.createObject(TypeHash, dict.New(dict.StringCopyKeyValue[*Server](), s))
}

// IncrRefCount takes an extra reference to o.
func (s *Server) IncrRefCount(o *Object) {
	o.refcount++
}

// DecrRefCount drops a reference. The last one releases the payload and
// recycles o; it must not be used afterwards.
func (s *Server) DecrRefCount(o *Object) {
	if o.refcount <= 0 {
		panic("server: DecrRefCount against refcount <= 0")
	}
	o.refcount--
	if o.refcount > 0 {
		return
	}
	switch o.Type {
	case TypeSet:
		if d := o.Set(); d != nil {
			d.Clear()
		}
	case TypeHash:
		if d := o.Hash(); d != nil {
			d.Clear()
		}
	}
	o.Ptr = nil
	if s.objFreeList.Length() < s.maxObjFreeList {
		s.objFreeList.Add(o)
	}
}

// keySpaceType copies keys and drops a value reference on removal.
func keySpaceType() *dict.Type[string, *Object, *Server] {
	t := dict.StringCopyKey[*Object, *Server]()
	t.ValDestroy = func(s *Server, o *Object) { s.DecrRefCount(o) }
	return t
}

// clientTableType keys clients by descriptor.
func clientTableType() *dict.Type[int, *Client, *Server] {
	return dict.IntKeys[*Client, *Server]()
}
