// Package entity defines the handle under which an implementation is stored in
// axis tables. Go functions are not comparable, so every implementation is wrapped
// in an *Entity and the pointer is used as the set key.
package entity

import (
	"github.com/google/uuid"
)

// Entity is one registered implementation.
type Entity struct {
	ID   uuid.UUID
	Name string
	Func any
}

// New wraps fn under a fresh identity.
func New(name string, fn any) *Entity {
	return &Entity{ID: uuid.New(), Name: name, Func: fn}
}

func (e *Entity) String() string {
	if e == nil {
		return "<nil>"
	}
	if e.Name != "" {
		return e.Name
	}
	return e.ID.String()
}

// Set is an unordered collection of entities. Adding the same entity twice is a no-op.
type Set map[*Entity]struct{}

// NewSet builds a set from entities.
func NewSet(entities ...*Entity) Set {
	s := make(Set, len(entities))
	for _, e := range entities {
		s[e] = struct{}{}
	}
	return s
}

func (s Set) Add(e *Entity) {
	s[e] = struct{}{}
}

func (s Set) Remove(e *Entity) {
	delete(s, e)
}

func (s Set) Has(e *Entity) bool {
	_, ok := s[e]
	return ok
}

// Clone returns a shallow copy; callers may mutate it without touching the table.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for e := range s {
		out[e] = struct{}{}
	}
	return out
}

// Union adds every member of other to a copy of s.
func (s Set) Union(other Set) Set {
	out := s.Clone()
	for e := range other {
		out[e] = struct{}{}
	}
	return out
}

// Intersect returns the members present in both sets.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set, len(small))
	for e := range small {
		if _, ok := large[e]; ok {
			out[e] = struct{}{}
		}
	}
	return out
}

// Slice returns the members in unspecified order.
func (s Set) Slice() []*Entity {
	out := make([]*Entity, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	return out
}
