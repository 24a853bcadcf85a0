// Package overload defines the matching strategies ("axes") a dispatch point is
// resolved along.
//
// An Overload turns a registration-time discriminator into a signature (Digest)
// and owns a per-record table (Scope) that stores entities under signatures and
// answers call-time lookups (Harvest). Harvest returns an unordered set; ordering
// among the survivors of all axes is decided by the dispatcher, optionally
// informed by axes that implement Ranker.
package overload

import (
	"fmt"
	"reflect"

	"flywheel/pkg/entity"
	"flywheel/pkg/platform/sentinel"
)

// Overload is a named matching strategy.
type Overload interface {
	// Name is the default key of this axis inside a record.
	Name() string
	// Digest normalizes a registration value into a storage signature.
	// It must be deterministic for equal values.
	Digest(value any) (any, error)
	// NewScope creates an empty table for this axis.
	NewScope() Scope
}

// Scope is the table an Overload keeps inside one record.
type Scope interface {
	// Collect returns the bucket stored under signature, creating it when missing.
	// Storing is adding to the returned bucket, which makes it idempotent.
	Collect(signature any) entity.Set
	// Access returns the bucket under signature without creating it.
	Access(signature any) (entity.Set, bool)
	// Harvest returns every entity whose signature accepts value. The result is
	// owned by the caller.
	Harvest(value any) entity.Set
}

// Ranker is implemented by axes whose matches differ in specificity.
// Lower ranks are more specific; exact matches rank 0.
type Ranker interface {
	Rank(scope Scope, value any, e *entity.Entity) int
}

// Lookup is one call-time harvest request: match Value against the table stored
// under Name using Overload.
type Lookup struct {
	Name     string
	Overload Overload
	Value    any
}

// On builds a lookup against the axis' own name.
func On(ov Overload, value any) Lookup {
	return Lookup{Name: ov.Name(), Overload: ov, Value: value}
}

// OnNamed builds a lookup against an explicit table name, for points that use the
// same strategy on several parameters.
func OnNamed(name string, ov Overload, value any) Lookup {
	return Lookup{Name: name, Overload: ov, Value: value}
}

func (l Lookup) String() string {
	return fmt.Sprintf("%s=%v", l.Name, l.Value)
}

// isComparable reports whether v can be used as a map key without panicking.
func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).Comparable()
}

func requireComparable(axis string, v any) error {
	if !isComparable(v) {
		return fmt.Errorf("axis %q: value of type %T: %w", axis, v, sentinel.ErrNotComparable)
	}
	return nil
}
