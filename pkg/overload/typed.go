package overload

import (
	"fmt"
	"reflect"

	"flywheel/pkg/entity"
	"flywheel/pkg/platform/sentinel"
)

// Type matches call values by runtime type. Registration values are reflect.Type;
// a call value that is itself a reflect.Type is used as is, any other value is
// matched through its dynamic type.
//
// A call type matches its own bucket and the bucket of every registered interface
// it implements. Ranking puts the exact type first, then interfaces from most to
// least derived.
type Type struct {
	name string
}

// NewType creates a type/subtype axis.
func NewType(name string) *Type {
	return &Type{name: name}
}

// TypeOf is shorthand for the registration value of T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func (t *Type) Name() string {
	return t.name
}

func (t *Type) Digest(value any) (any, error) {
	rt, ok := value.(reflect.Type)
	if !ok || rt == nil {
		return nil, fmt.Errorf("axis %q: expected reflect.Type, got %T: %w", t.name, value, sentinel.ErrInvalidState)
	}
	return rt, nil
}

func (t *Type) NewScope() Scope {
	return &typeScope{buckets: make(map[reflect.Type]entity.Set)}
}

func (t *Type) Rank(scope Scope, value any, e *entity.Entity) int {
	sc, ok := scope.(*typeScope)
	if !ok {
		return 0
	}
	rt := callType(value)
	if rt == nil {
		return 0
	}
	if sc.buckets[rt].Has(e) {
		return 0
	}

	compatible := sc.interfacesOf(rt)
	best := -1
	for _, iface := range compatible {
		if !sc.buckets[iface].Has(e) {
			continue
		}
		rank := 1
		for _, other := range compatible {
			if other != iface && other.Implements(iface) && !iface.Implements(other) {
				rank++
			}
		}
		if best < 0 || rank < best {
			best = rank
		}
	}
	if best < 0 {
		return len(compatible) + 1
	}
	return best
}

type typeScope struct {
	buckets map[reflect.Type]entity.Set
	ifaces  []reflect.Type
}

func (sc *typeScope) Collect(signature any) entity.Set {
	rt := signature.(reflect.Type)
	bucket, ok := sc.buckets[rt]
	if !ok {
		bucket = entity.NewSet()
		sc.buckets[rt] = bucket
		if rt.Kind() == reflect.Interface {
			sc.ifaces = append(sc.ifaces, rt)
		}
	}
	return bucket
}

func (sc *typeScope) Access(signature any) (entity.Set, bool) {
	rt, ok := signature.(reflect.Type)
	if !ok {
		return nil, false
	}
	bucket, ok := sc.buckets[rt]
	return bucket, ok
}

func (sc *typeScope) Harvest(value any) entity.Set {
	rt := callType(value)
	if rt == nil {
		return entity.NewSet()
	}
	out := sc.buckets[rt].Clone()
	for _, iface := range sc.interfacesOf(rt) {
		for e := range sc.buckets[iface] {
			out.Add(e)
		}
	}
	return out
}

// interfacesOf lists registered interface types rt implements, excluding rt.
func (sc *typeScope) interfacesOf(rt reflect.Type) []reflect.Type {
	var out []reflect.Type
	for _, iface := range sc.ifaces {
		if iface != rt && rt.Implements(iface) {
			out = append(out, iface)
		}
	}
	return out
}

func callType(value any) reflect.Type {
	if rt, ok := value.(reflect.Type); ok {
		return rt
	}
	return reflect.TypeOf(value)
}
