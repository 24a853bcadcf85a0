package overload

import "flywheel/pkg/entity"

type wildcard struct{}

func (wildcard) String() string { return "*" }

// Any is a signature that accepts every call value on a Simple axis. Exact matches
// rank ahead of it.
var Any any = wildcard{}

// Simple matches call values by equality with the registered value.
type Simple struct {
	name string
}

// NewSimple creates an exact-value axis.
func NewSimple(name string) *Simple {
	return &Simple{name: name}
}

func (s *Simple) Name() string {
	return s.name
}

func (s *Simple) Digest(value any) (any, error) {
	if err := requireComparable(s.name, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Simple) NewScope() Scope {
	return &simpleScope{buckets: make(map[any]entity.Set)}
}

// Rank puts exact matches before wildcard matches.
func (s *Simple) Rank(scope Scope, value any, e *entity.Entity) int {
	if bucket, ok := scope.Access(value); ok && bucket.Has(e) {
		return 0
	}
	return 1
}

type simpleScope struct {
	buckets map[any]entity.Set
}

func (sc *simpleScope) Collect(signature any) entity.Set {
	bucket, ok := sc.buckets[signature]
	if !ok {
		bucket = entity.NewSet()
		sc.buckets[signature] = bucket
	}
	return bucket
}

func (sc *simpleScope) Access(signature any) (entity.Set, bool) {
	if !isComparable(signature) {
		return nil, false
	}
	bucket, ok := sc.buckets[signature]
	return bucket, ok
}

func (sc *simpleScope) Harvest(value any) entity.Set {
	if !isComparable(value) {
		return entity.NewSet()
	}
	out := sc.buckets[value].Clone()
	if value != Any {
		for e := range sc.buckets[Any] {
			out.Add(e)
		}
	}
	return out
}
