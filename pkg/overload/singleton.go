package overload

import "flywheel/pkg/entity"

// Singleton matches every call value. It backs points without discriminators.
type Singleton struct {
	name string
}

// Default is the axis a registration falls back to when it declares no operator.
var Default = NewSingleton("singleton")

// NewSingleton creates an always-match axis.
func NewSingleton(name string) *Singleton {
	return &Singleton{name: name}
}

func (s *Singleton) Name() string {
	return s.name
}

// Digest ignores the value; every registration shares one signature.
func (s *Singleton) Digest(any) (any, error) {
	return nil, nil
}

func (s *Singleton) NewScope() Scope {
	return &singletonScope{bucket: entity.NewSet()}
}

type singletonScope struct {
	bucket entity.Set
}

func (sc *singletonScope) Collect(any) entity.Set {
	return sc.bucket
}

func (sc *singletonScope) Access(any) (entity.Set, bool) {
	return sc.bucket, true
}

func (sc *singletonScope) Harvest(any) entity.Set {
	return sc.bucket.Clone()
}
