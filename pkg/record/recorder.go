package record

import (
	"fmt"
	"reflect"
	"sort"

	"flywheel/pkg/entity"
	"flywheel/pkg/overload"
	"flywheel/pkg/platform/sentinel"
)

type operator struct {
	name  string
	ov    overload.Overload
	value any
}

// Recorder accumulates the constraints one implementation is registered under and
// commits them to a record in one step.
type Recorder struct {
	target    *Record
	entity    *entity.Entity
	operators []operator
	done      bool
}

// NewRecorder starts a registration of e into target.
func NewRecorder(target *Record, e *entity.Entity) *Recorder {
	return &Recorder{target: target, entity: e}
}

// Use adds a constraint. The table name defaults to the axis name.
func (r *Recorder) Use(ov overload.Overload, value any, name ...string) *Recorder {
	op := operator{name: ov.Name(), ov: ov, value: value}
	if len(name) > 0 && name[0] != "" {
		op.name = name[0]
	}
	r.operators = append(r.operators, op)
	return r
}

// Done digests every constraint and commits the registration. Nothing is written
// when any constraint is rejected. Without constraints the entity is registered
// on overload.Default. It returns the entity this registration replaced, if any.
func (r *Recorder) Done() (*entity.Entity, error) {
	if r.done {
		return nil, fmt.Errorf("recorder for %s: %w", r.entity, sentinel.ErrInvalidState)
	}
	r.done = true

	ops := r.operators
	if len(ops) == 0 {
		ops = []operator{{name: overload.Default.Name(), ov: overload.Default}}
	}

	sig := make(Signature, 0, len(ops))
	for _, op := range ops {
		value, err := op.ov.Digest(op.value)
		if err != nil {
			return nil, fmt.Errorf("register %s on %s: %w", r.entity, r.target.Point.Name, err)
		}
		if value != nil && !reflect.ValueOf(value).Comparable() {
			return nil, fmt.Errorf("register %s on %s: signature %T: %w", r.entity, r.target.Point.Name, value, sentinel.ErrNotComparable)
		}
		seg := Segment{Name: op.name, Overload: op.ov, Value: value}
		if sig.contains(seg) {
			continue
		}
		sig = append(sig, seg)
	}
	sort.SliceStable(sig, func(i, j int) bool { return sig[i].Name < sig[j].Name })

	if err := r.target.checkOwners(sig); err != nil {
		return nil, err
	}
	return r.target.commit(sig, r.entity), nil
}
