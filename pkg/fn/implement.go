package fn

import (
	"context"
	"fmt"

	"flywheel/pkg/collect"
	dErrors "flywheel/pkg/domain-errors"
	"flywheel/pkg/entity"
	"flywheel/pkg/overload"
	"flywheel/pkg/record"
)

// Use is one registration constraint: store under Value on Overload, in the
// table named Name (the axis name when empty).
type Use struct {
	Overload overload.Overload
	Value    any
	Name     string
}

// Using constrains a registration on ov's own table.
func Using(ov overload.Overload, value any) Use {
	return Use{Overload: ov, Value: value}
}

// UsingNamed constrains a registration on an explicitly named table.
func UsingNamed(name string, ov overload.Overload, value any) Use {
	return Use{Overload: ov, Value: value, Name: name}
}

type target struct {
	entity *entity.Entity
	uses   []Use
}

// Implementation is an implementation of one point together with the constraint
// sets it should be registered under. It registers itself when collected.
//
// Every constraint set is stored under its own entity sharing the same Func, so
// axis tables never intersect across sets.
type Implementation[A, R any] struct {
	point   *Point[A, R]
	entity  *entity.Entity
	fn      Func[A, R]
	targets []target
}

// Implement wraps f as an implementation of p. Without any On call it registers
// on overload.Default.
func (p *Point[A, R]) Implement(name string, f Func[A, R]) *Implementation[A, R] {
	return &Implementation[A, R]{
		point:  p,
		entity: entity.New(name, f),
		fn:     f,
	}
}

// Register implements f under uses and collects it into the implicit
// registration target of ctx.
func (p *Point[A, R]) Register(ctx context.Context, name string, f Func[A, R], uses ...Use) (*Implementation[A, R], error) {
	impl := p.Implement(name, f).On(uses...)
	if err := collect.Local(ctx, impl); err != nil {
		return nil, err
	}
	return impl, nil
}

// On adds one constraint set. Each call is a separate registration of the same
// implementation; the first set uses the entity returned by Entity.
func (i *Implementation[A, R]) On(uses ...Use) *Implementation[A, R] {
	e := i.entity
	if len(i.targets) > 0 {
		e = entity.New(i.entity.Name, i.fn)
	}
	i.targets = append(i.targets, target{entity: e, uses: uses})
	return i
}

// CollectInto registers every constraint set into c. Each set commits
// atomically; a rejected set stops the remaining ones.
func (i *Implementation[A, R]) CollectInto(c *collect.Context) error {
	targets := i.targets
	if len(targets) == 0 {
		targets = []target{{entity: i.entity}}
	}
	for _, t := range targets {
		replaced, err := c.Register(i.point.id, t.entity, func(r *record.Recorder) {
			for _, u := range t.uses {
				r.Use(u.Overload, u.Value, u.Name)
			}
		})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput,
				fmt.Sprintf("register %s for %q", t.entity, i.point.id.Name))
		}
		i.point.settings.metrics.IncrementRegistration(i.point.id.Name, replaced != nil)
	}
	return nil
}

// Call runs the implementation directly, bypassing dispatch.
func (i *Implementation[A, R]) Call(ctx context.Context, args A) (R, error) {
	return i.fn(ctx, args)
}

// Entity is the handle stored in axis tables for the first constraint set.
func (i *Implementation[A, R]) Entity() *entity.Entity {
	return i.entity
}

// Entities returns one handle per constraint set, in On order.
func (i *Implementation[A, R]) Entities() []*entity.Entity {
	if len(i.targets) == 0 {
		return []*entity.Entity{i.entity}
	}
	out := make([]*entity.Entity, len(i.targets))
	for n, t := range i.targets {
		out[n] = t.entity
	}
	return out
}

func (i *Implementation[A, R]) Point() *Point[A, R] {
	return i.point
}
