package fn

import (
	"context"
)

// Anycast is a point without discriminators: the most specific override in the
// lookup chain runs, and the prototype runs when nothing overrides it.
type Anycast[A, R any] struct {
	point *Point[A, R]
}

// NewAnycast declares an anycast point around prototype.
func NewAnycast[A, R any](name string, prototype Func[A, R], opts ...Option) *Anycast[A, R] {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, WithFallback(prototype))
	return &Anycast[A, R]{point: Declare[A, R](name, nil, all...)}
}

// Call dispatches to the active override or the prototype.
func (a *Anycast[A, R]) Call(ctx context.Context, args A) (R, error) {
	return a.point.Invoke(ctx, args)
}

// Override wraps f as an override; collect it into a context to activate it.
func (a *Anycast[A, R]) Override(name string, f Func[A, R]) *Implementation[A, R] {
	return a.point.Implement(name, f)
}

func (a *Anycast[A, R]) Point() *Point[A, R] {
	return a.point
}
