package fn

import (
	"context"

	dErrors "flywheel/pkg/domain-errors"
	"flywheel/pkg/instance"
)

// Method adapts a method-shaped function into an implementation. The receiver
// is resolved through r on every call, so the implementation follows whichever
// instance is live for the caller.
func Method[T, A, R any](r instance.Resolver, m func(self T, ctx context.Context, args A) (R, error)) Func[A, R] {
	return func(ctx context.Context, args A) (R, error) {
		self, err := instance.Of[T](ctx, r)
		if err != nil {
			var zero R
			return zero, dErrors.Wrap(err, dErrors.CodeNotFound, "bind receiver")
		}
		return m(self, ctx, args)
	}
}
