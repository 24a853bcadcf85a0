// Package fn is the call-time side of the engine: dispatch points, the
// implementations registered for them, and the selections produced by resolving
// a call against the lookup chain.
//
// Declaring a point and registering an implementation:
//
//	name := overload.NewSimple("name")
//	greet := fn.Declare[string, string]("greet",
//	    func(n string) []overload.Lookup { return []overload.Lookup{overload.On(name, n)} },
//	    fn.WithFallback(func(_ context.Context, n string) (string, error) {
//	        return "Ordinary, " + n + ".", nil
//	    }),
//	)
//	impl := greet.Implement("stargaztor", stargaztor).
//	    On(fn.Using(name, "Teague")).
//	    On(fn.Using(name, "Grey"))
//	_ = collect.Global(ctx, impl)
//
//	out, err := greet.Invoke(ctx, "Grey") // "Stargaztor"
//
// An implementation receives a context carrying a cursor for its point. Calling
// the same point with that context resolves against the layers behind the one
// that produced the implementation, which is how an override delegates to the
// implementation it shadows. Use Point.Fresh to start over from the front.
package fn

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"flywheel/pkg/collect"
	dErrors "flywheel/pkg/domain-errors"
	"flywheel/pkg/fn/metrics"
	"flywheel/pkg/overload"
	"flywheel/pkg/record"
)

const tracerName = "flywheel/pkg/fn"

// Func is the shape of every implementation.
type Func[A, R any] func(ctx context.Context, args A) (R, error)

// Harvest maps call arguments to the lookups a call is resolved along.
type Harvest[A any] func(args A) []overload.Lookup

// Point is a dispatch point.
type Point[A, R any] struct {
	id       record.Identity
	harvest  Harvest[A]
	fallback Func[A, R]
	settings settings
}

// Declare creates a dispatch point. A nil harvest, or one returning no lookups,
// resolves every call against overload.Default.
func Declare[A, R any](name string, harvest Harvest[A], opts ...Option) *Point[A, R] {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}

	p := &Point[A, R]{
		id:       record.NewIdentity(name),
		harvest:  harvest,
		settings: s,
	}
	if s.fallback != nil {
		fb, ok := s.fallback.(Func[A, R])
		if !ok {
			panic(fmt.Sprintf("fn: fallback of %s has type %T, want %T", name, s.fallback, p.fallback))
		}
		p.fallback = fb
	}
	return p
}

// ID is the point's identity, the key of its records.
func (p *Point[A, R]) ID() record.Identity {
	return p.id
}

func (p *Point[A, R]) Name() string {
	return p.id.Name
}

func (p *Point[A, R]) String() string {
	return p.id.Name
}

// Fresh drops the re-entrancy cursor of this point from ctx, for implementations
// that recurse on new arguments and want the full chain again.
func (p *Point[A, R]) Fresh(ctx context.Context) context.Context {
	return collect.ResetCursor(ctx, p.id)
}

func (p *Point[A, R]) lookups(args A) []overload.Lookup {
	var lookups []overload.Lookup
	if p.harvest != nil {
		lookups = p.harvest(args)
	}
	if len(lookups) == 0 {
		lookups = []overload.Lookup{overload.On(overload.Default, nil)}
	}
	return lookups
}

// Invoke resolves args against the lookup chain of ctx and calls the selected
// implementation with them.
func (p *Point[A, R]) Invoke(ctx context.Context, args A) (R, error) {
	ctx, span := p.settings.tracer.Start(ctx, "fn.invoke",
		trace.WithAttributes(attribute.String("fn.point", p.id.Name)))
	defer span.End()

	sel, scanned, err := p.resolve(ctx, args)
	p.settings.metrics.ObserveLayers(p.id.Name, scanned)
	if err != nil {
		if p.fallback != nil && dErrors.HasCode(err, dErrors.CodeNoImplementation) {
			p.settings.metrics.IncrementDispatch(p.id.Name, metrics.OutcomeFallback)
			span.SetAttributes(attribute.Bool("fn.fallback", true))
			return p.fallback(ctx, args)
		}
		p.settings.metrics.IncrementDispatch(p.id.Name, outcomeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		var zero R
		return zero, err
	}

	span.SetAttributes(
		attribute.String("fn.layer", sel.Layer().Name),
		attribute.Int("fn.candidates", sel.Len()),
	)
	p.settings.metrics.IncrementDispatch(p.id.Name, metrics.OutcomeHit)
	return sel.Call(ctx, args)
}

// Select resolves args without invoking anything. The selection is sealed and
// non-empty.
func (p *Point[A, R]) Select(ctx context.Context, args A) (*Selection[A, R], error) {
	sel, _, err := p.resolve(ctx, args)
	return sel, err
}

func (p *Point[A, R]) resolve(ctx context.Context, args A) (*Selection[A, R], int, error) {
	lookups := p.lookups(args)
	scanned := 0
	for idx, layer := range collect.Layers(ctx, p.id) {
		scanned++
		rec, ok := layer.Record(p.id)
		if !ok {
			continue
		}

		sel := newSelection(p, rec, layer, idx)
		for _, l := range lookups {
			sel.Harvest(l)
		}
		sel.Seal()
		if sel.Len() > 0 {
			if p.settings.strict {
				if _, err := sel.First(); err != nil {
					return nil, scanned, err
				}
			}
			return sel, scanned, nil
		}

		if p.settings.shadow == ShadowHard {
			break
		}
		if p.settings.logger != nil {
			p.settings.logger.DebugContext(ctx, "no match in layer, continuing",
				"point", p.id.Name,
				"layer", layer.Name,
			)
		}
	}

	if p.settings.logger != nil {
		p.settings.logger.DebugContext(ctx, "no implementation found",
			"point", p.id.Name,
			"layers_scanned", scanned,
		)
	}
	return nil, scanned, dErrors.NoImplementation(p.id.Name, args)
}

// Candidates starts a lazy, layer-by-layer resolution driven by the caller.
// With expectComplete, a scan that ends without a completed selection reports a
// no-implementation error through Err.
func (p *Point[A, R]) Candidates(ctx context.Context, expectComplete bool) *Candidates[A, R] {
	return &Candidates[A, R]{point: p, ctx: ctx, expectComplete: expectComplete}
}

func outcomeOf(err error) string {
	if dErrors.HasCode(err, dErrors.CodeNoImplementation) {
		return metrics.OutcomeMiss
	}
	return metrics.OutcomeError
}
