// Package instance maps types to live instances so implementations declared as
// methods can be bound to a receiver at call time.
package instance

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"flywheel/pkg/platform/sentinel"
)

//go:generate mockgen -source=instance.go -destination=mocks/mocks.go -package=mocks Resolver

// Resolver finds the live instance registered for a type.
type Resolver interface {
	Resolve(ctx context.Context, t reflect.Type) (any, error)
}

// Context stores instances by type. Lookups fall through to the contexts it
// inherits from.
type Context struct {
	instances map[reflect.Type]any
	parents   []*Context
}

// New creates an empty instance context.
func New() *Context {
	return &Context{instances: make(map[reflect.Type]any)}
}

// Store records each value under its dynamic type.
func (c *Context) Store(values ...any) {
	for _, v := range values {
		if v == nil {
			continue
		}
		c.instances[reflect.TypeOf(v)] = v
	}
}

// Put records v under t, typically an interface type v implements.
func (c *Context) Put(t reflect.Type, v any) {
	c.instances[t] = v
}

// Lookup searches c, then the contexts it inherits from in order.
func (c *Context) Lookup(t reflect.Type) (any, bool) {
	if v, ok := c.instances[t]; ok {
		return v, true
	}
	for _, p := range c.parents {
		if v, ok := p.Lookup(t); ok {
			return v, true
		}
	}
	return nil, false
}

// Resolve implements Resolver against c alone.
func (c *Context) Resolve(_ context.Context, t reflect.Type) (any, error) {
	if v, ok := c.Lookup(t); ok {
		return v, nil
	}
	return nil, fmt.Errorf("instance of %s: %w", t, sentinel.ErrNotFound)
}

// -----------------------------------------------------------------------------
// Ambient instance context
// -----------------------------------------------------------------------------

type ctxKey struct{}

var (
	defaultContext     *Context
	defaultContextOnce sync.Once
)

// Default returns the process-wide instance context, used when none is bound.
func Default() *Context {
	defaultContextOnce.Do(func() {
		defaultContext = New()
	})
	return defaultContext
}

// Current returns the instance context bound to ctx, or Default.
func Current(ctx context.Context) *Context {
	if c, ok := ctx.Value(ctxKey{}).(*Context); ok {
		return c
	}
	return Default()
}

// Scope binds c to ctx as is.
func Scope(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// Inherit binds a new, empty context layered over c and then over the context
// currently bound to ctx. It returns the new layer so callers can store
// instances visible only below this point.
func Inherit(ctx context.Context, c *Context) (context.Context, *Context) {
	layer := New()
	layer.parents = []*Context{c, Current(ctx)}
	return Scope(ctx, layer), layer
}

type ambient struct{}

func (ambient) Resolve(ctx context.Context, t reflect.Type) (any, error) {
	return Current(ctx).Resolve(ctx, t)
}

// Ambient resolves against whichever instance context is bound to the call's ctx.
var Ambient Resolver = ambient{}

// Of resolves the instance of T through r.
func Of[T any](ctx context.Context, r Resolver) (T, error) {
	var zero T
	v, err := r.Resolve(ctx, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("instance of %s has type %T: %w", reflect.TypeFor[T](), v, sentinel.ErrInvalidState)
	}
	return typed, nil
}
