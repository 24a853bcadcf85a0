package collect

import (
	"context"
	"iter"
	"maps"
	"slices"
	"sync"

	"flywheel/pkg/record"
)

// Context key types (unexported for encapsulation).
type (
	rootKey       struct{}
	collectingKey struct{}
	layoutKey     struct{}
	cursorKey     struct{}
)

var (
	defaultRoot     *Context
	defaultRootOnce sync.Once
)

// Default returns the process-wide root, created on first use. Code that needs
// isolation (tests, embedded engines) binds its own root with WithRoot instead.
func Default() *Context {
	defaultRootOnce.Do(func() {
		defaultRoot = NewRoot()
	})
	return defaultRoot
}

// NewRoot creates a context meant to sit at the tail of a layout.
func NewRoot(opts ...Option) *Context {
	return New("root", opts...)
}

// WithRoot starts a fresh chain on ctx: root becomes the default layer and the
// implicit registration target.
func WithRoot(ctx context.Context, root *Context) context.Context {
	ctx = context.WithValue(ctx, rootKey{}, root)
	ctx = context.WithValue(ctx, layoutKey{}, []*Context{root})
	return context.WithValue(ctx, collectingKey{}, root)
}

// Root returns the root bound to ctx, or Default.
func Root(ctx context.Context) *Context {
	if root, ok := ctx.Value(rootKey{}).(*Context); ok {
		return root
	}
	return Default()
}

// -----------------------------------------------------------------------------
// Registration target
// -----------------------------------------------------------------------------

// CollectScope makes c the implicit registration target for ctx and its children.
func CollectScope(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, collectingKey{}, c)
}

// Collecting returns the implicit registration target, defaulting to the root.
func Collecting(ctx context.Context) *Context {
	if c, ok := ctx.Value(collectingKey{}).(*Context); ok {
		return c
	}
	return Root(ctx)
}

// Local registers r into the implicit registration target.
func Local(ctx context.Context, r Registrable) error {
	return Collecting(ctx).Collect(r)
}

// Global registers r into the root.
func Global(ctx context.Context, r Registrable) error {
	return Root(ctx).Collect(r)
}

// -----------------------------------------------------------------------------
// Lookup layout
// -----------------------------------------------------------------------------

// Layout returns the lookup chain for ctx, most specific first. The root is
// always the last element.
func Layout(ctx context.Context) []*Context {
	return slices.Clone(layoutOf(ctx))
}

func layoutOf(ctx context.Context) []*Context {
	if layout, ok := ctx.Value(layoutKey{}).([]*Context); ok {
		return layout
	}
	return []*Context{Root(ctx)}
}

// LookupScope pushes c in front of the lookup chain.
func LookupScope(ctx context.Context, c *Context) context.Context {
	return UnionScope(ctx, c)
}

// UnionScope prepends cs to the lookup chain; cs[0] becomes the most specific
// layer. Nil contexts are skipped.
func UnionScope(ctx context.Context, cs ...*Context) context.Context {
	current := layoutOf(ctx)
	layout := make([]*Context, 0, len(cs)+len(current))
	for _, c := range cs {
		if c != nil {
			layout = append(layout, c)
		}
	}
	layout = append(layout, current...)
	return context.WithValue(ctx, layoutKey{}, layout)
}

// Within runs fn with c as both the front lookup layer and the registration target.
func (c *Context) Within(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(CollectScope(LookupScope(ctx, c), c))
}

// -----------------------------------------------------------------------------
// Re-entrancy cursor
// -----------------------------------------------------------------------------

// mark pins the layer an implementation was found in. The layout may grow at the
// front while the implementation runs, so the mark keeps the layer itself and its
// distance from the root end rather than a bare index.
type mark struct {
	layer    *Context
	fromTail int
}

type cursors map[record.Identity]mark

// WithCursor records that the implementation currently running for point was
// found at layer idx of the layout of ctx. Lookups of point made with the returned
// context, or with any context derived from it, resume after that layer, which is
// how an override reaches the implementation it shadows instead of selecting
// itself again.
func WithCursor(ctx context.Context, point record.Identity, idx int) context.Context {
	layout := layoutOf(ctx)
	if idx < 0 || idx >= len(layout) {
		return ResetCursor(ctx, point)
	}
	current, _ := ctx.Value(cursorKey{}).(cursors)
	next := make(cursors, len(current)+1)
	maps.Copy(next, current)
	next[point] = mark{layer: layout[idx], fromTail: len(layout) - idx}
	return context.WithValue(ctx, cursorKey{}, next)
}

// ResetCursor makes lookups of point start from the most specific layer again.
func ResetCursor(ctx context.Context, point record.Identity) context.Context {
	current, _ := ctx.Value(cursorKey{}).(cursors)
	if _, ok := current[point]; !ok {
		return ctx
	}
	next := maps.Clone(current)
	delete(next, point)
	return context.WithValue(ctx, cursorKey{}, next)
}

// Cursor returns the index of the layer recorded for point within the current
// layout of ctx, or -1 when there is no cursor or the layer is no longer in the
// chain.
func Cursor(ctx context.Context, point record.Identity) int {
	current, _ := ctx.Value(cursorKey{}).(cursors)
	m, ok := current[point]
	if !ok {
		return -1
	}
	layout := layoutOf(ctx)
	if i := len(layout) - m.fromTail; i >= 0 && i < len(layout) && layout[i] == m.layer {
		return i
	}
	for i := len(layout) - 1; i >= 0; i-- {
		if layout[i] == m.layer {
			return i
		}
	}
	return -1
}

// Layers scans the lookup chain for point, starting after its cursor. The layout
// is captured when Layers is called.
func Layers(ctx context.Context, point record.Identity) iter.Seq2[int, *Context] {
	layout := layoutOf(ctx)
	start := Cursor(ctx, point) + 1
	return func(yield func(int, *Context) bool) {
		for i := start; i < len(layout); i++ {
			if !yield(i, layout[i]) {
				return
			}
		}
	}
}
