// Package collect provides collect contexts: the scopes implementations are
// registered into, and the layered lookup chain the dispatcher scans.
//
// All "current" state (the implicit registration target, the lookup layout and the
// re-entrancy cursors) travels in a context.Context. Deriving a context is the
// scoped acquisition; dropping it is the release, so nested scopes unwind in LIFO
// order on every exit path and independent call chains never observe each other.
//
//	ctx = collect.WithRoot(context.Background(), collect.NewRoot())
//	local := collect.New("request")
//	ctx = collect.LookupScope(ctx, local)
//	_ = local.Collect(impl)
//	out, err := greet.Invoke(ctx, "Grey")
//
// A Context is not safe for concurrent registration. Register during setup, then
// dispatch from as many goroutines as needed.
package collect

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"flywheel/pkg/entity"
	"flywheel/pkg/platform/sentinel"
	"flywheel/pkg/record"
)

// Registrable is anything that knows how to register itself into a context.
type Registrable interface {
	CollectInto(c *Context) error
}

// Context owns the records of the dispatch points registered into it.
type Context struct {
	ID   uuid.UUID
	Name string

	records    map[record.Identity]*record.Record
	order      []record.Identity
	finalizers []*finalizer
	logger     *slog.Logger
}

type finalizer struct {
	fn func(*Context)
}

type Option func(c *Context)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		c.logger = logger
	}
}

// New creates an empty context.
func New(name string, opts ...Option) *Context {
	c := &Context{
		ID:      uuid.New(),
		Name:    name,
		records: make(map[record.Identity]*record.Record),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Context) String() string {
	return c.Name
}

// Collect asks r to register itself into c.
func (c *Context) Collect(r Registrable) error {
	if r == nil {
		return fmt.Errorf("collect into %s: nil registrable: %w", c.Name, sentinel.ErrInvalidState)
	}
	return r.CollectInto(c)
}

// Register commits one registration of e for point. build declares the
// constraints on the recorder. The record is created on first successful
// registration only, so a rejected registration leaves no trace in c.
func (c *Context) Register(point record.Identity, e *entity.Entity, build func(r *record.Recorder)) (*entity.Entity, error) {
	rec, ok := c.records[point]
	if !ok {
		rec = record.New(point)
	}

	recorder := record.NewRecorder(rec, e)
	if build != nil {
		build(recorder)
	}
	replaced, err := recorder.Done()
	if err != nil {
		return nil, err
	}

	if !ok {
		c.records[point] = rec
		c.order = append(c.order, point)
	}
	if c.logger != nil {
		c.logger.Debug("implementation collected",
			"context", c.Name,
			"point", point.Name,
			"entity", e.String(),
			"replaced", replaced != nil,
		)
	}
	return replaced, nil
}

// Record returns the record c holds for point.
func (c *Context) Record(point record.Identity) (*record.Record, bool) {
	rec, ok := c.records[point]
	return rec, ok
}

// Points lists the dispatch points registered into c, in first-registration order.
func (c *Context) Points() []record.Identity {
	return slices.Clone(c.order)
}

// OnCollected registers a callback run by Finalize. The returned function removes it.
func (c *Context) OnCollected(fn func(*Context)) (remove func()) {
	f := &finalizer{fn: fn}
	c.finalizers = append(c.finalizers, f)
	return func() {
		c.finalizers = slices.DeleteFunc(c.finalizers, func(x *finalizer) bool { return x == f })
	}
}

// Finalize runs the collected callbacks in registration order. It marks the end of
// a collection session, e.g. after a module has registered all of its
// implementations.
func (c *Context) Finalize() {
	for _, f := range slices.Clone(c.finalizers) {
		f.fn(c)
	}
}

// Registration describes one entry of a record for diagnostics.
type Registration struct {
	Entity    string `json:"entity"`
	Signature string `json:"signature"`
	Seq       uint64 `json:"seq"`
}

// PointInfo describes one record for diagnostics.
type PointInfo struct {
	Point         string         `json:"point"`
	Registrations []Registration `json:"registrations"`
}

// Describe snapshots every record in c.
func (c *Context) Describe() []PointInfo {
	out := make([]PointInfo, 0, len(c.order))
	for _, id := range c.order {
		rec := c.records[id]
		info := PointInfo{Point: id.Name}
		for _, en := range rec.Entries() {
			info.Registrations = append(info.Registrations, Registration{
				Entity:    en.Entity.String(),
				Signature: en.Signature.String(),
				Seq:       en.Seq,
			})
		}
		out = append(out, info)
	}
	return out
}

// Flatten squashes layout (most specific first) into one new context. Inner
// layers win over outer ones on identical constraint sets.
func Flatten(name string, layout []*Context) (*Context, error) {
	flat := New(name)
	for i := len(layout) - 1; i >= 0; i-- {
		layer := layout[i]
		for _, id := range layer.order {
			target, ok := flat.records[id]
			if !ok {
				target = record.New(id)
				flat.records[id] = target
				flat.order = append(flat.order, id)
			}
			if err := target.Merge(layer.records[id]); err != nil {
				return nil, fmt.Errorf("flatten %s: %w", layer.Name, err)
			}
		}
	}
	return flat, nil
}
