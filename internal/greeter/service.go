// Package greeter serves the greet dispatch point: greetings chosen by name,
// role and client, loaded from a layered YAML catalog.
package greeter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"flywheel/internal/platform/metrics"
	"flywheel/pkg/collect"
	dErrors "flywheel/pkg/domain-errors"
	"flywheel/pkg/fn"
	fnmetrics "flywheel/pkg/fn/metrics"
	"flywheel/pkg/instance"
	"flywheel/pkg/overload"
)

// Request holds the discriminators of one greeting.
type Request struct {
	Name   string
	Role   string
	Client string
}

// Service owns the greet point, the root context and the named layers loaded
// from the catalog.
type Service struct {
	point  *fn.Point[Request, string]
	name   *overload.Simple
	role   *overload.Simple
	client *overload.Simple

	root      *collect.Context
	layers    map[string]*collect.Context
	order     []string
	instances *instance.Context

	logger      *slog.Logger
	metrics     *metrics.Metrics
	fnMetrics   *fnmetrics.Metrics
	pointOpts   []fn.Option
	collectOpts []collect.Option
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDispatchMetrics records dispatch and registration metrics of the greet point.
func WithDispatchMetrics(m *fnmetrics.Metrics) Option {
	return func(s *Service) {
		s.fnMetrics = m
	}
}

// WithPointOptions passes extra options (shadow policy, strictness, tracer) to
// the greet point.
func WithPointOptions(opts ...fn.Option) Option {
	return func(s *Service) {
		s.pointOpts = append(s.pointOpts, opts...)
	}
}

// New creates a service with an empty root and a default Greeter instance.
func New(opts ...Option) *Service {
	s := &Service{
		name:      overload.NewSimple("name"),
		role:      overload.NewSimple("role"),
		client:    overload.NewSimple("client"),
		layers:    make(map[string]*collect.Context),
		instances: instance.New(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.collectOpts = []collect.Option{collect.WithLogger(s.logger)}
	s.root = collect.NewRoot(s.collectOpts...)
	s.instances.Store(&Greeter{})

	pointOpts := []fn.Option{
		fn.WithFallback(ordinary),
		fn.WithLogger(s.logger),
		fn.WithMetrics(s.fnMetrics),
	}
	s.point = fn.Declare[Request, string]("greet", s.lookups, append(pointOpts, s.pointOpts...)...)
	return s
}

func ordinary(_ context.Context, req Request) (string, error) {
	return "Ordinary, " + req.Name + ".", nil
}

func (s *Service) lookups(req Request) []overload.Lookup {
	return []overload.Lookup{
		overload.On(s.name, req.Name),
		overload.On(s.role, req.Role),
		overload.On(s.client, req.Client),
	}
}

// Point exposes the greet point, e.g. for registering code-defined greetings.
func (s *Service) Point() *fn.Point[Request, string] {
	return s.point
}

// Root is the context the global layer loads into.
func (s *Service) Root() *collect.Context {
	return s.root
}

// Load registers every catalog entry. The global layer goes into the root; the
// other layers into named contexts, created on first use. Loading the same
// layer again replaces entries registered under identical constraints.
func (s *Service) Load(c *Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, l := range c.Layers {
		target := s.layer(l.Name)
		remove := target.OnCollected(func(ctx *collect.Context) {
			s.logger.Info("catalog layer loaded",
				"layer", ctx.Name,
				"entries", len(l.Entries),
				"points", len(ctx.Points()),
			)
			s.metrics.SetCatalogEntries(ctx.Name, len(l.Entries))
		})

		for i, e := range l.Entries {
			if err := target.Collect(s.implementation(l.Name, i, e)); err != nil {
				remove()
				return fmt.Errorf("load layer %s: %w", l.Name, err)
			}
		}
		target.Finalize()
		remove()
	}
	return nil
}

func (s *Service) layer(name string) *collect.Context {
	if name == GlobalLayer {
		return s.root
	}
	c, ok := s.layers[name]
	if !ok {
		c = collect.New(name, s.collectOpts...)
		s.layers[name] = c
		s.order = append(s.order, name)
	}
	return c
}

// implementation binds e's template to the Greeter live for the call and
// registers it under every combination of e's names, roles and clients.
func (s *Service) implementation(layer string, index int, e Entry) *fn.Implementation[Request, string] {
	template := e.Template
	render := func(g *Greeter, ctx context.Context, req Request) (string, error) {
		return g.Render(ctx, template, req, func(ctx context.Context) (string, error) {
			return s.point.Invoke(ctx, req)
		})
	}

	impl := s.point.Implement(fmt.Sprintf("%s[%d]", layer, index), fn.Method(instance.Ambient, render))
	for _, name := range valuesOrAny(e.Names) {
		for _, role := range valuesOrAny(e.Roles) {
			for _, client := range valuesOrAny(e.Clients) {
				impl.On(fn.Using(s.name, name), fn.Using(s.role, role), fn.Using(s.client, client))
			}
		}
	}
	return impl
}

func valuesOrAny(values []string) []any {
	if len(values) == 0 {
		return []any{overload.Any}
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Bind prepares ctx for dispatch: it installs the service's root and instance
// context, then the named layers in front, most specific first. The global
// layer is always present and may be named without effect.
func (s *Service) Bind(ctx context.Context, names []string) (context.Context, error) {
	ctx = collect.WithRoot(ctx, s.root)
	ctx = instance.Scope(ctx, s.instances)

	layers := make([]*collect.Context, 0, len(names))
	for _, name := range names {
		if name == GlobalLayer {
			continue
		}
		c, ok := s.layers[name]
		if !ok {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("unknown layer %q", name))
		}
		layers = append(layers, c)
	}
	return collect.UnionScope(ctx, layers...), nil
}

// Loud shadows the bound Greeter with one that upper-cases its output, for ctx
// and its children only.
func (s *Service) Loud(ctx context.Context) context.Context {
	ctx, layer := instance.Inherit(ctx, s.instances)
	layer.Store(&Greeter{Loud: true})
	return ctx
}

// Greet dispatches req along ctx's lookup chain. ctx must come from Bind.
func (s *Service) Greet(ctx context.Context, req Request) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	return s.point.Invoke(ctx, req)
}

// LayerInfo describes one loaded layer.
type LayerInfo struct {
	Name   string              `json:"name"`
	Points []collect.PointInfo `json:"points"`
}

// Layers describes the global layer followed by the named layers in load order.
func (s *Service) Layers() []LayerInfo {
	out := []LayerInfo{{Name: GlobalLayer, Points: s.root.Describe()}}
	for _, name := range s.order {
		out = append(out, LayerInfo{Name: name, Points: s.layers[name].Describe()})
	}
	return out
}
