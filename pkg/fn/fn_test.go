package fn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"

	"flywheel/pkg/collect"
	dErrors "flywheel/pkg/domain-errors"
	"flywheel/pkg/overload"
	"flywheel/pkg/testutil"
)

func constant(out string) Func[string, string] {
	return func(context.Context, string) (string, error) {
		return out, nil
	}
}

func ordinary(_ context.Context, name string) (string, error) {
	return "Ordinary, " + name + ".", nil
}

// =============================================================================
// Dispatch Test Suite
// =============================================================================

type DispatchSuite struct {
	suite.Suite
	ctx   context.Context
	root  *collect.Context
	name  *overload.Simple
	greet *Point[string, string]
}

func TestDispatchSuite(t *testing.T) {
	suite.Run(t, new(DispatchSuite))
}

func (s *DispatchSuite) SetupTest() {
	s.ctx, s.root = testutil.FreshContext()
	s.name = overload.NewSimple("name")
	s.greet = s.declare()
}

func (s *DispatchSuite) declare(opts ...Option) *Point[string, string] {
	opts = append([]Option{
		WithFallback(ordinary),
		WithTracer(noop.NewTracerProvider().Tracer("test")),
		WithLogger(testutil.DiscardLogger()),
	}, opts...)
	return Declare[string, string]("greet", s.byName, opts...)
}

func (s *DispatchSuite) byName(name string) []overload.Lookup {
	return []overload.Lookup{overload.On(s.name, name)}
}

func (s *DispatchSuite) invoke(ctx context.Context, p *Point[string, string], name string) string {
	out, err := p.Invoke(ctx, name)
	s.Require().NoError(err)
	return out
}

// =============================================================================
// Exact value dispatch
// =============================================================================

func (s *DispatchSuite) TestGreet() {
	impl := s.greet.Implement("stargaztor", constant("Stargaztor")).
		On(Using(s.name, "Teague")).
		On(Using(s.name, "Grey"))
	s.Require().NoError(collect.Global(s.ctx, impl))

	tests := []struct {
		name     string
		expected string
	}{
		{name: "Teague", expected: "Stargaztor"},
		{name: "Grey", expected: "Stargaztor"},
		{name: "Hizuki", expected: "Ordinary, Hizuki."},
		{name: "teague", expected: "Ordinary, teague."},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.expected, s.invoke(s.ctx, s.greet, tt.name))
		})
	}
}

func (s *DispatchSuite) TestNoImplementation() {
	p := Declare[string, string]("greet", s.byName)
	s.Require().NoError(collect.Global(s.ctx, p.Implement("stargaztor", constant("Stargaztor")).On(Using(s.name, "Teague"))))

	_, err := p.Invoke(s.ctx, "Hizuki")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNoImplementation))
	s.Contains(err.Error(), "greet")
	s.Contains(err.Error(), "Hizuki")
}

func (s *DispatchSuite) TestNothingRegistered() {
	p := Declare[string, string]("greet", s.byName)
	_, err := p.Invoke(s.ctx, "Teague")
	s.True(dErrors.HasCode(err, dErrors.CodeNoImplementation))
}

func (s *DispatchSuite) TestImplementationErrorsPassThrough() {
	boom := errors.New("boom")
	failing := func(context.Context, string) (string, error) { return "", boom }
	s.Require().NoError(collect.Global(s.ctx, s.greet.Implement("failing", failing).On(Using(s.name, "Teague"))))

	_, err := s.greet.Invoke(s.ctx, "Teague")
	s.Same(boom, err)
}

// =============================================================================
// Replacement
// =============================================================================

func (s *DispatchSuite) TestReplacementLeavesNoOrphans() {
	old := s.greet.Implement("old", constant("old")).On(Using(s.name, "Teague"))
	s.Require().NoError(collect.Global(s.ctx, old))
	s.Equal("old", s.invoke(s.ctx, s.greet, "Teague"))

	replacement := s.greet.Implement("new", constant("new")).On(Using(s.name, "Teague"))
	s.Require().NoError(collect.Global(s.ctx, replacement))
	s.Equal("new", s.invoke(s.ctx, s.greet, "Teague"))

	rec, ok := s.root.Record(s.greet.ID())
	s.Require().True(ok)
	s.False(rec.Holds(old.Entity()))
	s.Equal(1, rec.Len())

	sel, err := s.greet.Select(s.ctx, "Teague")
	s.Require().NoError(err)
	s.Equal(1, sel.Len())
}

// =============================================================================
// Layering
// =============================================================================

func (s *DispatchSuite) TestInnerLayerShadowsOuter() {
	s.Require().NoError(collect.Global(s.ctx, s.greet.Implement("outer", constant("outer")).
		On(Using(s.name, "Teague")).
		On(Using(s.name, "Grey"))))

	local := collect.New("local")
	s.Require().NoError(local.Collect(s.greet.Implement("inner", constant("inner")).On(Using(s.name, "Teague"))))
	scoped := collect.LookupScope(s.ctx, local)

	s.Equal("inner", s.invoke(scoped, s.greet, "Teague"))
	s.Equal("outer", s.invoke(s.ctx, s.greet, "Teague"), "scope must not leak into the parent context")

	s.Run("soft shadow falls through on empty match", func() {
		s.Equal("outer", s.invoke(scoped, s.greet, "Grey"))
	})

	s.Run("hard shadow stops at the first record", func() {
		hard := s.declare(WithShadow(ShadowHard))
		s.Require().NoError(collect.Global(s.ctx, hard.Implement("outer", constant("outer")).On(Using(s.name, "Grey"))))
		s.Require().NoError(local.Collect(hard.Implement("inner", constant("inner")).On(Using(s.name, "Teague"))))

		s.Equal("Ordinary, Grey.", s.invoke(scoped, hard, "Grey"))
		s.Equal("outer", s.invoke(s.ctx, hard, "Grey"))
	})
}

func (s *DispatchSuite) TestLayersWithoutRecordAreSkipped() {
	s.Require().NoError(collect.Global(s.ctx, s.greet.Implement("outer", constant("outer")).On(Using(s.name, "Teague"))))
	hard := s.declare(WithShadow(ShadowHard))
	s.Require().NoError(collect.Global(s.ctx, hard.Implement("outer", constant("outer")).On(Using(s.name, "Teague"))))

	scoped := collect.UnionScope(s.ctx, collect.New("a"), collect.New("b"))
	s.Equal("outer", s.invoke(scoped, s.greet, "Teague"))
	s.Equal("outer", s.invoke(scoped, hard, "Teague"))
}

func (s *DispatchSuite) TestUnionScopePriority() {
	first, second := collect.New("first"), collect.New("second")
	s.Require().NoError(first.Collect(s.greet.Implement("first", constant("first")).On(Using(s.name, "Teague"))))
	s.Require().NoError(second.Collect(s.greet.Implement("second", constant("second")).On(Using(s.name, "Teague"))))

	s.Equal("first", s.invoke(collect.UnionScope(s.ctx, first, second), s.greet, "Teague"))
	s.Equal("second", s.invoke(collect.UnionScope(s.ctx, second, first), s.greet, "Teague"))
}

// =============================================================================
// Re-entrant calls
// =============================================================================

func (s *DispatchSuite) TestSuperCallReachesOuterOnce() {
	baseCalls := 0
	base := func(_ context.Context, name string) (string, error) {
		baseCalls++
		return "base " + name, nil
	}
	s.Require().NoError(collect.Global(s.ctx, s.greet.Implement("base", base).On(Using(s.name, "Teague"))))

	overrideCalls := 0
	override := func(ctx context.Context, name string) (string, error) {
		overrideCalls++
		super, err := s.greet.Invoke(ctx, name)
		if err != nil {
			return "", err
		}
		return "override(" + super + ")", nil
	}
	local := collect.New("local")
	s.Require().NoError(local.Collect(s.greet.Implement("override", override).On(Using(s.name, "Teague"))))

	out := s.invoke(collect.LookupScope(s.ctx, local), s.greet, "Teague")
	s.Equal("override(base Teague)", out)
	s.Equal(1, baseCalls)
	s.Equal(1, overrideCalls)
}

func (s *DispatchSuite) TestSuperCallChain() {
	outer := collect.New("outer")
	inner := collect.New("inner")
	wrap := func(tag string) Func[string, string] {
		return func(ctx context.Context, name string) (string, error) {
			super, err := s.greet.Invoke(ctx, name)
			if err != nil {
				return "", err
			}
			return tag + "(" + super + ")", nil
		}
	}
	s.Require().NoError(inner.Collect(s.greet.Implement("inner", wrap("inner")).On(Using(s.name, "Teague"))))
	s.Require().NoError(outer.Collect(s.greet.Implement("outer", wrap("outer")).On(Using(s.name, "Teague"))))

	ctx := collect.UnionScope(s.ctx, inner, outer)
	s.Equal("inner(outer(Ordinary, Teague.))", s.invoke(ctx, s.greet, "Teague"))

	// The cursor belongs to the implementation's context only.
	s.Equal("inner(outer(Ordinary, Teague.))", s.invoke(ctx, s.greet, "Teague"))
}

func (s *DispatchSuite) TestSuperCallAfterPushingLayer() {
	outerCalls, innerCalls := 0, 0
	outer := func(_ context.Context, name string) (string, error) {
		outerCalls++
		return "outer " + name, nil
	}
	s.Require().NoError(collect.Global(s.ctx, s.greet.Implement("outer", outer).On(Using(s.name, "Teague"))))

	scratch := collect.New("scratch")
	s.Require().NoError(scratch.Collect(s.greet.Implement("scratch", constant("scratch")).On(Using(s.name, "Grey"))))

	inner := func(ctx context.Context, name string) (string, error) {
		innerCalls++
		if innerCalls > 1 {
			return "", errors.New("inner selected itself again")
		}
		super, err := s.greet.Invoke(collect.LookupScope(ctx, scratch), name)
		if err != nil {
			return "", err
		}
		return "inner(" + super + ")", nil
	}
	local := collect.New("local")
	s.Require().NoError(local.Collect(s.greet.Implement("inner", inner).On(Using(s.name, "Teague"))))

	out := s.invoke(collect.LookupScope(s.ctx, local), s.greet, "Teague")
	s.Equal("inner(outer Teague)", out)
	s.Equal(1, innerCalls)
	s.Equal(1, outerCalls)
}

func (s *DispatchSuite) TestFreshRestartsTheChain() {
	count := Declare[int, int]("count", nil)
	var countdown Func[int, int]
	countdown = func(ctx context.Context, n int) (int, error) {
		if n == 0 {
			return 0, nil
		}
		rest, err := count.Invoke(count.Fresh(ctx), n-1)
		return rest + 1, err
	}
	s.Require().NoError(collect.Global(s.ctx, count.Implement("countdown", countdown)))

	out, err := count.Invoke(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal(3, out)

	s.Run("without Fresh the recursion resumes behind the root", func() {
		stuck := Declare[int, int]("stuck", nil)
		s.Require().NoError(collect.Global(s.ctx, stuck.Implement("stuck", func(ctx context.Context, n int) (int, error) {
			return stuck.Invoke(ctx, n-1)
		})))
		_, err := stuck.Invoke(s.ctx, 2)
		s.True(dErrors.HasCode(err, dErrors.CodeNoImplementation))
	})
}

// =============================================================================
// Intersection and ranking
// =============================================================================

type request struct {
	Name string
	Role string
}

func TestIntersection(t *testing.T) {
	ctx, _ := testutil.FreshContext()
	name, role := overload.NewSimple("name"), overload.NewSimple("role")
	access := Declare[request, string]("access", func(r request) []overload.Lookup {
		return []overload.Lookup{overload.On(name, r.Name), overload.On(role, r.Role)}
	})
	respond := func(out string) Func[request, string] {
		return func(context.Context, request) (string, error) { return out, nil }
	}

	require.NoError(t, collect.Global(ctx, access.Implement("both", respond("both")).
		On(Using(name, "Teague"), Using(role, "admin"))))
	require.NoError(t, collect.Global(ctx, access.Implement("name only", respond("name only")).
		On(Using(name, "Teague"))))

	out, err := access.Invoke(ctx, request{Name: "Teague", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "both", out)

	_, err = access.Invoke(ctx, request{Name: "Teague", Role: "guest"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNoImplementation), "an implementation missing a constraint is not a candidate")

	t.Run("wildcard accepts any value but ranks after exact", func(t *testing.T) {
		require.NoError(t, collect.Global(ctx, access.Implement("any role", respond("any role")).
			On(Using(name, "Teague"), Using(role, overload.Any))))

		out, err := access.Invoke(ctx, request{Name: "Teague", Role: "guest"})
		require.NoError(t, err)
		assert.Equal(t, "any role", out)

		out, err = access.Invoke(ctx, request{Name: "Teague", Role: "admin"})
		require.NoError(t, err)
		assert.Equal(t, "both", out)
	})
}

func TestConstraintSetsAreIndependent(t *testing.T) {
	ctx, _ := testutil.FreshContext()
	name, role := overload.NewSimple("name"), overload.NewSimple("role")
	access := Declare[request, string]("access", func(r request) []overload.Lookup {
		return []overload.Lookup{overload.On(name, r.Name), overload.On(role, r.Role)}
	})
	impl := access.Implement("paired", func(context.Context, request) (string, error) { return "paired", nil }).
		On(Using(name, "Teague"), Using(role, "user")).
		On(Using(name, "Grey"), Using(role, "admin"))
	require.NoError(t, collect.Global(ctx, impl))
	require.Len(t, impl.Entities(), 2)
	assert.Same(t, impl.Entity(), impl.Entities()[0])

	tests := []struct {
		name    string
		req     request
		matches bool
	}{
		{"first set", request{Name: "Teague", Role: "user"}, true},
		{"second set", request{Name: "Grey", Role: "admin"}, true},
		{"name of second set with role of first", request{Name: "Grey", Role: "user"}, false},
		{"name of first set with role of second", request{Name: "Teague", Role: "admin"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := access.Invoke(ctx, tt.req)
			if !tt.matches {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeNoImplementation), "got %q, %v", out, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "paired", out)
		})
	}

	t.Run("collecting again keeps one registration per set", func(t *testing.T) {
		require.NoError(t, collect.Global(ctx, impl))
		rec, ok := collect.Root(ctx).Record(access.ID())
		require.True(t, ok)
		assert.Equal(t, 2, rec.Len())
	})
}

type label string

func (l label) String() string { return string(l) }

type tag struct{}

func (tag) String() string { return "tag" }

func TestTypeAxis(t *testing.T) {
	ctx, _ := testutil.FreshContext()
	typ := overload.NewType("x")
	f := Declare[any, any]("f", func(x any) []overload.Lookup {
		return []overload.Lookup{overload.On(typ, x)}
	})
	returning := func(out any) Func[any, any] {
		return func(context.Context, any) (any, error) { return out, nil }
	}

	require.NoError(t, collect.Global(ctx, f.Implement("int", returning(1)).On(Using(typ, overload.TypeOf[int]()))))
	require.NoError(t, collect.Global(ctx, f.Implement("string", returning("111")).On(Using(typ, overload.TypeOf[string]()))))

	out, err := f.Invoke(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, out)

	out, err = f.Invoke(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "111", out)

	_, err = f.Invoke(ctx, 1.5)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNoImplementation))

	t.Run("most derived type wins", func(t *testing.T) {
		require.NoError(t, collect.Global(ctx, f.Implement("label", returning("label")).On(Using(typ, overload.TypeOf[label]()))))
		require.NoError(t, collect.Global(ctx, f.Implement("stringer", returning("stringer")).On(Using(typ, overload.TypeOf[fmt.Stringer]()))))

		out, err := f.Invoke(ctx, label("x"))
		require.NoError(t, err)
		assert.Equal(t, "label", out)

		out, err = f.Invoke(ctx, tag{})
		require.NoError(t, err)
		assert.Equal(t, "stringer", out)
	})
}

// =============================================================================
// Ties
// =============================================================================

func (s *DispatchSuite) registerTie(p *Point[string, string]) {
	extra := overload.NewSimple("tag")
	s.Require().NoError(collect.Global(s.ctx, p.Implement("first", constant("first")).On(Using(s.name, "Teague"))))
	s.Require().NoError(collect.Global(s.ctx, p.Implement("second", constant("second")).
		On(Using(s.name, "Teague"), UsingNamed("tag", extra, "b"))))
}

func (s *DispatchSuite) TestMostRecentRegistrationWinsTies() {
	s.registerTie(s.greet)
	s.Equal("second", s.invoke(s.ctx, s.greet, "Teague"))
}

func (s *DispatchSuite) TestStrictAmbiguity() {
	strict := s.declare(WithStrictAmbiguity())
	s.registerTie(strict)

	_, err := strict.Invoke(s.ctx, "Teague")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAmbiguous))
	s.True(strings.Contains(err.Error(), "first") && strings.Contains(err.Error(), "second"))

	s.Run("a more specific candidate is not a tie", func() {
		p := s.declare(WithStrictAmbiguity())
		s.Require().NoError(collect.Global(s.ctx, p.Implement("exact", constant("exact")).On(Using(s.name, "Teague"))))
		s.Require().NoError(collect.Global(s.ctx, p.Implement("wildcard", constant("wildcard")).On(Using(s.name, overload.Any))))
		s.Equal("exact", s.invoke(s.ctx, p, "Teague"))
		s.Equal("wildcard", s.invoke(s.ctx, p, "Grey"))
	})
}

// =============================================================================
// Concurrency
// =============================================================================

func (s *DispatchSuite) TestIndependentCallChainsAreIsolated() {
	s.Require().NoError(collect.Global(s.ctx, s.greet.Implement("root", constant("root")).On(Using(s.name, overload.Any))))

	const workers = 16
	results := make(chan string, workers)
	for i := range workers {
		go func() {
			ctx := s.ctx
			want := "root"
			if i%2 == 0 {
				want = fmt.Sprintf("local %d", i)
				local := collect.New(want)
				if err := local.Collect(s.greet.Implement(want, constant(want)).On(Using(s.name, "Teague"))); err != nil {
					results <- err.Error()
					return
				}
				ctx = collect.LookupScope(ctx, local)
			}
			out, err := s.greet.Invoke(ctx, "Teague")
			if err != nil || out != want {
				results <- fmt.Sprintf("worker %d: got %q, %v", i, out, err)
				return
			}
			results <- ""
		}()
	}
	for range workers {
		s.Empty(<-results)
	}
}
