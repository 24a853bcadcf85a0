package fn

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"flywheel/pkg/collect"
	dErrors "flywheel/pkg/domain-errors"
	"flywheel/pkg/entity"
	"flywheel/pkg/overload"
	"flywheel/pkg/record"
)

// Selection is the candidate set one layer produced for a call, before it is
// collapsed to a single implementation.
type Selection[A, R any] struct {
	point   *Point[A, R]
	record  *record.Record
	layer   *collect.Context
	index   int
	lookups []overload.Lookup

	result    entity.Set
	ordered   []*entity.Entity
	sealed    bool
	completed bool
}

func newSelection[A, R any](p *Point[A, R], rec *record.Record, layer *collect.Context, index int) *Selection[A, R] {
	return &Selection[A, R]{point: p, record: rec, layer: layer, index: index}
}

// Harvest intersects the current candidates with the matches of l in this
// layer's record and returns those matches. A table the record never saw
// matches nothing.
func (s *Selection[A, R]) Harvest(l overload.Lookup) entity.Set {
	var got entity.Set
	if scope := s.record.Scope(l.Name); scope != nil {
		got = scope.Harvest(l.Value)
	} else {
		got = entity.NewSet()
	}
	s.lookups = append(s.lookups, l)
	s.Accept(got)
	return got
}

// Accept intersects the candidates with set. The first accepted set becomes the
// candidate set as is.
func (s *Selection[A, R]) Accept(set entity.Set) {
	s.ordered = nil
	if s.result == nil {
		s.result = set.Clone()
		return
	}
	s.result = s.result.Intersect(set)
}

// Seal marks the harvest sequence finished; only sealed selections can be read.
func (s *Selection[A, R]) Seal() {
	s.sealed = true
	if s.result == nil {
		s.result = entity.NewSet()
	}
}

// Complete seals the selection and tells the surrounding Candidates scan to stop.
func (s *Selection[A, R]) Complete() {
	s.Seal()
	s.completed = true
}

func (s *Selection[A, R]) Completed() bool {
	return s.completed
}

// Len is the number of candidates harvested so far.
func (s *Selection[A, R]) Len() int {
	return len(s.result)
}

// Layer is the collect context that produced this selection.
func (s *Selection[A, R]) Layer() *collect.Context {
	return s.layer
}

// Index is the position of Layer in the lookup chain.
func (s *Selection[A, R]) Index() int {
	return s.index
}

func (s *Selection[A, R]) Record() *record.Record {
	return s.record
}

// Entities returns the candidates, best first: most specific by the ranking
// axes, then most recently registered.
func (s *Selection[A, R]) Entities() ([]*entity.Entity, error) {
	if !s.sealed {
		return nil, dErrors.New(dErrors.CodeReadBeforeReady,
			fmt.Sprintf("selection of %q read before its harvest finished", s.point.id.Name))
	}
	if s.ordered == nil {
		s.ordered = s.order()
	}
	return s.ordered, nil
}

// First collapses the selection to its best candidate.
func (s *Selection[A, R]) First() (*entity.Entity, error) {
	ordered, err := s.Entities()
	if err != nil {
		return nil, err
	}
	if len(ordered) == 0 {
		return nil, dErrors.New(dErrors.CodeNoImplementation,
			fmt.Sprintf("selection of %q in layer %s is empty", s.point.id.Name, s.layer.Name))
	}
	if s.point.settings.strict && len(ordered) > 1 {
		best := s.rank(ordered[0])
		var tied []string
		for _, e := range ordered {
			if s.rank(e) != best {
				break
			}
			tied = append(tied, e.String())
		}
		if len(tied) > 1 {
			return nil, dErrors.Ambiguous(s.point.id.Name, tied)
		}
	}
	return ordered[0], nil
}

// Call invokes the best candidate with args.
func (s *Selection[A, R]) Call(ctx context.Context, args A) (R, error) {
	e, err := s.First()
	if err != nil {
		var zero R
		return zero, err
	}
	return s.invoke(ctx, e, args)
}

// CallAll invokes every candidate concurrently and returns their results in
// candidate order. The first error cancels the context handed to the others.
func (s *Selection[A, R]) CallAll(ctx context.Context, args A) ([]R, error) {
	ordered, err := s.Entities()
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	results := make([]R, len(ordered))
	for i, e := range ordered {
		g.Go(func() error {
			out, err := s.invoke(gctx, e, args)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// invoke runs e with this selection's layer installed as the point's cursor, for
// the duration of that call only.
func (s *Selection[A, R]) invoke(ctx context.Context, e *entity.Entity, args A) (R, error) {
	f, ok := e.Func.(Func[A, R])
	if !ok {
		var zero R
		return zero, dErrors.New(dErrors.CodeInternal,
			fmt.Sprintf("entity %s of %q has type %T", e, s.point.id.Name, e.Func))
	}
	return f(collect.WithCursor(ctx, s.point.id, s.index), args)
}

func (s *Selection[A, R]) order() []*entity.Entity {
	out := s.result.Slice()
	ranks := make(map[*entity.Entity]int, len(out))
	for _, e := range out {
		ranks[e] = s.rank(e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ranks[a] != ranks[b] {
			return ranks[a] < ranks[b]
		}
		sa, sb := s.record.Seq(a), s.record.Seq(b)
		if sa != sb {
			return sa > sb
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}

func (s *Selection[A, R]) rank(e *entity.Entity) int {
	total := 0
	for _, l := range s.lookups {
		ranker, ok := l.Overload.(overload.Ranker)
		if !ok {
			continue
		}
		if scope := s.record.Scope(l.Name); scope != nil {
			total += ranker.Rank(scope, l.Value, e)
		}
	}
	return total
}
