package fn

import (
	"context"
	"errors"
	"sync/atomic"

	"flywheel/pkg/collect"
	dErrors "flywheel/pkg/domain-errors"
	"flywheel/pkg/overload"
)

// =============================================================================
// Selection
// =============================================================================

func (s *DispatchSuite) TestSelectOrdersBySpecificityThenRecency() {
	exact := s.greet.Implement("exact", constant("exact")).On(Using(s.name, "Teague"))
	wildcard := s.greet.Implement("wildcard", constant("wildcard")).On(Using(s.name, overload.Any))
	s.Require().NoError(collect.Global(s.ctx, exact))
	s.Require().NoError(collect.Global(s.ctx, wildcard))

	sel, err := s.greet.Select(s.ctx, "Teague")
	s.Require().NoError(err)
	s.Same(s.root, sel.Layer())
	s.Equal(0, sel.Index())

	ordered, err := sel.Entities()
	s.Require().NoError(err)
	s.Require().Len(ordered, 2)
	s.Same(exact.Entity(), ordered[0])
	s.Same(wildcard.Entity(), ordered[1])

	first, err := sel.First()
	s.Require().NoError(err)
	s.Same(exact.Entity(), first)
}

func (s *DispatchSuite) TestSelectionReadBeforeReady() {
	s.Require().NoError(collect.Global(s.ctx, s.greet.Implement("exact", constant("exact")).On(Using(s.name, "Teague"))))
	rec, ok := s.root.Record(s.greet.ID())
	s.Require().True(ok)

	sel := newSelection(s.greet, rec, s.root, 0)
	sel.Harvest(overload.On(s.name, "Teague"))

	_, err := sel.Entities()
	s.True(dErrors.HasCode(err, dErrors.CodeReadBeforeReady))
	_, err = sel.First()
	s.True(dErrors.HasCode(err, dErrors.CodeReadBeforeReady))
	_, err = sel.Call(s.ctx, "Teague")
	s.True(dErrors.HasCode(err, dErrors.CodeReadBeforeReady))

	sel.Seal()
	out, err := sel.Call(s.ctx, "Teague")
	s.Require().NoError(err)
	s.Equal("exact", out)
}

func (s *DispatchSuite) TestSelectionUnknownTableMatchesNothing() {
	s.Require().NoError(collect.Global(s.ctx, s.greet.Implement("exact", constant("exact")).On(Using(s.name, "Teague"))))
	rec, _ := s.root.Record(s.greet.ID())

	sel := newSelection(s.greet, rec, s.root, 0)
	s.Len(sel.Harvest(overload.On(s.name, "Teague")), 1)
	s.Empty(sel.Harvest(overload.On(overload.NewSimple("role"), "admin")))
	sel.Seal()
	s.Equal(0, sel.Len())

	_, err := sel.First()
	s.True(dErrors.HasCode(err, dErrors.CodeNoImplementation))
}

func (s *DispatchSuite) TestCallAll() {
	s.Require().NoError(collect.Global(s.ctx, s.greet.Implement("exact", constant("exact")).On(Using(s.name, "Teague"))))
	s.Require().NoError(collect.Global(s.ctx, s.greet.Implement("wildcard", constant("wildcard")).On(Using(s.name, overload.Any))))

	sel, err := s.greet.Select(s.ctx, "Teague")
	s.Require().NoError(err)

	out, err := sel.CallAll(s.ctx, "Teague")
	s.Require().NoError(err)
	s.Equal([]string{"exact", "wildcard"}, out)

	s.Run("first error wins", func() {
		boom := errors.New("boom")
		var calls atomic.Int32
		p := s.declare()
		s.Require().NoError(collect.Global(s.ctx, p.Implement("failing", func(context.Context, string) (string, error) {
			calls.Add(1)
			return "", boom
		}).On(Using(s.name, "Grey"))))
		s.Require().NoError(collect.Global(s.ctx, p.Implement("fine", func(context.Context, string) (string, error) {
			calls.Add(1)
			return "fine", nil
		}).On(Using(s.name, overload.Any))))

		sel, err := p.Select(s.ctx, "Grey")
		s.Require().NoError(err)
		_, err = sel.CallAll(s.ctx, "Grey")
		s.ErrorIs(err, boom)
		s.EqualValues(2, calls.Load())
	})
}

// =============================================================================
// Candidates
// =============================================================================

func (s *DispatchSuite) candidatesSetup() (context.Context, *collect.Context) {
	local := collect.New("local")
	s.Require().NoError(local.Collect(s.greet.Implement("local", constant("local")).On(Using(s.name, "Teague"))))
	s.Require().NoError(collect.Global(s.ctx, s.greet.Implement("root", constant("root")).On(Using(s.name, "Grey"))))
	return collect.LookupScope(s.ctx, local), local
}

func (s *DispatchSuite) TestCandidatesStopAtCompletedSelection() {
	ctx, local := s.candidatesSetup()

	cands := s.greet.Candidates(ctx, true)
	var visited []string
	for sel := range cands.All() {
		visited = append(visited, sel.Layer().Name)
		if len(sel.Harvest(overload.On(s.name, "Teague"))) > 0 {
			sel.Complete()
		}
	}
	s.NoError(cands.Err())
	s.Equal([]string{"local"}, visited)
	s.Require().NotNil(cands.Selected())
	s.Same(local, cands.Selected().Layer())

	out, err := cands.Selected().Call(ctx, "Teague")
	s.Require().NoError(err)
	s.Equal("local", out)
}

func (s *DispatchSuite) TestCandidatesContinueToOuterLayers() {
	ctx, _ := s.candidatesSetup()

	cands := s.greet.Candidates(ctx, true)
	var visited []string
	for sel := range cands.All() {
		visited = append(visited, sel.Layer().Name)
		if len(sel.Harvest(overload.On(s.name, "Grey"))) > 0 {
			sel.Complete()
		}
	}
	s.NoError(cands.Err())
	s.Equal([]string{"local", "root"}, visited)
	s.Same(s.root, cands.Selected().Layer())
}

func (s *DispatchSuite) TestCandidatesExpectComplete() {
	ctx, _ := s.candidatesSetup()

	cands := s.greet.Candidates(ctx, true)
	for sel := range cands.All() {
		sel.Harvest(overload.On(s.name, "Hizuki"))
	}
	s.Nil(cands.Selected())
	s.True(dErrors.HasCode(cands.Err(), dErrors.CodeNoImplementation))

	lenient := s.greet.Candidates(ctx, false)
	for sel := range lenient.All() {
		sel.Harvest(overload.On(s.name, "Hizuki"))
	}
	s.NoError(lenient.Err())
	s.Nil(lenient.Selected())
}

func (s *DispatchSuite) TestCandidatesResumeBehindCursor() {
	ctx, local := s.candidatesSetup()

	var visited []string
	for sel := range s.greet.Candidates(collect.WithCursor(ctx, s.greet.ID(), 0), false).All() {
		visited = append(visited, sel.Layer().Name)
	}
	s.Equal([]string{"root"}, visited)
	s.NotEqual(local.Name, visited[0])
}
