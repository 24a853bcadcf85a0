package fn

import (
	"context"
	"fmt"
	"iter"

	"flywheel/pkg/collect"
	dErrors "flywheel/pkg/domain-errors"
)

// Candidates walks the lookup chain one layer at a time, yielding an empty
// selection for every layer that owns a record for the point. The caller
// harvests into it and calls Complete once satisfied, which ends the scan.
//
//	cands := greet.Candidates(ctx, false)
//	for sel := range cands.All() {
//	    if len(sel.Harvest(overload.On(name, who))) == 0 {
//	        continue
//	    }
//	    sel.Complete()
//	}
//	if sel := cands.Selected(); sel != nil {
//	    return sel.Call(ctx, who)
//	}
type Candidates[A, R any] struct {
	point          *Point[A, R]
	ctx            context.Context
	expectComplete bool

	selected *Selection[A, R]
	err      error
}

// All yields one selection per layer owning a record, most specific first.
func (c *Candidates[A, R]) All() iter.Seq[*Selection[A, R]] {
	return func(yield func(*Selection[A, R]) bool) {
		c.err = nil
		c.selected = nil
		var last *Selection[A, R]

		defer func() {
			if last != nil && last.completed {
				c.selected = last
				return
			}
			if c.expectComplete {
				c.err = dErrors.New(dErrors.CodeNoImplementation,
					fmt.Sprintf("no layer completed a selection of %q", c.point.id.Name))
			}
		}()

		for idx, layer := range collect.Layers(c.ctx, c.point.id) {
			if last != nil && last.completed {
				return
			}
			rec, ok := layer.Record(c.point.id)
			if !ok {
				continue
			}
			last = newSelection(c.point, rec, layer, idx)
			if !yield(last) {
				return
			}
		}
	}
}

// Selected is the completed selection of the last scan, or nil.
func (c *Candidates[A, R]) Selected() *Selection[A, R] {
	return c.selected
}

// Err reports a scan that ended without a completed selection while one was
// expected.
func (c *Candidates[A, R]) Err() error {
	return c.err
}
