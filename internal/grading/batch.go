package grading

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/performance"
)

// BatchItem is the outcome for profiles[Index].
type BatchItem struct {
	Index  int
	Result Result
	Err    error
}

// Batch grades every profile with at most workers concurrent evaluations
// (GOMAXPROCS when workers <= 0). Per-profile failures are reported in
// their item; the returned error is non-nil only when ctx ends first.
// Items are in input order.
func Batch(ctx context.Context, g Grader, profiles []performance.Profile, workers int) ([]BatchItem, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	items := make([]BatchItem, len(profiles))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range profiles {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := g.Grade(ctx, profiles[i])
			items[i] = BatchItem{Index: i, Result: res, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return items, err
	}
	return items, nil
}

// Validated wraps g so every profile is checked with Profile.Validate first.
func Validated(g Grader) Grader { return validating{g} }

type validating struct{ Grader }

func (v validating) Grade(ctx context.Context, p performance.Profile) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	return v.Grader.Grade(ctx, p)
}
