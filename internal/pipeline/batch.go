package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ProcessBatch processes independent inputs concurrently, at most limit at
// a time (limit <= 0 means unbounded). out[i] belongs to inputs[i]. The
// first failure cancels the rest.
func (p *Processor) ProcessBatch(ctx context.Context, inputs []Input, limit int) ([][]Result, error) {
	out := make([][]Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, in := range inputs {
		g.Go(func() error {
			res, err := p.Process(gctx, in)
			if err != nil {
				return fmt.Errorf("%s: %w", in.Source, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
