package promoter

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mdraley/xsdtools/schema"
)

// loaded is the outcome of loading one discovered path.
type loaded struct {
	path string
	doc  *schema.Document
	err  error
}

// loadAll loads paths with at most workers documents in flight. The result
// keeps the order of paths. Per-file failures are recorded, not returned;
// only cancellation of ctx aborts the load.
func loadAll(ctx context.Context, store *schema.Store, paths []string, workers int) ([]loaded, error) {
	out := make([]loaded, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := store.Load(p)
			out[i] = loaded{path: p, doc: doc, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
