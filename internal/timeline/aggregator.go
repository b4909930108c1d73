package timeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"mandate/pkg/requestcontext"
)

// Aggregator fans a scope out to every source and merges the results.
type Aggregator struct {
	sources []Source
	logger  *slog.Logger
}

func NewAggregator(logger *slog.Logger, sources ...Source) *Aggregator {
	return &Aggregator{sources: sources, logger: logger}
}

// Stream builds the merged, filtered, paged stream for a scope. Sources run
// concurrently; a failing source contributes nothing and is logged, keeping
// the stream available while a collaborator is down. Results are gathered
// per source and concatenated in registration order, so equal-recency items
// tie-break the same way on every request regardless of which source
// finishes first.
func (a *Aggregator) Stream(ctx context.Context, scope Scope, query Query) ([]Item, error) {
	results := make([][]Item, len(a.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, source := range a.sources {
		g.Go(func() error {
			fetched, err := source.Fetch(gctx, scope)
			if err != nil {
				a.logger.WarnContext(ctx, "timeline source failed",
					"source", source.Name(),
					"error", err.Error(),
					"request_id", requestcontext.RequestID(ctx),
				)
				return nil
			}
			results[i] = fetched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var items []Item
	for _, fetched := range results {
		items = append(items, fetched...)
	}
	items = merge(items)
	items = filterByCategory(items, query.Category)
	return page(items, query.Offset, query.Limit), nil
}
