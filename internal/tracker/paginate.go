package tracker

import (
	"context"
	"fmt"
	"iter"
)

// PageFetcher returns up to pageSize items starting at startAt.
type PageFetcher[T any] func(ctx context.Context, startAt, pageSize int) ([]T, error)

// Paginate turns a page fetcher into a lazy sequence. Fetching stops when a
// page comes back shorter than pageSize. After maxPages full pages the
// sequence yields ErrPageLimit instead of fetching more, so a server that
// keeps returning full pages cannot loop forever.
func Paginate[T any](ctx context.Context, pageSize, maxPages int, fetch PageFetcher[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		if pageSize < 1 {
			yield(zero, fmt.Errorf("paginate: page size must be positive, got %d", pageSize))
			return
		}
		startAt := 0
		for page := 0; ; page++ {
			if maxPages > 0 && page >= maxPages {
				yield(zero, fmt.Errorf("%w: stopped after %d pages of %d", ErrPageLimit, maxPages, pageSize))
				return
			}
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}
			items, err := fetch(ctx, startAt, pageSize)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			if len(items) < pageSize {
				return
			}
			startAt += len(items)
		}
	}
}

// Collect drains a sequence. Items gathered before an error are returned
// alongside it.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
	return out, nil
}
