package spotify

import (
	"context"
	"fmt"

	"spotmigrate/internal/shared"
)

// FetchAll collapses a paginated endpoint into one flat, ordered item list.
//
// first produces the initial page; next produces the page at the absolute URL
// a previous page's Next cursor points to. Iteration stops when a page reports
// no further cursor. Item order within and across pages is preserved.
//
// When a page fetch terminally fails, FetchAll returns the items accumulated
// so far together with an error wrapping [shared.ErrPartialFetch], so a
// truncated result is never mistaken for a complete one. Both page producers
// are expected to already be retry-wrapped.
func FetchAll[T any](
	ctx context.Context,
	first func(context.Context) (*Page[T], error),
	next func(context.Context, string) (*Page[T], error),
) ([]T, error) {
	items := []T{}

	page, err := first(ctx)
	if err != nil {
		return items, fmt.Errorf("%w: initial page: %v", shared.ErrPartialFetch, err)
	}

	for page != nil {
		items = append(items, page.Items...)

		if page.Next == nil {
			break
		}

		url := *page.Next
		page, err = next(ctx, url)
		if err != nil {
			return items, fmt.Errorf("%w: page at %s: %v", shared.ErrPartialFetch, url, err)
		}
	}

	return items, nil
}
