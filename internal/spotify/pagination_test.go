package spotify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"spotmigrate/internal/shared"
)

// fakePages builds page producers serving items split into chunks of size per page.
func fakePages(items []string, per int) (func(context.Context) (*Page[string], error), func(context.Context, string) (*Page[string], error)) {
	pageAt := func(offset int) *Page[string] {
		end := offset + per
		if end > len(items) {
			end = len(items)
		}
		page := &Page[string]{
			Items:  items[offset:end],
			Total:  len(items),
			Limit:  per,
			Offset: offset,
		}
		if end < len(items) {
			next := fmt.Sprintf("https://api.example.com/page?offset=%d", end)
			page.Next = &next
		}
		return page
	}

	first := func(context.Context) (*Page[string], error) {
		return pageAt(0), nil
	}
	next := func(_ context.Context, url string) (*Page[string], error) {
		var offset int
		fmt.Sscanf(url, "https://api.example.com/page?offset=%d", &offset)
		return pageAt(offset), nil
	}
	return first, next
}

func TestFetchAll(t *testing.T) {
	ctx := context.Background()

	t.Run("Single Page", func(t *testing.T) {
		first, next := fakePages([]string{"a", "b", "c"}, 50)

		items, err := FetchAll(ctx, first, next)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 3 {
			t.Errorf("expected 3 items, got %d", len(items))
		}
	})

	t.Run("Multiple Pages Preserve Order", func(t *testing.T) {
		all := make([]string, 125)
		for i := range all {
			all[i] = fmt.Sprintf("item-%03d", i)
		}
		first, next := fakePages(all, 50)

		items, err := FetchAll(ctx, first, next)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 125 {
			t.Fatalf("expected 125 items, got %d", len(items))
		}
		for i, item := range items {
			if item != all[i] {
				t.Fatalf("order broken at %d: got %s, want %s", i, item, all[i])
			}
		}
	})

	t.Run("Empty Collection", func(t *testing.T) {
		first, next := fakePages(nil, 50)

		items, err := FetchAll(ctx, first, next)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if items == nil {
			t.Error("expected empty slice, got nil")
		}
		if len(items) != 0 {
			t.Errorf("expected 0 items, got %d", len(items))
		}
	})

	t.Run("Initial Page Fails", func(t *testing.T) {
		first := func(context.Context) (*Page[string], error) {
			return nil, errors.New("boom")
		}
		next := func(context.Context, string) (*Page[string], error) {
			t.Fatal("next should not be called")
			return nil, nil
		}

		items, err := FetchAll(ctx, first, next)
		if !errors.Is(err, shared.ErrPartialFetch) {
			t.Errorf("expected ErrPartialFetch, got %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected no items, got %d", len(items))
		}
	})

	t.Run("Later Page Fails Keeps Accumulated Items", func(t *testing.T) {
		cursor := "https://api.example.com/page?offset=2"
		first := func(context.Context) (*Page[string], error) {
			return &Page[string]{Items: []string{"a", "b"}, Next: &cursor}, nil
		}
		next := func(context.Context, string) (*Page[string], error) {
			return nil, errors.New("boom")
		}

		items, err := FetchAll(ctx, first, next)
		if !errors.Is(err, shared.ErrPartialFetch) {
			t.Errorf("expected ErrPartialFetch, got %v", err)
		}
		if len(items) != 2 {
			t.Errorf("expected the 2 items fetched before the failure, got %d", len(items))
		}
	})
}
