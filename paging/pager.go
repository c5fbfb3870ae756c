package paging

import (
	"fmt"
)

// Page is one bounded slice of an ordered sequence.
//
// Items are in iteration order. Continuation is nil on the last page;
// otherwise it identifies the first item of the next page.
type Page[T, C any] struct {
	Items        []T
	Continuation *C
}

// HasMore reports whether another page follows.
func (p Page[T, C]) HasMore() bool {
	return p.Continuation != nil
}

// NextKeyPage fills a page from it, asking policy about every item.
//
// At the first rejection the rejected item is left off the page, its
// key becomes the continuation, and the iterator is not advanced any
// further. If the iterator runs dry first, the page has no
// continuation.
//
// The first item is always placed on the page, even if the policy
// rejects it, so that pagination keeps progressing. Well-behaved
// policies never reject the first item.
//
// NextKeyPage does not close it.
func NextKeyPage[T, K any](it Iterator[T], policy Policy[T], keyOf func(T) K) (Page[T, K], error) {
	var page Page[T, K]
	for {
		item, ok, err := it.Next()
		if err != nil {
			return Page[T, K]{}, err
		}
		if !ok {
			return page, nil
		}
		if !policy.StillAllows(item) && len(page.Items) > 0 {
			key := keyOf(item)
			page.Continuation = &key
			return page, nil
		}
		page.Items = append(page.Items, item)
	}
}

// BatchFunc fetches up to limit items from the data layer, starting
// at whatever position the caller has bound into it.
type BatchFunc[T any] func(limit int) ([]T, error)

// PeekAheadPage builds a fixed-size page by fetching one item more
// than it needs.
//
// fetch is called once with pageSize+1. The first pageSize items form
// the page. If the extra item was produced, nativeKey derives the
// continuation from it, using the data layer's own resume key rather
// than a generic one.
func PeekAheadPage[T, K any](fetch BatchFunc[T], pageSize int, nativeKey func(T) K) (Page[T, K], error) {
	if pageSize < 1 {
		return Page[T, K]{}, fmt.Errorf("%w: got page size %d", ErrInvalidItemCount, pageSize)
	}
	items, err := fetch(pageSize + 1)
	if err != nil {
		return Page[T, K]{}, err
	}
	if len(items) > pageSize+1 {
		return Page[T, K]{}, fmt.Errorf("paging: batch fetch returned %d items, asked for at most %d", len(items), pageSize+1)
	}
	if len(items) <= pageSize {
		return Page[T, K]{Items: items}, nil
	}
	key := nativeKey(items[pageSize])
	return Page[T, K]{
		Items:        items[:pageSize:pageSize],
		Continuation: &key,
	}, nil
}
