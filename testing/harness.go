package pagingtest

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/blockberries/nodeapi/paging"
)

// Item is a minimal pageable item whose resume key is its position.
type Item struct {
	N uint64
}

// ResumeKey implements paging.HasKey.
func (i Item) ResumeKey() uint64 { return i.N }

// Sequence returns items 0..n-1.
func Sequence(n int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = Item{N: uint64(i)}
	}
	return out
}

// SequenceFrom iterates items from the first one whose key is at least
// *from, or from the start when from is nil.
func SequenceFrom(items []Item, from *uint64) paging.Iterator[Item] {
	if from == nil {
		return paging.FromSlice(items)
	}
	for i, it := range items {
		if it.N >= *from {
			return paging.FromSlice(items[i:])
		}
	}
	return paging.FromSlice[Item](nil)
}

// TrackingIterator wraps an iterator and records how it was used.
type TrackingIterator[T any] struct {
	paging.Iterator[T]

	NextCalls  atomic.Int64
	CloseCalls atomic.Int64
}

// Track wraps it in a TrackingIterator.
func Track[T any](it paging.Iterator[T]) *TrackingIterator[T] {
	return &TrackingIterator[T]{Iterator: it}
}

func (t *TrackingIterator[T]) Next() (T, bool, error) {
	t.NextCalls.Add(1)
	return t.Iterator.Next()
}

func (t *TrackingIterator[T]) Close() error {
	t.CloseCalls.Add(1)
	return t.Iterator.Close()
}

// SlowIterator advances a mock clock by Step before producing each
// item, simulating a data source that takes Step per item.
type SlowIterator[T any] struct {
	paging.Iterator[T]

	Clock *clock.Mock
	Step  time.Duration
}

func (s *SlowIterator[T]) Next() (T, bool, error) {
	s.Clock.Add(s.Step)
	return s.Iterator.Next()
}

// PageFunc fetches the page at token, or the first page when token is
// nil, and returns its items and the next token.
type PageFunc[T any] func(token *string) ([]T, *string, error)

// PageThroughAll follows continuation tokens from the first page to the
// last and returns every page. It fails the test if a page is empty
// while more pages follow, or if more than maxPages are produced.
func PageThroughAll[T any](t *testing.T, fetch PageFunc[T], maxPages int) [][]T {
	t.Helper()
	var (
		pages [][]T
		token *string
	)
	for {
		if len(pages) == maxPages {
			t.Fatalf("still paging after %d pages", maxPages)
		}
		items, next, err := fetch(token)
		if err != nil {
			t.Fatalf("page %d failed: %v", len(pages), err)
		}
		if next != nil && len(items) == 0 {
			t.Fatalf("page %d is empty but has a continuation", len(pages))
		}
		pages = append(pages, items)
		if next == nil {
			return pages
		}
		token = next
	}
}

// Flatten concatenates pages.
func Flatten[T any](pages [][]T) []T {
	var out []T
	for _, p := range pages {
		out = append(out, p...)
	}
	return out
}
