package paging

// Iterator is a pull-based cursor over an ordered sequence.
//
// Next returns the next item and true, or the zero value and false
// once the sequence is exhausted. A non-nil error ends iteration.
// Close releases any resources (such as a database transaction) held
// by the iterator and must be called by whoever opened it.
type Iterator[T any] interface {
	Next() (T, bool, error)
	Close() error
}

// HasKey is implemented by items that can name their own resume
// point. Restarting an iterator from an item's key must yield that
// item first, followed by the same items that would have followed it.
type HasKey[K any] interface {
	ResumeKey() K
}

// KeyMethod returns a key extractor calling ResumeKey on each item.
func KeyMethod[T HasKey[K], K any]() func(T) K {
	return func(item T) K { return item.ResumeKey() }
}

type sliceIterator[T any] struct {
	items []T
	pos   int
}

// FromSlice returns an Iterator over items. The slice is not copied.
func FromSlice[T any](items []T) Iterator[T] {
	return &sliceIterator[T]{items: items}
}

func (it *sliceIterator[T]) Next() (T, bool, error) {
	if it.pos >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	item := it.items[it.pos]
	it.pos++
	return item, true, nil
}

func (it *sliceIterator[T]) Close() error { return nil }
