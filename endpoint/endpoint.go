// Package endpoint binds the paging engine to request parameters.
//
// An Endpoint resolves the requested page size against the configured
// limits, decodes the continuation token against the current filter,
// runs a pager over a caller-supplied data source, and re-encodes the
// continuation. Client mistakes come back as *nodeapi.RequestError
// naming the request field; data-source errors are returned unchanged.
package endpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/blockberries/nodeapi"
	"github.com/blockberries/nodeapi/paging"
	"github.com/blockberries/nodeapi/token"
	"github.com/blockberries/nodeapi/types"
)

// Request field names used in client errors.
const (
	FieldMaxPageSize       = "max_page_size"
	FieldContinuationToken = "continuation_token"
)

// ErrPageSizeOutOfRange is wrapped in the RequestError returned for a
// page size outside [1, MaxPageSize].
var ErrPageSizeOutOfRange = errors.New("page size out of range")

// Request carries the raw paging inputs of one call.
type Request struct {
	MaxPageSize       *int32
	ContinuationToken *string
}

// Page is one page as returned to clients.
type Page[T any] struct {
	// Items is never nil.
	Items []T
	// ContinuationToken is nil on the last page.
	ContinuationToken *string
}

// IteratorFactory opens an iterator positioned at from, or at the
// beginning when from is nil.
type IteratorFactory[T, K any] func(ctx context.Context, from *K) (paging.Iterator[T], error)

// BatchFactory returns up to limit items starting at from, or at the
// beginning when from is nil.
type BatchFactory[T, K any] func(ctx context.Context, from *K, limit int) ([]T, error)

// Option configures an Endpoint.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock sets the clock used for the iteration time budget.
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clock = clk }
}

// Endpoint pages one listing operation whose items are of type T and
// whose resume keys are of type K.
type Endpoint[T, K any] struct {
	scope  string
	limits Limits
	clock  clock.Clock
	codec  token.Codec[K]
}

// New creates an endpoint. The scope names the operation and is mixed
// into every filter hash so that its tokens are rejected elsewhere.
func New[T, K any](scope string, limits Limits, opts ...Option) *Endpoint[T, K] {
	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Endpoint[T, K]{
		scope:  scope,
		limits: limits,
		clock:  o.clock,
	}
}

// Scope returns the endpoint's scope name.
func (e *Endpoint[T, K]) Scope() string { return e.scope }

// Limits returns the endpoint's limits.
func (e *Endpoint[T, K]) Limits() Limits { return e.limits }

// ResolvePageSize returns the effective page size for a request.
func (e *Endpoint[T, K]) ResolvePageSize(requested *int32) (int, error) {
	if requested == nil {
		return e.limits.DefaultPageSize, nil
	}
	n := int(*requested)
	if n < 1 || n > e.limits.MaxPageSize {
		return 0, nodeapi.NewRequestError(FieldMaxPageSize,
			fmt.Errorf("%w: must be between 1 and %d, got %d", ErrPageSizeOutOfRange, e.limits.MaxPageSize, n))
	}
	return n, nil
}

// GetPage returns one page using the next-key pager. The page ends at
// the requested size or when the iteration time budget runs out,
// whichever comes first, but never before MinPageSizeDespiteDuration
// items.
func (e *Endpoint[T, K]) GetPage(
	ctx context.Context,
	req Request,
	filter any,
	open IteratorFactory[T, K],
	keyOf func(T) K,
) (Page[T], error) {
	size, hash, from, err := e.prepare(req, filter)
	if err != nil {
		return Page[T]{}, err
	}

	count, err := paging.MaxItemCount[T](size)
	if err != nil {
		return Page[T]{}, nodeapi.NewRequestError(FieldMaxPageSize, err)
	}
	policy := paging.UntilFirstDisallowed[T](
		count,
		paging.MaxDurationWithMinCount[T](e.limits.MaxIterationDuration, e.limits.MinPageSizeDespiteDuration, e.clock),
	)

	it, err := open(ctx, from)
	if err != nil {
		return Page[T]{}, err
	}
	page, err := paging.NextKeyPage(it, policy, keyOf)
	if cerr := it.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close iterator: %w", cerr)
	}
	if err != nil {
		return Page[T]{}, err
	}
	return e.finish(page, hash)
}

// GetPeekAheadPage returns one page of exactly the requested size
// (fewer on the last page) using the peek-ahead pager. The
// continuation is the native key of the first item not returned.
func (e *Endpoint[T, K]) GetPeekAheadPage(
	ctx context.Context,
	req Request,
	filter any,
	fetch BatchFactory[T, K],
	nativeKey func(T) K,
) (Page[T], error) {
	size, hash, from, err := e.prepare(req, filter)
	if err != nil {
		return Page[T]{}, err
	}
	page, err := paging.PeekAheadPage(func(limit int) ([]T, error) {
		return fetch(ctx, from, limit)
	}, size, nativeKey)
	if err != nil {
		return Page[T]{}, err
	}
	return e.finish(page, hash)
}

func (e *Endpoint[T, K]) prepare(req Request, filter any) (int, types.Hash, *K, error) {
	size, err := e.ResolvePageSize(req.MaxPageSize)
	if err != nil {
		return 0, types.Hash{}, nil, err
	}
	hash, err := token.FilterHash(e.scope, filter)
	if err != nil {
		return 0, types.Hash{}, nil, err
	}
	if req.ContinuationToken == nil {
		return size, hash, nil, nil
	}
	key, err := e.codec.Decode(*req.ContinuationToken, hash)
	if err != nil {
		return 0, types.Hash{}, nil, nodeapi.NewRequestError(FieldContinuationToken, err)
	}
	return size, hash, &key, nil
}

func (e *Endpoint[T, K]) finish(page paging.Page[T, K], hash types.Hash) (Page[T], error) {
	out := Page[T]{Items: page.Items}
	if out.Items == nil {
		out.Items = []T{}
	}
	if page.Continuation != nil {
		s, err := e.codec.Encode(*page.Continuation, hash)
		if err != nil {
			return Page[T]{}, err
		}
		out.ContinuationToken = &s
	}
	return out, nil
}
