// Package paging implements policy-driven pagination over ordered
// iterators.
//
// A [Policy] decides, item by item, whether the next candidate still
// fits on the page being built. Pagers drive an [Iterator] (or a batch
// fetch) and produce a [Page] holding the accepted items and, when the
// sequence was truncated, the key to resume from.
//
// Policies are single-use: create one per page request and discard it
// afterwards. They are not safe for concurrent use.
package paging

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
)

// ErrInvalidItemCount is returned when a page size or item count
// below one is requested.
var ErrInvalidItemCount = errors.New("paging: item count must be at least 1")

// Policy decides whether a candidate item still fits on the current
// page.
//
// Implementations must satisfy two rules:
//  1. StillAllows returns true for the very first item it is shown.
//  2. Once StillAllows has returned false, every later call returns
//     false as well, whatever the item.
//
// pagingtest.RunPolicyComplianceSuite checks both rules.
type Policy[T any] interface {
	StillAllows(item T) bool
}

// PolicyFunc adapts a plain function to the Policy interface. The
// function is responsible for honoring the Policy rules.
type PolicyFunc[T any] func(item T) bool

// StillAllows calls f(item).
func (f PolicyFunc[T]) StillAllows(item T) bool { return f(item) }

// ItemCountPolicy allows a fixed number of items.
type ItemCountPolicy[T any] struct {
	remaining int
}

// MaxItemCount returns a policy allowing at most n items. It fails
// with ErrInvalidItemCount when n < 1, since a page of zero items
// cannot make progress.
func MaxItemCount[T any](n int) (*ItemCountPolicy[T], error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidItemCount, n)
	}
	return &ItemCountPolicy[T]{remaining: n}, nil
}

// StillAllows consumes one unit of the quota.
func (p *ItemCountPolicy[T]) StillAllows(T) bool {
	if p.remaining <= 0 {
		return false
	}
	p.remaining--
	return true
}

// Remaining returns how many more items the policy would allow.
func (p *ItemCountPolicy[T]) Remaining() int {
	return p.remaining
}

// DurationPolicy cuts a page off once a wall-clock budget is spent,
// but never before a minimum number of items has been allowed.
//
// The budget is checked between items only; a slow item fetch is not
// interrupted.
type DurationPolicy[T any] struct {
	clk      clock.Clock
	start    time.Time
	budget   time.Duration
	minCount int
	seen     int
	expired  bool
}

// MaxDuration returns a policy rejecting items once more than d has
// elapsed since its construction. The first item is always allowed.
//
// A nil clock means the real (monotonic) clock.
func MaxDuration[T any](d time.Duration, clk clock.Clock) *DurationPolicy[T] {
	return MaxDurationWithMinCount[T](d, 1, clk)
}

// MaxDurationWithMinCount is like MaxDuration but unconditionally
// allows the first minCount items. A minCount below one is raised to
// one.
func MaxDurationWithMinCount[T any](d time.Duration, minCount int, clk clock.Clock) *DurationPolicy[T] {
	if clk == nil {
		clk = clock.New()
	}
	if minCount < 1 {
		minCount = 1
	}
	return &DurationPolicy[T]{
		clk:      clk,
		start:    clk.Now(),
		budget:   d,
		minCount: minCount,
	}
}

// StillAllows reports whether the budget still has room, or the
// minimum count has not been reached yet.
func (p *DurationPolicy[T]) StillAllows(T) bool {
	if p.expired {
		return false
	}
	if p.seen < p.minCount {
		p.seen++
		return true
	}
	if p.clk.Since(p.start) > p.budget {
		p.expired = true
		return false
	}
	p.seen++
	return true
}

// Elapsed returns the time spent since the policy was created.
func (p *DurationPolicy[T]) Elapsed() time.Duration {
	return p.clk.Since(p.start)
}

type untilFirstDisallowed[T any] struct {
	a, b     Policy[T]
	rejected bool
}

// UntilFirstDisallowed combines two policies: an item is allowed only
// if both allow it. The first rejection is final.
//
// a is consulted before b, and b is not consulted for an item that a
// has already rejected.
func UntilFirstDisallowed[T any](a, b Policy[T]) Policy[T] {
	return &untilFirstDisallowed[T]{a: a, b: b}
}

func (p *untilFirstDisallowed[T]) StillAllows(item T) bool {
	if p.rejected {
		return false
	}
	if !p.a.StillAllows(item) || !p.b.StillAllows(item) {
		p.rejected = true
		return false
	}
	return true
}
