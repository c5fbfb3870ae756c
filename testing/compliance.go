package pagingtest

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/blockberries/nodeapi/paging"
)

// PolicyFactory returns a fresh policy bound to clk.
type PolicyFactory func(clk *clock.Mock) paging.Policy[Item]

// RunPolicyComplianceSuite checks the contract every paging policy
// must honour: the first item is always allowed, a rejection is final,
// and pages built with the policy are prefixes of the sequence.
func RunPolicyComplianceSuite(t *testing.T, factory PolicyFactory) {
	t.Helper()

	t.Run("first_item_allowed", func(t *testing.T) {
		clk := clock.NewMock()
		p := factory(clk)
		clk.Add(time.Hour)
		if !p.StillAllows(Item{N: 0}) {
			t.Fatal("policy rejected the first item")
		}
	})

	t.Run("rejection_is_final", func(t *testing.T) {
		clk := clock.NewMock()
		p := factory(clk)
		rejected := -1
		for i := range 1000 {
			clk.Add(time.Millisecond)
			allowed := p.StillAllows(Item{N: uint64(i)})
			if rejected >= 0 && allowed {
				t.Fatalf("item %d allowed after item %d was rejected", i, rejected)
			}
			if !allowed && rejected < 0 {
				rejected = i
			}
		}
	})

	t.Run("page_is_prefix", func(t *testing.T) {
		clk := clock.NewMock()
		items := Sequence(500)
		it := &SlowIterator[Item]{Iterator: paging.FromSlice(items), Clock: clk, Step: time.Millisecond}
		page, err := paging.NextKeyPage(it, factory(clk), paging.KeyMethod[Item, uint64]())
		if err != nil {
			t.Fatalf("NextKeyPage failed: %v", err)
		}
		if len(page.Items) == 0 {
			t.Fatal("empty page")
		}
		for i, item := range page.Items {
			if item != items[i] {
				t.Fatalf("item %d: got %d, want %d", i, item.N, items[i].N)
			}
		}
		if page.HasMore() && *page.Continuation != items[len(page.Items)].N {
			t.Fatalf("continuation %d does not point at the first item left off (%d)",
				*page.Continuation, items[len(page.Items)].N)
		}
	})

	t.Run("resumption_is_idempotent", func(t *testing.T) {
		items := Sequence(300)
		from := uint64(17)
		build := func() paging.Page[Item, uint64] {
			clk := clock.NewMock()
			it := &SlowIterator[Item]{Iterator: SequenceFrom(items, &from), Clock: clk, Step: time.Millisecond}
			page, err := paging.NextKeyPage(it, factory(clk), paging.KeyMethod[Item, uint64]())
			if err != nil {
				t.Fatalf("NextKeyPage failed: %v", err)
			}
			return page
		}
		a, b := build(), build()
		if len(a.Items) != len(b.Items) || a.HasMore() != b.HasMore() {
			t.Fatalf("pages differ: %d items (more=%v) vs %d items (more=%v)",
				len(a.Items), a.HasMore(), len(b.Items), b.HasMore())
		}
		if len(a.Items) > 0 && a.Items[0].N != from {
			t.Fatalf("resumed page starts at %d, want %d", a.Items[0].N, from)
		}
	})
}
