package queries

import (
	"context"
	"testing"
)

func TestGetCachesUntilInvalidated(t *testing.T) {
	c := NewCache()
	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	v, err := c.Get(context.Background(), "walletBalance:u@x", fetch)
	if err != nil || v.(int) != 1 {
		t.Fatalf("first get = %v, %v", v, err)
	}
	v, _ = c.Get(context.Background(), "walletBalance:u@x", fetch)
	if v.(int) != 1 {
		t.Fatalf("second get refetched: %v", v)
	}

	c.Invalidate("walletBalance:u@x")
	v, _ = c.Get(context.Background(), "walletBalance:u@x", fetch)
	if v.(int) != 2 {
		t.Fatalf("get after invalidate = %v, want fresh fetch", v)
	}
}

func TestInvalidateIsHierarchical(t *testing.T) {
	c := NewCache()
	fetch := func(context.Context) (any, error) { return "v", nil }

	_, _ = c.Get(context.Background(), "walletBalance", fetch)
	_, _ = c.Get(context.Background(), "walletBalance:u@x", fetch)
	_, _ = c.Get(context.Background(), "pendingDeposits", fetch)

	c.Invalidate("walletBalance")

	if !c.IsStale("walletBalance") {
		t.Fatal("exact key not stale")
	}
	if !c.IsStale("walletBalance:u@x") {
		t.Fatal("child key not stale")
	}
	if c.IsStale("pendingDeposits") {
		t.Fatal("unrelated key marked stale")
	}
}

func TestUnknownKeyCountsAsStale(t *testing.T) {
	c := NewCache()
	if !c.IsStale("never-fetched") {
		t.Fatal("unknown key must be stale")
	}
}
