package storage

import (
	"context"
	"testing"
)

func TestWithCallerFrom(t *testing.T) {
	ctx := context.Background()

	if got := CallerFrom(ctx); got != "" {
		t.Errorf("CallerFrom(empty ctx) = %q, want %q", got, "")
	}

	ctx = WithCaller(ctx, "user-abc")
	if got := CallerFrom(ctx); got != "user-abc" {
		t.Errorf("CallerFrom = %q, want %q", got, "user-abc")
	}

	ctx = WithCaller(ctx, "user-xyz")
	if got := CallerFrom(ctx); got != "user-xyz" {
		t.Errorf("CallerFrom = %q, want %q", got, "user-xyz")
	}
}

func TestCallerFrom_NoCollision(t *testing.T) {
	ctx := context.WithValue(context.Background(), "caller", "wrong")
	if got := CallerFrom(ctx); got != "" {
		t.Errorf("CallerFrom should not match string key, got %q", got)
	}
}

func TestVisible(t *testing.T) {
	if !Visible(context.Background(), "someone") {
		t.Error("unscoped context should see every row")
	}
	ctx := WithCaller(context.Background(), "u1")
	if !Visible(ctx, "u1") {
		t.Error("caller should see own rows")
	}
	if Visible(ctx, "u2") {
		t.Error("caller should not see other users' rows")
	}
}
