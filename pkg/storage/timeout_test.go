package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

// blockingStore waits for the context on SearchFacilities. Other methods
// are inherited from the nil embedded Store and must not be called.
type blockingStore struct {
	Store
	sawDeadline bool
}

func (b *blockingStore) SearchFacilities(ctx context.Context, _ FacilityQuery) ([]Facility, error) {
	_, b.sawDeadline = ctx.Deadline()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingStore) Close() error { return nil }

func TestWithTimeout_BoundsEachCall(t *testing.T) {
	inner := &blockingStore{}
	s := WithTimeout(inner, 20*time.Millisecond)

	start := time.Now()
	_, err := s.SearchFacilities(context.Background(), FacilityQuery{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if !inner.sawDeadline {
		t.Error("expected inner store to receive a context with a deadline")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("call took %v, expected it to be bounded", elapsed)
	}
}

func TestWithTimeout_NonPositiveIsPassthrough(t *testing.T) {
	inner := &blockingStore{}
	if got := WithTimeout(inner, 0); got != Store(inner) {
		t.Error("expected WithTimeout(s, 0) to return s unchanged")
	}
}
