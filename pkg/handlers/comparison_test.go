package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/tools"
)

func shortlistAll(t *testing.T, store *countingStore, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := store.Store.AddShortlistEntry(context.Background(), storage.ShortlistEntry{JourneyID: "j1", FacilityID: id, UserID: "u1"}); err != nil {
			t.Fatal(err)
		}
	}
}

func TestGenerateComparisonEmptyShortlist(t *testing.T) {
	store := newCountingStore(catalogue()...)
	table := New(Deps{Store: store})

	o := table[ToolGenerateComparison](context.Background(), signedIn, nil)
	if o.Kind != tools.KindSoftFailure {
		t.Errorf("Kind = %q, want soft failure", o.Kind)
	}
	if !strings.Contains(o.Text, "No facilities shortlisted") {
		t.Errorf("Text = %q", o.Text)
	}
	if o.Payload != nil {
		t.Error("empty comparison must not carry a payload")
	}
	if store.calls["GetFacilities"] != 0 || store.calls["SaveComparison"] != 0 {
		t.Error("empty shortlist should stop after the shortlist read")
	}
}

func TestGenerateComparison(t *testing.T) {
	store := newCountingStore(catalogue()...)
	shortlistAll(t, store, "tr-01", "th-01", "mx-03")
	sink := &recordingDiscarder{}
	table := New(Deps{Store: store, Discard: sink})

	o := table[ToolGenerateComparison](context.Background(), signedIn, tools.Arguments{})
	if o.Kind != tools.KindSuccess {
		t.Fatalf("Kind = %q (text %q)", o.Kind, o.Text)
	}
	set, ok := o.Payload.(tools.ComparisonSet)
	if !ok {
		t.Fatalf("Payload = %#v, want ComparisonSet", o.Payload)
	}
	if len(set.Facilities) != 3 || set.Facilities[0].ID != "tr-01" {
		t.Errorf("facilities = %+v, want shortlist order", set.Facilities)
	}
	if set.ComparisonID == "" {
		t.Error("expected a stored comparison id")
	}
	if store.calls["GetFacilities"] != 1 {
		t.Errorf("GetFacilities calls = %d, want 1", store.calls["GetFacilities"])
	}

	saved := store.Comparisons()
	if len(saved) != 1 {
		t.Fatalf("saved comparisons = %d, want 1", len(saved))
	}
	var snapshot []storage.Facility
	if err := json.Unmarshal(saved[0].Snapshot, &snapshot); err != nil || len(snapshot) != 3 {
		t.Errorf("snapshot = %s (%v)", saved[0].Snapshot, err)
	}
	if len(sink.kinds) != 0 {
		t.Errorf("unexpected discards: %v", sink.kinds)
	}
}

func TestGenerateComparisonSnapshotFailureIsDiscarded(t *testing.T) {
	store := newCountingStore(catalogue()...)
	shortlistAll(t, store, "th-01")
	store.fail["SaveComparison"] = errors.New("disk full")
	sink := &recordingDiscarder{}
	table := New(Deps{Store: store, Discard: sink})

	o := table[ToolGenerateComparison](context.Background(), signedIn, nil)
	if o.Kind != tools.KindSuccess {
		t.Fatalf("Kind = %q, want success despite snapshot failure", o.Kind)
	}
	if set, ok := o.Payload.(tools.ComparisonSet); !ok || len(set.Facilities) != 1 {
		t.Errorf("Payload = %#v", o.Payload)
	}
	if len(sink.kinds) != 1 || sink.kinds[0] != "comparison" {
		t.Errorf("discarded kinds = %v, want [comparison]", sink.kinds)
	}
}

func TestGenerateComparisonStoreFailures(t *testing.T) {
	for _, method := range []string{"ListShortlist", "GetFacilities"} {
		t.Run(method, func(t *testing.T) {
			store := newCountingStore(catalogue()...)
			shortlistAll(t, store, "th-01")
			store.fail[method] = errors.New("boom")
			table := New(Deps{Store: store})

			o := table[ToolGenerateComparison](context.Background(), signedIn, nil)
			if o.Kind != tools.KindStoreError {
				t.Errorf("Kind = %q, want store error", o.Kind)
			}
			if o.Payload != nil {
				t.Error("failed comparison must not carry a payload")
			}
		})
	}
}
