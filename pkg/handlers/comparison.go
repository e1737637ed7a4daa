package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/tools"
)

type noArgs struct{}

func (s *set) generateComparison(ctx context.Context, sess tools.Session, raw tools.Arguments) tools.Outcome {
	if _, bad := decodeArgs[noArgs](ctx, s, ToolGenerateComparison, raw); bad != nil {
		return *bad
	}
	if o := requireJourney(sess, "compare facilities"); o != nil {
		return *o
	}

	entries, err := s.store.ListShortlist(ctx, sess.JourneyID)
	if err != nil {
		return s.storeFailure(ctx, ToolGenerateComparison, err,
			"Sorry, I couldn't load your shortlist just now. Please try again in a moment.")
	}
	if len(entries) == 0 {
		return tools.SoftFailure(tools.Fragment(
			"No facilities shortlisted yet. Add a few from your search results and I'll compare them side by side."))
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.FacilityID
	}
	facilities, err := s.store.GetFacilities(ctx, ids)
	if err != nil {
		return s.storeFailure(ctx, ToolGenerateComparison, err,
			"Sorry, I couldn't load your shortlisted facilities just now. Please try again in a moment.")
	}
	if len(facilities) == 0 {
		return tools.SoftFailure(tools.Fragment(
			"The facilities on your shortlist are no longer listed. Search again and shortlist a few current ones."))
	}

	comparison := s.snapshot(ctx, sess, ids, facilities)

	return tools.Succeeded(
		tools.Fragment(fmt.Sprintf("Here's a side-by-side comparison of your %s.", shortlisted(len(facilities)))),
		tools.ComparisonSet{ComparisonID: comparison.ID, Facilities: facilities},
	)
}

// snapshot records the comparison. Failures go to the discard sink; the
// returned comparison has an empty ID when nothing was stored.
func (s *set) snapshot(ctx context.Context, sess tools.Session, ids []string, facilities []storage.Facility) storage.Comparison {
	c := storage.Comparison{
		JourneyID:   sess.JourneyID,
		UserID:      sess.UserID,
		FacilityIDs: ids,
	}
	data, err := json.Marshal(facilities)
	if err != nil {
		s.discard.Discard("comparison", fmt.Errorf("encoding snapshot: %w", err))
		return storage.Comparison{}
	}
	c.Snapshot = data
	if err := s.store.SaveComparison(ctx, &c); err != nil {
		s.discard.Discard("comparison", err)
		return storage.Comparison{}
	}
	return c
}

func shortlisted(n int) string {
	if n == 1 {
		return "1 shortlisted facility"
	}
	return fmt.Sprintf("%d shortlisted facilities", n)
}
