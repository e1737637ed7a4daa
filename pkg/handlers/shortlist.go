package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/tools"
)

type facilityNameArgs struct {
	FacilityName string `json:"facility_name"`
}

// resolveFacility looks a facility up by partial name. The second return
// is a ready outcome when the lookup did not produce a facility.
func (s *set) resolveFacility(ctx context.Context, tool, name string) (*storage.Facility, *tools.Outcome) {
	f, err := s.store.FindFacilityByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, storage.ErrNotFound) {
		o := tools.SoftFailure(tools.Fragment(fmt.Sprintf(
			"I couldn't find a facility called %q. Check the spelling, or ask me to search so you can pick one from the results.", name)))
		return nil, &o
	}
	if err != nil {
		o := s.storeFailure(ctx, tool, err, "Sorry, I couldn't look that facility up just now. Please try again in a moment.")
		return nil, &o
	}
	return f, nil
}

func (s *set) addToShortlist(ctx context.Context, sess tools.Session, raw tools.Arguments) tools.Outcome {
	args, bad := decodeArgs[facilityNameArgs](ctx, s, ToolAddToShortlist, raw)
	if bad != nil {
		return *bad
	}
	if o := requireJourney(sess, "add facilities to your shortlist"); o != nil {
		return *o
	}

	f, o := s.resolveFacility(ctx, ToolAddToShortlist, args.FacilityName)
	if o != nil {
		return *o
	}

	err := s.store.AddShortlistEntry(ctx, storage.ShortlistEntry{
		JourneyID:  sess.JourneyID,
		FacilityID: f.ID,
		UserID:     sess.UserID,
	})
	switch {
	case errors.Is(err, storage.ErrConflict):
		return tools.SoftFailure(tools.Fragment(fmt.Sprintf(
			"%s is already in your shortlist. Ask me to compare your shortlist whenever you're ready.", f.Name)))
	case errors.Is(err, storage.ErrNotFound):
		return tools.SoftFailure(tools.Fragment(
			"I couldn't find that journey on your account. Start a new one and I'll add the facility there."))
	case err != nil:
		return s.storeFailure(ctx, ToolAddToShortlist, err,
			"Sorry, I couldn't update your shortlist just now. Please try again in a moment.")
	}
	return tools.Succeeded(tools.Fragment(fmt.Sprintf("Added %s to your shortlist ⭐", f.Name)), nil)
}

func (s *set) removeFromShortlist(ctx context.Context, sess tools.Session, raw tools.Arguments) tools.Outcome {
	args, bad := decodeArgs[facilityNameArgs](ctx, s, ToolRemoveFromShortlist, raw)
	if bad != nil {
		return *bad
	}
	if o := requireJourney(sess, "manage your shortlist"); o != nil {
		return *o
	}

	f, o := s.resolveFacility(ctx, ToolRemoveFromShortlist, args.FacilityName)
	if o != nil {
		return *o
	}

	err := s.store.RemoveShortlistEntry(ctx, sess.JourneyID, f.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return tools.SoftFailure(tools.Fragment(fmt.Sprintf(
			"%s isn't on your shortlist, so there's nothing to remove. Want me to add it instead?", f.Name)))
	case err != nil:
		return s.storeFailure(ctx, ToolRemoveFromShortlist, err,
			"Sorry, I couldn't update your shortlist just now. Please try again in a moment.")
	}
	return tools.Succeeded(tools.Fragment(fmt.Sprintf("Removed %s from your shortlist.", f.Name)), nil)
}
