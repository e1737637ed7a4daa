package handlers

import (
	"context"
	"fmt"

	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/tools"
)

type createJourneyArgs struct {
	Procedure        string   `json:"procedure"`
	Timeline         string   `json:"timeline"`
	BudgetMin        *float64 `json:"budgetMin"`
	BudgetMax        *float64 `json:"budgetMax"`
	BudgetPreference *string  `json:"budgetPreference"`
}

// budgetValid rejects negative bounds and an inverted range. Either bound
// may be absent.
func (a createJourneyArgs) budgetValid() bool {
	if a.BudgetMin != nil && *a.BudgetMin < 0 {
		return false
	}
	if a.BudgetMax != nil && *a.BudgetMax < 0 {
		return false
	}
	if a.BudgetMin != nil && a.BudgetMax != nil && *a.BudgetMin > *a.BudgetMax {
		return false
	}
	return true
}

func (s *set) createJourney(ctx context.Context, sess tools.Session, raw tools.Arguments) tools.Outcome {
	args, bad := decodeArgs[createJourneyArgs](ctx, s, ToolCreateJourney, raw)
	if bad != nil {
		return *bad
	}
	if sess.UserID == "" {
		return needLogin("save your " + args.Procedure + " journey")
	}
	if !args.budgetValid() {
		return tools.Invalid(tools.Fragment("That budget range doesn't look right. Could you give me a minimum and maximum that are zero or more, with the minimum no higher than the maximum?"))
	}

	j := &storage.Journey{
		UserID:           sess.UserID,
		Procedure:        args.Procedure,
		Timeline:         args.Timeline,
		BudgetMin:        args.BudgetMin,
		BudgetMax:        args.BudgetMax,
		BudgetPreference: args.BudgetPreference,
		Status:           storage.JourneyStatusResearching,
	}
	if err := s.store.CreateJourney(ctx, j); err != nil {
		return s.storeFailure(ctx, ToolCreateJourney, err,
			"Sorry, I couldn't save your journey just now. Please try again in a moment.")
	}

	s.logger.InfoContext(ctx, "journey created", "journey_id", j.ID, "procedure", j.Procedure)
	return tools.Succeeded(
		tools.Fragment(fmt.Sprintf("Your %s journey is set up ✅ I'll keep your shortlist and comparisons together here.", args.Procedure)),
		tools.JourneyRef{JourneyID: j.ID},
	)
}
