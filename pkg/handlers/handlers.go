package handlers

import (
	"context"
	"log/slog"

	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/tools"
)

// Discarder is the log-and-drop sink for best-effort writes. Errors handed
// to it are recorded and never returned to the caller.
type Discarder interface {
	Discard(kind string, err error)
}

// SearchConfig tunes search_facilities.
type SearchConfig struct {
	// DefaultLimit applies when the engine omits limit (default 5).
	DefaultLimit int

	// MaxLimit caps limit (default 10).
	MaxLimit int

	// PoolSize is the number of top-rated rows fetched before the
	// procedure filter runs (default 50).
	PoolSize int
}

func (c *SearchConfig) defaults() {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 5
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = 10
	}
	if c.DefaultLimit > c.MaxLimit {
		c.DefaultLimit = c.MaxLimit
	}
	if c.PoolSize < c.MaxLimit {
		c.PoolSize = max(50, c.MaxLimit)
	}
}

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Store   storage.Store
	Search  SearchConfig
	Discard Discarder
	Logger  *slog.Logger
}

type set struct {
	store   storage.Store
	search  SearchConfig
	discard Discarder
	logger  *slog.Logger
}

// New returns the static name to handler table. Its key set matches
// Catalog exactly.
func New(deps Deps) map[string]tools.Handler {
	deps.Search.defaults()
	s := &set{
		store:   deps.Store,
		search:  deps.Search,
		discard: deps.Discard,
		logger:  deps.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.discard == nil {
		s.discard = logDiscarder{logger: s.logger}
	}

	return map[string]tools.Handler{
		ToolCreateJourney:       s.createJourney,
		ToolSearchFacilities:    s.searchFacilities,
		ToolAddToShortlist:      s.addToShortlist,
		ToolRemoveFromShortlist: s.removeFromShortlist,
		ToolGenerateComparison:  s.generateComparison,
		ToolFacilityDetails:     comingSoon[facilityNameArgs](s, ToolFacilityDetails, "Detailed facility profiles are coming soon. For now, ask me to search and I'll show the facility's rating, location and starting price."),
		ToolAddJourneyNote:      comingSoon[noteArgs](s, ToolAddJourneyNote, "Journey notes are coming soon. Until then, jot it down and I'll remind you to add it once notes are live."),
		ToolShareJourney:        comingSoon[emailArgs](s, ToolShareJourney, "Sharing journeys is coming soon. Meanwhile you can send a screenshot of your shortlist."),
		ToolInviteCollaborator:  comingSoon[inviteArgs](s, ToolInviteCollaborator, "Inviting collaborators is coming soon. For now, send them the facility names from your shortlist."),
		ToolContactFacility:     comingSoon[contactArgs](s, ToolContactFacility, "Messaging facilities from here is coming soon. In the meantime, use the website listed on the facility card to get in touch."),
		ToolExportJourneyPDF:    comingSoon[noArgs](s, ToolExportJourneyPDF, "PDF export is coming soon. Until then, the comparison view is the best way to review everything in one place."),
		ToolJourneySummary:      comingSoon[noArgs](s, ToolJourneySummary, "Journey summaries are coming soon. Ask me to compare your shortlist to see where things stand."),
	}
}

// storeFailure logs the detail of a failed store call and returns the
// generic apology for it.
func (s *set) storeFailure(ctx context.Context, tool string, err error, apology string) tools.Outcome {
	s.logger.ErrorContext(ctx, "tool store call failed", "tool", tool, "error", err)
	return tools.StoreFailure(tools.Fragment(apology))
}

// decodeArgs performs the typed parse every handler starts with.
func decodeArgs[T any](ctx context.Context, s *set, tool string, args tools.Arguments) (T, *tools.Outcome) {
	var v T
	if err := args.Decode(&v); err != nil {
		s.logger.WarnContext(ctx, "tool arguments could not be decoded", "tool", tool, "error", err)
		o := tools.Invalid(tools.Fragment("I couldn't read the details for that request. Could you say it another way?"))
		return v, &o
	}
	return v, nil
}

type logDiscarder struct {
	logger *slog.Logger
}

func (d logDiscarder) Discard(kind string, err error) {
	d.logger.Warn("best-effort write dropped", "kind", kind, "error", err)
}

func needLogin(action string) tools.Outcome {
	return tools.PreconditionUnmet(tools.Fragment("Please log in or create an account so I can " + action + "."))
}

func needJourney(action string) tools.Outcome {
	return tools.PreconditionUnmet(tools.Fragment("Let's start a journey first. Tell me the procedure you're considering and your timeline, and then I can " + action + "."))
}

// requireJourney checks the session preconditions shared by the journey
// mutating tools.
func requireJourney(sess tools.Session, action string) *tools.Outcome {
	if sess.UserID == "" {
		o := needLogin(action)
		return &o
	}
	if sess.JourneyID == "" {
		o := needJourney(action)
		return &o
	}
	return nil
}
