package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/tools"
)

type searchArgs struct {
	Procedure string `json:"procedure"`
	Country   string `json:"country"`
	Limit     *int   `json:"limit"`
}

func (s *set) limit(requested *int) int {
	if requested == nil {
		return s.search.DefaultLimit
	}
	return min(max(*requested, 1), s.search.MaxLimit)
}

func (s *set) searchFacilities(ctx context.Context, _ tools.Session, raw tools.Arguments) tools.Outcome {
	args, bad := decodeArgs[searchArgs](ctx, s, ToolSearchFacilities, raw)
	if bad != nil {
		return *bad
	}
	args.Procedure = strings.TrimSpace(args.Procedure)
	args.Country = strings.TrimSpace(args.Country)
	limit := s.limit(args.Limit)

	pool, err := s.store.SearchFacilities(ctx, storage.FacilityQuery{
		Country: args.Country,
		Limit:   s.search.PoolSize,
	})
	if err != nil {
		return s.storeFailure(ctx, ToolSearchFacilities, err,
			"Sorry, I couldn't search facilities just now. Please try again in a moment.")
	}
	if len(pool) == 0 {
		if args.Country != "" {
			return tools.SoftFailure(tools.Fragment(fmt.Sprintf(
				"I couldn't find any facilities in %s. Try a different location, or leave the country out and I'll search everywhere.", args.Country)))
		}
		return tools.SoftFailure(tools.Fragment("I couldn't find any facilities right now. Try a different procedure or location."))
	}

	results, exact := filterByProcedure(pool, args.Procedure)
	if len(results) > limit {
		results = results[:limit]
	}

	where := ""
	if args.Country != "" {
		where = " in " + args.Country
	}
	var text string
	if exact {
		text = fmt.Sprintf("I found %s%s%s. Tap a card for details, or ask me to shortlist one.",
			countFacilities(len(results)), forProcedure(args.Procedure), where)
	} else {
		text = fmt.Sprintf("I couldn't find an exact match for %s, so here's what's top-rated%s instead (%s).",
			args.Procedure, where, countFacilities(len(results)))
	}
	return tools.Succeeded(tools.Fragment(text), tools.FacilityList{Facilities: results})
}

// filterByProcedure keeps rows with a procedure containing the needle,
// ignoring case. When nothing matches it falls back to the whole pool and
// reports exact=false.
func filterByProcedure(pool []storage.Facility, procedure string) (results []storage.Facility, exact bool) {
	if procedure == "" {
		return pool, true
	}
	needle := strings.ToLower(procedure)
	for _, f := range pool {
		for _, p := range f.Procedures {
			if strings.Contains(strings.ToLower(p), needle) {
				results = append(results, f)
				break
			}
		}
	}
	if len(results) == 0 {
		return pool, false
	}
	return results, true
}

func countFacilities(n int) string {
	if n == 1 {
		return "1 facility"
	}
	return fmt.Sprintf("%d facilities", n)
}

func forProcedure(procedure string) string {
	if procedure == "" {
		return ""
	}
	return " for " + procedure
}
