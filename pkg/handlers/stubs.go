package handlers

import (
	"context"

	"github.com/careroute/concierge/pkg/tools"
)

type noteArgs struct {
	Note string `json:"note"`
}

type emailArgs struct {
	Email string `json:"email"`
}

type inviteArgs struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type contactArgs struct {
	FacilityName string `json:"facility_name"`
	Message      string `json:"message"`
}

// comingSoon answers an advertised tool that has no backend yet. The
// arguments are still parsed so a malformed call is reported as such.
func comingSoon[T any](s *set, tool, message string) tools.Handler {
	return func(ctx context.Context, _ tools.Session, raw tools.Arguments) tools.Outcome {
		if _, bad := decodeArgs[T](ctx, s, tool, raw); bad != nil {
			return *bad
		}
		return tools.NotImplemented(tools.Fragment(message))
	}
}
