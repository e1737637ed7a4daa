package auth

import (
	"context"
	"errors"
	"net/http"
)

// AuthDecision is an authenticator's vote on a request.
type AuthDecision int

const (
	// Yes: the credentials are valid. The chain stops.
	Yes AuthDecision = iota

	// No: credentials were presented and are invalid. The chain stops and
	// the request is rejected with 401.
	No

	// Abstain: no credentials this authenticator understands. The chain
	// moves on.
	Abstain
)

func (d AuthDecision) String() string {
	switch d {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Abstain:
		return "abstain"
	default:
		return "unknown"
	}
}

// AuthResult carries the outcome of an authentication attempt. Identity is
// nil for an anonymous Yes.
type AuthResult struct {
	Decision AuthDecision
	Identity *Identity
	Err      error
}

// Identity is a signed-in marketplace user.
type Identity struct {
	// Subject is the user ID. Journeys, shortlists and history are scoped
	// to it.
	Subject string

	// Token is the bearer token the identity came from.
	Token string

	// Role is the token's role claim, if any (e.g., "authenticated").
	Role string
}

// Authenticator inspects request credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) AuthResult
}

// ErrUnauthenticated means no authenticator accepted the request and
// anonymous access is off.
var ErrUnauthenticated = errors.New("authentication required")

// AuthChain asks each authenticator in turn. The chat endpoint serves
// guests too, so a chain normally allows anonymous requests and only
// rejects credentials that fail verification.
type AuthChain struct {
	Authenticators []Authenticator

	// AllowAnonymous lets a request through without an identity when
	// every authenticator abstains.
	AllowAnonymous bool
}

// Authenticate returns the first non-abstaining vote.
func (c *AuthChain) Authenticate(ctx context.Context, r *http.Request) AuthResult {
	for _, authn := range c.Authenticators {
		if result := authn.Authenticate(ctx, r); result.Decision != Abstain {
			return result
		}
	}
	if c.AllowAnonymous {
		return AuthResult{Decision: Yes}
	}
	return AuthResult{Decision: No, Err: ErrUnauthenticated}
}
