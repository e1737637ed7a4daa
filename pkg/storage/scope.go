package storage

import "context"

// callerKey is a private type for the caller context key, preventing
// collisions with other packages.
type callerKey struct{}

// WithCaller scopes the context to an authenticated caller. Store adapters
// restrict user-owned rows to this subject.
func WithCaller(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, callerKey{}, subject)
}

// CallerFrom extracts the caller subject from the context.
// Returns an empty string if the request is unscoped (no bearer token).
func CallerFrom(ctx context.Context) string {
	if v, ok := ctx.Value(callerKey{}).(string); ok {
		return v
	}
	return ""
}

// Visible reports whether a row owned by owner may be seen by the caller
// in ctx. Unscoped contexts see every row.
func Visible(ctx context.Context, owner string) bool {
	caller := CallerFrom(ctx)
	return caller == "" || caller == owner
}
