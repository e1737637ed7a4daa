// Package storage defines the backing-store contract used by the tool
// handlers and the turn persister, together with the shared record types,
// sentinel errors and caller-scope helpers.
//
// Adapters live in subpackages: memory (tests and local development),
// postgres (pgx/v5) and sqlite (modernc.org/sqlite). Every adapter scopes
// user-owned rows (journeys, shortlist entries, comparisons, history) to the
// caller found in the context, when there is one.
package storage
