// Package api defines the wire types of the concierge chat endpoint.
//
// The package covers the request and response bodies exchanged with the
// marketplace front end ([ChatRequest], [ChatResponse], [ErrorBody]) and the
// structured [APIError] used to carry transport-level failures from the
// engine and the reasoning-engine adapters up to the HTTP boundary.
//
// The package performs no I/O.
package api
