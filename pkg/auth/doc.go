// Package auth verifies the optional bearer token of chat requests.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). When every authenticator abstains
// the request proceeds anonymously: the marketplace lets guests chat, and
// tools that need an account say so in their reply.
//
// Auth is implemented as HTTP middleware. A verified identity scopes the
// request's store access to the token subject.
package auth
