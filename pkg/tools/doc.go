// Package tools defines the tool catalogue advertised to the reasoning
// engine and the validator that checks engine-supplied arguments before a
// handler runs.
//
// A Definition is immutable once registered. The Registry keeps
// definitions in registration order, which is also the order in which
// they are serialized for the engine. Validation failures are values
// (*ValidationError), never panics, and render into a non-fatal Outcome
// so a malformed tool call degrades into a correction sentence in the
// assistant's reply.
package tools
