// Package provider defines the reasoning-engine gateway: one request
// carrying instructions, the tool catalogue, prior turns and the new
// utterance, answered by an ordered list of text and tool-call segments.
//
// Adapters live in subpackages (openaicompat, anthropic). Each adapter
// makes exactly one HTTP call per Converse and reports every failure as
// an *api.APIError.
package provider
