// Package anthropic implements provider.Gateway for the Anthropic Messages
// API. Response content blocks map one-to-one onto reply segments, so text
// interleaved with tool calls keeps its order.
package anthropic
