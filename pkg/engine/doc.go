// Package engine implements the chat pipeline of concierge. The Engine
// type implements transport.ChatService: it assembles the conversation,
// makes exactly one reasoning-engine call through a provider.Gateway,
// dispatches the requested tool calls in emission order and records the
// turn as best-effort history.
//
// Only gateway failures and invalid requests leave the pipeline as
// errors. Everything a tool does, including failing, ends up as text in
// the reply.
package engine
