// Package transport defines the protocol-agnostic boundary of the chat
// service: the ChatService contract, middleware around it, and the
// mapping of pipeline errors to the client-facing error body. The HTTP
// binding lives in transport/http.
package transport
