// Package openaicompat implements provider.Gateway for OpenAI-compatible
// Chat Completions backends (OpenAI, vLLM, LiteLLM, Ollama and friends).
// It handles request serialization, response parsing and error mapping.
package openaicompat
