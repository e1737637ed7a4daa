// Command mock-backend runs a deterministic Chat Completions server for
// local concierge development. It answers with predictable tool calls
// chosen by keywords in the latest user message, so the full dispatch
// path can be exercised without a real model.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	r := chi.NewRouter()
	r.Post("/v1/chat/completions", handleChatCompletions)
	r.Get("/v1/models", handleModels)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// --- Request types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []any         `json:"tools,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// --- Response types ---

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	Message      chatMsg `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatMsg struct {
	Role      string     `json:"role"`
	Content   *string    `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

type toolCall struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Function funcCall `json:"function"`
}

type funcCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Handler ---

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"message":"invalid request","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	resp := respond(&req)
	resp.Model = req.Model
	if resp.Model == "" {
		resp.Model = "mock-model"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// respond picks a reply from keywords in the latest user message. Without
// tools in the request only text is returned.
func respond(req *chatRequest) chatResponse {
	msg := strings.ToLower(lastUserMessage(req))
	if len(req.Tools) == 0 {
		return makeResponse("Hello! Tell me which procedure you are considering.")
	}

	procedure := detectProcedure(msg)
	switch {
	case strings.Contains(msg, "compare"):
		return makeResponse("", call("generate_comparison", map[string]any{}))
	case strings.Contains(msg, "shortlist") && strings.Contains(msg, "remove"):
		return makeResponse("", call("remove_facility_from_shortlist", map[string]any{"facility_name": afterKeyword(msg, "remove")}))
	case strings.Contains(msg, "shortlist"):
		return makeResponse("", call("add_facility_to_shortlist", map[string]any{"facility_name": afterKeyword(msg, "add")}))
	case strings.Contains(msg, "start") || strings.Contains(msg, "plan"):
		return makeResponse("Great, let's get started.",
			call("create_journey", map[string]any{"procedure": procedure, "timeline": "flexible"}),
			call("search_facilities", map[string]any{"procedure": procedure}),
		)
	case strings.Contains(msg, "find") || strings.Contains(msg, "search") || strings.Contains(msg, "clinic"):
		args := map[string]any{"procedure": procedure}
		if country := detectCountry(msg); country != "" {
			args["country"] = country
		}
		return makeResponse("Let me look that up.", call("search_facilities", args))
	case strings.Contains(msg, "summary"):
		return makeResponse("", call("get_journey_summary", map[string]any{}))
	default:
		return makeResponse("Hello! Tell me which procedure you are considering.")
	}
}

func call(name string, args map[string]any) toolCall {
	data, _ := json.Marshal(args)
	return toolCall{
		ID:       "call_" + strings.ReplaceAll(uuid.NewString()[:8], "-", ""),
		Type:     "function",
		Function: funcCall{Name: name, Arguments: string(data)},
	}
}

func makeResponse(text string, calls ...toolCall) chatResponse {
	msg := chatMsg{Role: "assistant", ToolCalls: calls}
	if text != "" {
		msg.Content = &text
	}
	finish := "stop"
	if len(calls) > 0 {
		finish = "tool_calls"
	}
	return chatResponse{
		ID:     "chatcmpl-mock-" + uuid.NewString(),
		Object: "chat.completion",
		Choices: []chatChoice{
			{Index: 0, Message: msg, FinishReason: finish},
		},
		Usage: chatUsage{PromptTokens: 20, CompletionTokens: 15, TotalTokens: 35},
	}
}

// --- Models endpoint ---

func handleModels(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": "mock-model", "object": "model", "owned_by": "concierge-mock"},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// --- Helpers ---

var procedures = []string{"dental implants", "knee replacement", "hip replacement", "veneers", "ivf", "rhinoplasty"}

var countries = []string{"mexico", "thailand", "turkey", "india", "costa rica", "colombia"}

func detectProcedure(msg string) string {
	for _, p := range procedures {
		if strings.Contains(msg, p) {
			return titleCase(p)
		}
	}
	return "Dental Implants"
}

func detectCountry(msg string) string {
	for _, c := range countries {
		if strings.Contains(msg, c) {
			return titleCase(c)
		}
	}
	return ""
}

// afterKeyword returns the words following kw, stripped of the shortlist
// phrasing.
func afterKeyword(msg, kw string) string {
	_, rest, ok := strings.Cut(msg, kw)
	if !ok {
		return ""
	}
	for _, suffix := range []string{"to my shortlist", "to the shortlist", "from my shortlist", "from the shortlist"} {
		rest = strings.Replace(rest, suffix, "", 1)
	}
	return titleCase(strings.TrimSpace(rest))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "ivf" {
			words[i] = "IVF"
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func lastUserMessage(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role != "user" {
			continue
		}
		switch v := req.Messages[i].Content.(type) {
		case string:
			return v
		case []any:
			for _, part := range v {
				if m, ok := part.(map[string]any); ok && m["type"] == "text" {
					if text, ok := m["text"].(string); ok {
						return text
					}
				}
			}
		}
	}
	return ""
}
