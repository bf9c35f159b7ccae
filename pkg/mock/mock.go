// Package mock serves a deterministic chat-completions API for tests and
// cmd/mock-backend.
//
// Answers depend only on the request: a system message yields the pirate
// greeting, a prompt asking to "count from 1 to 5" yields the count, and
// everything else gets "Hello, nice day!". max_tokens truncates the answer
// with finish_reason "length"; n repeats the choice.
package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TABmk/chatgpt-wrapper/pkg/chat"
	"github.com/TABmk/chatgpt-wrapper/pkg/debug"
	"github.com/TABmk/chatgpt-wrapper/pkg/sse"
)

const (
	// InvalidKey is rejected with 401 and an API error body.
	InvalidKey = "sk-invalid"

	// StatusHeader forces the response status with an empty body.
	StatusHeader = "X-Mock-Status"

	// OrganizationHeader echoes the OpenAI-Organization request header.
	OrganizationHeader = "X-Mock-Organization"

	// CompletionsPath is the chat-completions route.
	CompletionsPath = "/v1/chat/completions"
)

// Messages returned in error bodies.
const (
	MsgInvalidKey = "Incorrect API key provided"
	MsgMissingKey = "You didn't provide an API key. You need to provide your API key in an Authorization header using Bearer auth (i.e. Authorization: Bearer YOUR_KEY)."
	MsgNoModel    = "you must provide a model parameter"
	MsgNoMessages = "'messages' must contain at least one message"
)

var (
	defaultAnswer = []string{"Hello", ", ", "nice", " ", "day", "!"}
	countAnswer   = []string{"1", ", ", "2", ", ", "3", ", ", "4", ", ", "5"}
	pirateAnswer  = []string{"Ahoy", " there", ", ", "matey", "!", " Welcome", " aboard", "!"}
)

// NewHandler returns the mock API routes.
func NewHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+CompletionsPath, handleChatCompletions)
	mux.HandleFunc("GET /v1/models", handleModels)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if org := r.Header.Get("OpenAI-Organization"); org != "" {
		w.Header().Set(OrganizationHeader, org)
	}

	if forced := r.Header.Get(StatusHeader); forced != "" {
		if code, err := strconv.Atoi(forced); err == nil && code >= 100 && code <= 999 {
			debug.Log("mock", "forced status", "status", code)
			w.WriteHeader(code)
			return
		}
	}

	key, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, MsgMissingKey, "invalid_request_error", nil)
		return
	}
	if key == InvalidKey {
		writeError(w, http.StatusUnauthorized, MsgInvalidKey, "invalid_request_error", "invalid_api_key")
		return
	}

	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "We could not parse the JSON body of your request: "+err.Error(), "invalid_request_error", nil)
		return
	}
	if req.Model == "" {
		writeError(w, http.StatusBadRequest, MsgNoModel, "invalid_request_error", nil)
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, MsgNoMessages, "invalid_request_error", "messages")
		return
	}

	debug.Log("mock", "chat completion", "model", req.Model, "stream", req.Streaming(), "messages", len(req.Messages))

	if req.Streaming() {
		handleStreaming(w, &req)
		return
	}

	tokens, finish := answer(&req)
	text := strings.Join(tokens, "")
	resp := chat.Response{
		ID:      newID(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Usage:   usage(&req, len(tokens)),
	}
	for i := range choiceCount(&req) {
		resp.Choices = append(resp.Choices, chat.Choice{
			Index:        i,
			FinishReason: finish,
			Message:      chat.AssistantMessage(text),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- Streaming ---

func handleStreaming(w http.ResponseWriter, req *chat.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	tokens, finish := answer(req)
	n := choiceCount(req)
	base := sse.Chunk{
		ID:      newID(),
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   req.Model,
	}

	// Role chunk.
	writeChunk(w, base, n, sse.Delta{Role: chat.RoleAssistant}, chat.FinishReasonNone)
	flusher.Flush()

	for _, token := range tokens {
		writeChunk(w, base, n, sse.Delta{Content: token}, chat.FinishReasonNone)
		flusher.Flush()
	}

	// Finish chunk.
	writeChunk(w, base, n, sse.Delta{}, finish)
	flusher.Flush()

	fmt.Fprintf(w, "data: %s\n\n", sse.DoneSentinel)
	flusher.Flush()
}

func writeChunk(w http.ResponseWriter, chunk sse.Chunk, n int, delta sse.Delta, finish chat.FinishReason) {
	chunk.Choices = make([]sse.ChunkChoice, n)
	for i := range chunk.Choices {
		chunk.Choices[i] = sse.ChunkChoice{Index: i, Delta: delta, FinishReason: finish}
	}
	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// --- Models endpoint ---

func handleModels(w http.ResponseWriter, r *http.Request) {
	data := make([]map[string]any, 0, len(chat.Models()))
	for _, m := range chat.Models() {
		data = append(data, map[string]any{"id": m, "object": "model", "owned_by": "openai"})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
}

// --- Helpers ---

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	key, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || strings.TrimSpace(key) == "" {
		return "", false
	}
	return key, true
}

// answer picks the reply tokens and applies max_tokens.
func answer(req *chat.Request) ([]string, chat.FinishReason) {
	tokens := defaultAnswer
	switch {
	case hasSystemPrompt(req):
		tokens = pirateAnswer
	case strings.Contains(strings.ToLower(lastUserMessage(req)), "count from 1 to 5"):
		tokens = countAnswer
	}
	if req.MaxTokens != nil && *req.MaxTokens >= 0 && *req.MaxTokens < len(tokens) {
		return tokens[:*req.MaxTokens], chat.FinishReasonLength
	}
	return tokens, chat.FinishReasonStop
}

func choiceCount(req *chat.Request) int {
	if req.N != nil && *req.N > 1 {
		return *req.N
	}
	return 1
}

// usage counts whitespace-separated words of the prompt.
func usage(req *chat.Request, completion int) chat.Usage {
	prompt := 0
	for _, m := range req.Messages {
		prompt += len(strings.Fields(m.Content))
	}
	completion *= choiceCount(req)
	return chat.Usage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: prompt + completion}
}

func lastUserMessage(req *chat.Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == chat.RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

func hasSystemPrompt(req *chat.Request) bool {
	for _, msg := range req.Messages {
		if msg.Role == chat.RoleSystem {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, status int, message, typ string, code any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(chat.ErrorBody{Error: chat.ErrorDetail{
		Message: message,
		Type:    typ,
		Code:    code,
	}})
}

func newID() string {
	return "chatcmpl-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
