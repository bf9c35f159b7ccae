package mock

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TABmk/chatgpt-wrapper/pkg/chat"
	"github.com/TABmk/chatgpt-wrapper/pkg/sse"
)

func post(t *testing.T, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, CompletionsPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer sk-test")
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	NewHandler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) chat.ErrorDetail {
	t.Helper()
	var body chat.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v: %s", err, rec.Body.String())
	}
	return body.Error
}

func TestChatCompletion(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantText string
		wantStop chat.FinishReason
	}{
		{
			name:     "default answer",
			body:     `{"model":"gpt-3.5-turbo","messages":[{"role":"user","content":"hi"}]}`,
			wantText: "Hello, nice day!",
			wantStop: chat.FinishReasonStop,
		},
		{
			name:     "count",
			body:     `{"model":"gpt-4","messages":[{"role":"user","content":"Please count from 1 to 5"}]}`,
			wantText: "1, 2, 3, 4, 5",
			wantStop: chat.FinishReasonStop,
		},
		{
			name:     "system prompt",
			body:     `{"model":"gpt-4","messages":[{"role":"system","content":"be a pirate"},{"role":"user","content":"hi"}]}`,
			wantText: "Ahoy there, matey! Welcome aboard!",
			wantStop: chat.FinishReasonStop,
		},
		{
			name:     "max tokens truncates",
			body:     `{"model":"gpt-4","max_tokens":3,"messages":[{"role":"user","content":"hi"}]}`,
			wantText: "Hello, nice",
			wantStop: chat.FinishReasonLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, tt.body, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}
			var resp chat.Response
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if resp.Text() != tt.wantText {
				t.Errorf("text = %q, want %q", resp.Text(), tt.wantText)
			}
			if resp.Choices[0].FinishReason != tt.wantStop {
				t.Errorf("finish_reason = %q, want %q", resp.Choices[0].FinishReason, tt.wantStop)
			}
			if !strings.HasPrefix(resp.ID, "chatcmpl-") {
				t.Errorf("id = %q, want chatcmpl- prefix", resp.ID)
			}
			if resp.Object != "chat.completion" {
				t.Errorf("object = %q", resp.Object)
			}
			if resp.Usage.TotalTokens != resp.Usage.PromptTokens+resp.Usage.CompletionTokens {
				t.Errorf("usage does not add up: %+v", resp.Usage)
			}
		})
	}
}

func TestChatCompletionEchoesModel(t *testing.T) {
	rec := post(t, `{"model":"gpt-9-preview","messages":[{"role":"user","content":"hi"}]}`, nil)
	var resp chat.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Model != "gpt-9-preview" {
		t.Errorf("model = %q, want echo of request model", resp.Model)
	}
}

func TestChatCompletionMultipleChoices(t *testing.T) {
	rec := post(t, `{"model":"gpt-4","n":3,"messages":[{"role":"user","content":"one two"}]}`, nil)
	var resp chat.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Choices) != 3 {
		t.Fatalf("choices = %d, want 3", len(resp.Choices))
	}
	for i, c := range resp.Choices {
		if c.Index != i {
			t.Errorf("choices[%d].index = %d", i, c.Index)
		}
	}
	if resp.Usage.PromptTokens != 2 {
		t.Errorf("prompt_tokens = %d, want 2", resp.Usage.PromptTokens)
	}
	if resp.Usage.CompletionTokens != 3*len(defaultAnswer) {
		t.Errorf("completion_tokens = %d, want %d", resp.Usage.CompletionTokens, 3*len(defaultAnswer))
	}
}

func TestAuthentication(t *testing.T) {
	body := `{"model":"gpt-4","messages":[{"role":"user","content":"hi"}]}`

	t.Run("missing key", func(t *testing.T) {
		rec := post(t, body, map[string]string{"Authorization": ""})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if got := decodeError(t, rec).Message; got != MsgMissingKey {
			t.Errorf("message = %q", got)
		}
	})

	t.Run("empty bearer", func(t *testing.T) {
		rec := post(t, body, map[string]string{"Authorization": "Bearer "})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("invalid key", func(t *testing.T) {
		rec := post(t, body, map[string]string{"Authorization": "Bearer " + InvalidKey})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		detail := decodeError(t, rec)
		if detail.Message != MsgInvalidKey {
			t.Errorf("message = %q, want %q", detail.Message, MsgInvalidKey)
		}
		if detail.Code != "invalid_api_key" {
			t.Errorf("code = %v, want invalid_api_key", detail.Code)
		}
	})
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"malformed json", `{"model":`, "We could not parse the JSON body"},
		{"missing model", `{"messages":[{"role":"user","content":"hi"}]}`, MsgNoModel},
		{"no messages", `{"model":"gpt-4","messages":[]}`, MsgNoMessages},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			detail := decodeError(t, rec)
			if !strings.Contains(detail.Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", detail.Message, tt.wantMsg)
			}
			if detail.Type != "invalid_request_error" {
				t.Errorf("type = %q", detail.Type)
			}
		})
	}
}

func TestForcedStatus(t *testing.T) {
	rec := post(t, `not even json`, map[string]string{StatusHeader: "503", "Authorization": ""})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}

	// Unparseable values are ignored.
	rec = post(t, `{"model":"gpt-4","messages":[{"role":"user","content":"hi"}]}`, map[string]string{StatusHeader: "soon"})
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestOrganizationEcho(t *testing.T) {
	body := `{"model":"gpt-4","messages":[{"role":"user","content":"hi"}]}`

	rec := post(t, body, map[string]string{"OpenAI-Organization": "org-42"})
	if got := rec.Header().Get(OrganizationHeader); got != "org-42" {
		t.Errorf("%s = %q, want org-42", OrganizationHeader, got)
	}

	rec = post(t, body, nil)
	if _, ok := rec.Header()[OrganizationHeader]; ok {
		t.Errorf("%s set without an organization", OrganizationHeader)
	}
}

func TestStreaming(t *testing.T) {
	rec := post(t, `{"model":"gpt-4","stream":true,"messages":[{"role":"user","content":"count from 1 to 5"}]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	raw := rec.Body.String()
	if !strings.HasSuffix(raw, "data: [DONE]\n\n") {
		t.Errorf("stream does not end with [DONE]: %q", raw)
	}

	res, err := sse.Collect(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if res.Message.Content != "1, 2, 3, 4, 5" {
		t.Errorf("content = %q", res.Message.Content)
	}
	if res.Message.Role != chat.RoleAssistant {
		t.Errorf("role = %q", res.Message.Role)
	}
	if res.FinishReason != chat.FinishReasonStop {
		t.Errorf("finish_reason = %q, want stop", res.FinishReason)
	}
	// role + tokens + finish
	if want := len(countAnswer) + 2; res.Chunks != want {
		t.Errorf("chunks = %d, want %d", res.Chunks, want)
	}
	if res.Model != "gpt-4" {
		t.Errorf("model = %q", res.Model)
	}
}

func TestStreamingFinishNullUntilLast(t *testing.T) {
	rec := post(t, `{"model":"gpt-4","stream":true,"messages":[{"role":"user","content":"hi"}]}`, nil)

	frames := strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n")
	for i, frame := range frames[:len(frames)-2] {
		if !strings.Contains(frame, `"finish_reason":null`) {
			t.Errorf("frame %d has a finish_reason: %s", i, frame)
		}
	}
	if last := frames[len(frames)-2]; !strings.Contains(last, `"finish_reason":"stop"`) {
		t.Errorf("finish frame = %s", last)
	}
}

func TestModels(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/models", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Object string `json:"object"`
		Data   []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Object != "list" || len(body.Data) != len(chat.Models()) {
		t.Fatalf("models = %+v", body)
	}
	for i, m := range chat.Models() {
		if body.Data[i].ID != string(m) {
			t.Errorf("data[%d].id = %q, want %q", i, body.Data[i].ID, m)
		}
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, CompletionsPath, nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
