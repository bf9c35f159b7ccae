package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage, UserMessage and AssistantMessage build a Message for the role.
func SystemMessage(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func UserMessage(content string) Message      { return Message{Role: RoleUser, Content: content} }
func AssistantMessage(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Request is the /v1/chat/completions request body.
//
// Optional fields are pointers (or nil-able) and are omitted from the JSON
// when unset, so the body on the wire is exactly what the caller built.
type Request struct {
	Model    Model     `json:"model"`
	Messages []Message `json:"messages"`

	// Temperature is the sampling temperature, 0 to 2. Defaults to 1 upstream.
	Temperature *float64 `json:"temperature,omitempty"`
	// TopP is the nucleus sampling mass, 0 to 1. Defaults to 1 upstream.
	TopP *float64 `json:"top_p,omitempty"`
	// N is how many completions to generate.
	N *int `json:"n,omitempty"`
	// Stream selects SSE framing. Client.Send rejects true; Client.Stream forces it.
	Stream *bool `json:"stream,omitempty"`
	// Stop holds up to 4 sequences where generation halts.
	Stop *Stop `json:"stop,omitempty"`
	// MaxTokens caps the generated answer.
	MaxTokens *int `json:"max_tokens,omitempty"`
	// PresencePenalty and FrequencyPenalty range over -2.0 to 2.0.
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	// LogitBias maps tokenizer token ids to a bias from -100 to 100.
	LogitBias map[int]float64 `json:"logit_bias,omitempty"`
	// User is an opaque end-user id forwarded for abuse monitoring.
	User string `json:"user,omitempty"`
}

// Streaming reports whether the request asks for SSE framing.
func (r *Request) Streaming() bool {
	return r.Stream != nil && *r.Stream
}

// Stop is the "stop" request option, which the API accepts either as a single
// string or as an array of strings. It marshals back in the shape it was
// created or decoded with.
type Stop struct {
	Sequences []string
	list      bool
}

// StopAt returns a Stop that serializes as a single JSON string.
func StopAt(sequence string) *Stop {
	return &Stop{Sequences: []string{sequence}}
}

// StopAtAny returns a Stop that serializes as a JSON array.
func StopAtAny(sequences ...string) *Stop {
	return &Stop{Sequences: sequences, list: true}
}

// MarshalJSON implements json.Marshaler.
func (s Stop) MarshalJSON() ([]byte, error) {
	if !s.list && len(s.Sequences) == 1 {
		return json.Marshal(s.Sequences[0])
	}
	if s.Sequences == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Sequences)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Stop) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = Stop{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = Stop{Sequences: []string{one}}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("stop must be a string or an array of strings: %w", err)
	}
	*s = Stop{Sequences: many, list: true}
	return nil
}

// Response is the buffered /v1/chat/completions response body.
type Response struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   Model    `json:"model"`
	Usage   Usage    `json:"usage"`
	Choices []Choice `json:"choices"`
}

// CreatedAt converts the unix timestamp in Created.
func (r *Response) CreatedAt() time.Time {
	return time.Unix(r.Created, 0)
}

// Text returns the content of the first choice, or "" when there is none.
func (r *Response) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Usage holds the token counters reported for a call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Choice is one generated completion.
type Choice struct {
	Index        int          `json:"index"`
	FinishReason FinishReason `json:"finish_reason"`
	Message      Message      `json:"message"`
}

// MarshalJSON writes FinishReasonNone as null, matching the wire format.
func (f FinishReason) MarshalJSON() ([]byte, error) {
	if f == FinishReasonNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(f))
}

// Ptr returns a pointer to v. Handy for the optional Request fields.
func Ptr[T any](v T) *T {
	return &v
}
