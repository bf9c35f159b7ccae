// Package sse decodes the raw body returned by chat.Client.Stream.
//
// The client hands back server-sent events untouched; this package is for
// callers that want the frames as values:
//
//	data: {"id":"...","choices":[{"delta":{"content":"Hel"}}]}
//
//	data: [DONE]
//
// Lines that are blank, comments (":"), or other SSE fields are skipped.
package sse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/TABmk/chatgpt-wrapper/pkg/chat"
	"github.com/TABmk/chatgpt-wrapper/pkg/debug"
)

// DoneSentinel is the payload of the final frame.
const DoneSentinel = "[DONE]"

// maxFrameSize bounds a single data line.
const maxFrameSize = 1 << 20

// Chunk is one decoded stream frame.
type Chunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   chat.Model    `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice is an incremental update for one choice.
type ChunkChoice struct {
	Index        int               `json:"index"`
	Delta        Delta             `json:"delta"`
	FinishReason chat.FinishReason `json:"finish_reason"`
}

// Delta holds the fields that changed in this frame.
type Delta struct {
	Role    chat.Role `json:"role,omitempty"`
	Content string    `json:"content,omitempty"`
}

// FrameError reports a data line whose payload is not valid JSON.
type FrameError struct {
	Payload string
	Err     error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("malformed stream frame %q: %v", debug.Truncate(e.Payload, 200), e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Decoder reads chunks from a stream body.
type Decoder struct {
	scanner *bufio.Scanner
	done    bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	return &Decoder{scanner: scanner}
}

// Next returns the next chunk. It returns io.EOF after the [DONE] frame or
// when the input ends, and a *FrameError for an undecodable payload.
func (d *Decoder) Next() (*Chunk, error) {
	if d.done {
		return nil, io.EOF
	}

	for d.scanner.Scan() {
		line := d.scanner.Text()

		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		payload = strings.TrimPrefix(payload, " ")

		if payload == DoneSentinel {
			d.done = true
			debug.Log("stream", "done sentinel received")
			return nil, io.EOF
		}

		var chunk Chunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return nil, &FrameError{Payload: payload, Err: err}
		}
		debug.Trace("stream", "chunk", "id", chunk.ID, "choices", len(chunk.Choices))
		return &chunk, nil
	}

	if err := d.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stream: %w", err)
	}
	d.done = true
	return nil, io.EOF
}

// Result is the assembled output of a stream for its first choice.
type Result struct {
	ID           string
	Model        chat.Model
	Message      chat.Message
	FinishReason chat.FinishReason
	Chunks       int
}

// Collect drains r and concatenates the content deltas of choice 0. Role
// defaults to assistant when no frame sets it.
func Collect(r io.Reader) (*Result, error) {
	return CollectFunc(r, nil)
}

// CollectFunc is Collect with a callback invoked for every content delta, in
// order, as it arrives.
func CollectFunc(r io.Reader, onDelta func(content string)) (*Result, error) {
	dec := NewDecoder(r)
	res := &Result{Message: chat.Message{Role: chat.RoleAssistant}}

	var content strings.Builder
	for {
		chunk, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		res.Chunks++
		if res.ID == "" {
			res.ID = chunk.ID
		}
		if res.Model == "" {
			res.Model = chunk.Model
		}

		for _, choice := range chunk.Choices {
			if choice.Index != 0 {
				continue
			}
			if choice.Delta.Role != "" {
				res.Message.Role = choice.Delta.Role
			}
			if choice.Delta.Content != "" {
				content.WriteString(choice.Delta.Content)
				if onDelta != nil {
					onDelta(choice.Delta.Content)
				}
			}
			if choice.FinishReason.Complete() {
				res.FinishReason = choice.FinishReason
			}
		}
	}

	res.Message.Content = content.String()
	return res, nil
}
