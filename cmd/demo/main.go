// Command demo walks through the chat wire format without touching the
// network: request shapes, response decoding, schema checks, stream decoding
// and the error kinds.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/TABmk/chatgpt-wrapper/pkg/chat"
	"github.com/TABmk/chatgpt-wrapper/pkg/sse"
	"github.com/TABmk/chatgpt-wrapper/pkg/validate"
)

const sampleResponse = `{
  "id": "chatcmpl-123",
  "object": "chat.completion",
  "created": 1677652288,
  "model": "gpt-4-1106-preview",
  "usage": {"prompt_tokens": 9, "completion_tokens": 12, "total_tokens": 21},
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "Paris is the capital of France."},
    "finish_reason": "stop"
  }]
}`

const sampleStream = "data: {\"id\":\"chatcmpl-1\",\"model\":\"gpt-4\",\"choices\":[{\"index\":0,\"delta\":{\"role\":\"assistant\"},\"finish_reason\":null}]}\n\n" +
	"data: {\"id\":\"chatcmpl-1\",\"model\":\"gpt-4\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"Par\"},\"finish_reason\":null}]}\n\n" +
	"data: {\"id\":\"chatcmpl-1\",\"model\":\"gpt-4\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"is\"},\"finish_reason\":null}]}\n\n" +
	"data: {\"id\":\"chatcmpl-1\",\"model\":\"gpt-4\",\"choices\":[{\"index\":0,\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n" +
	"data: [DONE]\n\n"

func main() {
	fmt.Println("=== chat wire format demo ===")
	fmt.Println()

	// 1. A full request keeps exactly the fields that were set.
	req := &chat.Request{
		Model: chat.ModelGPT4,
		Messages: []chat.Message{
			chat.SystemMessage("Answer in one sentence."),
			chat.UserMessage("What is the capital of France?"),
		},
		Temperature: chat.Ptr(0.7),
		Stop:        chat.StopAt("\n"),
	}
	data, _ := json.MarshalIndent(req, "", "  ")
	fmt.Printf("[1] Request document:\n%s\n", data)

	// 2. Stop keeps the shape it was built with.
	single, _ := json.Marshal(chat.StopAt("END"))
	list, _ := json.Marshal(chat.StopAtAny("END"))
	fmt.Printf("\n[2] Stop shapes: %s vs %s\n", single, list)

	// 3. Schema check before sending.
	violations, err := validate.Request(data)
	if err != nil {
		fmt.Println("\n[3] Schema error:", err)
	} else {
		fmt.Printf("\n[3] Schema violations: %d\n", len(violations))
	}
	bad := []byte(`{"model":"gpt-4","messages":[],"presence_penalty":3}`)
	violations, _ = validate.Request(bad)
	for _, v := range violations {
		fmt.Println("    -", v)
	}

	// 4. Decoding a response with a model the client does not list.
	var resp chat.Response
	if err := json.Unmarshal([]byte(sampleResponse), &resp); err != nil {
		fmt.Println("\n[4] Decode error:", err)
		return
	}
	fmt.Printf("\n[4] Response: model=%s known=%t finish=%s tokens=%d\n    %s\n",
		resp.Model, resp.Model.Known(), resp.Choices[0].FinishReason, resp.Usage.TotalTokens, resp.Text())

	// 5. Decoding a raw stream.
	res, err := sse.Collect(strings.NewReader(sampleStream))
	if err != nil {
		fmt.Println("\n[5] Stream error:", err)
		return
	}
	fmt.Printf("\n[5] Stream: %d chunks, %s said %q (%s)\n", res.Chunks, res.Message.Role, res.Message.Content, res.FinishReason)

	// 6. Error kinds.
	fmt.Println("\n[6] Error kinds:")
	for _, err := range []error{
		&chat.Error{Kind: chat.KindInvalidStreamUsage},
		&chat.Error{Kind: chat.KindAPI, StatusCode: 401, Message: "Incorrect API key provided"},
		&chat.Error{Kind: chat.KindRequest, StatusCode: 503, Message: "Service Unavailable"},
	} {
		fmt.Printf("    %-45s api=%t request=%t\n", err, errors.Is(err, chat.ErrAPI), errors.Is(err, chat.ErrRequest))
	}

	fmt.Println("\n=== demo complete ===")
}
