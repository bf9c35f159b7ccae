package chat

import (
	"encoding/json"
	"testing"
)

func TestModelKnown(t *testing.T) {
	for _, m := range Models() {
		if !m.Known() {
			t.Errorf("%q should be known", m)
		}
	}
	if Model("gpt-5-preview").Known() {
		t.Error("gpt-5-preview should not be known")
	}
	if len(Models()) != 6 {
		t.Errorf("len(Models()) = %d, want 6", len(Models()))
	}
}

func TestModels_ReturnsCopy(t *testing.T) {
	m := Models()
	m[0] = "mutated"
	if Models()[0] != ModelGPT35Turbo {
		t.Error("Models() must not expose the internal slice")
	}
}

func TestResponse_UnknownModelAndFinishReasonPreserved(t *testing.T) {
	data := `{"id":"x","model":"gpt-4o-2099","choices":[
		{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":""}},
		{"index":1,"finish_reason":null,"message":{"role":"assistant","content":"partial"}}]}`

	var resp Response
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if resp.Model != "gpt-4o-2099" || resp.Model.Known() {
		t.Errorf("model = %q known=%v, want raw unknown name", resp.Model, resp.Model.Known())
	}
	if resp.Choices[0].FinishReason != "tool_calls" || resp.Choices[0].FinishReason.Known() {
		t.Errorf("finish_reason = %q, want preserved unknown value", resp.Choices[0].FinishReason)
	}
	if resp.Choices[1].FinishReason != FinishReasonNone || resp.Choices[1].FinishReason.Complete() {
		t.Errorf("null finish_reason = %q, want FinishReasonNone", resp.Choices[1].FinishReason)
	}
}

func TestFinishReason_MarshalNull(t *testing.T) {
	data, err := json.Marshal(Choice{Index: 0, Message: AssistantMessage("x")})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"index":0,"finish_reason":null,"message":{"role":"assistant","content":"x"}}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestStop_KeepsShape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single string", `"END"`, []string{"END"}},
		{"one-element array", `["END"]`, []string{"END"}},
		{"array", `["a","b","c"]`, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Stop
			if err := json.Unmarshal([]byte(tt.in), &s); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if len(s.Sequences) != len(tt.want) {
				t.Fatalf("Sequences = %v, want %v", s.Sequences, tt.want)
			}
			for i := range tt.want {
				if s.Sequences[i] != tt.want[i] {
					t.Errorf("Sequences[%d] = %q, want %q", i, s.Sequences[i], tt.want[i])
				}
			}
			out, err := json.Marshal(s)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(out) != tt.in {
				t.Errorf("re-marshalled %s, want %s", out, tt.in)
			}
		})
	}
}

func TestStop_Constructors(t *testing.T) {
	one, _ := json.Marshal(StopAt("\n\n"))
	if string(one) != `"\n\n"` {
		t.Errorf("StopAt = %s", one)
	}
	many, _ := json.Marshal(StopAtAny("User:", "AI:"))
	if string(many) != `["User:","AI:"]` {
		t.Errorf("StopAtAny = %s", many)
	}
}

func TestStop_RejectsOtherShapes(t *testing.T) {
	var s Stop
	if err := json.Unmarshal([]byte(`42`), &s); err == nil {
		t.Error("expected error for numeric stop")
	}
}

func TestRequest_DecodeRoundTrip(t *testing.T) {
	in := `{"model":"gpt-4","messages":[{"role":"user","content":"hi"}],"stop":["x","y"],"logit_bias":{"1234":5},"stream":true}`

	var req Request
	if err := json.Unmarshal([]byte(in), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !req.Streaming() {
		t.Error("expected Streaming() to be true")
	}
	if req.LogitBias[1234] != 5 {
		t.Errorf("LogitBias = %v", req.LogitBias)
	}

	out, err := json.Marshal(&req)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"model":"gpt-4","messages":[{"role":"user","content":"hi"}],"stream":true,"stop":["x","y"],"logit_bias":{"1234":5}}` {
		t.Errorf("re-marshalled %s", out)
	}
}

func TestPrompt_Resolve(t *testing.T) {
	req := Prompt("hello").resolve(ModelGPT4, true)
	if req.Model != ModelGPT4 || !req.Streaming() {
		t.Errorf("resolve = %+v", req)
	}
	if len(req.Messages) != 1 || req.Messages[0] != UserMessage("hello") {
		t.Errorf("messages = %+v", req.Messages)
	}
}

func TestRoleKnown(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant} {
		if !r.Known() {
			t.Errorf("%q should be known", r)
		}
	}
	if Role("tool").Known() {
		t.Error("tool should not be known")
	}
}
