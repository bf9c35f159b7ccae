package chat

// Content is what Send and Stream accept: either a Prompt or a *Request.
// The set is closed; resolve turns it into the body that goes on the wire.
type Content interface {
	resolve(model Model, stream bool) *Request
}

// Prompt is the plain-string shorthand for a single user message sent to the
// client's default model.
type Prompt string

func (p Prompt) resolve(model Model, stream bool) *Request {
	return &Request{
		Model:    model,
		Stream:   Ptr(stream),
		Messages: []Message{UserMessage(string(p))},
	}
}

// A *Request is sent as-is; its own Stream field governs framing.
func (r *Request) resolve(Model, bool) *Request {
	return r
}

// forceStream returns req with Stream set to true, copying it first when the
// caller's value would otherwise be modified.
func forceStream(req *Request) *Request {
	if req.Streaming() {
		return req
	}
	cp := *req
	cp.Stream = Ptr(true)
	return &cp
}
