package chat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ErrorKind categorizes a failed call.
type ErrorKind string

const (
	// KindInvalidStreamUsage: Send was given a request with stream enabled.
	// Raised locally, before any network I/O.
	KindInvalidStreamUsage ErrorKind = "invalid_stream_usage"
	// KindAPI: non-2xx status with a structured error message from the server.
	KindAPI ErrorKind = "api_error"
	// KindRequest: non-2xx status without a usable error message.
	KindRequest ErrorKind = "request_error"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Error is returned by Send and Stream for usage and HTTP status failures.
// Transport failures (DNS, refused connections, timeouts) are returned as the
// http.Client produced them and are never wrapped in an Error.
type Error struct {
	Kind ErrorKind

	// StatusCode and Status are set for KindAPI and KindRequest. Status is
	// the status text, e.g. "Unauthorized".
	StatusCode int
	Status     string

	// Message is the server-supplied message (KindAPI) or the status text
	// (KindRequest).
	Message string

	// Body is the decoded error payload when the server sent one.
	Body *ErrorBody
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrInvalidStreamUsage = &Error{Kind: KindInvalidStreamUsage}
	ErrAPI                = &Error{Kind: KindAPI}
	ErrRequest            = &Error{Kind: KindRequest}
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidStreamUsage:
		return "invalid stream usage: use Stream for requests with stream enabled"
	case KindAPI:
		return "API error: " + e.Message
	case KindRequest:
		return "Request error: " + e.Message
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Is matches target when it is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// ErrorBody is the JSON error document returned alongside non-2xx statuses.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the server's explanation. Param and Code have no fixed
// shape upstream and are kept as decoded JSON values.
type ErrorDetail struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Param   any    `json:"param,omitempty"`
	Code    any    `json:"code,omitempty"`
}

func newInvalidStreamUsageError() *Error {
	return &Error{Kind: KindInvalidStreamUsage}
}

// mapHTTPError converts a non-2xx response into an *Error. The body is parsed
// as an ErrorBody; when it carries a message the result is KindAPI, otherwise
// KindRequest with the status text.
func mapHTTPError(resp *http.Response) *Error {
	status := statusText(resp)
	body := extractErrorBody(resp.Body)

	if body != nil && body.Error.Message != "" {
		return &Error{
			Kind:       KindAPI,
			StatusCode: resp.StatusCode,
			Status:     status,
			Message:    body.Error.Message,
			Body:       body,
		}
	}

	return &Error{
		Kind:       KindRequest,
		StatusCode: resp.StatusCode,
		Status:     status,
		Message:    status,
		Body:       body,
	}
}

// extractErrorBody reads and decodes an error payload. It returns nil when the
// body is empty or not JSON.
func extractErrorBody(r io.Reader) *ErrorBody {
	if r == nil {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return nil
	}

	var body ErrorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil
	}
	return &body
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}
