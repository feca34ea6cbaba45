package remote

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind classifies a failed remote operation. Callers use it to decide how to
// present the failure; Message is already human readable.
type Kind int

const (
	// KindNetwork means the connection could not be established or was interrupted.
	KindNetwork Kind = iota
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP
	// KindDecode means the response body was not valid JSON or did not match
	// the expected shape.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_error"
	case KindHTTP:
		return "http_error"
	case KindDecode:
		return "decode_error"
	default:
		return "unknown_error"
	}
}

// Error is the single failure value produced by the orchestrator. No raw
// transport or JSON error ever crosses the dispatcher boundary.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status code, set for KindHTTP
	Body    string // raw response body, set for KindHTTP
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "network error: " + err.Error(), cause: err}
}

func decodeError(err error) *Error {
	return &Error{Kind: KindDecode, Message: "unexpected response format: " + err.Error(), cause: err}
}

// httpError builds the error for a non-2xx response. FastAPI style bodies
// carry the useful text under "detail"; when present it becomes the whole
// message so the user sees "Invalid credentials", not a status dump.
func httpError(status int, body []byte) *Error {
	msg := detailFrom(body)
	if msg == "" {
		msg = fmt.Sprintf("server returned status %d", status)
		if b := strings.TrimSpace(string(body)); b != "" {
			msg += ": " + b
		}
	}
	return &Error{Kind: KindHTTP, Status: status, Body: string(body), Message: msg}
}

func detailFrom(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Detail)
}

// KindOf extracts the failure kind from any error returned by this package.
func KindOf(err error) (Kind, bool) {
	if e, ok := err.(*Error); ok {
		return e.Kind, true
	}
	return 0, false
}
