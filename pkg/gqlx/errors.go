package gqlx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error codes the API is known to return.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// Error is a server reported operation error.
type Error struct {
	Operation string
	Code      string
	Message   string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Operation, e.Code, e.Message)
}

// IsUnauthenticated reports whether the server rejected the credential.
func (e *Error) IsUnauthenticated() bool { return e.Code == CodeUnauthenticated }

// HTTPError is returned for non-2xx responses without a usable error body.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// serverError is one entry of the response "errors" array.
type serverError struct {
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []serverError   `json:"errors,omitempty"`
}

// parseErrorResponse maps an error envelope or a bare HTTP failure into a
// typed error. Returns nil if there is nothing to report.
func parseErrorResponse(op string, status int, env envelope, body []byte) error {
	if len(env.Errors) > 0 {
		first := env.Errors[0]
		code := first.Code
		if code == "" {
			code = first.Extensions.Code
		}

		msg := first.Message
		if n := len(env.Errors); n > 1 {
			msgs := make([]string, 0, n)
			for _, e := range env.Errors {
				msgs = append(msgs, e.Message)
			}
			msg = strings.Join(msgs, "; ")
		}
		return &Error{Operation: op, Code: code, Message: msg}
	}

	if status < 200 || status >= 300 {
		return &HTTPError{StatusCode: status, Body: string(body)}
	}

	return nil
}
