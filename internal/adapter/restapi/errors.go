package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/niksmo/storefront/pkg/schema"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// An APIError carries the failure body the server sent, verbatim.
type APIError struct {
	StatusCode int
	Body       json.RawMessage
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("storefront api: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrUnexpectedStatus
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}
	if json.Valid(body) {
		e.Body = json.RawMessage(body)
		e.Message = extractMessage(body)
		return e
	}
	e.Message = strings.TrimSpace(string(body))
	return e
}

// extractMessage reads "message", which the server sends either as a
// string or as a list of strings.
func extractMessage(body []byte) string {
	var v schema.MessageResponse
	if err := json.Unmarshal(body, &v); err != nil || len(v.Message) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(v.Message, &s); err == nil {
		return s
	}

	var ss []string
	if err := json.Unmarshal(v.Message, &ss); err == nil {
		return strings.Join(ss, "; ")
	}
	return string(v.Message)
}
