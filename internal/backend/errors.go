package backend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnreachable maps connection-refused / host-not-found transport failures
// to one fixed human message naming the likely cause.
var ErrUnreachable = errors.New("promotion backend is unreachable (is it running?)")

// APIError is a backend-reported failure: a non-2xx response with a
// structured body.
type APIError struct {
	StatusCode int
	Message    string            `json:"message"`
	ErrorText  string            `json:"error"`
	Validation map[string]string `json:"validation"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.UserMessage())
}

// UserMessage picks the most specific text the operator can act on:
// per-field validation detail, then the error field, then the message field,
// then a generic fallback.
func (e *APIError) UserMessage() string {
	if len(e.Validation) > 0 {
		fields := make([]string, 0, len(e.Validation))
		for f := range e.Validation {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f, e.Validation[f]))
		}
		return strings.Join(parts, "; ")
	}
	if e.ErrorText != "" {
		return e.ErrorText
	}
	if e.Message != "" {
		return e.Message
	}
	return "request failed"
}
