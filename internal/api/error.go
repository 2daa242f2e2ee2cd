package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx backend response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// UserMessage is the backend-supplied text, if any.
func (e *Error) UserMessage() string { return e.Message }

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

func newError(status int, body []byte) *Error {
	return &Error{Status: status, Message: errorMessage(body)}
}

// errorMessage pulls a human message out of common JSON error envelopes.
func errorMessage(body []byte) string {
	var env map[string]any
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	for _, k := range []string{"message", "error", "detail"} {
		switch v := env[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]any:
			if s, ok := v["message"].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
