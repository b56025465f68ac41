package contentapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

const fallbackMessage = "request failed"

var (
	// ErrTransport wraps failures that never produced an HTTP response.
	ErrTransport = errors.New("contentapi: transport failure")

	// ErrMalformed wraps response bodies that are not valid JSON.
	ErrMalformed = errors.New("contentapi: malformed payload")
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("contentapi: status %d: %s", e.Status, e.Message)
}

// newAPIError reads the human-readable message out of an error body.
// The "error" field wins over "message"; anything else gets the generic fallback.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error   any `json:"error"`
		Message any `json:"message"`
	}

	msg := fallbackMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		if s, ok := payload.Error.(string); ok && s != "" {
			msg = s
		} else if s, ok := payload.Message.(string); ok && s != "" {
			msg = s
		}
	}

	return &APIError{Status: status, Message: msg}
}

// Message returns the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrTransport):
		return "content service unreachable"
	case errors.Is(err, ErrMalformed):
		return "unexpected response from content service"
	}
	return fallbackMessage
}

// IsNotFound reports whether err is a 404 from the content API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
