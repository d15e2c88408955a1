package httpclient

import (
	"errors"
	"fmt"
	"strings"
)

// APIError is returned for every response whose status falls outside 200-299.
type APIError struct {
	Status  int
	Message string
	// Data is the parsed response body, nil when the body was empty.
	Data any
}

func (e *APIError) Error() string { return e.Message }

func newAPIError(status int, data any) *APIError {
	return &APIError{
		Status:  status,
		Message: errorMessage(status, data),
		Data:    data,
	}
}

// errorMessage prefers the server supplied "message" field.
func errorMessage(status int, data any) string {
	if obj, ok := data.(map[string]any); ok {
		switch msg := obj["message"].(type) {
		case string:
			if msg != "" {
				return msg
			}
		case nil:
		default:
			return fmt.Sprint(msg)
		}
	}
	return fmt.Sprintf("HTTP error! Status: %d", status)
}

// DecodeError reports a response body that is not valid JSON (or does not fit
// the caller's target). It is never folded into APIError.
type DecodeError struct {
	Status  int
	Snippet string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response (status %d): %v body: %s", e.Status, e.Err, e.Snippet)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError reports a request that never produced a response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an APIError carrying the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
