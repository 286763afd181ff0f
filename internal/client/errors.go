package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthRequired is returned before any I/O when no token is stored
var ErrAuthRequired = errors.New("authentication required")

const genericFailure = "request failed, please try again"

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// UserMessage turns err into the text shown in a notification: the server's
// own error text when there is one, a fixed line otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrAuthRequired) {
		return "authentication required, please log in"
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return genericFailure
}
