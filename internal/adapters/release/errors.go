package release

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response of the release host.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("release host: HTTP %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether repeating the request may succeed. Server errors,
// request timeouts and rate limiting are retryable; other client errors are not.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout
}

func isStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
