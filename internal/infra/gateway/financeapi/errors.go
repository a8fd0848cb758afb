package financeapi

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned when the API answers with a non-2xx status
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("finance API error: %s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// StatusCode returns the HTTP status carried by err, or 0 for transport errors
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsNotFound checks if err is (or wraps) a 404 response
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized checks if err is (or wraps) a 401 or 403 response
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
