package efetch

import (
	"errors"
	"fmt"
)

// Common errors returned by the efetch client.
var (
	// ErrInvalidPMID indicates an identifier that is not a bare positive integer.
	ErrInvalidPMID = errors.New("invalid PMID")

	// ErrNotFound indicates PubMed has no record for the identifier.
	ErrNotFound = errors.New("not found in PubMed")

	// ErrRateLimited indicates the E-utilities rate limit has been exceeded.
	ErrRateLimited = errors.New("E-utilities rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with E-utilities")

	// ErrInvalidResponse indicates an unexpected response body.
	ErrInvalidResponse = errors.New("invalid response from E-utilities")
)

// APIError represents an HTTP error status from E-utilities.
type APIError struct {
	StatusCode int
	Message    string
	PMID       string
}

func (e *APIError) Error() string {
	if e.PMID != "" {
		return fmt.Sprintf("E-utilities error (status %d): %s (pmid: %s)", e.StatusCode, e.Message, e.PMID)
	}
	return fmt.Sprintf("E-utilities error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a record was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// IsNetworkError returns true for transport failures and rate limiting,
// i.e. failures that may succeed on a later attempt.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetworkError) || IsRateLimited(err)
}
