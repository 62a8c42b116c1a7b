package connectsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the conditions callers branch on. APIError.Is maps
// status codes onto these so errors.Is works on any returned *APIError.
var (
	// ErrUnauthenticated means the operator session token was missing,
	// expired, or rejected.
	ErrUnauthenticated = errors.New("connectsdk: not authenticated")

	// ErrForbidden means the session lacks the required scope.
	ErrForbidden = errors.New("connectsdk: insufficient scope")

	// ErrAlreadyConnected means the page already has a stored token. The
	// existing record was left untouched.
	ErrAlreadyConnected = errors.New("connectsdk: page already connected")

	// ErrNotConnected means no stored token exists for the page.
	ErrNotConnected = errors.New("connectsdk: page not connected")

	// ErrRateLimited means the request was rejected by the rate limiter.
	ErrRateLimited = errors.New("connectsdk: rate limited")
)

// APIError is a non-2xx response from the pagelink service. It carries the
// parsed ErrorResponse body when one was present.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("pagelink: %s (HTTP %d): %s", e.Message, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("pagelink: %s (HTTP %d)", e.Message, e.StatusCode)
}

// Is maps status codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrAlreadyConnected:
		return e.StatusCode == http.StatusConflict
	case ErrNotConnected:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// parseErrorResponse turns a non-2xx response body into a typed *APIError.
// Returns nil for 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		detail := errResp.Error
		if errResp.Details != "" {
			detail = errResp.Details
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errResp.Message,
			Detail:     detail,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
