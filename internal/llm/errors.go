// Package llm provides the client for the hosted chat-completion gateway.
package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey indicates the gateway key is not configured
	ErrMissingAPIKey = errors.New("ai gateway api key is not configured")

	// ErrMissingBaseURL indicates the gateway endpoint is not configured
	ErrMissingBaseURL = errors.New("ai gateway base url is not configured")

	// ErrRateLimited indicates the gateway answered 429
	ErrRateLimited = errors.New("ai gateway rate limit exceeded")

	// ErrEmptyResponse indicates the gateway returned no choices
	ErrEmptyResponse = errors.New("ai gateway returned no choices")
)

// UpstreamError is a non-2xx, non-429 answer from the gateway.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ai gateway error: status %d", e.StatusCode)
}
