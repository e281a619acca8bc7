package source

import (
	"errors"
	"fmt"
)

// Sentinel conditions callers branch on with errors.Is.
var (
	// ErrRateLimited is raised only on an explicit 429 from the API.
	// Low remaining-quota headers are NOT treated as rate limiting; the
	// auxiliary counters can reflect an unrelated bucket.
	ErrRateLimited = errors.New("source: rate limited")

	ErrAccountNotFound = errors.New("source: account not found")
	ErrPostNotFound    = errors.New("source: post not found")
)

// APIError is any other HTTP-level failure from the source API.
// Status and body are retained for diagnostics.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("source: api error: http %d: %s", e.Status, e.Body)
}
