package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for persistent data operations.
var (
	// ErrNotFound is returned when a key does not exist or has expired.
	ErrNotFound = errors.New("store: entry not found")

	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("store: closed")

	// ErrNoHTTPContext is returned by request-bound handlers when the context
	// carries no request/response pair. See WithHTTP.
	ErrNoHTTPContext = errors.New("store: no http request in context")
)

// Handler persists small string values across the login redirect round-trip,
// typically the CSRF state of an authorization request.
//
// TTL semantics for Set:
//   - Positive duration: value expires after this duration
//   - Zero: use the handler's default TTL
//   - Negative: value never expires
type Handler interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
