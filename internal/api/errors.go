package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrRejected is returned when the backend answered 200 but reported an
// unsuccessful payload (success=false or a missing user object). It is
// distinct from a plain 401: the cookie reached the backend and was turned
// away, which usually means it is corrupt or expired.
var ErrRejected = errors.New("backend rejected the session")

// Error is a non-2xx backend response with the body preserved for
// UI-level message selection.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// Category buckets failures so the UI can pick an actionable message
// without the client owning presentation text.
type Category string

const (
	CategoryAuth    Category = "auth"    // 401/403
	CategoryRequest Category = "request" // other 4xx
	CategoryServer  Category = "server"  // 5xx
	CategoryTimeout Category = "timeout" // deadline exceeded
	CategoryNetwork Category = "network" // DNS, refused connection, TLS
)

// Categorize maps an error from the client into a Category. Returns the
// empty category for nil.
func Categorize(err error) Category {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return CategoryAuth
		case apiErr.StatusCode >= 500:
			return CategoryServer
		default:
			return CategoryRequest
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTimeout
	}

	return CategoryNetwork
}

// IsUnauthorized reports whether err is a backend 401
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}

// IsForbidden reports whether err is a backend 403
func IsForbidden(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == 403
}
