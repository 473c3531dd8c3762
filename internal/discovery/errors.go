package discovery

import (
	"errors"
	"fmt"

	"github.com/hclin/camradar/internal/proxy"
)

// Error wraps a failed lookup for service callers. Every caller coalesced
// onto the same flight receives the identical failure.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("discovery %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// outcome classifies a fetch failure for metrics labels.
func outcome(err error) string {
	var httpErr *proxy.HTTPError
	if errors.As(err, &httpErr) {
		return "http_error"
	}
	var netErr *proxy.NetworkError
	if errors.As(err, &netErr) {
		return "network_error"
	}
	return "error"
}
