package proxy

import "fmt"

// NetworkError means the relay could not be reached or the transport failed
// mid-flight. The target is the origin URL, not the relay wrapper.
type NetworkError struct {
	Target string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("relay fetch %s: %v", e.Target, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError means the relay (or the origin behind it) answered with a
// non-success status.
type HTTPError struct {
	Target string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("relay fetch %s: status %d", e.Target, e.Status)
}
