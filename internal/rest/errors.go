package rest

import "fmt"

// TransportError reports a failed backend call: network failure or a
// non-auth error status. The engine surfaces it to the caller without
// mutating any store and never retries internally.
type TransportError struct {
	Op         string
	StatusCode int // 0 when the request never reached the server
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError reports a 401 or 403 from the backend. It is surfaced for the
// session layer to handle; nothing in this module reacts to it.
type AuthError struct {
	Op         string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: not authorized (%d)", e.Op, e.StatusCode)
}
