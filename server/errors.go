package server

import "fmt"

// InitError reports that the per-connection service could not be constructed. It
// is terminal: the connection never reaches the dispatch loop.
type InitError struct {
	Cause error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("service initialization: %s", e.Cause)
}

func (e *InitError) Unwrap() error {
	return e.Cause
}

// DispatchError reports a transport or protocol level failure, terminal to the
// connection. Request-level failures never surface as one: they are recovered
// into error responses instead.
type DispatchError struct {
	Cause error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch: %s", e.Cause)
}

func (e *DispatchError) Unwrap() error {
	return e.Cause
}
