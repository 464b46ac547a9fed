// Package extract implements the typed-argument pipeline sitting between the
// dispatch loop and application handlers. Every handler argument is described by a
// Spec: a rule deriving one typed value from the request. All the specs of a handler
// must resolve before the handler runs; the first failure short-circuits the rest
// and propagates together with the untouched original request, so an outer layer
// can still render a custom error response from its metadata.
package extract

import (
	"fmt"

	"github.com/corvid-web/corvid/http"
)

// Spec describes how to derive one typed handler argument from a request.
type Spec[T any] struct {
	// Name labels the spec in diagnostics.
	Name string
	// Consumes marks the spec as body-consuming. At most one such spec may
	// participate in a single handler, which is checked at registration time.
	Consumes bool
	// Func performs the derivation.
	Func func(request *http.Request) (T, error)
}

// FromRequest implements the extractor contract.
func (s Spec[T]) FromRequest(request *http.Request) (T, error) {
	return s.Func(request)
}

// Error is a failure of a single argument extraction. It retains the original
// request, because the failure must be renderable into a response carrying the
// request's context, and any unconsumed body stays available for fallback layers.
type Error struct {
	// Position is the zero-based declaration index of the failed spec.
	Position int
	// Name is the label of the failed spec.
	Name string
	// Cause is the failure itself.
	Cause error
	// Request is the original request the extraction ran against.
	Request *http.Request
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s (argument %d): %s", e.Name, e.Position, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func fail[T any](position int, spec Spec[T], cause error, request *http.Request) error {
	return &Error{
		Position: position,
		Name:     spec.Name,
		Cause:    cause,
		Request:  request,
	}
}

func oneBodyConsumer(specs ...bool) {
	consumers := 0
	for _, consumes := range specs {
		if consumes {
			consumers++
		}
	}

	if consumers > 1 {
		panic("extract: at most one body-consuming spec may be registered per handler")
	}
}
