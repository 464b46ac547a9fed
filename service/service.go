// Package service defines the unit of request-to-response logic the dispatch loop
// drives, and the factory producing one such unit per connection. The abstraction is
// pure plumbing, but its contract is load-bearing: a Service must not be called
// before Ready reports no backpressure, and a single instance is never called
// reentrantly by the dispatch loop.
package service

import (
	"context"
	"net"

	"github.com/corvid-web/corvid/http"
)

// Service is a live, stateful request handler bound to one connection's lifetime.
type Service interface {
	// Ready reports whether the service is able to accept a call. It blocks until
	// readiness, a readiness failure, or context cancellation.
	Ready(ctx context.Context) error
	// Call processes a single request. Returned errors are recovered into error
	// responses by the dispatch loop and never tear the connection down by
	// themselves.
	Call(ctx context.Context, request *http.Request) (*http.Response, error)
}

// ConnInfo carries the per-connection values a factory may want to bake into the
// produced service.
type ConnInfo struct {
	// ID is a short random identifier of the connection, stable across its lifetime.
	ID string
	// Remote is the peer address.
	Remote net.Addr
	// Encryption is comparable against the tls.Version... enums, zero meaning an
	// unencrypted connection.
	Encryption uint16
}

// Factory is a blueprint producing a service per connection. Implementations must
// be cheap to invoke and safe for concurrent use, as every accepted connection
// builds its own service.
type Factory interface {
	Build(ctx context.Context, conn ConnInfo) (Service, error)
}

// ServiceFunc adapts a function to the Service interface with unconditional
// readiness.
type ServiceFunc func(ctx context.Context, request *http.Request) (*http.Response, error)

func (f ServiceFunc) Ready(context.Context) error {
	return nil
}

func (f ServiceFunc) Call(ctx context.Context, request *http.Request) (*http.Response, error) {
	return f(ctx, request)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, conn ConnInfo) (Service, error)

func (f FactoryFunc) Build(ctx context.Context, conn ConnInfo) (Service, error) {
	return f(ctx, conn)
}

// Fixed returns a factory handing the same service out to every connection. The
// service must be safe for concurrent use then, as connections are dispatched
// independently.
func Fixed(s Service) Factory {
	return FactoryFunc(func(context.Context, ConnInfo) (Service, error) {
		return s, nil
	})
}
