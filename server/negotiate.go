package server

import (
	"context"

	"github.com/corvid-web/corvid/transport"
)

// Negotiator performs the protocol-specific preamble over a freshly accepted
// connection: a multiplexed transport settles its handshake here, a plain one may
// return its message source right away. Negotiation failures are terminal to the
// connection and are never retried.
type Negotiator interface {
	Negotiate(ctx context.Context, client transport.Client) (Conn, error)
}

// NegotiatorFunc adapts a function to the Negotiator interface.
type NegotiatorFunc func(ctx context.Context, client transport.Client) (Conn, error)

func (f NegotiatorFunc) Negotiate(ctx context.Context, client transport.Client) (Conn, error) {
	return f(ctx, client)
}
