// Package server drives accepted connections through their lifecycle: a protocol
// negotiation preamble first, then the steady-state request/response dispatch
// loop. Framing stays behind the Conn boundary; this package only decides when a
// connection lives and when it dies.
package server

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/corvid-web/corvid/appdata"
	"github.com/corvid-web/corvid/config"
	"github.com/corvid-web/corvid/internal/construct"
	"github.com/corvid-web/corvid/service"
	"github.com/corvid-web/corvid/transport"
	"github.com/dchest/uniuri"
	"go.uber.org/zap"
)

const connIDLen = 8

type state uint8

const (
	stateHandshaking state = iota + 1
	stateDispatching
	stateDone
)

// handshaking owns exactly what the negotiation step needs and nothing of the
// steady state.
type handshaking struct {
	factory    service.Factory
	negotiator Negotiator
}

// Bootstrap is the per-connection state machine. It enters Handshaking right on
// accept, transitions to Dispatching exactly once and never backwards, and is
// advanced by repeated polls.
type Bootstrap struct {
	state       state
	handshaking *handshaking
	dispatching *Dispatcher

	id       string
	cfg      *config.Config
	client   transport.Client
	appState *appdata.Registry
	log      *zap.Logger
}

// Option tunes a Bootstrap beyond its required collaborators.
type Option func(*Bootstrap)

// WithLogger replaces the no-op default logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Bootstrap) {
		b.log = log
	}
}

// WithState attaches the shared application data registry, stamped onto every
// request the connection serves.
func WithState(registry *appdata.Registry) Option {
	return func(b *Bootstrap) {
		b.appState = registry
	}
}

func NewBootstrap(
	cfg *config.Config,
	client transport.Client,
	factory service.Factory,
	negotiator Negotiator,
	opts ...Option,
) *Bootstrap {
	b := &Bootstrap{
		state: stateHandshaking,
		handshaking: &handshaking{
			factory:    factory,
			negotiator: negotiator,
		},
		id:     uniuri.NewLen(connIDLen),
		cfg:    cfg,
		client: client,
		log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(b)
	}

	b.log = b.log.With(zap.String("conn", b.id))

	return b
}

// ID returns the connection identifier all the logs of this connection carry.
func (b *Bootstrap) ID() string {
	return b.id
}

// Poll advances the machine by a single step. Done reports the connection is
// over, whether cleanly or by the returned error. A successful handshake re-polls
// immediately in the new state, so the first request never waits for an extra
// scheduling round.
func (b *Bootstrap) Poll(ctx context.Context) (done bool, err error) {
	switch b.state {
	case stateHandshaking:
		if err = b.handshake(ctx); err != nil {
			b.state = stateDone
			return true, err
		}

		return b.Poll(ctx)
	case stateDispatching:
		done, err = b.dispatching.Poll(ctx)
		if done {
			b.state = stateDone
		}

		return done, err
	default:
		return true, nil
	}
}

// Run polls the machine until the connection is over and releases it afterwards.
func (b *Bootstrap) Run(ctx context.Context) error {
	for {
		done, err := b.Poll(ctx)
		if done {
			b.shutdown()
			return err
		}
	}
}

func (b *Bootstrap) handshake(ctx context.Context) error {
	hs := b.handshaking
	b.handshaking = nil

	info := service.ConnInfo{
		ID:         b.id,
		Remote:     b.client.Remote(),
		Encryption: encryptionOf(b.client.Conn()),
	}

	svc, err := hs.factory.Build(ctx, info)
	if err != nil {
		b.log.Error("service initialization failed", zap.Error(err))
		return &InitError{Cause: err}
	}

	conn, err := hs.negotiator.Negotiate(ctx, b.client)
	if err != nil {
		b.log.Error("negotiation failed", zap.Error(err))
		return &DispatchError{Cause: err}
	}

	b.dispatching = NewDispatcher(
		b.cfg, conn, svc, info,
		construct.Request(b.cfg, info.Remote),
		b.client, b.appState, b.log,
	)
	b.state = stateDispatching
	b.log.Debug("negotiated")

	return nil
}

// shutdown bounds the time a half-closed connection may spend flushing whatever
// the transport still holds, then releases it.
func (b *Bootstrap) shutdown() {
	if raw := b.client.Conn(); raw != nil {
		_ = raw.SetDeadline(time.Now().Add(b.cfg.NET.GracefulDisconnectTimeout))
	}

	if b.dispatching != nil {
		_ = b.dispatching.conn.Close()
	}

	_ = b.client.Close()
}

func encryptionOf(conn net.Conn) uint16 {
	if tlsConn, ok := conn.(*tls.Conn); ok {
		return tlsConn.ConnectionState().Version
	}

	return 0
}
