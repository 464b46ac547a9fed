package server

import (
	"context"
	"errors"
	"io"
	"net"
	"os"

	"github.com/corvid-web/corvid/appdata"
	"github.com/corvid-web/corvid/config"
	"github.com/corvid-web/corvid/extract"
	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/http/status"
	"github.com/corvid-web/corvid/service"
	"github.com/corvid-web/corvid/transport"
	"go.uber.org/zap"
)

// Dispatcher is the steady-state request/response loop of a negotiated
// connection. One poll serves at most one request; the first head read is bounded
// by the header-read timeout, all the following ones by the keep-alive timeout.
type Dispatcher struct {
	cfg      *config.Config
	conn     Conn
	svc      service.Service
	info     service.ConnInfo
	request  *http.Request
	client   transport.Client
	appState *appdata.Registry
	log      *zap.Logger
	served   uint64
}

func NewDispatcher(
	cfg *config.Config,
	conn Conn,
	svc service.Service,
	info service.ConnInfo,
	request *http.Request,
	client transport.Client,
	appState *appdata.Registry,
	log *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		conn:     conn,
		svc:      svc,
		info:     info,
		request:  request,
		client:   client,
		appState: appState,
		log:      log,
	}
}

// Served reports how many requests the connection completed so far.
func (d *Dispatcher) Served() uint64 {
	return d.served
}

// Poll serves a single request. Done reports the connection is over; the error,
// when set, names the transport-level reason. Request-level failures are
// recovered into responses and keep the connection alive.
func (d *Dispatcher) Poll(ctx context.Context) (done bool, err error) {
	if err = d.svc.Ready(ctx); err != nil {
		return true, &DispatchError{Cause: err}
	}

	timeout := d.cfg.NET.HeaderReadTimeout
	if d.served > 0 {
		timeout = d.cfg.NET.KeepAlive
	}
	d.client.SetReadTimeout(timeout)

	switch err = d.conn.Next(d.request); {
	case err == nil:
	case errors.Is(err, io.EOF):
		return true, nil
	case isTimeout(err):
		// the peer may well be gone already, so delivery is best-effort
		_ = d.conn.Respond(d.request, http.Error(d.request, status.ErrRequestTimeout))
		return true, nil
	default:
		return true, &DispatchError{Cause: err}
	}

	d.request.Ctx = ctx
	d.request.Env.State = d.appState
	d.request.Env.Encryption = d.info.Encryption

	resp, err := d.svc.Call(ctx, d.request)
	if err != nil {
		resp = d.recover(err)
	}
	if resp == nil {
		resp = http.Respond(d.request)
	}

	if err = d.conn.Respond(d.request, resp); err != nil {
		return true, &DispatchError{Cause: err}
	}

	d.served++

	if d.cfg.NET.KeepAlive == 0 {
		return true, nil
	}

	if err = d.request.Reset(); err != nil {
		return true, &DispatchError{Cause: err}
	}

	return false, nil
}

// recover maps a request-level failure into a response. Extraction failures still
// carry the original request, so the diagnostics render against its metadata.
func (d *Dispatcher) recover(err error) *http.Response {
	d.log.Debug("request failed", zap.Error(err))

	var exErr *extract.Error
	if errors.As(err, &exErr) {
		return http.Error(exErr.Request, exErr.Cause)
	}

	return http.Error(d.request, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
