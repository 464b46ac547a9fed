// Package corvid assembles the connection-to-response dispatch core into a
// runnable application: TCP listeners feeding per-connection bootstrap machines,
// which negotiate a protocol and drive request dispatch through a service built
// for each connection.
package corvid

import (
	"context"
	"errors"
	"net"

	"github.com/corvid-web/corvid/appdata"
	"github.com/corvid-web/corvid/config"
	"github.com/corvid-web/corvid/internal/construct"
	"github.com/corvid-web/corvid/server"
	"github.com/corvid-web/corvid/service"
	"github.com/corvid-web/corvid/transport"
	"go.uber.org/zap"
)

// App collects listeners, configuration and shared application data, then serves
// a service factory over them.
type App struct {
	addrs []string
	cfg   *config.Config
	sup   *transport.Supervisor
	state *appdata.Registry
	log   *zap.Logger
}

// New returns an application listening on the given address once served.
func New(addr string) *App {
	return &App{
		addrs: []string{addr},
		cfg:   config.Default(),
		sup:   transport.NewSupervisor(),
		state: appdata.New(),
		log:   zap.NewNop(),
	}
}

// Tune replaces the default configuration. Zero values of the passed config are
// filled with defaults.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = config.Fill(cfg)
	return a
}

// Listen adds one more address to accept connections on.
func (a *App) Listen(addr string) *App {
	a.addrs = append(a.addrs, addr)
	return a
}

// WithLogger replaces the no-op default logger.
func (a *App) WithLogger(log *zap.Logger) *App {
	a.log = log
	return a
}

// WithState registers shared application values, one per type, reachable from
// every request via the state extractor. Repeated calls accumulate; a value of an
// already registered type replaces the previous one.
func (a *App) WithState(values ...any) *App {
	a.state = a.state.With(values...)
	return a
}

// Serve binds all the listeners and accepts connections until the first listener
// fails or Stop is called. Every accepted connection negotiates its protocol via
// the negotiator and dispatches requests into a service built by the factory.
func (a *App) Serve(factory service.Factory, negotiator server.Negotiator) error {
	if factory == nil {
		return errors.New("corvid: no service factory")
	}
	if negotiator == nil {
		return errors.New("corvid: no negotiator")
	}

	for _, addr := range a.addrs {
		if err := a.sup.Add(addr, transport.NewTCP(), a.onConn(factory, negotiator)); err != nil {
			return err
		}

		a.log.Info("listening", zap.String("addr", addr))
	}

	return a.sup.Run(a.cfg.NET)
}

// Stop interrupts the accept loops and waits for the connections being served at
// the moment of the call to finish on their own. The call blocks until then.
func (a *App) Stop() {
	a.sup.Stop()
}

func (a *App) onConn(factory service.Factory, negotiator server.Negotiator) func(net.Conn) {
	return func(conn net.Conn) {
		client := construct.Client(a.cfg.NET, conn)
		bootstrap := server.NewBootstrap(
			a.cfg, client, factory, negotiator,
			server.WithLogger(a.log), server.WithState(a.state),
		)

		if err := bootstrap.Run(context.Background()); err != nil {
			a.log.Debug("connection over", zap.Error(err))
		}
	}
}
