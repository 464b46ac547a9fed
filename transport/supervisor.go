package transport

import (
	"net"
	"sync/atomic"

	"github.com/corvid-web/corvid/config"
	"golang.org/x/sync/errgroup"
)

// Supervisor runs a set of bound listeners until the first of them fails or a stop is
// requested. On either event the remaining listeners are stopped and waited for.
type Supervisor struct {
	stopped *atomic.Bool
	ts      []boundListener
}

type boundListener struct {
	cb func(conn net.Conn)
	l  Listener
}

func NewSupervisor() *Supervisor {
	return &Supervisor{
		stopped: new(atomic.Bool),
	}
}

func (s *Supervisor) Add(addr string, l Listener, cb func(net.Conn)) error {
	if err := l.Bind(addr); err != nil {
		s.close()
		return err
	}

	s.ts = append(s.ts, boundListener{
		cb: cb,
		l:  l,
	})

	return nil
}

func (s *Supervisor) Run(cfg config.NET) error {
	if len(s.ts) == 0 {
		return nil
	}

	g := new(errgroup.Group)

	for _, bound := range s.ts {
		bound := bound
		g.Go(func() error {
			defer s.stop()
			return bound.l.Listen(cfg, bound.cb)
		})
	}

	err := g.Wait()
	s.close()

	return err
}

// Stop interrupts all the accept loops. Run returns once the connections served at
// the moment of the call are finished.
func (s *Supervisor) Stop() {
	s.stop()
}

func (s *Supervisor) stop() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}

	for _, bound := range s.ts {
		bound.l.Stop()
	}

	for _, bound := range s.ts {
		bound.l.Wait()
	}
}

func (s *Supervisor) close() {
	for _, bound := range s.ts {
		bound.l.Close()
	}
}
