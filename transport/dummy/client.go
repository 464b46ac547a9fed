// Package dummy contains transport doubles used in tests and benchmarks.
package dummy

import (
	"io"
	"net"
	"time"

	"github.com/corvid-web/corvid/transport"
)

var _ transport.Client = new(CircularClient)

// CircularClient is a client that on every read-operation returns the same data as it
// was initialised with, in pieces. One-time mode turns it into a plain scripted
// client returning io.EOF once the pieces are over.
type CircularClient struct {
	data            [][]byte
	tmp             []byte
	written         []byte
	pointer         int
	closed, oneTime bool
}

func NewCircularClient(data ...[]byte) *CircularClient {
	return &CircularClient{
		data: data,
	}
}

func (c *CircularClient) Read() ([]byte, error) {
	if c.closed {
		return nil, io.EOF
	}

	if len(c.tmp) > 0 {
		data := c.tmp
		c.tmp = nil

		return data, nil
	}

	if c.pointer >= len(c.data) {
		if c.oneTime {
			c.closed = true
			return nil, io.EOF
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *CircularClient) Pushback(takeback []byte) {
	c.tmp = takeback
}

func (c *CircularClient) Write(p []byte) (int, error) {
	c.written = append(c.written, p...)
	return len(p), nil
}

// Written exposes everything passed to Write so far.
func (c *CircularClient) Written() []byte {
	return c.written
}

func (*CircularClient) SetReadTimeout(time.Duration) {}

func (*CircularClient) Conn() net.Conn {
	return nil
}

func (*CircularClient) Remote() net.Addr {
	return nil
}

func (c *CircularClient) Close() error {
	c.closed = true
	return nil
}

func (c *CircularClient) Closed() bool {
	return c.closed
}

// OneTime disables the circular behaviour.
func (c *CircularClient) OneTime() *CircularClient {
	c.oneTime = true
	return c
}

func NewNopClient() *CircularClient {
	return NewCircularClient().OneTime()
}
