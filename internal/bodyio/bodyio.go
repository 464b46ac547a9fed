// Package bodyio implements body piece sources feeding http.Body: a plain reader
// bounded by Content-Length, a chunked reader on top of the chunked transfer
// encoding, and an in-memory one for tests.
package bodyio

import (
	"io"
	"math"

	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/http/status"
	"github.com/corvid-web/corvid/transport"
	"github.com/indigo-web/chunkedbody"
)

type plain struct {
	client     transport.Client
	maxBodyLen uint
	bytesLeft  uint
}

// Plain returns a source of exactly contentLength body bytes read off the client.
func Plain(client transport.Client, contentLength int, maxBodyLen uint) http.Retriever {
	return &plain{
		client:     client,
		maxBodyLen: maxBodyLen,
		bytesLeft:  uint(contentLength),
	}
}

func (p *plain) Retrieve() (body []byte, err error) {
	if p.bytesLeft == 0 {
		return nil, io.EOF
	}

	if p.bytesLeft > p.maxBodyLen {
		return nil, status.ErrBodyTooLarge
	}

	data, err := p.client.Read()
	if err != nil {
		return nil, err
	}

	if dataLen := uint(len(data)); dataLen >= p.bytesLeft {
		body, data = data[:p.bytesLeft], data[p.bytesLeft:]
		p.client.Pushback(data)
		p.bytesLeft = 0
		err = io.EOF
	} else {
		p.bytesLeft -= dataLen
		body = data
	}

	return body, err
}

type chunked struct {
	client     transport.Client
	parser     *chunkedbody.Parser
	maxBodyLen uint
	received   uint
	hasTrailer bool
}

// Chunked returns a source decoding the chunked transfer encoding off the client.
func Chunked(client transport.Client, parser *chunkedbody.Parser, maxBodyLen uint, hasTrailer bool) http.Retriever {
	return &chunked{
		client:     client,
		parser:     parser,
		maxBodyLen: maxBodyLen,
		hasTrailer: hasTrailer,
	}
}

func (c *chunked) Retrieve() (body []byte, err error) {
	data, err := c.client.Read()
	if err != nil {
		return nil, err
	}

	chunk, extra, err := c.parser.Parse(data, c.hasTrailer)
	switch err {
	case nil, io.EOF:
	default:
		return nil, err
	}

	received, overflows := adduint(c.received, uint(len(chunk)))
	if overflows || received > c.maxBodyLen {
		return nil, status.ErrBodyTooLarge
	}

	c.received = received
	c.client.Pushback(extra)

	return chunk, err
}

type buffered struct {
	pieces [][]byte
}

// Buffered returns an in-memory source yielding the passed pieces one by one.
func Buffered(pieces ...[]byte) http.Retriever {
	return &buffered{pieces: pieces}
}

func (b *buffered) Retrieve() ([]byte, error) {
	switch len(b.pieces) {
	case 0:
		return nil, io.EOF
	case 1:
		piece := b.pieces[0]
		b.pieces = nil

		return piece, io.EOF
	default:
		piece := b.pieces[0]
		b.pieces = b.pieces[1:]

		return piece, nil
	}
}

func adduint(x, y uint) (uint, bool) {
	return x + y, math.MaxUint-x < y
}
