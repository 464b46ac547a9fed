package http

import (
	"io"

	"github.com/corvid-web/corvid/config"
	"github.com/indigo-web/utils/uf"
)

type BodyCallback func([]byte) error

// Retriever is a source of body pieces, installed by the transport per request.
// The final piece is returned along io.EOF.
type Retriever interface {
	// Retrieve reads and returns a piece of body available for processing.
	Retrieve() ([]byte, error)
}

// NoBody is a Retriever of an empty body.
var NoBody Retriever = noBody{}

type noBody struct{}

func (noBody) Retrieve() ([]byte, error) { return nil, io.EOF }

// Body provides streaming and buffered access to the request body. A single entity
// lives as long as the connection does and is re-armed for every request via Init.
type Body struct {
	src     Retriever
	cfg     *config.Config
	buff    []byte
	pending []byte
	error   error
}

func NewBody(cfg *config.Config) *Body {
	return &Body{
		src: NoBody,
		cfg: cfg,
	}
}

// Init arms the body with a fresh source, discarding any leftover state of the
// previous request.
func (b *Body) Init(src Retriever) {
	b.src = src
	b.buff = b.buff[:0]
	b.pending = nil
	b.error = nil
}

// Callback invokes the callback every time there's a piece of body available for
// reading. The callback is not notified when there's no more data or a networking
// error has occurred.
//
// Please note: this method can be used only once.
func (b *Body) Callback(cb BodyCallback) error {
	if b.error != nil {
		return b.error
	}

	for {
		var data []byte
		data, b.error = b.src.Retrieve()
		switch b.error {
		case nil:
		case io.EOF:
			return cb(data)
		default:
			return b.error
		}

		if b.error = cb(data); b.error != nil {
			return b.error
		}
	}
}

// Bytes returns the whole body at once in a byte representation.
func (b *Body) Bytes() ([]byte, error) {
	if len(b.buff) != 0 {
		return b.buff, nil
	}

	if b.error != nil {
		return nil, b.error
	}

	if b.buff == nil {
		b.buff = make([]byte, 0, b.cfg.Body.BufferPrealloc)
	}

	for {
		var data []byte
		data, b.error = b.src.Retrieve()
		b.buff = append(b.buff, data...)
		switch b.error {
		case nil:
		case io.EOF:
			return b.buff, nil
		default:
			return nil, b.error
		}
	}
}

// String returns the whole body at once in a string representation.
func (b *Body) String() (string, error) {
	bytes, err := b.Bytes()
	return uf.B2S(bytes), err
}

// Read implements the io.Reader interface.
func (b *Body) Read(into []byte) (n int, err error) {
	if len(b.pending) == 0 && b.error == nil {
		b.pending, b.error = b.src.Retrieve()
	}

	n = copy(into, b.pending)
	b.pending = b.pending[n:]

	if len(b.pending) == 0 && b.error != nil {
		err = b.error
	}

	return n, err
}

// Discard reads the rest of the body out without storing it anywhere.
func (b *Body) Discard() error {
	for b.error == nil {
		_, b.error = b.src.Retrieve()
	}

	if b.error == io.EOF {
		return nil
	}

	return b.error
}
