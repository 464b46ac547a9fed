package server

import (
	"github.com/corvid-web/corvid/http"
)

// Conn is the boundary towards wire framing, which stays outside the dispatch
// core. A Conn yields parsed request heads on one side and accepts finalized
// responses on the other; how the bytes are framed in between is its own business.
type Conn interface {
	// Next parses the upcoming request into the passed head and arms its body with
	// the matching source. io.EOF reports a cleanly finished connection; any other
	// error is a protocol or transport failure terminal to the connection.
	Next(request *http.Request) error
	// Respond serializes the response of the given request, consuming and releasing
	// the attached body stream, if any.
	Respond(request *http.Request, response *http.Response) error
	Close() error
}
