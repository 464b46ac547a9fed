package http

import (
	"context"
	"net"

	"github.com/corvid-web/corvid/appdata"
	"github.com/corvid-web/corvid/config"
	"github.com/corvid-web/corvid/http/method"
	"github.com/corvid-web/corvid/http/proto"
	"github.com/corvid-web/corvid/kv"
)

var zeroContext = context.Background()

type (
	Headers = *kv.Storage
	Params  = *kv.Storage
)

// Request represents an HTTP request head plus a body stream handle. The head is
// owned by the connection and recycled between requests, so no field may be retained
// past the response.
type Request struct {
	// Method is an enum representing the request method.
	Method method.Method
	// Path is a decoded and validated string, guaranteed to hold ASCII-printable
	// characters only.
	Path string
	// Params are request URI parameters.
	Params Params
	// Protocol is the enum of a protocol used for the request.
	Protocol proto.Protocol
	// Headers holds non-normalized header pairs, even though lookup is
	// case-insensitive.
	Headers Headers
	// ContentLength is the value of the Content-Length header, if any.
	ContentLength int
	// ContentType is the value of the Content-Type header, if any.
	ContentType string
	// Chunked reports whether the body arrives chunk-encoded.
	Chunked bool
	// Remote holds the remote address. Please note that this is generally not a good
	// parameter to identify a user, because there might be proxies in the middle.
	Remote net.Addr
	// Ctx is the connection-scoped context. It is never automatically cleared
	// between requests.
	Ctx context.Context
	// Env contains a fixed set of contextual values which are useful in specific
	// cases. They aren't passed via the Ctx due to type safety considerations.
	Env Environment
	// Body is a dedicated entity providing access to the message body.
	Body *Body

	response *Response
	cfg      *config.Config
}

// Environment replaces an untyped per-request extension map with a fixed, typed set
// of attachments.
type Environment struct {
	// Error contains an error, if occurred.
	Error error
	// AllowedMethods passes a string containing all the allowed methods for a
	// specific endpoint. Has non-zero value only when 405 Method Not Allowed raises.
	AllowedMethods string
	// State is a read-only registry of shared application values, consulted by state
	// extractors. Shared between all the connections.
	State *appdata.Registry
	// Route is a read-only registry of per-route extractor configuration.
	Route *appdata.Registry
	// Encryption is comparable against the tls.Version... enums. Zero value means no
	// encryption.
	Encryption uint16
}

func NewRequest(cfg *config.Config, response *Response, remote net.Addr) *Request {
	return &Request{
		Method:   method.Unknown,
		Protocol: proto.HTTP11,
		Params:   kv.New(),
		Headers:  kv.NewPrealloc(cfg.Headers.Prealloc),
		Remote:   remote,
		Ctx:      zeroContext,
		Body:     NewBody(cfg),
		response: response,
		cfg:      cfg,
	}
}

// Respond returns the response builder of the request.
//
// WARNING: this method clears the builder under the hood. As it is passed by
// reference, it'll be cleared EVERYWHERE along a handler.
func (r *Request) Respond() *Response {
	return r.response.Clear()
}

// Config exposes the configuration of the connection the request arrived on.
func (r *Request) Config() *config.Config {
	return r.cfg
}

// Reset clears the request head and drains the unread body remainder, so the
// connection can proceed to the next request. The error can only originate from
// reading the body out.
func (r *Request) Reset() error {
	err := r.Body.Discard()

	r.Method = method.Unknown
	r.Path = ""
	r.Protocol = proto.HTTP11
	r.Params.Clear()
	r.Headers.Clear()
	r.ContentLength = 0
	r.ContentType = ""
	r.Chunked = false
	r.Env = Environment{}

	return err
}
