package http

import (
	"io"

	"github.com/corvid-web/corvid/http/mime"
	"github.com/corvid-web/corvid/http/status"
	"github.com/corvid-web/corvid/kv"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

const (
	// why 7? I don't know. There's no theory behind this number nor researches.
	preallocRespHeaders = 7

	DefaultContentType = mime.HTML
)

// Fields is the flat set of values a response builder accumulates. The transport
// reveals it once the handler is done in order to serialize the response.
type Fields struct {
	Code             status.Code
	Status           status.Status
	ContentType      string
	ContentEncoding  string
	TransferEncoding string
	Headers          []kv.Pair
	Body             []byte
	// Stream, when set, supersedes Body. StreamSize below zero means the size isn't
	// known in advance.
	Stream     io.Reader
	StreamSize int64
}

func (f Fields) Clear() Fields {
	f.Code = status.OK
	f.Status = ""
	f.ContentType = DefaultContentType
	f.ContentEncoding = ""
	f.TransferEncoding = ""
	f.Headers = f.Headers[:0]
	f.Body = nil
	f.Stream = nil
	f.StreamSize = 0

	return f
}

// CloseStream releases the attached stream, if it needs releasing.
func (f Fields) CloseStream() {
	if closer, ok := f.Stream.(io.Closer); ok {
		_ = closer.Close()
	}
}

// Response is a builder of a response head and body description. It deliberately
// never fails in-place: methods that can fail have Try-prefixed variants, and the
// rest store the error to be rendered by the dispatch loop.
type Response struct {
	fields Fields
}

// NewResponse returns a new instance of the Response builder with the status code
// set to 200 OK, pre-allocated space for the headers and text/html content-type.
//
// NOTE: it's recommended to use Request.Respond() inside of handlers, if there's no
// clear reason otherwise.
func NewResponse() *Response {
	return &Response{
		fields: Fields{
			Code:        status.OK,
			Headers:     make([]kv.Pair, 0, preallocRespHeaders),
			ContentType: DefaultContentType,
		},
	}
}

// Code sets the response code. The status text is derived automatically unless set
// explicitly via Status.
func (r *Response) Code(code status.Code) *Response {
	r.fields.Code = code
	return r
}

// Status sets a custom status text. Usually totally ignored by clients.
func (r *Response) Status(status status.Status) *Response {
	r.fields.Status = status
	return r
}

// ContentType sets a custom Content-Type header value.
func (r *Response) ContentType(value mime.MIME) *Response {
	r.fields.ContentType = value
	return r
}

// ContentEncoding sets a custom Content-Encoding header value.
func (r *Response) ContentEncoding(value string) *Response {
	r.fields.ContentEncoding = value
	return r
}

// TransferEncoding sets a custom Transfer-Encoding header value.
func (r *Response) TransferEncoding(value string) *Response {
	r.fields.TransferEncoding = value
	return r
}

// Header sets header values to a key. In case it already exists the value will be
// appended.
func (r *Response) Header(key string, values ...string) *Response {
	switch {
	case strcomp.EqualFold(key, "content-type"):
		return r.ContentType(values[0])
	case strcomp.EqualFold(key, "content-encoding"):
		return r.ContentEncoding(values[0])
	case strcomp.EqualFold(key, "transfer-encoding"):
		return r.TransferEncoding(values[0])
	}

	for i := range values {
		r.fields.Headers = append(r.fields.Headers, kv.Pair{
			Key:   key,
			Value: values[i],
		})
	}

	return r
}

// Headers merges passed headers into the response.
func (r *Response) Headers(headers map[string][]string) *Response {
	resp := r

	for k, v := range headers {
		resp = resp.Header(k, v...)
	}

	return resp
}

// String sets the response body to the passed string.
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes sets the response body to the passed slice WITHOUT COPYING. Changing the
// passed slice later will affect the response by itself.
func (r *Response) Bytes(body []byte) *Response {
	r.fields.Body = body
	return r
}

// Write implements the io.Writer interface.
func (r *Response) Write(b []byte) (n int, err error) {
	r.fields.Body = append(r.fields.Body, b...)
	return len(b), nil
}

// Attachment sets the response body to a stream. If size is negative, the length
// isn't known in advance and chunked transfer encoding is used by transports able
// to carry it.
func (r *Response) Attachment(reader io.Reader, size int64) *Response {
	r.fields.Stream = reader
	r.fields.StreamSize = size
	return r
}

// TryJSON serializes the model into the response body and sets the corresponding
// content-type.
func (r *Response) TryJSON(model any) (*Response, error) {
	r.fields.Body = r.fields.Body[:0]
	stream := json.ConfigDefault.BorrowStream(r)
	stream.WriteVal(model)
	err := stream.Flush()
	json.ConfigDefault.ReturnStream(stream)

	return r.ContentType(mime.JSON), err
}

// JSON does the same as TryJSON does, except a returned error is implicitly wrapped
// by Error.
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// Error renders the passed error. If an instance of status.HTTPError is passed, the
// code is set automatically. A custom code can be passed, however only the first
// one will be used. By default, the code is 500 Internal Server Error and the body
// carries the error text as a diagnostic.
func (r *Response) Error(err error, code ...status.Code) *Response {
	if err == nil {
		return r
	}

	if httperr, ok := err.(status.HTTPError); ok {
		return r.
			Code(httperr.Code).
			ContentType(mime.Plain).
			String(httperr.Message)
	}

	c := status.InternalServerError
	if len(code) > 0 {
		// peek the first, ignore the rest
		c = code[0]
	}

	return r.
		Code(c).
		ContentType(mime.Plain).
		String(err.Error())
}

// Respond implements the Responder interface, so a ready response can be returned
// where any responder is expected.
func (r *Response) Respond(*Request) (*Response, error) {
	return r, nil
}

// Reveal returns the accumulated fields. Used mostly by transports.
func (r *Response) Reveal() *Fields {
	return &r.fields
}

// Clear discards everything was done with the builder before.
func (r *Response) Clear() *Response {
	r.fields = r.fields.Clear()
	return r
}

// Respond is a predicate to request.Respond(). May be used as a dummy handler.
func Respond(request *Request) *Response {
	return request.Respond()
}

// Code is a predicate to request.Respond().Code(...)
func Code(request *Request, code status.Code) *Response {
	return request.Respond().Code(code)
}

// Error is a predicate to request.Respond().Error(...)
func Error(request *Request, err error, code ...status.Code) *Response {
	return request.Respond().Error(err, code...)
}
