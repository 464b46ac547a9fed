package http

// Responder is anything convertible into a response, given the request it responds
// to. The request is passed in because the produced response may legitimately depend
// on request headers, e.g. conditional and range logic of file responders.
type Responder interface {
	Respond(request *Request) (*Response, error)
}

// ResponderFunc adapts a plain function to the Responder interface.
type ResponderFunc func(request *Request) (*Response, error)

func (f ResponderFunc) Respond(request *Request) (*Response, error) {
	return f(request)
}
