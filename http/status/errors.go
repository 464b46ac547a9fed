package status

// HTTPError carries a status code next to the message, letting error mapping layers
// render a well-formed response without guessing.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrCloseConnection = NewError(CloseConnection, "actively closing the connection")

	ErrBadRequest                   = NewError(BadRequest, "bad request")
	ErrNotFound                     = NewError(NotFound, "not found")
	ErrInternalServerError          = NewError(InternalServerError, "internal server error")
	ErrNotImplemented               = NewError(NotImplemented, "not implemented")
	ErrMethodNotAllowed             = NewError(MethodNotAllowed, "method not allowed")
	ErrBodyTooLarge                 = NewError(RequestEntityTooLarge, "request body is too large")
	ErrRequestTimeout               = NewError(RequestTimeout, "request timeout")
	ErrLengthRequired               = NewError(LengthRequired, "length required")
	ErrPreconditionFailed           = NewError(PreconditionFailed, "precondition failed")
	ErrUnsupportedMediaType         = NewError(UnsupportedMediaType, "unsupported media type")
	ErrRequestedRangeNotSatisfiable = NewError(RequestedRangeNotSatisfiable, "requested range is not satisfiable")
	ErrUnprocessableEntity          = NewError(UnprocessableEntity, "unprocessable entity")
	ErrServiceUnavailable           = NewError(ServiceUnavailable, "service temporarily unavailable")
	ErrHTTPVersionNotSupported      = NewError(HTTPVersionNotSupported, "HTTP version not supported")
)
