package extract

import (
	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/http/status"
)

// Header derives the first value of the named request header. Absence fails the
// extraction with 400.
func Header(key string) Spec[string] {
	return Spec[string]{
		Name: "header " + key,
		Func: func(request *http.Request) (string, error) {
			value, found := request.Headers.Get(key)
			if !found {
				return "", status.NewError(status.BadRequest, "missing required header: "+key)
			}

			return value, nil
		},
	}
}

// OptionalHeader derives the first value of the named header, or the fallback when
// the header is absent.
func OptionalHeader(key, fallback string) Spec[string] {
	return Spec[string]{
		Name: "header " + key,
		Func: func(request *http.Request) (string, error) {
			return request.Headers.ValueOr(key, fallback), nil
		},
	}
}
