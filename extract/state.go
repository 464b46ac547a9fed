package extract

import (
	"github.com/corvid-web/corvid/appdata"
	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/http/status"
)

// State derives a shared application value of type T, previously registered in the
// application state registry. The lookup never copies: handlers across all the
// connections observe the same read-only snapshot.
func State[T any]() Spec[T] {
	return Spec[T]{
		Name: "state",
		Func: func(request *http.Request) (T, error) {
			value, found := appdata.Of[T](request.Env.State)
			if !found {
				return value, status.NewError(
					status.InternalServerError,
					"requested application state is not configured",
				)
			}

			return value, nil
		},
	}
}
