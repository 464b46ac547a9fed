package service

import (
	"context"
	"errors"

	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/http/status"
	"github.com/sony/gobreaker"
)

// Breaker decorates a service with a circuit breaker. While the breaker is open,
// calls are failed fast with 503 Service Unavailable instead of reaching the inner
// service.
func Breaker(settings gobreaker.Settings) Middleware {
	return func(inner Service) Service {
		cb := gobreaker.NewCircuitBreaker(settings)

		return decorated{
			inner: inner,
			call: func(ctx context.Context, request *http.Request) (*http.Response, error) {
				result, err := cb.Execute(func() (any, error) {
					return inner.Call(ctx, request)
				})
				if err != nil {
					if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
						return http.Error(request, status.ErrServiceUnavailable), nil
					}

					return nil, err
				}

				return result.(*http.Response), nil
			},
		}
	}
}
