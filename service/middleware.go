package service

import (
	"context"

	"github.com/corvid-web/corvid/http"
)

// Middleware decorates a service without the inner one knowing about the wrapping.
type Middleware func(Service) Service

// Chain applies middlewares to every service the factory produces. The first
// middleware becomes the outermost decorator, so Chain(f, a, b) dispatches as
// a(b(inner)).
func Chain(factory Factory, middlewares ...Middleware) Factory {
	return FactoryFunc(func(ctx context.Context, conn ConnInfo) (Service, error) {
		inner, err := factory.Build(ctx, conn)
		if err != nil {
			return nil, err
		}

		return Wrap(inner, middlewares...), nil
	})
}

// Wrap applies middlewares to an already built service, first one outermost.
func Wrap(s Service, middlewares ...Middleware) Service {
	for i := len(middlewares) - 1; i >= 0; i-- {
		s = middlewares[i](s)
	}

	return s
}

type decorated struct {
	inner Service
	call  func(ctx context.Context, request *http.Request) (*http.Response, error)
}

func (d decorated) Ready(ctx context.Context) error {
	return d.inner.Ready(ctx)
}

func (d decorated) Call(ctx context.Context, request *http.Request) (*http.Response, error) {
	return d.call(ctx, request)
}

// MapResponse converts every successful response of the inner service. Errors pass
// through untouched.
func MapResponse(fn func(*http.Response) *http.Response) Middleware {
	return func(inner Service) Service {
		return decorated{
			inner: inner,
			call: func(ctx context.Context, request *http.Request) (*http.Response, error) {
				resp, err := inner.Call(ctx, request)
				if err != nil {
					return resp, err
				}

				return fn(resp), nil
			},
		}
	}
}

// MapError intercepts errors of the inner service, letting an outer layer render a
// custom error response from the original request before the uniform conversion
// kicks in.
func MapError(fn func(ctx context.Context, request *http.Request, err error) (*http.Response, error)) Middleware {
	return func(inner Service) Service {
		return decorated{
			inner: inner,
			call: func(ctx context.Context, request *http.Request) (*http.Response, error) {
				resp, err := inner.Call(ctx, request)
				if err != nil {
					return fn(ctx, request, err)
				}

				return resp, nil
			},
		}
	}
}

// Recover converts every error of the inner service into a well-formed error
// response, so the connection stays reusable.
func Recover() Middleware {
	return MapError(func(_ context.Context, request *http.Request, err error) (*http.Response, error) {
		return http.Error(request, err), nil
	})
}
