package extract

import (
	"context"

	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/service"
)

// The HandleN constructors adapt a pure handler plus its argument specs into a
// service. Specs run in declaration order; a failing one aborts the rest. The
// handler's responder is converted into a response using the original request, as
// the output may depend on request headers (range and conditional logic above all).

type handlerService struct {
	call func(ctx context.Context, request *http.Request) (*http.Response, error)
}

func (s handlerService) Ready(context.Context) error {
	return nil
}

func (s handlerService) Call(ctx context.Context, request *http.Request) (*http.Response, error) {
	return s.call(ctx, request)
}

func Handle0(fn func(ctx context.Context, request *http.Request) (http.Responder, error)) service.Service {
	return handlerService{call: func(ctx context.Context, request *http.Request) (*http.Response, error) {
		return finish(request, fn(ctx, request))
	}}
}

func Handle1[A any](
	sa Spec[A],
	fn func(ctx context.Context, a A) (http.Responder, error),
) service.Service {
	oneBodyConsumer(sa.Consumes)

	return handlerService{call: func(ctx context.Context, request *http.Request) (*http.Response, error) {
		a, err := sa.FromRequest(request)
		if err != nil {
			return nil, fail(0, sa, err, request)
		}

		return finish(request, fn(ctx, a))
	}}
}

func Handle2[A, B any](
	sa Spec[A], sb Spec[B],
	fn func(ctx context.Context, a A, b B) (http.Responder, error),
) service.Service {
	oneBodyConsumer(sa.Consumes, sb.Consumes)

	return handlerService{call: func(ctx context.Context, request *http.Request) (*http.Response, error) {
		a, err := sa.FromRequest(request)
		if err != nil {
			return nil, fail(0, sa, err, request)
		}

		b, err := sb.FromRequest(request)
		if err != nil {
			return nil, fail(1, sb, err, request)
		}

		return finish(request, fn(ctx, a, b))
	}}
}

func Handle3[A, B, C any](
	sa Spec[A], sb Spec[B], sc Spec[C],
	fn func(ctx context.Context, a A, b B, c C) (http.Responder, error),
) service.Service {
	oneBodyConsumer(sa.Consumes, sb.Consumes, sc.Consumes)

	return handlerService{call: func(ctx context.Context, request *http.Request) (*http.Response, error) {
		a, err := sa.FromRequest(request)
		if err != nil {
			return nil, fail(0, sa, err, request)
		}

		b, err := sb.FromRequest(request)
		if err != nil {
			return nil, fail(1, sb, err, request)
		}

		c, err := sc.FromRequest(request)
		if err != nil {
			return nil, fail(2, sc, err, request)
		}

		return finish(request, fn(ctx, a, b, c))
	}}
}

// finish converts a handler outcome into a response. Handler errors are mapped via
// the uniform error conversion instead of aborting the connection.
func finish(request *http.Request, responder http.Responder, err error) (*http.Response, error) {
	if err != nil {
		return http.Error(request, err), nil
	}

	if responder == nil {
		return http.Respond(request), nil
	}

	resp, err := responder.Respond(request)
	if err != nil {
		return http.Error(request, err), nil
	}

	return resp, nil
}
