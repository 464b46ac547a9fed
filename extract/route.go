package extract

import (
	"context"

	"github.com/corvid-web/corvid/appdata"
	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/service"
)

// WithRoute attaches per-route extractor configuration to every request passing
// through. Specs consult the registry via their config types, e.g. JSONConfig.
func WithRoute(registry *appdata.Registry) service.Middleware {
	return func(inner service.Service) service.Service {
		return routed{inner: inner, registry: registry}
	}
}

type routed struct {
	inner    service.Service
	registry *appdata.Registry
}

func (r routed) Ready(ctx context.Context) error {
	return r.inner.Ready(ctx)
}

func (r routed) Call(ctx context.Context, request *http.Request) (*http.Response, error) {
	request.Env.Route = r.registry
	return r.inner.Call(ctx, request)
}
