package service

import (
	"context"
	"errors"
	"testing"

	"github.com/corvid-web/corvid/config"
	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/http/status"
	"github.com/corvid-web/corvid/kv"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

func newRequest() *http.Request {
	return http.NewRequest(config.Default(), http.NewResponse(), nil)
}

func echo(ctx context.Context, request *http.Request) (*http.Response, error) {
	return request.Respond().String("echo"), nil
}

func TestChain(t *testing.T) {
	var order []string

	tag := func(name string) Middleware {
		return func(inner Service) Service {
			return ServiceFunc(func(ctx context.Context, request *http.Request) (*http.Response, error) {
				order = append(order, name)
				return inner.Call(ctx, request)
			})
		}
	}

	factory := Chain(Fixed(ServiceFunc(echo)), tag("outer"), tag("inner"))
	svc, err := factory.Build(context.Background(), ConnInfo{})
	require.NoError(t, err)

	_, err = svc.Call(context.Background(), newRequest())
	require.NoError(t, err)
	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestMapResponse(t *testing.T) {
	svc := Wrap(ServiceFunc(echo), MapResponse(func(resp *http.Response) *http.Response {
		return resp.Header("X-Stamped", "true")
	}))

	resp, err := svc.Call(context.Background(), newRequest())
	require.NoError(t, err)

	fields := resp.Reveal()
	require.Equal(t, "echo", string(fields.Body))
	require.Contains(t, fields.Headers, kv.Pair{Key: "X-Stamped", Value: "true"})
}

func TestRecover(t *testing.T) {
	t.Run("status error keeps its code", func(t *testing.T) {
		failing := ServiceFunc(func(context.Context, *http.Request) (*http.Response, error) {
			return nil, status.ErrNotFound
		})

		resp, err := Wrap(failing, Recover()).Call(context.Background(), newRequest())
		require.NoError(t, err)
		require.Equal(t, status.NotFound, resp.Reveal().Code)
	})

	t.Run("unknown error defaults to 500", func(t *testing.T) {
		failing := ServiceFunc(func(context.Context, *http.Request) (*http.Response, error) {
			return nil, errors.New("boom")
		})

		resp, err := Wrap(failing, Recover()).Call(context.Background(), newRequest())
		require.NoError(t, err)
		require.Equal(t, status.InternalServerError, resp.Reveal().Code)
		require.Equal(t, "boom", string(resp.Reveal().Body))
	})
}

func TestBreaker(t *testing.T) {
	boom := errors.New("downstream is gone")
	inner := ServiceFunc(func(context.Context, *http.Request) (*http.Response, error) {
		return nil, boom
	})

	svc := Wrap(inner, Breaker(gobreaker.Settings{
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	}))

	_, err := svc.Call(context.Background(), newRequest())
	require.ErrorIs(t, err, boom)

	// the breaker is open now, so the inner service must not be reached
	resp, err := svc.Call(context.Background(), newRequest())
	require.NoError(t, err)
	require.Equal(t, status.ServiceUnavailable, resp.Reveal().Code)
}
