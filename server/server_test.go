package server

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/corvid-web/corvid/appdata"
	"github.com/corvid-web/corvid/config"
	"github.com/corvid-web/corvid/extract"
	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/http/method"
	"github.com/corvid-web/corvid/http/mime"
	"github.com/corvid-web/corvid/http/status"
	"github.com/corvid-web/corvid/internal/bodyio"
	"github.com/corvid-web/corvid/service"
	"github.com/corvid-web/corvid/transport"
	"github.com/corvid-web/corvid/transport/dummy"
	"github.com/stretchr/testify/require"
)

type sent struct {
	code status.Code
	body string
}

// connScript yields pre-programmed request heads and records every response. The
// steps run out into a clean io.EOF.
type connScript struct {
	steps      []func(*http.Request) error
	respondErr error
	responses  []sent
	closed     bool
}

func (c *connScript) Next(request *http.Request) error {
	if len(c.steps) == 0 {
		return io.EOF
	}

	step := c.steps[0]
	c.steps = c.steps[1:]

	return step(request)
}

func (c *connScript) Respond(request *http.Request, resp *http.Response) error {
	if c.respondErr != nil {
		return c.respondErr
	}

	fields := resp.Reveal()
	body := fields.Body
	if fields.Stream != nil {
		data, err := io.ReadAll(fields.Stream)
		if err != nil {
			return err
		}
		fields.CloseStream()
		body = data
	}

	c.responses = append(c.responses, sent{code: fields.Code, body: string(body)})

	return nil
}

func (c *connScript) Close() error {
	c.closed = true
	return nil
}

func getRequest(path string) func(*http.Request) error {
	return func(request *http.Request) error {
		request.Method = method.GET
		request.Path = path
		request.Body.Init(bodyio.Buffered())
		return nil
	}
}

func jsonRequest(body string) func(*http.Request) error {
	return func(request *http.Request) error {
		request.Method = method.POST
		request.Path = "/"
		request.ContentType = mime.JSON
		request.ContentLength = len(body)
		request.Body.Init(bodyio.Buffered([]byte(body)))
		return nil
	}
}

func negotiatorFor(conn Conn) Negotiator {
	return NegotiatorFunc(func(context.Context, transport.Client) (Conn, error) {
		return conn, nil
	})
}

func echoPath() service.Service {
	return service.ServiceFunc(func(ctx context.Context, request *http.Request) (*http.Response, error) {
		return request.Respond().String(request.Path), nil
	})
}

func bootstrap(conn Conn, svc service.Service, opts ...Option) (*Bootstrap, *dummy.CircularClient) {
	client := dummy.NewNopClient()
	b := NewBootstrap(config.Default(), client, service.Fixed(svc), negotiatorFor(conn), opts...)

	return b, client
}

func TestBootstrap(t *testing.T) {
	t.Run("serves requests until clean end", func(t *testing.T) {
		conn := &connScript{steps: []func(*http.Request) error{
			getRequest("/first"), getRequest("/second"),
		}}
		b, client := bootstrap(conn, echoPath())

		require.NoError(t, b.Run(context.Background()))
		require.Equal(t, []sent{
			{status.OK, "/first"},
			{status.OK, "/second"},
		}, conn.responses)
		require.True(t, conn.closed)
		require.True(t, client.Closed())
	})

	t.Run("factory failure never reaches dispatch", func(t *testing.T) {
		conn := &connScript{steps: []func(*http.Request) error{getRequest("/")}}
		client := dummy.NewNopClient()
		factory := service.FactoryFunc(func(context.Context, service.ConnInfo) (service.Service, error) {
			return nil, errors.New("no database")
		})
		b := NewBootstrap(config.Default(), client, factory, negotiatorFor(conn))

		err := b.Run(context.Background())

		var initErr *InitError
		require.ErrorAs(t, err, &initErr)
		require.Empty(t, conn.responses)
		require.True(t, client.Closed())
	})

	t.Run("negotiation failure terminates the connection", func(t *testing.T) {
		client := dummy.NewNopClient()
		negotiator := NegotiatorFunc(func(context.Context, transport.Client) (Conn, error) {
			return nil, errors.New("preface mismatch")
		})
		b := NewBootstrap(config.Default(), client, service.Fixed(echoPath()), negotiator)

		err := b.Run(context.Background())

		var dispatchErr *DispatchError
		require.ErrorAs(t, err, &dispatchErr)
		require.True(t, client.Closed())
	})

	t.Run("transitions exactly once", func(t *testing.T) {
		built := 0
		conn := &connScript{steps: []func(*http.Request) error{
			getRequest("/a"), getRequest("/b"), getRequest("/c"),
		}}
		client := dummy.NewNopClient()
		factory := service.FactoryFunc(func(context.Context, service.ConnInfo) (service.Service, error) {
			built++
			return echoPath(), nil
		})
		b := NewBootstrap(config.Default(), client, factory, negotiatorFor(conn))

		require.NoError(t, b.Run(context.Background()))
		require.Equal(t, 1, built)
		require.Len(t, conn.responses, 3)
	})

	t.Run("connection id reaches the service", func(t *testing.T) {
		conn := &connScript{steps: []func(*http.Request) error{getRequest("/")}}
		client := dummy.NewNopClient()
		seen := ""
		factory := service.FactoryFunc(func(_ context.Context, info service.ConnInfo) (service.Service, error) {
			seen = info.ID
			return echoPath(), nil
		})
		b := NewBootstrap(config.Default(), client, factory, negotiatorFor(conn))

		require.NoError(t, b.Run(context.Background()))
		require.Equal(t, b.ID(), seen)
		require.Len(t, seen, connIDLen)
	})
}

func TestDispatcher(t *testing.T) {
	t.Run("request errors keep the connection alive", func(t *testing.T) {
		conn := &connScript{steps: []func(*http.Request) error{
			getRequest("/fails"), getRequest("/works"),
		}}
		svc := service.ServiceFunc(func(ctx context.Context, request *http.Request) (*http.Response, error) {
			if request.Path == "/fails" {
				return nil, status.ErrNotFound
			}
			return request.Respond().String("served"), nil
		})
		b, _ := bootstrap(conn, svc)

		require.NoError(t, b.Run(context.Background()))
		require.Equal(t, []sent{
			{status.NotFound, "not found"},
			{status.OK, "served"},
		}, conn.responses)
	})

	t.Run("head read timeout renders 408 and closes", func(t *testing.T) {
		conn := &connScript{steps: []func(*http.Request) error{
			func(*http.Request) error { return os.ErrDeadlineExceeded },
		}}
		b, _ := bootstrap(conn, echoPath())

		require.NoError(t, b.Run(context.Background()))
		require.Len(t, conn.responses, 1)
		require.Equal(t, status.RequestTimeout, conn.responses[0].code)
	})

	t.Run("transport failure on next is terminal", func(t *testing.T) {
		conn := &connScript{steps: []func(*http.Request) error{
			func(*http.Request) error { return errors.New("malformed frame") },
		}}
		b, _ := bootstrap(conn, echoPath())

		err := b.Run(context.Background())

		var dispatchErr *DispatchError
		require.ErrorAs(t, err, &dispatchErr)
		require.Empty(t, conn.responses)
	})

	t.Run("transport failure on respond is terminal", func(t *testing.T) {
		conn := &connScript{
			steps:      []func(*http.Request) error{getRequest("/")},
			respondErr: errors.New("broken pipe"),
		}
		b, _ := bootstrap(conn, echoPath())

		err := b.Run(context.Background())

		var dispatchErr *DispatchError
		require.ErrorAs(t, err, &dispatchErr)
	})

	t.Run("disabled keep-alive closes after the first response", func(t *testing.T) {
		conn := &connScript{steps: []func(*http.Request) error{
			getRequest("/only"), getRequest("/never"),
		}}
		client := dummy.NewNopClient()
		cfg := config.Default()
		cfg.NET.KeepAlive = 0
		b := NewBootstrap(cfg, client, service.Fixed(echoPath()), negotiatorFor(conn))

		require.NoError(t, b.Run(context.Background()))
		require.Equal(t, []sent{{status.OK, "/only"}}, conn.responses)
	})

	t.Run("shared state reaches the extractors", func(t *testing.T) {
		type greeting struct{ text string }

		conn := &connScript{steps: []func(*http.Request) error{getRequest("/")}}
		svc := extract.Handle1(extract.State[*greeting](),
			func(ctx context.Context, g *greeting) (http.Responder, error) {
				return http.ResponderFunc(func(r *http.Request) (*http.Response, error) {
					return r.Respond().String(g.text), nil
				}), nil
			})
		b, _ := bootstrap(conn, svc, WithState(appdata.New(&greeting{text: "hello"})))

		require.NoError(t, b.Run(context.Background()))
		require.Equal(t, []sent{{status.OK, "hello"}}, conn.responses)
	})
}

// A JSON extractor bounded to 10 bytes against a 16-byte declared body must fail
// before the handler runs, and the very same connection must accept the next
// request afterwards.
func TestOversizedBodyKeepsConnectionAlive(t *testing.T) {
	type model struct {
		Name string `json:"name"`
	}

	invoked := 0
	svc := service.Wrap(
		extract.Handle1(extract.JSON[model](),
			func(ctx context.Context, m *model) (http.Responder, error) {
				invoked++
				return http.ResponderFunc(func(r *http.Request) (*http.Response, error) {
					return r.Respond().String(m.Name), nil
				}), nil
			}),
		extract.WithRoute(appdata.New(extract.JSONConfig{Limit: 10})),
	)

	conn := &connScript{steps: []func(*http.Request) error{
		jsonRequest(`{"name":"abcde"}`), // 16 bytes declared, over the limit
		jsonRequest(`{"a":1}`),
	}}
	b, _ := bootstrap(conn, svc)

	require.NoError(t, b.Run(context.Background()))
	require.Len(t, conn.responses, 2)
	require.Equal(t, status.RequestEntityTooLarge, conn.responses[0].code)
	require.Equal(t, status.OK, conn.responses[1].code)
	require.Equal(t, 1, invoked)
}
