package extract

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/corvid-web/corvid/appdata"
	"github.com/corvid-web/corvid/config"
	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/http/mime"
	"github.com/corvid-web/corvid/http/status"
	"github.com/corvid-web/corvid/internal/bodyio"
	"github.com/corvid-web/corvid/service"
	"github.com/stretchr/testify/require"
)

func newRequest() *http.Request {
	return http.NewRequest(config.Default(), http.NewResponse(), nil)
}

func withJSONBody(request *http.Request, body string) *http.Request {
	request.ContentType = mime.JSON
	request.ContentLength = len(body)
	request.Body.Init(bodyio.Buffered([]byte(body)))
	return request
}

func TestDeclarationOrder(t *testing.T) {
	var visited []string

	spec := func(name string, err error) Spec[string] {
		return Spec[string]{
			Name: name,
			Func: func(*http.Request) (string, error) {
				visited = append(visited, name)
				return name, err
			},
		}
	}

	t.Run("all resolve before the handler", func(t *testing.T) {
		visited = nil
		invoked := false

		svc := Handle2(spec("first", nil), spec("second", nil),
			func(ctx context.Context, a, b string) (http.Responder, error) {
				invoked = true
				require.Equal(t, "first", a)
				require.Equal(t, "second", b)
				return nil, nil
			})

		_, err := svc.Call(context.Background(), newRequest())
		require.NoError(t, err)
		require.True(t, invoked)
		require.Equal(t, []string{"first", "second"}, visited)
	})

	t.Run("first failure short-circuits", func(t *testing.T) {
		visited = nil
		boom := errors.New("boom")

		svc := Handle3(spec("first", nil), spec("second", boom), spec("third", nil),
			func(ctx context.Context, a, b, c string) (http.Responder, error) {
				t.Fatal("handler must not run")
				return nil, nil
			})

		request := newRequest()
		_, err := svc.Call(context.Background(), request)

		var exErr *Error
		require.ErrorAs(t, err, &exErr)
		require.Equal(t, 1, exErr.Position)
		require.Equal(t, "second", exErr.Name)
		require.ErrorIs(t, exErr.Cause, boom)
		require.Same(t, request, exErr.Request)
		require.Equal(t, []string{"first", "second"}, visited)
	})
}

func TestSingleBodyConsumer(t *testing.T) {
	bodySpec := func() Spec[string] {
		return Spec[string]{
			Name:     "body",
			Consumes: true,
			Func: func(request *http.Request) (string, error) {
				return request.Body.String()
			},
		}
	}

	require.Panics(t, func() {
		Handle2(bodySpec(), bodySpec(),
			func(ctx context.Context, a, b string) (http.Responder, error) {
				return nil, nil
			})
	})

	require.NotPanics(t, func() {
		Handle2(bodySpec(), Header("X-Anything"),
			func(ctx context.Context, a, b string) (http.Responder, error) {
				return nil, nil
			})
	})
}

func TestHandlerErrorsBecomeResponses(t *testing.T) {
	svc := Handle0(func(ctx context.Context, request *http.Request) (http.Responder, error) {
		return nil, status.ErrNotFound
	})

	resp, err := svc.Call(context.Background(), newRequest())
	require.NoError(t, err)
	require.Equal(t, status.NotFound, resp.Reveal().Code)
}

type payload struct {
	Username string `json:"username"`
}

func TestJSON(t *testing.T) {
	t.Run("decodes the body", func(t *testing.T) {
		request := withJSONBody(newRequest(), `{"username": "pavlo"}`)

		svc := Handle1(JSON[payload](), func(ctx context.Context, p *payload) (http.Responder, error) {
			return http.ResponderFunc(func(r *http.Request) (*http.Response, error) {
				return r.Respond().String(p.Username), nil
			}), nil
		})

		resp, err := svc.Call(context.Background(), request)
		require.NoError(t, err)
		require.Equal(t, "pavlo", string(resp.Reveal().Body))
	})

	t.Run("declared length over the limit fails before the handler", func(t *testing.T) {
		request := withJSONBody(newRequest(), `{"username":1}`) // 14 bytes declared
		svc := service.Wrap(
			Handle1(JSON[payload](), func(ctx context.Context, p *payload) (http.Responder, error) {
				t.Fatal("handler must not run")
				return nil, nil
			}),
			WithRoute(appdata.New(JSONConfig{Limit: 10})),
		)

		_, err := svc.Call(context.Background(), request)

		var exErr *Error
		require.ErrorAs(t, err, &exErr)
		require.ErrorIs(t, exErr.Cause, status.ErrBodyTooLarge)
	})

	t.Run("wrong content type", func(t *testing.T) {
		request := withJSONBody(newRequest(), `{}`)
		request.ContentType = mime.Plain

		svc := Handle1(JSON[payload](), func(ctx context.Context, p *payload) (http.Responder, error) {
			return nil, nil
		})

		_, err := svc.Call(context.Background(), request)
		require.ErrorIs(t, err, status.ErrUnsupportedMediaType)
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		request := withJSONBody(newRequest(), `{"username": `)

		svc := Handle1(JSON[payload](), func(ctx context.Context, p *payload) (http.Responder, error) {
			return nil, nil
		})

		_, err := svc.Call(context.Background(), request)

		var httperr status.HTTPError
		require.ErrorAs(t, err, &httperr)
		require.Equal(t, status.BadRequest, httperr.Code)
	})
}

type searchQuery struct {
	Term  string   `mapstructure:"term"`
	Page  int      `mapstructure:"page"`
	Tags  []string `mapstructure:"tags"`
	Exact bool     `mapstructure:"exact"`
}

func TestQuery(t *testing.T) {
	request := newRequest()
	request.Params.
		Add("term", "corvids").
		Add("page", "3").
		Add("tags", "birds").
		Add("tags", "smart").
		Add("exact", "true")

	svc := Handle1(Query[searchQuery](), func(ctx context.Context, q *searchQuery) (http.Responder, error) {
		require.Equal(t, "corvids", q.Term)
		require.Equal(t, 3, q.Page)
		require.Equal(t, []string{"birds", "smart"}, q.Tags)
		require.True(t, q.Exact)
		return http.ResponderFunc(func(r *http.Request) (*http.Response, error) {
			return r.Respond().String(strconv.Itoa(q.Page)), nil
		}), nil
	})

	resp, err := svc.Call(context.Background(), request)
	require.NoError(t, err)
	require.Equal(t, "3", string(resp.Reveal().Body))
}

type sharedCounter struct {
	hits int
}

func TestState(t *testing.T) {
	t.Run("configured state resolves", func(t *testing.T) {
		request := newRequest()
		request.Env.State = appdata.New(&sharedCounter{hits: 7})

		svc := Handle1(State[*sharedCounter](), func(ctx context.Context, c *sharedCounter) (http.Responder, error) {
			require.Equal(t, 7, c.hits)
			return nil, nil
		})

		_, err := svc.Call(context.Background(), request)
		require.NoError(t, err)
	})

	t.Run("missing state is a 500", func(t *testing.T) {
		svc := Handle1(State[*sharedCounter](), func(ctx context.Context, c *sharedCounter) (http.Responder, error) {
			t.Fatal("handler must not run")
			return nil, nil
		})

		_, err := svc.Call(context.Background(), newRequest())

		var httperr status.HTTPError
		require.ErrorAs(t, err, &httperr)
		require.Equal(t, status.InternalServerError, httperr.Code)
	})
}

func TestResponderReceivesOriginalRequest(t *testing.T) {
	request := newRequest()
	request.Headers.Add("X-Want", "mirrored")

	svc := Handle0(func(ctx context.Context, r *http.Request) (http.Responder, error) {
		return http.ResponderFunc(func(origin *http.Request) (*http.Response, error) {
			return origin.Respond().String(origin.Headers.Value("x-want")), nil
		}), nil
	})

	resp, err := svc.Call(context.Background(), request)
	require.NoError(t, err)
	require.Equal(t, "mirrored", string(resp.Reveal().Body))
}
