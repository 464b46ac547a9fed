package extract

import (
	"github.com/corvid-web/corvid/appdata"
	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/http/mime"
	"github.com/corvid-web/corvid/http/status"
	json "github.com/json-iterator/go"
)

// DefaultJSONLimit bounds the decoded body size unless overridden per route.
const DefaultJSONLimit = 32 * 1024

// JSONConfig tunes the JSON body spec of a route. Register it in the route registry
// via extract.WithRoute.
type JSONConfig struct {
	// Limit is the maximal body size in bytes. Bodies declaring or revealing a
	// larger size fail the extraction before the handler runs.
	Limit int
	// OnError, when set, replaces the error a failed extraction yields, letting a
	// route map decode failures to custom responses.
	OnError func(err error, request *http.Request) error
}

// JSON derives a T from the JSON-encoded request body. The spec consumes the body,
// so no other body-consuming spec may be registered next to it.
func JSON[T any]() Spec[*T] {
	return Spec[*T]{
		Name:     "json",
		Consumes: true,
		Func: func(request *http.Request) (*T, error) {
			cfg, _ := appdata.Of[JSONConfig](request.Env.Route)
			if cfg.Limit == 0 {
				cfg.Limit = DefaultJSONLimit
			}

			model, err := decodeJSON[T](request, cfg.Limit)
			if err != nil && cfg.OnError != nil {
				err = cfg.OnError(err, request)
			}

			return model, err
		},
	}
}

func decodeJSON[T any](request *http.Request, limit int) (*T, error) {
	if !mime.Complies(mime.JSON, request.ContentType) {
		return nil, status.ErrUnsupportedMediaType
	}

	// the declared length allows failing before a single body byte is read, keeping
	// the body unconsumed for whoever inspects the request afterwards
	if request.ContentLength > limit {
		return nil, status.ErrBodyTooLarge
	}

	data, err := request.Body.Bytes()
	if err != nil {
		return nil, err
	}

	if len(data) > limit {
		return nil, status.ErrBodyTooLarge
	}

	model := new(T)
	iterator := json.ConfigDefault.BorrowIterator(data)
	iterator.ReadVal(model)
	err = iterator.Error
	json.ConfigDefault.ReturnIterator(iterator)

	if err != nil {
		return nil, status.NewError(status.BadRequest, err.Error())
	}

	return model, nil
}
