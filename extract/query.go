package extract

import (
	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/http/status"
	"github.com/mitchellh/mapstructure"
)

// Query derives a T from the request URI parameters. Field names are matched via
// mapstructure tags; repeated parameters decode into slice fields; scalar kinds are
// converted weakly, so numeric fields accept their string forms.
func Query[T any]() Spec[*T] {
	return Spec[*T]{
		Name: "query",
		Func: func(request *http.Request) (*T, error) {
			values := make(map[string]any, request.Params.Len())
			for key, value := range request.Params.Iter() {
				switch seen := values[key].(type) {
				case nil:
					values[key] = value
				case string:
					values[key] = []string{seen, value}
				case []string:
					values[key] = append(seen, value)
				}
			}

			model := new(T)
			decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				Result:           model,
				WeaklyTypedInput: true,
			})
			if err != nil {
				return nil, err
			}

			if err = decoder.Decode(values); err != nil {
				return nil, status.NewError(status.BadRequest, err.Error())
			}

			return model, nil
		},
	}
}
