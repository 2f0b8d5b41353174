package loader

import (
	"errors"

	"github.com/tidwall/gjson"

	"github.com/dshills/keychord/internal/config"
)

var errInvalidJSON = errors.New("invalid JSON")

func decodeJSON(source string, data []byte, cfg *config.Config) error {
	if !gjson.ValidBytes(data) {
		return &config.ParseError{
			Path:    source,
			Message: errInvalidJSON.Error(),
			Err:     errInvalidJSON,
		}
	}

	root := gjson.ParseBytes(data)

	if v := root.Get("logging.level"); v.Exists() {
		cfg.Logging.Level = v.String()
	}
	if v := root.Get("logging.format"); v.Exists() {
		cfg.Logging.Format = v.String()
	}

	bindings := root.Get("bindings")
	if bindings.Exists() && !bindings.IsArray() {
		return &config.ParseError{
			Path:    source,
			Message: "bindings must be an array",
			Err:     errInvalidJSON,
		}
	}

	bindings.ForEach(func(_, b gjson.Result) bool {
		cfg.Bindings = append(cfg.Bindings, config.Binding{
			Name:    b.Get("name").String(),
			Keys:    b.Get("keys").String(),
			Action:  b.Get("action").String(),
			Message: b.Get("message").String(),
			Script:  b.Get("script").String(),
		})
		return true
	})
	return nil
}
