package loader

import (
	"errors"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/keychord/internal/config"
)

func decodeTOML(source string, data []byte, cfg *config.Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		perr := &config.ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}
