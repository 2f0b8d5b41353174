package loader

import (
	"gopkg.in/yaml.v3"

	"github.com/dshills/keychord/internal/config"
)

func decodeYAML(source string, data []byte, cfg *config.Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &config.ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
	}
	return nil
}
