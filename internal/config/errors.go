package config

import ferrors "git.home.luguber.info/inful/pivot/internal/foundation/errors"

// configError builds a fatal configuration error; field names the offending YAML key.
func configError(message, field string, cause error) error {
	b := ferrors.ConfigError(message)
	if field != "" {
		b.WithContext("field", field)
	}
	if cause != nil {
		b.WithCause(cause)
	}
	return b.Build()
}
