package reconciler

import "errors"

// ConfigurationError reports a reconciliation request that cannot run as given.
// It is never transient: the caller has to fix the mapping or options.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

var ErrNoValidMapping = &ConfigurationError{Message: "no valid column mappings"}

func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
