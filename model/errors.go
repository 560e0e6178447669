package model

import "fmt"

// ConfigError reports an invalid or missing configuration value. It is
// always raised before any network activity.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
