package cloudmesh

import "fmt"

// ConfigError reports invalid or missing client configuration, detected
// before any provider API call is made.
type ConfigError struct {
	Provider string
	Msg      string
}

func (e *ConfigError) Error() string {
	if e.Provider == "" {
		return "cloudmesh: " + e.Msg
	}
	return fmt.Sprintf("cloudmesh: %s: %s", e.Provider, e.Msg)
}

// InitError reports a provider client that failed to construct, typically
// from bad credentials.
type InitError struct {
	Provider string
	Err      error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("cloudmesh: failed to initialize %s provider: %v", e.Provider, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }
