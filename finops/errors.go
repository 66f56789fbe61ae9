package finops

import "fmt"

// PreconditionError reports that a provider-side prerequisite is missing,
// such as a billing export table that was never configured. It carries the
// remedy so callers can surface an actionable message.
type PreconditionError struct {
	Provider     string
	Operation    string
	Precondition string
	Remedy       string
	Err          error
}

func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("%s: %s requires %s", e.Provider, e.Operation, e.Precondition)
	if e.Remedy != "" {
		msg += ": " + e.Remedy
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PreconditionError) Unwrap() error { return e.Err }
