package dynproxy

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNilArgument reports a required argument that was absent. Errors
// returned for missing arguments wrap it.
var ErrNilArgument = errors.New("required argument is nil")

// ConfigError reports an invalid contract set: a non-contract element, a
// repeated contract, non-public contracts from different packages, or an
// unsupported or conflicting method signature. It is returned before any
// type is defined and is never retried by the engine.
type ConfigError struct {
	// Contract is the offending contract type, if one is attributable.
	Contract reflect.Type

	// Reason describes the violation.
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Contract == nil {
		return fmt.Sprintf("dynproxy: invalid contract set: %s", e.Reason)
	}
	return fmt.Sprintf("dynproxy: invalid contract %s: %s", e.Contract, e.Reason)
}

// MismatchError reports an interceptor result that cannot be narrowed to
// the declared return type of the invoked method. It is the panic value of
// the forwarding call and is attributable to the interceptor, not the
// engine.
type MismatchError struct {
	// Method names the signature whose result was mismatched.
	Method string

	// Detail describes the mismatch.
	Detail string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("dynproxy: interceptor result for %s: %s", e.Method, e.Detail)
}
