package dynproxy

import (
	"fmt"
	"reflect"
	"strings"
)

// Interceptor is the logic behind a proxy instance. Every call on a proxy
// is encoded and dispatched to the interceptor exactly once, synchronously,
// on the calling goroutine.
//
// proxy is the instance the call was made on. method describes the invoked
// contract method. invoke performs the literal underlying call on a target
// of the interceptor's choosing. args holds the call arguments boxed as
// `any`, preserving their exact declared types.
//
// The returned value is narrowed to the method's declared result type; a
// value that cannot be narrowed makes the forwarding call panic with a
// *MismatchError. A non-nil error returns through the method's declared
// error result, or panics when the method declares none. The engine never
// wraps or translates either.
type Interceptor func(proxy any, method *Method, invoke Invoker, args []any) (any, error)

// Invoker performs the underlying call for one specific method signature.
// It resolves the method on the target's type once, caches the resolution,
// unboxes each argument back to its exact declared type, and returns the
// boxed result (nil for void methods).
type Invoker func(target any, args []any) (any, error)

// Method is the resolved descriptor of one contract method, computed at
// synthesis time and shared by every call forwarded for that signature.
type Method struct {
	// Contract is the contract type that declares the method. For a
	// signature inherited through embedding this is the embedded contract,
	// not the embedding one.
	Contract reflect.Type

	// Name is the method name (the contract's field name).
	Name string

	// Params holds the declared parameter types in order.
	Params []reflect.Type

	// Returns is the declared value result type, or nil for void methods.
	Returns reflect.Type

	// Fallible reports whether the signature declares a trailing error
	// result.
	Fallible bool

	ftype   reflect.Type
	invoker Invoker
}

// Type returns the full func type of the method.
func (m *Method) Type() reflect.Type {
	return m.ftype
}

// String renders the signature as "<pkg>.<Contract>.<Name>(params) results".
func (m *Method) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.%s(", m.Contract.String(), m.Name)
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(")")
	switch {
	case m.Returns != nil && m.Fallible:
		fmt.Fprintf(&b, " (%s, error)", m.Returns)
	case m.Returns != nil:
		fmt.Fprintf(&b, " %s", m.Returns)
	case m.Fallible:
		b.WriteString(" error")
	}
	return b.String()
}

// Methods returns the resolved method descriptors of a single contract,
// with signatures inherited through embedding flattened in and duplicate
// compatible signatures collapsed. The contract is validated first; an
// invalid contract yields a *ConfigError.
func Methods(contract reflect.Type) ([]*Method, error) {
	if contract == nil {
		return nil, fmt.Errorf("dynproxy: contract: %w", ErrNilArgument)
	}
	if err := checkContract(contract); err != nil {
		return nil, err
	}
	ms, err := contractMethods(contract)
	if err != nil {
		return nil, err
	}
	return mergeMethods(ms)
}
