// Package dynproxy synthesizes proxy implementations of behavioral
// contracts at runtime.
//
// A contract is a named struct type whose fields are all exported funcs:
// pure behavior, no state. Given a set of contracts, an Engine builds a
// single struct type (via reflect.StructOf) carrying one forwarding func
// per distinct method signature, defines it exactly once into a caller
// supplied Namespace, and hands back instances whose every call is routed
// to one Interceptor.
//
// The Interceptor receives the proxy instance, a resolved *Method
// descriptor, a pre-bound Invoker thunk for the underlying call, and the
// boxed argument list. This is enough to build stubs, decorators, RPC
// clients, and mocks without writing one implementation type per contract
// combination:
//
//	type Echo struct {
//	    Bar func(string) string
//	}
//
//	eng := dynproxy.New()
//	ns := dynproxy.NewNamespace("main")
//	p, err := eng.NewProxy(ctx, ns, []reflect.Type{reflect.TypeOf(Echo{})},
//	    func(proxy any, m *dynproxy.Method, invoke dynproxy.Invoker, args []any) (any, error) {
//	        return invoke(target, args)
//	    })
//
//	var echo Echo
//	err = dynproxy.Bind(p, &echo)
//	echo.Bar("hello")
//
// Generated types are cached per (Namespace, canonical contract set) for
// the lifetime of the Engine; repeated requests for the same set reuse the
// same type and constructor. Engines are safe for concurrent use.
package dynproxy
