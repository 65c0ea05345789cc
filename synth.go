package dynproxy

import (
	"fmt"
	"reflect"
	"sync"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// generatedType is a synthesized implementation of a canonical contract
// set: the struct type itself plus the resolved method table driving its
// dispatch. Exactly one exists per (Namespace, contract set key) for the
// lifetime of the engine.
type generatedType struct {
	name  string       // qualified name, assigned at definition time
	elem  reflect.Type // the generated struct type
	ptr   reflect.Type // runtime type of instances (*elem)
	table []*Method    // one entry per merged signature, in field order
}

// synthesize builds the type definition for a canonical contract set. It
// is pure: no name is allocated and nothing is defined. Signatures that
// repeat across contracts collapse to one entry when their func types are
// identical and fail with a *ConfigError when they are not.
func synthesize(set *contractSet) (*generatedType, error) {
	var all []*Method
	for _, c := range set.contracts {
		ms, err := contractMethods(c)
		if err != nil {
			return nil, err
		}
		all = append(all, ms...)
	}
	table, err := mergeMethods(all)
	if err != nil {
		return nil, err
	}

	fields := make([]reflect.StructField, len(table))
	for i, m := range table {
		fields[i] = reflect.StructField{Name: m.Name, Type: m.ftype}
	}
	elem := reflect.StructOf(fields)
	return &generatedType{elem: elem, ptr: reflect.PointerTo(elem), table: table}, nil
}

// contractMethods resolves the method descriptors a single contract
// declares, recursing through embedded contracts. The declaring contract
// of an inherited signature is the embedded type.
func contractMethods(t reflect.Type) ([]*Method, error) {
	var ms []*Method
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			sub, err := contractMethods(f.Type)
			if err != nil {
				return nil, err
			}
			ms = append(ms, sub...)
			continue
		}
		m, err := parseSignature(t, f.Name, f.Type)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, nil
}

// mergeMethods collapses duplicate compatible signatures to one entry,
// preserving first-seen order, and rejects same-name signatures with
// differing func types.
func mergeMethods(ms []*Method) ([]*Method, error) {
	index := make(map[string]*Method, len(ms))
	table := make([]*Method, 0, len(ms))
	for _, m := range ms {
		prev, ok := index[m.Name]
		if !ok {
			index[m.Name] = m
			table = append(table, m)
			continue
		}
		if prev.ftype != m.ftype {
			return nil, &ConfigError{Contract: m.Contract, Reason: fmt.Sprintf(
				"method %s conflicts with %s: %s vs %s", m.Name, prev.Contract, m.ftype, prev.ftype)}
		}
	}
	return table, nil
}

// parseSignature validates a contract func type and resolves its Method
// descriptor, including the pre-bound invoker thunk. Supported result
// shapes: none, one value, error only, or (value, error).
func parseSignature(decl reflect.Type, name string, ft reflect.Type) (*Method, error) {
	if ft.IsVariadic() {
		return nil, &ConfigError{Contract: decl, Reason: fmt.Sprintf("method %s is variadic", name)}
	}
	m := &Method{
		Contract: decl,
		Name:     name,
		Params:   make([]reflect.Type, ft.NumIn()),
		ftype:    ft,
	}
	for i := range m.Params {
		m.Params[i] = ft.In(i)
	}
	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			m.Fallible = true
		} else {
			m.Returns = ft.Out(0)
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, &ConfigError{Contract: decl, Reason: fmt.Sprintf(
				"method %s: second result must be error, got %s", name, ft.Out(1))}
		}
		m.Returns = ft.Out(0)
		m.Fallible = true
	default:
		return nil, &ConfigError{Contract: decl, Reason: fmt.Sprintf(
			"method %s declares %d results; at most one value and one error are supported", name, ft.NumOut())}
	}
	m.invoker = bindInvoker(m)
	return m, nil
}

// newConstructor returns the instantiation function for the generated
// type. Each instance gets one forwarding closure per table entry; the
// interceptor reference is captured at construction and never reassigned.
func (g *generatedType) newConstructor() func(Interceptor) any {
	table := g.table
	elem := g.elem
	return func(ic Interceptor) any {
		pv := reflect.New(elem)
		self := pv.Interface()
		fields := pv.Elem()
		for i, m := range table {
			fields.Field(i).Set(reflect.MakeFunc(m.ftype, forwarding(self, m, ic)))
		}
		return self
	}
}

// forwarding builds the body of one proxy method: box the arguments,
// dispatch to the interceptor, narrow the result back to the declared
// signature. Interceptor failures pass through the declared error result
// or, absent one, panic unmodified.
func forwarding(self any, m *Method, ic Interceptor) func([]reflect.Value) []reflect.Value {
	return func(in []reflect.Value) []reflect.Value {
		args := make([]any, len(in))
		for i, v := range in {
			args[i] = v.Interface()
		}

		res, err := ic(self, m, m.invoker, args)
		if err != nil {
			if !m.Fallible {
				panic(err)
			}
			out := make([]reflect.Value, 0, 2)
			if m.Returns != nil {
				out = append(out, reflect.Zero(m.Returns))
			}
			ev := reflect.New(errorType).Elem()
			ev.Set(reflect.ValueOf(err))
			return append(out, ev)
		}

		out := make([]reflect.Value, 0, 2)
		if m.Returns != nil {
			rv, cerr := conform(res, m.Returns)
			if cerr != nil {
				panic(&MismatchError{Method: m.String(), Detail: cerr.Error()})
			}
			out = append(out, rv)
		}
		if m.Fallible {
			out = append(out, reflect.Zero(errorType))
		}
		return out
	}
}

// conform narrows a boxed value to a declared type. The value's dynamic
// type must be identical or assignable; numeric values are never widened
// or converted. nil conforms only to nilable kinds.
func conform(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
			reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a valid %s", t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return rv, nil
	}
	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", rv.Type(), t)
}

// binding records how one target type provides a method: by method index
// or, for vtable-style targets, by func field index.
type binding struct {
	methodIndex int
	fieldIndex  []int
}

func (b *binding) callable(tv reflect.Value) (reflect.Value, error) {
	if b.fieldIndex == nil {
		return tv.Method(b.methodIndex), nil
	}
	sv := tv
	if sv.Kind() == reflect.Pointer {
		sv = sv.Elem()
	}
	fn := sv.FieldByIndex(b.fieldIndex)
	if fn.IsNil() {
		return reflect.Value{}, fmt.Errorf("func field is nil")
	}
	return fn, nil
}

// bindInvoker resolves the invocation thunk for one signature. Resolution
// against a concrete target type happens once and is cached; the call
// itself is a direct reflect.Call with exact-type unboxing, no generic
// dispatch.
func bindInvoker(m *Method) Invoker {
	var resolved sync.Map // reflect.Type -> *binding
	return func(target any, args []any) (any, error) {
		if target == nil {
			return nil, fmt.Errorf("dynproxy: invoke %s: target: %w", m.Name, ErrNilArgument)
		}
		tv := reflect.ValueOf(target)
		b, err := resolveBinding(&resolved, m, tv.Type())
		if err != nil {
			return nil, err
		}
		fn, err := b.callable(tv)
		if err != nil {
			return nil, fmt.Errorf("dynproxy: invoke %s on %s: %w", m.Name, tv.Type(), err)
		}

		if len(args) != len(m.Params) {
			return nil, fmt.Errorf("dynproxy: invoke %s: got %d arguments, want %d", m.Name, len(args), len(m.Params))
		}
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			av, cerr := conform(a, m.Params[i])
			if cerr != nil {
				return nil, fmt.Errorf("dynproxy: invoke %s: argument %d: %v", m.Name, i, cerr)
			}
			in[i] = av
		}

		out := fn.Call(in)
		if m.Fallible {
			if ev := out[len(out)-1]; !ev.IsNil() {
				return nil, ev.Interface().(error)
			}
		}
		if m.Returns != nil {
			return out[0].Interface(), nil
		}
		return nil, nil
	}
}

// resolveBinding locates the method on a target type: a method with the
// exact signature wins; a struct (or pointer-to-struct) func field with
// the exact type is the vtable fallback.
func resolveBinding(cache *sync.Map, m *Method, tt reflect.Type) (*binding, error) {
	if v, ok := cache.Load(tt); ok {
		return v.(*binding), nil
	}

	var b *binding
	if mt, ok := tt.MethodByName(m.Name); ok && boundTypeMatches(mt.Type, m.ftype) {
		b = &binding{methodIndex: mt.Index}
	} else {
		st := tt
		if st.Kind() == reflect.Pointer {
			st = st.Elem()
		}
		if st.Kind() == reflect.Struct {
			if f, ok := st.FieldByName(m.Name); ok && f.Type == m.ftype {
				b = &binding{methodIndex: -1, fieldIndex: f.Index}
			}
		}
	}
	if b == nil {
		return nil, fmt.Errorf("dynproxy: target type %s does not provide %s", tt, m)
	}
	actual, _ := cache.LoadOrStore(tt, b)
	return actual.(*binding), nil
}

// boundTypeMatches reports whether a method type (receiver included)
// matches a contract func type exactly.
func boundTypeMatches(mt, ft reflect.Type) bool {
	if mt.NumIn()-1 != ft.NumIn() || mt.NumOut() != ft.NumOut() || mt.IsVariadic() != ft.IsVariadic() {
		return false
	}
	for i := 0; i < ft.NumIn(); i++ {
		if mt.In(i+1) != ft.In(i) {
			return false
		}
	}
	for i := 0; i < ft.NumOut(); i++ {
		if mt.Out(i) != ft.Out(i) {
			return false
		}
	}
	return true
}
