package dynproxy

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/dynproxy/internal/ctxlog"
)

// Engine synthesizes and caches proxy types. Each engine owns its caches;
// two engines never share generated-type registries. Both caches are
// append-only and live until the engine is garbage.
type Engine struct {
	id string

	// types memoizes generated types by (namespace, canonical set key).
	types sync.Map // typeKey -> *typeEntry

	// ctors memoizes instantiation functions by instance runtime type.
	ctors sync.Map // reflect.Type -> func(Interceptor) any
}

type typeKey struct {
	ns  *Namespace
	set string
}

// typeEntry is the per-key definition gate: the first caller for a key
// synthesizes and defines inside the once, concurrent callers block on it
// and observe the same result.
type typeEntry struct {
	once sync.Once
	gt   *generatedType
	err  error
}

// New creates an engine with empty registries.
func New() *Engine {
	return &Engine{id: uuid.NewString()}
}

// NewProxy returns an instance of the proxy type for the given contract
// set, defined in ns, dispatching every call to ic. The first request for
// a (namespace, set) pair synthesizes and defines the type; later requests
// in any contract ordering reuse it.
//
// A missing argument yields an error wrapping ErrNilArgument; an invalid
// contract set yields a *ConfigError. Use Bind to view the returned
// instance through a contract value.
func (e *Engine) NewProxy(ctx context.Context, ns *Namespace, contracts []reflect.Type, ic Interceptor) (any, error) {
	switch {
	case ns == nil:
		return nil, fmt.Errorf("dynproxy: namespace: %w", ErrNilArgument)
	case contracts == nil:
		return nil, fmt.Errorf("dynproxy: contracts: %w", ErrNilArgument)
	case ic == nil:
		return nil, fmt.Errorf("dynproxy: interceptor: %w", ErrNilArgument)
	}
	for i, c := range contracts {
		if c == nil {
			return nil, fmt.Errorf("dynproxy: contract %d: %w", i, ErrNilArgument)
		}
	}

	set, err := normalize(contracts)
	if err != nil {
		return nil, err
	}

	v, _ := e.types.LoadOrStore(typeKey{ns: ns, set: set.key}, &typeEntry{})
	entry := v.(*typeEntry)
	entry.once.Do(func() {
		logger := ctxlog.FromContext(ctx).With("engine_id", e.id)
		logger.Debug("Synthesizing proxy type.", "namespace", ns.Name(), "contracts", len(set.contracts))
		gt, serr := synthesize(set)
		if serr != nil {
			entry.err = serr
			return
		}
		gt.name = nextTypeName(set.pkgPath)
		ns.define(gt.name, gt.ptr)
		logger.Debug("Defined proxy type.", "name", gt.name, "namespace", ns.Name(), "methods", len(gt.table))
		entry.gt = gt
	})
	if entry.err != nil {
		return nil, entry.err
	}

	return e.constructorFor(entry.gt)(ic), nil
}

// constructorFor resolves the cached instantiation function for a
// generated type, computing it on first use.
func (e *Engine) constructorFor(gt *generatedType) func(Interceptor) any {
	if v, ok := e.ctors.Load(gt.ptr); ok {
		return v.(func(Interceptor) any)
	}
	v, _ := e.ctors.LoadOrStore(gt.ptr, gt.newConstructor())
	return v.(func(Interceptor) any)
}

// IsProxyType reports whether t is a type this engine generated. Both the
// instance runtime type (*T) and the generated struct type T answer true.
// It panics when t is nil.
func (e *Engine) IsProxyType(t reflect.Type) bool {
	if t == nil {
		panic("dynproxy: IsProxyType called with nil type")
	}
	if _, ok := e.ctors.Load(t); ok {
		return true
	}
	if t.Kind() != reflect.Pointer {
		_, ok := e.ctors.Load(reflect.PointerTo(t))
		return ok
	}
	return false
}

// IsProxyInstance reports whether obj was created by this engine. It
// panics when obj is nil.
func (e *Engine) IsProxyInstance(obj any) bool {
	if obj == nil {
		panic("dynproxy: IsProxyInstance called with nil object")
	}
	return e.IsProxyType(reflect.TypeOf(obj))
}

// Bind copies a proxy's forwarding funcs into a caller-owned contract
// value, the dynproxy analog of casting a proxy to one of its interfaces.
// target must be a pointer to a contract struct whose every method the
// proxy implements.
func Bind(proxy any, target any) error {
	if proxy == nil {
		return fmt.Errorf("dynproxy: proxy: %w", ErrNilArgument)
	}
	if target == nil {
		return fmt.Errorf("dynproxy: target: %w", ErrNilArgument)
	}
	pv := reflect.ValueOf(proxy)
	if pv.Kind() != reflect.Pointer || pv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dynproxy: proxy must be a pointer to struct, got %s", pv.Type())
	}
	tv := reflect.ValueOf(target)
	if tv.Kind() != reflect.Pointer || tv.IsNil() {
		return fmt.Errorf("dynproxy: target must be a non-nil pointer to a contract struct, got %s", tv.Type())
	}
	ct := tv.Type().Elem()
	if err := checkContract(ct); err != nil {
		return err
	}

	src := pv.Elem()
	return bindFields(src, tv.Elem(), ct, nil)
}

// bindFields copies forwarding funcs field by field, recursing through
// embedded contracts.
func bindFields(src, dst reflect.Value, ct reflect.Type, path []int) error {
	for i := 0; i < ct.NumField(); i++ {
		f := ct.Field(i)
		idx := append(append([]int(nil), path...), i)
		if f.Anonymous {
			if err := bindFields(src, dst, f.Type, idx); err != nil {
				return err
			}
			continue
		}
		fn := src.FieldByName(f.Name)
		if !fn.IsValid() || fn.Type() != f.Type {
			return fmt.Errorf("dynproxy: proxy does not implement %s.%s %s", ct, f.Name, f.Type)
		}
		dst.FieldByIndex(idx).Set(fn)
	}
	return nil
}
