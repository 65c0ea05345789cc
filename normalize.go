package dynproxy

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"
)

// enginePkgPath is the namespace generated types are named into when every
// requested contract is public.
const enginePkgPath = "github.com/vk/dynproxy"

// typeCounter guarantees qualified-name uniqueness across all engines in
// the process.
var typeCounter atomic.Uint64

// contractSet is a validated, canonically ordered contract list scoped to
// one request. It is computed per request and discarded.
type contractSet struct {
	// contracts is sorted by qualified name, tie-broken by type identity.
	contracts []reflect.Type

	// key identifies the set independently of the requested ordering.
	key string

	// pkgPath is the package the generated type is named into: the shared
	// package of the non-public contracts, or enginePkgPath.
	pkgPath string
}

// normalize validates a requested contract list and produces its canonical
// form. Every element must be a contract; no element may repeat; if any
// contract is non-public, all non-public contracts must live in a single
// package.
func normalize(contracts []reflect.Type) (*contractSet, error) {
	ordered := make([]reflect.Type, len(contracts))
	copy(ordered, contracts)

	seen := make(map[reflect.Type]struct{}, len(ordered))
	pkgPath := ""
	for _, c := range ordered {
		if err := checkContract(c); err != nil {
			return nil, err
		}
		if _, dup := seen[c]; dup {
			return nil, &ConfigError{Contract: c, Reason: "repeated contract"}
		}
		seen[c] = struct{}{}

		if !exportedName(c.Name()) {
			if pkgPath == "" {
				pkgPath = c.PkgPath()
			} else if pkgPath != c.PkgPath() {
				return nil, &ConfigError{Contract: c, Reason: fmt.Sprintf(
					"non-public contracts from different packages (%s and %s)", pkgPath, c.PkgPath())}
			}
		}
	}
	if pkgPath == "" {
		pkgPath = enginePkgPath
	}

	sort.Slice(ordered, func(i, j int) bool {
		ni, nj := qualifiedName(ordered[i]), qualifiedName(ordered[j])
		if ni != nj {
			return ni < nj
		}
		return typeID(ordered[i]) < typeID(ordered[j])
	})

	var key strings.Builder
	for i, c := range ordered {
		if i > 0 {
			key.WriteByte('|')
		}
		fmt.Fprintf(&key, "%s#%x", qualifiedName(c), typeID(c))
	}

	return &contractSet{contracts: ordered, key: key.String(), pkgPath: pkgPath}, nil
}

// checkContract verifies that t is interface-like: a named struct type
// whose fields are all exported funcs, with embedded fields themselves
// contracts.
func checkContract(t reflect.Type) error {
	if t.Kind() != reflect.Struct {
		return &ConfigError{Contract: t, Reason: "not a struct type"}
	}
	if t.Name() == "" {
		return &ConfigError{Contract: t, Reason: "not a named type"}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			if err := checkContract(f.Type); err != nil {
				return &ConfigError{Contract: t, Reason: fmt.Sprintf("embedded field %s is not a contract: %v", f.Name, err)}
			}
			continue
		}
		if f.PkgPath != "" {
			return &ConfigError{Contract: t, Reason: fmt.Sprintf("field %s is unexported", f.Name)}
		}
		if f.Type.Kind() != reflect.Func {
			return &ConfigError{Contract: t, Reason: fmt.Sprintf("field %s is not a func; contracts declare behavior, not state", f.Name)}
		}
	}
	return nil
}

// nextTypeName allocates a unique qualified name for a generated type in
// the given package.
func nextTypeName(pkgPath string) string {
	return fmt.Sprintf("%s.Proxy%d", pkgPath, typeCounter.Add(1)-1)
}

func qualifiedName(t reflect.Type) string {
	return t.PkgPath() + "." + t.Name()
}

// typeID is a stable identity for a reflect.Type, used only to break
// ordering ties between distinct types with equal qualified names.
func typeID(t reflect.Type) uintptr {
	return reflect.ValueOf(t).Pointer()
}

func exportedName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
