package dynproxy

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespace_DefineAndLookup(t *testing.T) {
	ns := NewNamespace("main")
	assert.Equal(t, "main", ns.Name())
	assert.Empty(t, ns.Defined())

	_, ok := ns.Lookup("example.com/p.Proxy0")
	assert.False(t, ok)

	pt := reflect.TypeOf((*Alpha)(nil))
	ns.define("example.com/p.Proxy0", pt)

	got, ok := ns.Lookup("example.com/p.Proxy0")
	require.True(t, ok)
	assert.Equal(t, pt, got)
}

func TestNamespace_DefinedIsSorted(t *testing.T) {
	ns := NewNamespace("main")
	ns.define("example.com/p.Proxy2", reflect.TypeOf((*Beta)(nil)))
	ns.define("example.com/p.Proxy0", reflect.TypeOf((*Alpha)(nil)))
	ns.define("example.com/p.Proxy1", reflect.TypeOf((*Gamma)(nil)))

	assert.Equal(t, []string{
		"example.com/p.Proxy0",
		"example.com/p.Proxy1",
		"example.com/p.Proxy2",
	}, ns.Defined())
}

func TestNamespace_RedefinitionPanics(t *testing.T) {
	ns := NewNamespace("main")
	ns.define("example.com/p.Proxy0", reflect.TypeOf((*Alpha)(nil)))

	assert.PanicsWithValue(t,
		"dynproxy: cannot define already loaded type 'example.com/p.Proxy0' (*dynproxy.Alpha)",
		func() { ns.define("example.com/p.Proxy0", reflect.TypeOf((*Alpha)(nil))) })
}
