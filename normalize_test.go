package dynproxy

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Alpha struct {
	A func()
}

type Beta struct {
	B func()
}

type Gamma struct {
	C func()
}

func TestNormalize_CanonicalOrder(t *testing.T) {
	a := reflect.TypeOf(Alpha{})
	b := reflect.TypeOf(Beta{})
	c := reflect.TypeOf(Gamma{})

	s1, err := normalize([]reflect.Type{c, a, b})
	require.NoError(t, err)
	s2, err := normalize([]reflect.Type{b, c, a})
	require.NoError(t, err)

	assert.Equal(t, []reflect.Type{a, b, c}, s1.contracts)
	assert.Equal(t, s1.key, s2.key, "key must not depend on input ordering")
	assert.Equal(t, enginePkgPath, s1.pkgPath)
}

func TestNormalize_KeySeparatesSets(t *testing.T) {
	a := reflect.TypeOf(Alpha{})
	b := reflect.TypeOf(Beta{})

	s1, err := normalize([]reflect.Type{a})
	require.NoError(t, err)
	s2, err := normalize([]reflect.Type{a, b})
	require.NoError(t, err)

	assert.NotEqual(t, s1.key, s2.key)
}

func TestCheckContract(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, checkContract(reflect.TypeOf(Alpha{})))
	})

	t.Run("not a struct", func(t *testing.T) {
		err := checkContract(reflect.TypeOf("s"))
		var cfg *ConfigError
		require.ErrorAs(t, err, &cfg)
		assert.Contains(t, cfg.Reason, "not a struct")
	})

	t.Run("unnamed type", func(t *testing.T) {
		err := checkContract(reflect.TypeOf(struct{ F func() }{}))
		var cfg *ConfigError
		require.ErrorAs(t, err, &cfg)
		assert.Contains(t, cfg.Reason, "not a named type")
	})

	t.Run("unexported field", func(t *testing.T) {
		type sneaky struct {
			hidden func()
		}
		err := checkContract(reflect.TypeOf(sneaky{}))
		var cfg *ConfigError
		require.ErrorAs(t, err, &cfg)
		assert.Contains(t, cfg.Reason, "unexported")
	})

	t.Run("state field", func(t *testing.T) {
		type Stateful struct {
			F func()
			N int
		}
		err := checkContract(reflect.TypeOf(Stateful{}))
		var cfg *ConfigError
		require.ErrorAs(t, err, &cfg)
		assert.Contains(t, cfg.Reason, "not a func")
	})

	t.Run("embedded non-contract", func(t *testing.T) {
		type Mixed struct {
			Alpha
			strings.Builder
		}
		err := checkContract(reflect.TypeOf(Mixed{}))
		var cfg *ConfigError
		require.ErrorAs(t, err, &cfg)
		assert.Contains(t, cfg.Reason, "Builder")
	})
}

func TestNextTypeName_MonotonicAndUnique(t *testing.T) {
	n1 := nextTypeName(enginePkgPath)
	n2 := nextTypeName(enginePkgPath)
	n3 := nextTypeName("example.com/other")

	assert.NotEqual(t, n1, n2)
	assert.True(t, strings.HasPrefix(n1, enginePkgPath+".Proxy"))
	assert.True(t, strings.HasPrefix(n3, "example.com/other.Proxy"))
}
