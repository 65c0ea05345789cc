package manifest

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func loggerDefinition() *ContractDefinition {
	return &ContractDefinition{
		Name: "Logger",
		Methods: map[string]*MethodDefinition{
			"Log": {Name: "Log", Params: []cty.Type{cty.String}, Fallible: true},
		},
	}
}

func TestValidate_Match(t *testing.T) {
	r := New()
	require.NoError(t, r.AddDefinition(loggerDefinition()))
	r.RegisterContract("Logger", reflect.TypeOf(loggerAPI{}))

	assert.NoError(t, r.Validate(context.Background()))
}

func TestValidate_DefinitionWithoutGoTypeIsAllowed(t *testing.T) {
	r := New()
	require.NoError(t, r.AddDefinition(loggerDefinition()))

	assert.NoError(t, r.Validate(context.Background()))
}

func TestValidate_GoTypeWithoutDefinition(t *testing.T) {
	r := New()
	r.RegisterContract("Logger", reflect.TypeOf(loggerAPI{}))

	err := r.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no manifest defines it")
}

func TestValidate_PresenceMismatches(t *testing.T) {
	t.Run("manifest method missing on Go type", func(t *testing.T) {
		r := New()
		def := loggerDefinition()
		def.Methods["Flush"] = &MethodDefinition{Name: "Flush"}
		require.NoError(t, r.AddDefinition(def))
		r.RegisterContract("Logger", reflect.TypeOf(loggerAPI{}))

		err := r.Validate(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "'Flush' which is not found on Go type")
	})

	t.Run("Go method missing in manifest", func(t *testing.T) {
		r := New()
		def := loggerDefinition()
		delete(def.Methods, "Log")
		require.NoError(t, r.AddDefinition(def))
		r.RegisterContract("Logger", reflect.TypeOf(loggerAPI{}))

		err := r.Validate(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "'Log' which is not declared in manifest")
	})
}

func TestValidate_ShapeMismatches(t *testing.T) {
	register := func(def *ContractDefinition) error {
		r := New()
		require.NoError(t, r.AddDefinition(def))
		r.RegisterContract("Logger", reflect.TypeOf(loggerAPI{}))
		return r.Validate(context.Background())
	}

	t.Run("param count", func(t *testing.T) {
		def := loggerDefinition()
		def.Methods["Log"].Params = nil
		err := register(def)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "manifest declares 0 params, Go type declares 1")
	})

	t.Run("param type", func(t *testing.T) {
		def := loggerDefinition()
		def.Methods["Log"].Params = []cty.Type{cty.Number}
		err := register(def)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "type mismatch")
	})

	t.Run("any param skips the check", func(t *testing.T) {
		def := loggerDefinition()
		def.Methods["Log"].Params = []cty.Type{cty.DynamicPseudoType}
		assert.NoError(t, register(def))
	})

	t.Run("manifest result on void method", func(t *testing.T) {
		def := loggerDefinition()
		def.Methods["Log"].Returns = cty.String
		err := register(def)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Go method is void")
	})

	t.Run("fallible mismatch", func(t *testing.T) {
		def := loggerDefinition()
		def.Methods["Log"].Fallible = false
		err := register(def)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "manifest fallible=false, Go type fallible=true")
	})
}

func TestValidate_ResultTypes(t *testing.T) {
	countDef := func(returns cty.Type) *ContractDefinition {
		return &ContractDefinition{
			Name: "Counter",
			Methods: map[string]*MethodDefinition{
				"Count": {Name: "Count", Returns: returns},
			},
		}
	}
	register := func(def *ContractDefinition) error {
		r := New()
		require.NoError(t, r.AddDefinition(def))
		r.RegisterContract("Counter", reflect.TypeOf(counterAPI{}))
		return r.Validate(context.Background())
	}

	assert.NoError(t, register(countDef(cty.Number)))

	err := register(countDef(cty.String))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "result: type mismatch")

	err = register(countDef(cty.NilType))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest declares no result")
}

func TestValidate_RejectsInvalidRegisteredType(t *testing.T) {
	r := New()
	require.NoError(t, r.AddDefinition(loggerDefinition()))
	r.RegisterContract("Logger", reflect.TypeOf("not a contract"))

	err := r.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid contract")
}
