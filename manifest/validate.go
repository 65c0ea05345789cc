package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/vk/dynproxy"
	"github.com/vk/dynproxy/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate performs a strict parity check between manifests and Go code.
// For every definition with a registered Go contract type it checks both
// the presence of each method and the compatibility of its parameter and
// result types.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	r.mu.Lock()
	definitions := make(map[string]*ContractDefinition, len(r.definitions))
	for name, def := range r.definitions {
		definitions[name] = def
	}
	contracts := make(map[string]reflect.Type, len(r.contracts))
	for name, t := range r.contracts {
		contracts[name] = t
	}
	r.mu.Unlock()

	for name := range contracts {
		if _, ok := definitions[name]; !ok {
			errs = append(errs, fmt.Sprintf("contract '%s': Go type registered, but no manifest defines it", name))
		}
	}

	for name, def := range definitions {
		contract, ok := contracts[name]
		if !ok {
			continue
		}

		methods, err := dynproxy.Methods(contract)
		if err != nil {
			errs = append(errs, fmt.Sprintf("contract '%s': registered type %s is not a valid contract: %v", name, contract, err))
			continue
		}

		goMethods := make(map[string]*dynproxy.Method, len(methods))
		for _, m := range methods {
			goMethods[m.Name] = m
		}

		// Check for presence mismatches
		for mname := range goMethods {
			if _, ok := def.Methods[mname]; !ok {
				errs = append(errs, fmt.Sprintf("contract '%s': Go type declares method '%s' which is not declared in manifest", name, mname))
			}
		}
		for mname := range def.Methods {
			if _, ok := goMethods[mname]; !ok {
				errs = append(errs, fmt.Sprintf("contract '%s': manifest declares method '%s' which is not found on Go type", name, mname))
			}
		}

		// Check for shape mismatches
		for mname, mdef := range def.Methods {
			m, ok := goMethods[mname]
			if !ok {
				continue // Already handled by presence check
			}
			errs = append(errs, validateMethod(logger, name, mdef, m)...)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("contract validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func validateMethod(logger *slog.Logger, contractName string, mdef *MethodDefinition, m *dynproxy.Method) []string {
	var errs []string

	if len(mdef.Params) != len(m.Params) {
		errs = append(errs, fmt.Sprintf("contract '%s', method '%s': manifest declares %d params, Go type declares %d",
			contractName, m.Name, len(mdef.Params), len(m.Params)))
		return errs
	}

	for i, want := range mdef.Params {
		if want.Equals(cty.DynamicPseudoType) {
			logger.Warn("Manifest method param has 'any', which disables static type checking. Consider using a specific type like 'string', 'number', or 'bool'.",
				"contract", contractName, "method", m.Name, "param", i)
			continue
		}
		got, err := impliedCtyType(m.Params[i])
		if err != nil {
			errs = append(errs, fmt.Sprintf("contract '%s', method '%s', param %d: could not imply cty type from Go type %s: %v",
				contractName, m.Name, i, m.Params[i], err))
			continue
		}
		if !want.Equals(got) {
			errs = append(errs, fmt.Sprintf("contract '%s', method '%s', param %d: type mismatch. Manifest requires '%s' but Go type provides '%s'",
				contractName, m.Name, i, want.FriendlyName(), got.FriendlyName()))
		}
	}

	switch {
	case mdef.Returns == cty.NilType && m.Returns != nil:
		errs = append(errs, fmt.Sprintf("contract '%s', method '%s': manifest declares no result, Go type returns %s",
			contractName, m.Name, m.Returns))
	case mdef.Returns != cty.NilType && m.Returns == nil:
		errs = append(errs, fmt.Sprintf("contract '%s', method '%s': manifest declares result '%s', Go method is void",
			contractName, m.Name, mdef.Returns.FriendlyName()))
	case mdef.Returns != cty.NilType && !mdef.Returns.Equals(cty.DynamicPseudoType):
		got, err := impliedCtyType(m.Returns)
		if err != nil {
			errs = append(errs, fmt.Sprintf("contract '%s', method '%s', result: could not imply cty type from Go type %s: %v",
				contractName, m.Name, m.Returns, err))
		} else if !mdef.Returns.Equals(got) {
			errs = append(errs, fmt.Sprintf("contract '%s', method '%s', result: type mismatch. Manifest requires '%s' but Go type provides '%s'",
				contractName, m.Name, mdef.Returns.FriendlyName(), got.FriendlyName()))
		}
	}

	if mdef.Fallible != m.Fallible {
		errs = append(errs, fmt.Sprintf("contract '%s', method '%s': manifest fallible=%t, Go type fallible=%t",
			contractName, m.Name, mdef.Fallible, m.Fallible))
	}

	return errs
}

// impliedCtyType infers the cty type carried by a Go type.
func impliedCtyType(t reflect.Type) (cty.Type, error) {
	return gocty.ImpliedType(reflect.Zero(t).Interface())
}
