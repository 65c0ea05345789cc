package manifest

import (
	"github.com/zclconf/go-cty/cty"
)

// ContractDefinition is the format-agnostic representation of one contract
// manifest, produced by the HCL and YAML loaders alike.
type ContractDefinition struct {
	// Name is the contract's manifest name, taken from the block label.
	Name string

	// Description is an optional markdown string describing the contract.
	Description string

	// Methods maps method name to its declared shape.
	Methods map[string]*MethodDefinition
}

// MethodDefinition declares the expected shape of a single contract
// method.
type MethodDefinition struct {
	// Name is the method name, taken from the block label.
	Name string

	// Description is an optional markdown string describing the method.
	Description string

	// Params holds the declared parameter types in order. A parameter of
	// cty.DynamicPseudoType ("any") disables static checking for that
	// position.
	Params []cty.Type

	// Returns is the declared result type, or cty.NilType for void.
	Returns cty.Type

	// Fallible reports whether the method is declared to return an error.
	Fallible bool
}
