package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// typeKeywordToCty converts an HCL expression that represents a type (e.g. the
// `string` keyword) into its corresponding cty.Type.
func typeKeywordToCty(expr hcl.Expression) (cty.Type, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	// We expect a simple identifier like `string`, not a complex expression.
	// AbsTraversalForExpr is the right tool to validate this structure.
	traversal, hclDiags := hcl.AbsTraversalForExpr(expr)
	if hclDiags.HasErrors() || len(traversal) != 1 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid type specification",
			Detail:   "Types must be simple keywords like 'string', 'number', 'bool', or 'any', not complex expressions.",
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilType, diags
	}

	t, err := keywordToCty(traversal.RootName())
	if err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported type",
			Detail:   err.Error(),
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilType, diags
	}
	return t, diags
}

// keywordToCty maps a type keyword to a cty.Type. It is shared by the HCL
// and YAML loaders.
func keywordToCty(keyword string) (cty.Type, error) {
	switch keyword {
	case "string":
		return cty.String, nil
	case "number":
		return cty.Number, nil
	case "bool":
		return cty.Bool, nil
	case "any":
		// 'any' is a valid constraint; validation skips it with a warning.
		return cty.DynamicPseudoType, nil
	default:
		return cty.NilType, fmt.Errorf("the keyword '%s' is not a valid type; supported types are: string, number, bool, any", keyword)
	}
}
