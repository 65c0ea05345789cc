package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/dynproxy/internal/ctxlog"
)

// contractRootSchema defines the top-level structure of a manifest file,
// expecting one or more 'contract' blocks.
type contractRootSchema struct {
	Contracts []*hclContract `hcl:"contract,block"`
}

// hclContract represents a single 'contract' block for decoding purposes.
type hclContract struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// contractBodySchema is the HCL schema for the body of a 'contract' block.
var contractBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "method", LabelNames: []string{"name"}},
	},
}

// methodBodySchema is the HCL schema for the body of a 'method' block.
var methodBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "params"},
		{Name: "returns"},
		{Name: "fallible"},
		{Name: "description"},
	},
}

// ParseHCLFile decodes an HCL manifest that contains one or more
// 'contract' blocks.
func ParseHCLFile(ctx context.Context, hclFile *hcl.File, filePath string) ([]*ContractDefinition, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing contract definitions from file", "file_path", filePath)

	var allDiags hcl.Diagnostics
	if hclFile == nil {
		allDiags = append(allDiags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "HCL file is nil",
		})
		return nil, allDiags
	}

	root := &contractRootSchema{}
	diags := gohcl.DecodeBody(hclFile.Body, nil, root)
	allDiags = append(allDiags, diags...)
	if diags.HasErrors() {
		return nil, allDiags
	}

	defs := make([]*ContractDefinition, 0, len(root.Contracts))
	for _, block := range root.Contracts {
		def, defDiags := decodeContractBody(block)
		allDiags = append(allDiags, defDiags...)
		if defDiags.HasErrors() {
			continue
		}
		defs = append(defs, def)
	}
	return defs, allDiags
}

func decodeContractBody(block *hclContract) (*ContractDefinition, hcl.Diagnostics) {
	content, diags := block.Body.Content(contractBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	def := &ContractDefinition{
		Name:    block.Name,
		Methods: make(map[string]*MethodDefinition),
	}
	if attr, ok := content.Attributes["description"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &def.Description)...)
	}

	for _, mb := range content.Blocks.OfType("method") {
		// The schema guarantees us one label.
		name := mb.Labels[0]
		if _, exists := def.Methods[name]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate method definition",
				Detail:   fmt.Sprintf("A method named '%s' has already been defined for contract '%s'.", name, def.Name),
				Subject:  &mb.DefRange,
			})
			continue
		}
		mdef, mDiags := decodeMethodBody(name, mb.Body)
		diags = append(diags, mDiags...)
		if mDiags.HasErrors() {
			continue
		}
		def.Methods[name] = mdef
	}
	return def, diags
}

func decodeMethodBody(name string, body hcl.Body) (*MethodDefinition, hcl.Diagnostics) {
	content, diags := body.Content(methodBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	mdef := &MethodDefinition{Name: name}
	if attr, ok := content.Attributes["description"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &mdef.Description)...)
	}
	if attr, ok := content.Attributes["fallible"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &mdef.Fallible)...)
	}
	if attr, ok := content.Attributes["params"]; ok {
		exprs, listDiags := hcl.ExprList(attr.Expr)
		if listDiags.HasErrors() {
			diags = append(diags, listDiags...)
		} else {
			for _, expr := range exprs {
				t, typeDiags := typeKeywordToCty(expr)
				diags = append(diags, typeDiags...)
				if typeDiags.HasErrors() {
					continue
				}
				mdef.Params = append(mdef.Params, t)
			}
		}
	}
	if attr, ok := content.Attributes["returns"]; ok {
		t, typeDiags := typeKeywordToCty(attr.Expr)
		diags = append(diags, typeDiags...)
		if !typeDiags.HasErrors() {
			mdef.Returns = t
		}
	}
	return mdef, diags
}
