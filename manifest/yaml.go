package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlRoot mirrors contractRootSchema for YAML manifests.
type yamlRoot struct {
	Contracts []yamlContract `yaml:"contracts"`
}

type yamlContract struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Methods     []yamlMethod `yaml:"methods"`
}

type yamlMethod struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Params      []string `yaml:"params"`
	Returns     string   `yaml:"returns"`
	Fallible    bool     `yaml:"fallible"`
}

// ParseYAML decodes a YAML manifest carrying a top-level 'contracts' list.
// Types use the same keywords as the HCL form.
func ParseYAML(src []byte, filePath string) ([]*ContractDefinition, error) {
	root := &yamlRoot{}
	if err := yaml.Unmarshal(src, root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML manifest %s: %w", filePath, err)
	}

	defs := make([]*ContractDefinition, 0, len(root.Contracts))
	for _, c := range root.Contracts {
		if c.Name == "" {
			return nil, fmt.Errorf("manifest %s: contract with empty name", filePath)
		}
		def := &ContractDefinition{
			Name:        c.Name,
			Description: c.Description,
			Methods:     make(map[string]*MethodDefinition, len(c.Methods)),
		}
		for _, m := range c.Methods {
			if m.Name == "" {
				return nil, fmt.Errorf("manifest %s: contract '%s' declares a method with empty name", filePath, c.Name)
			}
			if _, exists := def.Methods[m.Name]; exists {
				return nil, fmt.Errorf("manifest %s: contract '%s' declares method '%s' twice", filePath, c.Name, m.Name)
			}
			mdef := &MethodDefinition{
				Name:        m.Name,
				Description: m.Description,
				Fallible:    m.Fallible,
			}
			for i, keyword := range m.Params {
				t, err := keywordToCty(keyword)
				if err != nil {
					return nil, fmt.Errorf("manifest %s: contract '%s', method '%s', param %d: %w", filePath, c.Name, m.Name, i, err)
				}
				mdef.Params = append(mdef.Params, t)
			}
			if m.Returns != "" {
				t, err := keywordToCty(m.Returns)
				if err != nil {
					return nil, fmt.Errorf("manifest %s: contract '%s', method '%s', returns: %w", filePath, c.Name, m.Name, err)
				}
				mdef.Returns = t
			}
			def.Methods[m.Name] = mdef
		}
		defs = append(defs, def)
	}
	return defs, nil
}
