package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"sync"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/dynproxy/internal/ctxlog"
	"github.com/vk/dynproxy/internal/fsutil"
)

// Registry holds the parsed contract definitions and the Go contract types
// registered against them, for a single application instance.
type Registry struct {
	mu          sync.Mutex
	definitions map[string]*ContractDefinition
	contracts   map[string]reflect.Type
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		definitions: make(map[string]*ContractDefinition),
		contracts:   make(map[string]reflect.Type),
	}
}

// RegisterContract registers the Go contract type behind a manifest name.
func (r *Registry) RegisterContract(name string, contract reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.contracts[name]; exists {
		panic(fmt.Sprintf("contract type with name '%s' already registered", name))
	}
	slog.Debug("Registering contract type.", "name", name, "type", contract.String())
	r.contracts[name] = contract
}

// AddDefinition stores a parsed contract definition. Redefining a name is
// an error: manifests are the public surface and silent shadowing would
// hide real mistakes.
func (r *Registry) AddDefinition(def *ContractDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.definitions[def.Name]; exists {
		return fmt.Errorf("contract '%s' is already defined", def.Name)
	}
	r.definitions[def.Name] = def
	return nil
}

// Definition returns the parsed definition for a manifest name, if any.
func (r *Registry) Definition(name string) (*ContractDefinition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.definitions[name]
	return def, ok
}

// Contracts resolves manifest names to their registered Go contract types,
// in the given order, ready to hand to Engine.NewProxy.
func (r *Registry) Contracts(names ...string) ([]reflect.Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]reflect.Type, 0, len(names))
	for _, name := range names {
		t, ok := r.contracts[name]
		if !ok {
			return nil, fmt.Errorf("no contract type registered for '%s'", name)
		}
		types = append(types, t)
	}
	return types, nil
}

// LoadDirRecursively walks a directory tree and loads every .hcl and .yaml
// manifest it finds.
func (r *Registry) LoadDirRecursively(ctx context.Context, manifestsPath string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading definitions from manifests path...", "path", manifestsPath)

	hclPaths, err := fsutil.FindFilesByExtension(manifestsPath, ".hcl")
	if err != nil {
		logger.Error("Failed to walk manifests directory", "path", manifestsPath, "error", err)
		return err
	}
	yamlPaths, err := fsutil.FindFilesByExtension(manifestsPath, ".yaml")
	if err != nil {
		return err
	}

	if len(hclPaths)+len(yamlPaths) == 0 {
		logger.Warn("No manifest files found in path", "path", manifestsPath)
		return nil
	}

	parser := hclparse.NewParser()
	for _, filePath := range hclPaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
		}
		defs, diags := ParseHCLFile(ctx, hclFile, filePath)
		if diags.HasErrors() {
			return fmt.Errorf("failed to process contract definitions in %s: %w", filePath, diags)
		}
		if err := r.addAll(defs); err != nil {
			return fmt.Errorf("manifest %s: %w", filePath, err)
		}
		logger.Debug("Successfully loaded definitions from HCL file", "file", filePath)
	}

	for _, filePath := range yamlPaths {
		src, err := os.ReadFile(filePath)
		if err != nil {
			return err
		}
		defs, err := ParseYAML(src, filePath)
		if err != nil {
			return err
		}
		if err := r.addAll(defs); err != nil {
			return fmt.Errorf("manifest %s: %w", filePath, err)
		}
		logger.Debug("Successfully loaded definitions from YAML file", "file", filePath)
	}

	r.mu.Lock()
	loaded := len(r.definitions)
	r.mu.Unlock()
	logger.Info("Registry loaded successfully.", "contract_definitions_loaded", loaded)
	return nil
}

func (r *Registry) addAll(defs []*ContractDefinition) error {
	for _, def := range defs {
		if err := r.AddDefinition(def); err != nil {
			return err
		}
	}
	return nil
}
