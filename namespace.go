package dynproxy

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Namespace is the loading context proxy types are defined into. It scopes
// type identity: the same contract set requested against two namespaces
// yields two independent definitions. The name table is append-only for
// the lifetime of the process; nothing is ever redefined or removed.
type Namespace struct {
	name string

	mu    sync.Mutex
	types map[string]reflect.Type
}

// NewNamespace creates an empty namespace. The name is used only for
// logging and diagnostics.
func NewNamespace(name string) *Namespace {
	return &Namespace{
		name:  name,
		types: make(map[string]reflect.Type),
	}
}

// Name returns the namespace's diagnostic name.
func (n *Namespace) Name() string {
	return n.name
}

// Lookup returns the type defined under a qualified name, if any.
func (n *Namespace) Lookup(qualified string) (reflect.Type, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	t, ok := n.types[qualified]
	return t, ok
}

// Defined returns the qualified names defined so far, sorted.
func (n *Namespace) Defined() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := make([]string, 0, len(n.types))
	for name := range n.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// define injects a type under a qualified name, exactly once. Names are
// allocated uniquely by the engine's counter, so an existing entry is an
// engine bug, never a legitimate retry path.
func (n *Namespace) define(qualified string, t reflect.Type) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if prev, ok := n.types[qualified]; ok {
		panic(fmt.Sprintf("dynproxy: cannot define already loaded type '%s' (%s)", qualified, prev))
	}
	n.types[qualified] = t
}
