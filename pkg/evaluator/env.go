package evaluator

import (
	"fmt"
	"sync"
)

// Mask is an auxiliary lookup source consulted before an environment's
// own bindings, e.g. a dataset's field names.
type Mask interface {
	Resolve(name string) (Value, bool)
}

// Env is a scoped environment for symbol bindings. Lookup order is
// mask, then local bindings, then the parent chain. Writes only ever
// mutate the environment they are called on; ancestors are never
// mutated after creation.
type Env struct {
	mu       sync.Mutex
	bindings map[string]Value
	order    []string
	parent   *Env
	mask     Mask
	label    string
}

// NewEnv creates a new environment with an optional parent scope.
func NewEnv(parent *Env) *Env {
	return &Env{
		bindings: make(map[string]Value),
		parent:   parent,
	}
}

// NewGlobalEnv creates a labeled root environment.
func NewGlobalEnv() *Env {
	e := NewEnv(nil)
	e.label = "global"
	return e
}

// Child creates a new child scope whose parent is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// MaskedChild creates a child scope that consults mask before its own
// bindings and before the parent chain.
func (e *Env) MaskedChild(mask Mask) *Env {
	c := NewEnv(e)
	c.mask = mask
	return c
}

// Get looks up a symbol by name: mask first, then local bindings, then
// parent scopes.
func (e *Env) Get(name string) (Value, bool) {
	if e.mask != nil {
		if val, ok := e.mask.Resolve(name); ok {
			return val, true
		}
	}
	e.mu.Lock()
	val, ok := e.bindings[name]
	e.mu.Unlock()
	if ok {
		return val, true
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, false
}

// Set binds a symbol in this scope. Binding order is preserved for
// display.
func (e *Env) Set(name string, val Value) {
	e.mu.Lock()
	if _, ok := e.bindings[name]; !ok {
		e.order = append(e.order, name)
	}
	e.bindings[name] = val
	e.mu.Unlock()
}

// Has checks whether a symbol resolves in this scope, its mask, or any
// parent.
func (e *Env) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Names returns the locally bound names in binding order.
func (e *Env) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Parent returns the parent scope, or nil at the root.
func (e *Env) Parent() *Env { return e.parent }

// Label returns a short display tag for the environment: "global" for
// the labeled root, otherwise the environment's address.
func (e *Env) Label() string {
	if e.label != "" {
		return e.label
	}
	return fmt.Sprintf("%p", e)
}
