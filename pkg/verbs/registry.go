package verbs

import (
	"github.com/quillang/quill/pkg/evaluator"
)

// Registry holds registered operations.
type Registry struct {
	ops map[string]*evaluator.OpDef
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*evaluator.OpDef)}
}

// Register adds an operation to the registry.
func (r *Registry) Register(op evaluator.OpDef) {
	r.ops[op.Name] = &op
}

// Get retrieves an operation by name.
func (r *Registry) Get(name string) *evaluator.OpDef {
	return r.ops[name]
}

// All returns all registered operations.
func (r *Registry) All() map[string]*evaluator.OpDef {
	return r.ops
}

// RegisterDefaults registers the builtin operations and table verbs.
func RegisterDefaults(r *Registry) {
	registerBuiltins(r)
	registerVerbs(r)
}

// DefaultEvaluator creates an evaluator with the default operations.
func DefaultEvaluator() *evaluator.Evaluator {
	r := NewRegistry()
	RegisterDefaults(r)
	return evaluator.New(evaluator.Options{Ops: r.All()})
}
