package evaluator

// ParamPolicy declares, at operation-definition time, whether a
// parameter receives forced values or raw captured syntax. The policy
// is consulted statically at dispatch, never inferred from the shape of
// the call.
type ParamPolicy int

const (
	// Evaluating parameters receive forced values.
	Evaluating ParamPolicy = iota
	// Quoting parameters receive quosures over the raw argument
	// expressions and the calling environment.
	Quoting
)

// String returns the policy name.
func (p ParamPolicy) String() string {
	if p == Quoting {
		return "quoting"
	}
	return "evaluating"
}

// Param declares a single operation parameter.
type Param struct {
	Name     string
	Policy   ParamPolicy
	Variadic bool // collects remaining arguments; last parameter only
}

// OpDef defines a host operation available to quill trees.
type OpDef struct {
	Name    string
	Params  []Param
	Execute func(call *OpCall) (Value, error)
}

// Bound is a single argument bound to a parameter.
type Bound struct {
	Name    string // caller-supplied argument name, "" if positional
	Promise *Promise
	Value   Value    // set for evaluating parameters
	Quosure *Quosure // set for quoting parameters
}

// OpCall carries the bound arguments of one operation invocation.
type OpCall struct {
	Op  *OpDef
	Env *Env // the calling environment

	ev    *Evaluator
	bound map[string][]Bound
}

// Evaluator returns the evaluator executing the call, for operations
// that evaluate quosures themselves (e.g. against a data mask).
func (c *OpCall) Evaluator() *Evaluator { return c.ev }

// Arg returns the single argument bound to param.
func (c *OpCall) Arg(param string) (Bound, bool) {
	bs := c.bound[param]
	if len(bs) == 0 {
		return Bound{}, false
	}
	return bs[0], true
}

// All returns every argument bound to param, in caller order. For a
// variadic parameter this is the collected tail.
func (c *OpCall) All(param string) []Bound {
	return c.bound[param]
}
