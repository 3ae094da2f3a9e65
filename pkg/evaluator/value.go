// Package evaluator implements the quill runtime: values, environments,
// promises, quosures, and the tree-walking evaluator.
package evaluator

// Value is the interface for all quill runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	value() // sealed marker
}

// NA represents the missing marker.
type NA struct{}

func (NA) value() {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) value() {}

// Number represents a numeric value.
type Number struct {
	Value float64
}

func (Number) value() {}

// String represents a string value.
type String struct {
	Value string
}

func (String) value() {}

// Element is a single, optionally named entry of a List.
type Element struct {
	Name  string
	Value Value
}

// List represents an ordered sequence of optionally named values.
type List struct {
	Elements []Element
}

func (List) value() {}

// Handle is an opaque boxed host value (tables, connections, ...).
// Host operations create and consume handles; the engine only carries
// them.
type Handle struct {
	HandleKind string
	Data       any
}

func (*Handle) value() {}

// NewNA creates a missing value.
func NewNA() Value { return NA{} }

// NewBool creates a boolean value.
func NewBool(b bool) Value { return Bool{Value: b} }

// NewNumber creates a numeric value.
func NewNumber(n float64) Value { return Number{Value: n} }

// NewString creates a string value.
func NewString(s string) Value { return String{Value: s} }

// NewList creates a list value.
func NewList(elems []Element) Value { return List{Elements: elems} }

// NewHandle creates an opaque host value.
func NewHandle(kind string, data any) Value {
	return &Handle{HandleKind: kind, Data: data}
}

// Items returns the unnamed values of a list in order.
func (l List) Items() []Value {
	items := make([]Value, len(l.Elements))
	for i, e := range l.Elements {
		items[i] = e.Value
	}
	return items
}

// EqualValue lets an expression tree embedding this list in a Literal
// compare structurally (ast.LiteralComparable). Comparing interface
// values directly would panic on the slice field.
func (l List) EqualValue(other any) bool {
	o, ok := other.(List)
	return ok && EqualValues(l, o)
}

// Truthiness returns the boolean interpretation of a value.
// na, false, 0, and "" are falsy; everything else is truthy.
func Truthiness(v Value) bool {
	switch val := v.(type) {
	case NA:
		return false
	case Bool:
		return val.Value
	case Number:
		return val.Value != 0
	case String:
		return val.Value != ""
	default:
		return true
	}
}

// FromGo converts a plain Go value (as embedded in a Literal) to a
// runtime Value. Values pass through unchanged.
func FromGo(v any) Value {
	switch x := v.(type) {
	case nil:
		return NA{}
	case Value:
		return x
	case bool:
		return Bool{Value: x}
	case int:
		return Number{Value: float64(x)}
	case int64:
		return Number{Value: float64(x)}
	case float64:
		return Number{Value: x}
	case string:
		return String{Value: x}
	case []any:
		elems := make([]Element, len(x))
		for i, item := range x {
			elems[i] = Element{Value: FromGo(item)}
		}
		return List{Elements: elems}
	case []string:
		elems := make([]Element, len(x))
		for i, item := range x {
			elems[i] = Element{Value: String{Value: item}}
		}
		return List{Elements: elems}
	case []float64:
		elems := make([]Element, len(x))
		for i, item := range x {
			elems[i] = Element{Value: Number{Value: item}}
		}
		return List{Elements: elems}
	default:
		return NewHandle("go", x)
	}
}

// EqualValues reports deep equality of two runtime values.
func EqualValues(a, b Value) bool {
	switch x := a.(type) {
	case NA:
		_, ok := b.(NA)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x.Value == y.Value
	case Number:
		y, ok := b.(Number)
		return ok && x.Value == y.Value
	case String:
		y, ok := b.(String)
		return ok && x.Value == y.Value
	case List:
		y, ok := b.(List)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if x.Elements[i].Name != y.Elements[i].Name ||
				!EqualValues(x.Elements[i].Value, y.Elements[i].Value) {
				return false
			}
		}
		return true
	case *Handle:
		y, ok := b.(*Handle)
		return ok && x == y
	case *Quosure:
		y, ok := b.(*Quosure)
		return ok && x.EqualQuosure(y)
	}
	return false
}
