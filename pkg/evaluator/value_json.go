package evaluator

import (
	"encoding/json"
	"math"
)

// ValueToJSON marshals a Value to JSON bytes. Named lists become
// objects preserving element order, unnamed lists become arrays, and
// numbers output integers without a decimal point.
func ValueToJSON(v Value) ([]byte, error) {
	raw := valueToRaw(v)
	return json.Marshal(raw)
}

func valueToRaw(v Value) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case NA:
		return nil

	case Bool:
		return val.Value

	case Number:
		// Output integers without decimal point
		if val.Value == math.Trunc(val.Value) && !math.IsInf(val.Value, 0) && !math.IsNaN(val.Value) {
			if val.Value >= math.MinInt64 && val.Value <= math.MaxInt64 {
				return int64(val.Value)
			}
		}
		return val.Value

	case String:
		return val.Value

	case List:
		named := false
		for _, e := range val.Elements {
			if e.Name != "" {
				named = true
				break
			}
		}
		if named {
			return &orderedObject{elems: val.Elements}
		}
		items := make([]any, len(val.Elements))
		for i, e := range val.Elements {
			items[i] = valueToRaw(e.Value)
		}
		return items

	case *Quosure:
		return map[string]any{"quosure": true, "env": val.Env.Label()}

	case *Handle:
		return map[string]any{"handle": val.HandleKind}
	}
	return nil
}

// orderedObject marshals a named list as a JSON object preserving
// element order.
type orderedObject struct {
	elems []Element
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	var buf []byte
	buf = append(buf, '{')
	for i, e := range o.elems {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		val, err := json.Marshal(valueToRaw(e.Value))
		if err != nil {
			return nil, err
		}
		buf = append(buf, val...)
	}
	buf = append(buf, '}')
	return buf, nil
}
