package ast

// LiteralComparable is implemented by opaque runtime values embedded in
// Literals that know how to compare themselves. Without it, opaque
// values fall back to interface identity.
type LiteralComparable interface {
	EqualValue(other any) bool
}

// Equal reports structural equality of two expression trees. Symbols
// compare by content, literals by value, calls and assignments
// recursively including argument names and order.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Symbol:
		y, ok := b.(*Symbol)
		return ok && x.hash == y.hash && x.Name == y.Name
	case *Literal:
		y, ok := b.(*Literal)
		return ok && equalVal(x.Val, y.Val)
	case *CallNode:
		y, ok := b.(*CallNode)
		if !ok || !Equal(x.Head, y.Head) || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if x.Args[i].Name != y.Args[i].Name || !Equal(x.Args[i].Value, y.Args[i].Value) {
				return false
			}
		}
		return true
	case *AssignNode:
		y, ok := b.(*AssignNode)
		return ok && Equal(x.Target, y.Target) && Equal(x.Value, y.Value)
	case *UnquoteMarker:
		y, ok := b.(*UnquoteMarker)
		return ok && Equal(x.Operand, y.Operand)
	case *SpliceMarker:
		y, ok := b.(*SpliceMarker)
		return ok && Equal(x.Operand, y.Operand)
	case *NameSubMarker:
		y, ok := b.(*NameSubMarker)
		return ok && Equal(x.Operand, y.Operand)
	}
	return false
}

func equalVal(a, b any) bool {
	if c, ok := a.(LiteralComparable); ok {
		return c.EqualValue(b)
	}
	if c, ok := b.(LiteralComparable); ok {
		return c.EqualValue(a)
	}
	as, aok := a.([]any)
	bs, bok := b.([]any)
	if aok || bok {
		if !aok || !bok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !equalVal(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}
