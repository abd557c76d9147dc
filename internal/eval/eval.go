// Package eval folds constant sub-expressions at analysis time. It is used
// for duplicate-case detection, division-by-zero detection and value checks
// on recognized built-in arguments.
package eval

import (
	"nwlint/internal/ast"
	"nwlint/internal/types"
)

// Result is the outcome of a successful fold.
type Result struct {
	Value   Value
	Type    types.Type
	IsConst bool
}

// ConstResolver looks up a named constant. ok=false means the name is not a
// known constant, which makes the whole enclosing expression non-constant —
// never an error.
type ConstResolver func(name string) (Value, bool)

// Evaluate folds expr when every leaf is a literal or a resolvable constant.
// ok=false means "cannot determine", not a failure: callers must fall back
// to treating the expression as dynamic. Division or modulo by a folded zero
// also yields ok=false; the user-facing diagnostic for a literal zero
// divisor is produced structurally by the analyzer, not here.
func Evaluate(expr ast.Expr, resolve ConstResolver) (Result, bool) {
	v, ok := eval(expr, resolve)
	if !ok {
		return Result{}, false
	}
	return Result{Value: v, Type: v.Type(), IsConst: true}, true
}

func eval(expr ast.Expr, resolve ConstResolver) (Value, bool) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return evalLiteral(e)

	case *ast.IdentExpr:
		if resolve == nil {
			return Value{}, false
		}
		return resolve(e.Name)

	case *ast.VectorLitExpr:
		x, okX := eval(e.X, resolve)
		y, okY := eval(e.Y, resolve)
		z, okZ := eval(e.Z, resolve)
		if !okX || !okY || !okZ {
			return Value{}, false
		}
		if !isNumericValue(x) || !isNumericValue(y) || !isNumericValue(z) {
			return Value{}, false
		}
		return VectorVal(x.asFloat(), y.asFloat(), z.asFloat()), true

	case *ast.UnaryExpr:
		return evalUnary(e, resolve)

	case *ast.BinaryExpr:
		return evalBinary(e, resolve)

	case *ast.CondExpr:
		cond, ok := eval(e.Condition, resolve)
		if !ok || cond.Kind != IntValue {
			return Value{}, false
		}
		if cond.Int != 0 {
			return eval(e.Then, resolve)
		}
		return eval(e.Else, resolve)
	}

	return Value{}, false
}

func evalLiteral(e *ast.LiteralExpr) (Value, bool) {
	switch e.Kind {
	case ast.IntLit:
		if e.Placeholder() {
			return IntVal(0), true
		}
		i, err := ParseInt(e.Raw)
		if err != nil {
			return Value{}, false
		}
		return IntVal(i), true
	case ast.HexLit:
		i, err := ParseInt(e.Raw)
		if err != nil {
			return Value{}, false
		}
		return IntVal(i), true
	case ast.FloatLit:
		f, err := ParseFloat(e.Raw)
		if err != nil {
			return Value{}, false
		}
		return FloatVal(f), true
	case ast.StringLit:
		return StrVal(e.Raw), true
	case ast.BoolLit:
		if e.Raw == "TRUE" {
			return IntVal(1), true
		}
		return IntVal(0), true
	default:
		// Engine sentinels are object-typed, never foldable.
		return Value{}, false
	}
}

func evalUnary(e *ast.UnaryExpr, resolve ConstResolver) (Value, bool) {
	if e.Postfix {
		return Value{}, false // i++ mutates, never constant
	}
	v, ok := eval(e.Operand, resolve)
	if !ok {
		return Value{}, false
	}
	switch e.Op {
	case "-":
		switch v.Kind {
		case IntValue:
			return IntVal(-v.Int), true
		case FloatValue:
			return FloatVal(-v.Float), true
		case VectorValue:
			return VectorVal(-v.X, -v.Y, -v.Z), true
		}
	case "+":
		if isNumericValue(v) {
			return v, true
		}
	case "!":
		if v.Kind == IntValue {
			return boolVal(v.Int == 0), true
		}
	case "~":
		if v.Kind == IntValue {
			return IntVal(^v.Int), true
		}
	}
	return Value{}, false
}

func evalBinary(e *ast.BinaryExpr, resolve ConstResolver) (Value, bool) {
	l, okL := eval(e.Left, resolve)
	r, okR := eval(e.Right, resolve)
	if !okL || !okR {
		return Value{}, false
	}

	switch e.Op {
	case "+":
		if l.Kind == StringValue || r.Kind == StringValue {
			return concat(l, r)
		}
		if l.Kind == VectorValue && r.Kind == VectorValue {
			return VectorVal(l.X+r.X, l.Y+r.Y, l.Z+r.Z), true
		}
		return arith(l, r, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
	case "-":
		if l.Kind == VectorValue && r.Kind == VectorValue {
			return VectorVal(l.X-r.X, l.Y-r.Y, l.Z-r.Z), true
		}
		return arith(l, r, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	case "*":
		if l.Kind == VectorValue && r.Kind == VectorValue {
			return FloatVal(l.X*r.X + l.Y*r.Y + l.Z*r.Z), true
		}
		if l.Kind == VectorValue && isNumericValue(r) {
			s := r.asFloat()
			return VectorVal(l.X*s, l.Y*s, l.Z*s), true
		}
		if isNumericValue(l) && r.Kind == VectorValue {
			s := l.asFloat()
			return VectorVal(r.X*s, r.Y*s, r.Z*s), true
		}
		return arith(l, r, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
	case "/":
		if r.IsZero() {
			return Value{}, false
		}
		return arith(l, r, func(a, b int64) int64 { return a / b }, func(a, b float64) float64 { return a / b })
	case "%":
		if l.Kind == IntValue && r.Kind == IntValue {
			if r.Int == 0 {
				return Value{}, false
			}
			return IntVal(l.Int % r.Int), true
		}
	case "==", "!=", "<", "<=", ">", ">=":
		return compare(e.Op, l, r)
	case "&&":
		if l.Kind == IntValue && r.Kind == IntValue {
			return boolVal(l.Int != 0 && r.Int != 0), true
		}
	case "||":
		if l.Kind == IntValue && r.Kind == IntValue {
			return boolVal(l.Int != 0 || r.Int != 0), true
		}
	case "&":
		if l.Kind == IntValue && r.Kind == IntValue {
			return IntVal(l.Int & r.Int), true
		}
	case "|":
		if l.Kind == IntValue && r.Kind == IntValue {
			return IntVal(l.Int | r.Int), true
		}
	case "^":
		if l.Kind == IntValue && r.Kind == IntValue {
			return IntVal(l.Int ^ r.Int), true
		}
	case "<<":
		if l.Kind == IntValue && r.Kind == IntValue && r.Int >= 0 && r.Int < 64 {
			return IntVal(l.Int << uint(r.Int)), true
		}
	case ">>":
		if l.Kind == IntValue && r.Kind == IntValue && r.Int >= 0 && r.Int < 64 {
			return IntVal(l.Int >> uint(r.Int)), true
		}
	}
	return Value{}, false
}

func isNumericValue(v Value) bool {
	return v.Kind == IntValue || v.Kind == FloatValue
}

func boolVal(b bool) Value {
	if b {
		return IntVal(1)
	}
	return IntVal(0)
}

func arith(l, r Value, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) (Value, bool) {
	if l.Kind == IntValue && r.Kind == IntValue {
		return IntVal(intOp(l.Int, r.Int)), true
	}
	if isNumericValue(l) && isNumericValue(r) {
		return FloatVal(floatOp(l.asFloat(), r.asFloat())), true
	}
	return Value{}, false
}

func concat(l, r Value) (Value, bool) {
	ls, ok := stringify(l)
	if !ok {
		return Value{}, false
	}
	rs, ok := stringify(r)
	if !ok {
		return Value{}, false
	}
	return StrVal(ls + rs), true
}

func stringify(v Value) (string, bool) {
	switch v.Kind {
	case StringValue:
		return v.Str, true
	case IntValue, FloatValue:
		s := v.String()
		return s, true
	default:
		return "", false
	}
}

func compare(op string, l, r Value) (Value, bool) {
	if l.Kind == StringValue && r.Kind == StringValue {
		switch op {
		case "==":
			return boolVal(l.Str == r.Str), true
		case "!=":
			return boolVal(l.Str != r.Str), true
		default:
			return Value{}, false
		}
	}
	if !isNumericValue(l) || !isNumericValue(r) {
		return Value{}, false
	}
	a, b := l.asFloat(), r.asFloat()
	switch op {
	case "==":
		return boolVal(a == b), true
	case "!=":
		return boolVal(a != b), true
	case "<":
		return boolVal(a < b), true
	case "<=":
		return boolVal(a <= b), true
	case ">":
		return boolVal(a > b), true
	case ">=":
		return boolVal(a >= b), true
	}
	return Value{}, false
}

// Equal reports whether two folded values are the same constant, used for
// duplicate-case detection.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		if isNumericValue(a) && isNumericValue(b) {
			return a.asFloat() == b.asFloat()
		}
		return false
	}
	switch a.Kind {
	case IntValue:
		return a.Int == b.Int
	case FloatValue:
		return a.Float == b.Float
	case StringValue:
		return a.Str == b.Str
	default:
		return a.X == b.X && a.Y == b.Y && a.Z == b.Z
	}
}
