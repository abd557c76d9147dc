// Package types models the NWScript type system: the primitive and struct
// kinds, assignability, and operator result typing. Everything here is a
// pure function of its inputs; scope and symbol state live in the analyzer.
package types

// Kind enumerates the primitive type kinds plus Struct.
type Kind int

const (
	Void Kind = iota
	Int
	Float
	String
	Object
	Vector
	Action
	Effect
	Event
	Location
	Talent
	Struct
)

var kindNames = map[Kind]string{
	Void:     "void",
	Int:      "int",
	Float:    "float",
	String:   "string",
	Object:   "object",
	Vector:   "vector",
	Action:   "action",
	Effect:   "effect",
	Event:    "event",
	Location: "location",
	Talent:   "talent",
	Struct:   "struct",
}

// Type is a resolved NWScript type. StructName is set only for Struct kinds.
type Type struct {
	Kind       Kind
	StructName string
}

func (t Type) String() string {
	if t.Kind == Struct {
		return "struct " + t.StructName
	}
	return kindNames[t.Kind]
}

// Convenience singletons for the primitive types.
var (
	TypeVoid     = Type{Kind: Void}
	TypeInt      = Type{Kind: Int}
	TypeFloat    = Type{Kind: Float}
	TypeString   = Type{Kind: String}
	TypeObject   = Type{Kind: Object}
	TypeVector   = Type{Kind: Vector}
	TypeAction   = Type{Kind: Action}
	TypeEffect   = Type{Kind: Effect}
	TypeEvent    = Type{Kind: Event}
	TypeLocation = Type{Kind: Location}
	TypeTalent   = Type{Kind: Talent}
)

// StructType builds a struct type with the given name.
func StructType(name string) Type {
	return Type{Kind: Struct, StructName: name}
}

var keywordTypes = map[string]Type{
	"void":     TypeVoid,
	"int":      TypeInt,
	"float":    TypeFloat,
	"string":   TypeString,
	"object":   TypeObject,
	"vector":   TypeVector,
	"action":   TypeAction,
	"effect":   TypeEffect,
	"event":    TypeEvent,
	"location": TypeLocation,
	"talent":   TypeTalent,
}

// FromKeyword resolves a primitive type keyword to its Type.
func FromKeyword(name string) (Type, bool) {
	t, ok := keywordTypes[name]
	return t, ok
}

// Info is the per-expression type information derived by the checker. It is
// recomputed by each pass that needs it, never stored on AST nodes.
type Info struct {
	Type     Type
	IsConst  bool
	IsLValue bool
}

// IsNumeric reports whether t participates in numeric promotion.
func IsNumeric(t Type) bool {
	return t.Kind == Int || t.Kind == Float
}

// IsAssignable reports whether a value of type src can be used where dst is
// expected. int and float promote to each other; anything is assignable to
// object; anything non-void is assignable to string (matching the runtime's
// string concatenation semantics); structs require the same struct name.
func IsAssignable(src, dst Type) bool {
	if src.Kind == dst.Kind {
		if src.Kind == Struct {
			return src.StructName == dst.StructName
		}
		return true
	}
	if IsNumeric(src) && IsNumeric(dst) {
		return true
	}
	if dst.Kind == Object {
		return true
	}
	if dst.Kind == String && src.Kind != Void {
		return true
	}
	return false
}

// promote resolves the result of combining two numeric operands: float wins.
func promote(a, b Type) Type {
	if a.Kind == Float || b.Kind == Float {
		return TypeFloat
	}
	return TypeInt
}

// BinaryResult returns the result type of applying a binary operator to the
// given operand types, or ok=false when the combination is invalid.
func BinaryResult(op string, left, right Type) (Type, bool) {
	switch op {
	case "+":
		// String concatenation is permissive: either side being a string
		// coerces the whole expression.
		if left.Kind == String || right.Kind == String {
			if left.Kind == Void || right.Kind == Void {
				return TypeVoid, false
			}
			return TypeString, true
		}
		if left.Kind == Vector && right.Kind == Vector {
			return TypeVector, true
		}
		if IsNumeric(left) && IsNumeric(right) {
			return promote(left, right), true
		}
		return TypeVoid, false

	case "-":
		if left.Kind == Vector && right.Kind == Vector {
			return TypeVector, true
		}
		if IsNumeric(left) && IsNumeric(right) {
			return promote(left, right), true
		}
		return TypeVoid, false

	case "*":
		// Vector algebra: vector*scalar and scalar*vector scale, and
		// vector*vector is the dot product.
		if left.Kind == Vector && right.Kind == Vector {
			return TypeFloat, true
		}
		if left.Kind == Vector && IsNumeric(right) {
			return TypeVector, true
		}
		if IsNumeric(left) && right.Kind == Vector {
			return TypeVector, true
		}
		if IsNumeric(left) && IsNumeric(right) {
			return promote(left, right), true
		}
		return TypeVoid, false

	case "/":
		if IsNumeric(left) && IsNumeric(right) {
			return promote(left, right), true
		}
		return TypeVoid, false

	case "%":
		if left.Kind == Int && right.Kind == Int {
			return TypeInt, true
		}
		return TypeVoid, false

	case "==", "!=":
		// The dialect has no boolean type; comparisons yield int.
		if IsAssignable(left, right) || IsAssignable(right, left) {
			return TypeInt, true
		}
		return TypeVoid, false

	case "<", "<=", ">", ">=":
		if IsNumeric(left) && IsNumeric(right) {
			return TypeInt, true
		}
		return TypeVoid, false

	case "&&", "||":
		if left.Kind == Int && right.Kind == Int {
			return TypeInt, true
		}
		return TypeVoid, false

	case "&", "|", "^", "<<", ">>":
		// Bitwise and shift operators require both operands strictly int.
		if left.Kind == Int && right.Kind == Int {
			return TypeInt, true
		}
		return TypeVoid, false
	}

	return TypeVoid, false
}

// UnaryResult returns the result type of applying a prefix or postfix unary
// operator. Lvalue requirements for ++/-- are enforced by the checker, not
// here.
func UnaryResult(op string, operand Type) (Type, bool) {
	switch op {
	case "-", "+":
		if IsNumeric(operand) {
			return operand, true
		}
		if op == "-" && operand.Kind == Vector {
			return TypeVector, true
		}
		return TypeVoid, false
	case "!":
		if operand.Kind == Int {
			return TypeInt, true
		}
		return TypeVoid, false
	case "~":
		if operand.Kind == Int {
			return TypeInt, true
		}
		return TypeVoid, false
	case "++", "--":
		if IsNumeric(operand) {
			return operand, true
		}
		return TypeVoid, false
	}
	return TypeVoid, false
}

// CompoundBinaryOp maps a compound assignment operator ("+=") to the
// underlying binary operator ("+"). Plain "=" maps to "".
func CompoundBinaryOp(op string) string {
	if len(op) > 1 && op[len(op)-1] == '=' {
		base := op[:len(op)-1]
		switch base {
		case "+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>":
			return base
		}
	}
	return ""
}
