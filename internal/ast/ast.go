package ast

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Source positions
// ---------------------------------------------------------------------------

// Position is a point in source code. Line and Column are 1-based, Offset is
// the 0-based byte offset into the source text.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Range is a span of source text. Every AST node and every diagnostic
// carries one; a Range is never mutated after creation.
type Range struct {
	Start Position
	End   Position
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Span builds a Range covering both given ranges.
func Span(from, to Range) Range {
	return Range{Start: from.Start, End: to.End}
}

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// Node is implemented by every AST node.
type Node interface {
	GetRange() Range
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// ---------------------------------------------------------------------------
// Program (root)
// ---------------------------------------------------------------------------

// Program is the root of a parsed script. Top-level order is preserved in
// Decls; Includes, Structs, Functions and Globals are convenience views
// filled in by the parser. A Program owns its whole tree exclusively and is
// discarded after diagnostics are extracted.
type Program struct {
	Includes  []*IncludeDirective
	Structs   []*StructDecl
	Functions []*FunctionDecl
	Globals   []*VariableDecl
	Decls     []Node
	Rng       Range
}

func (n *Program) GetRange() Range { return n.Rng }

// ---------------------------------------------------------------------------
// Top-level declarations
// ---------------------------------------------------------------------------

// IncludeDirective: #include "name"
type IncludeDirective struct {
	Name string
	Rng  Range
}

func (n *IncludeDirective) GetRange() Range { return n.Rng }

// TypeSpec is a type annotation such as "int", "vector" or "struct point".
type TypeSpec struct {
	Name       string // primitive type keyword, or the struct name
	IsStruct   bool
	StructName string // set when IsStruct
	Rng        Range
}

func (n *TypeSpec) GetRange() Range { return n.Rng }

// Param is a single function parameter, optionally with a default value.
type Param struct {
	Name    string
	Type    *TypeSpec
	Default Expr // nil when the parameter has no default
	Rng     Range
}

func (n *Param) GetRange() Range { return n.Rng }

// FunctionDecl is a function prototype or definition. IsPrototype
// distinguishes a forward declaration (no body, terminated by ';') from a
// definition with a Body.
type FunctionDecl struct {
	Name        string
	ReturnType  *TypeSpec
	Params      []*Param
	Body        *BlockStmt // nil for prototypes
	IsPrototype bool
	Rng         Range
}

func (n *FunctionDecl) GetRange() Range { return n.Rng }

// StructDecl: struct name { fields };
type StructDecl struct {
	Name   string
	Fields []*VariableDecl
	Rng    Range
}

func (n *StructDecl) GetRange() Range { return n.Rng }

// VariableDecl: [const] type name [= init];
// Used for globals, locals and struct fields.
type VariableDecl struct {
	Name    string
	Type    *TypeSpec
	Init    Expr // nil when uninitialised
	IsConst bool
	Rng     Range
}

func (n *VariableDecl) GetRange() Range { return n.Rng }
func (n *VariableDecl) stmtNode()       {}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// BlockStmt is a brace-delimited list of statements.
type BlockStmt struct {
	Stmts []Stmt
	Rng   Range
}

func (n *BlockStmt) GetRange() Range { return n.Rng }
func (n *BlockStmt) stmtNode()       {}

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	Expression Expr
	Rng        Range
}

func (n *ExprStmt) GetRange() Range { return n.Rng }
func (n *ExprStmt) stmtNode()       {}

// ReturnStmt: return [<value>];
type ReturnStmt struct {
	Value Expr // nil for bare "return;"
	Rng   Range
}

func (n *ReturnStmt) GetRange() Range { return n.Rng }
func (n *ReturnStmt) stmtNode()       {}

// IfStmt: if (<cond>) <then> [else <else>]
type IfStmt struct {
	Condition Expr
	Then      Stmt
	Else      Stmt // nil, a block, or another IfStmt (else-if chain)
	Rng       Range
}

func (n *IfStmt) GetRange() Range { return n.Rng }
func (n *IfStmt) stmtNode()       {}

// WhileStmt: while (<cond>) <body>
type WhileStmt struct {
	Condition Expr
	Body      Stmt
	Rng       Range
}

func (n *WhileStmt) GetRange() Range { return n.Rng }
func (n *WhileStmt) stmtNode()       {}

// DoWhileStmt: do <body> while (<cond>);
type DoWhileStmt struct {
	Body      Stmt
	Condition Expr
	Rng       Range
}

func (n *DoWhileStmt) GetRange() Range { return n.Rng }
func (n *DoWhileStmt) stmtNode()       {}

// ForStmt: for ([init]; [cond]; [update]) <body>
// All three clauses are optional expressions; the language has no
// for-scoped declarations.
type ForStmt struct {
	Init      Expr
	Condition Expr
	Update    Expr
	Body      Stmt
	Rng       Range
}

func (n *ForStmt) GetRange() Range { return n.Rng }
func (n *ForStmt) stmtNode()       {}

// SwitchStmt: switch (<cond>) { cases }
type SwitchStmt struct {
	Condition Expr
	Cases     []*CaseClause
	Rng       Range
}

func (n *SwitchStmt) GetRange() Range { return n.Rng }
func (n *SwitchStmt) stmtNode()       {}

// CaseClause: "case <value>:" or "default:" followed by statements.
type CaseClause struct {
	Value     Expr // nil for default
	IsDefault bool
	Stmts     []Stmt
	Rng       Range
}

func (n *CaseClause) GetRange() Range { return n.Rng }

// BreakStmt: break;
type BreakStmt struct {
	Rng Range
}

func (n *BreakStmt) GetRange() Range { return n.Rng }
func (n *BreakStmt) stmtNode()       {}

// ContinueStmt: continue;
type ContinueStmt struct {
	Rng Range
}

func (n *ContinueStmt) GetRange() Range { return n.Rng }
func (n *ContinueStmt) stmtNode()       {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// IdentExpr is a plain identifier reference.
type IdentExpr struct {
	Name string
	Rng  Range
}

func (n *IdentExpr) GetRange() Range { return n.Rng }
func (n *IdentExpr) exprNode()       {}

// LiteralKind distinguishes literal subkinds so the evaluator can recover
// the exact source formatting.
type LiteralKind int

const (
	IntLit LiteralKind = iota
	FloatLit
	HexLit
	StringLit
	BoolLit // TRUE / FALSE
	ObjectSelfLit
	ObjectInvalidLit
)

// LiteralExpr is any literal token used as an expression. Raw keeps the
// original lexeme (without quotes for strings).
type LiteralExpr struct {
	Kind LiteralKind
	Raw  string
	Rng  Range
}

func (n *LiteralExpr) GetRange() Range { return n.Rng }
func (n *LiteralExpr) exprNode()       {}

// Placeholder reports whether this literal was substituted by the parser
// during error recovery rather than written in the source.
func (n *LiteralExpr) Placeholder() bool {
	return n.Kind == IntLit && n.Raw == ""
}

// VectorLitExpr: [x, y, z] — exactly three components.
type VectorLitExpr struct {
	X, Y, Z Expr
	Rng     Range
}

func (n *VectorLitExpr) GetRange() Range { return n.Rng }
func (n *VectorLitExpr) exprNode()       {}

// UnaryExpr: prefix (!x, -y, +y, ~z, ++i, --i) or postfix (i++, i--)
// operator application.
type UnaryExpr struct {
	Op      string
	Operand Expr
	Postfix bool
	Rng     Range
}

func (n *UnaryExpr) GetRange() Range { return n.Rng }
func (n *UnaryExpr) exprNode()       {}

// BinaryExpr: <left> <op> <right>
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
	Rng   Range
}

func (n *BinaryExpr) GetRange() Range { return n.Rng }
func (n *BinaryExpr) exprNode()       {}

// AssignExpr: <target> <op> <value>. Op is "=" or a compound form
// ("+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=").
type AssignExpr struct {
	Op     string
	Target Expr
	Value  Expr
	Rng    Range
}

func (n *AssignExpr) GetRange() Range { return n.Rng }
func (n *AssignExpr) exprNode()       {}

// CondExpr: <cond> ? <then> : <else>
type CondExpr struct {
	Condition Expr
	Then      Expr
	Else      Expr
	Rng       Range
}

func (n *CondExpr) GetRange() Range { return n.Rng }
func (n *CondExpr) exprNode()       {}

// CallExpr: <callee>(<args>)
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Rng    Range
}

func (n *CallExpr) GetRange() Range { return n.Rng }
func (n *CallExpr) exprNode()       {}

// MemberExpr: <object>.<field>. Covers both struct field access and vector
// component access (v.x, v.y, v.z).
type MemberExpr struct {
	Object Expr
	Field  string
	Rng    Range
}

func (n *MemberExpr) GetRange() Range { return n.Rng }
func (n *MemberExpr) exprNode()       {}

// ---------------------------------------------------------------------------
// Debug printer – produces a human-readable tree representation
// ---------------------------------------------------------------------------

// DebugString returns a readable multi-line representation of the AST.
func DebugString(prog *Program) string {
	var b strings.Builder
	writeIndentLine(&b, 0, "Program")
	for _, inc := range prog.Includes {
		writeIndentLine(&b, 1, fmt.Sprintf("Include %q", inc.Name))
	}
	for _, st := range prog.Structs {
		writeIndentLine(&b, 1, fmt.Sprintf("Struct %s [%d fields]", st.Name, len(st.Fields)))
		for _, f := range st.Fields {
			writeIndentLine(&b, 2, fmt.Sprintf("%s %s", typeName(f.Type), f.Name))
		}
	}
	for _, g := range prog.Globals {
		writeIndentLine(&b, 1, fmt.Sprintf("Global %s %s = %s", typeName(g.Type), g.Name, ExprString(g.Init)))
	}
	for _, fn := range prog.Functions {
		debugFunction(&b, fn, 1)
	}
	return b.String()
}

func writeIndentLine(b *strings.Builder, level int, s string) {
	for i := 0; i < level; i++ {
		b.WriteString("  ")
	}
	b.WriteString(s)
	b.WriteByte('\n')
}

func typeName(t *TypeSpec) string {
	if t == nil {
		return "<nil>"
	}
	if t.IsStruct {
		return "struct " + t.StructName
	}
	return t.Name
}

func debugFunction(b *strings.Builder, fn *FunctionDecl, level int) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		s := typeName(p.Type) + " " + p.Name
		if p.Default != nil {
			s += " = " + ExprString(p.Default)
		}
		params[i] = s
	}
	kind := "Fn"
	if fn.IsPrototype {
		kind = "Proto"
	}
	writeIndentLine(b, level, fmt.Sprintf("%s %s %s(%s)", kind, typeName(fn.ReturnType), fn.Name, strings.Join(params, ", ")))
	if fn.Body != nil {
		debugStmt(b, fn.Body, level+1)
	}
}

func debugStmt(b *strings.Builder, s Stmt, level int) {
	switch s := s.(type) {
	case *BlockStmt:
		writeIndentLine(b, level, fmt.Sprintf("Block [%d statements]", len(s.Stmts)))
		for _, inner := range s.Stmts {
			debugStmt(b, inner, level+1)
		}
	case *VariableDecl:
		prefix := ""
		if s.IsConst {
			prefix = "const "
		}
		writeIndentLine(b, level, fmt.Sprintf("Var %s%s %s = %s", prefix, typeName(s.Type), s.Name, ExprString(s.Init)))
	case *ExprStmt:
		writeIndentLine(b, level, "Expr "+ExprString(s.Expression))
	case *ReturnStmt:
		if s.Value != nil {
			writeIndentLine(b, level, "Return "+ExprString(s.Value))
		} else {
			writeIndentLine(b, level, "Return")
		}
	case *IfStmt:
		writeIndentLine(b, level, "If "+ExprString(s.Condition))
		debugStmt(b, s.Then, level+1)
		if s.Else != nil {
			writeIndentLine(b, level, "Else")
			debugStmt(b, s.Else, level+1)
		}
	case *WhileStmt:
		writeIndentLine(b, level, "While "+ExprString(s.Condition))
		debugStmt(b, s.Body, level+1)
	case *DoWhileStmt:
		writeIndentLine(b, level, "DoWhile "+ExprString(s.Condition))
		debugStmt(b, s.Body, level+1)
	case *ForStmt:
		writeIndentLine(b, level, fmt.Sprintf("For %s; %s; %s", ExprString(s.Init), ExprString(s.Condition), ExprString(s.Update)))
		debugStmt(b, s.Body, level+1)
	case *SwitchStmt:
		writeIndentLine(b, level, "Switch "+ExprString(s.Condition))
		for _, c := range s.Cases {
			if c.IsDefault {
				writeIndentLine(b, level+1, "Default")
			} else {
				writeIndentLine(b, level+1, "Case "+ExprString(c.Value))
			}
			for _, inner := range c.Stmts {
				debugStmt(b, inner, level+2)
			}
		}
	case *BreakStmt:
		writeIndentLine(b, level, "Break")
	case *ContinueStmt:
		writeIndentLine(b, level, "Continue")
	default:
		writeIndentLine(b, level, "<unknown stmt>")
	}
}

// ExprString returns a concise one-line representation of an expression.
func ExprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch e := e.(type) {
	case *IdentExpr:
		return e.Name
	case *LiteralExpr:
		switch e.Kind {
		case StringLit:
			return fmt.Sprintf("%q", e.Raw)
		case ObjectSelfLit:
			return "OBJECT_SELF"
		case ObjectInvalidLit:
			return "OBJECT_INVALID"
		default:
			return e.Raw
		}
	case *VectorLitExpr:
		return fmt.Sprintf("[%s, %s, %s]", ExprString(e.X), ExprString(e.Y), ExprString(e.Z))
	case *UnaryExpr:
		if e.Postfix {
			return fmt.Sprintf("(%s%s)", ExprString(e.Operand), e.Op)
		}
		return fmt.Sprintf("(%s%s)", e.Op, ExprString(e.Operand))
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", ExprString(e.Left), e.Op, ExprString(e.Right))
	case *AssignExpr:
		return fmt.Sprintf("(%s %s %s)", ExprString(e.Target), e.Op, ExprString(e.Value))
	case *CondExpr:
		return fmt.Sprintf("(%s ? %s : %s)", ExprString(e.Condition), ExprString(e.Then), ExprString(e.Else))
	case *CallExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = ExprString(a)
		}
		return fmt.Sprintf("%s(%s)", ExprString(e.Callee), strings.Join(args, ", "))
	case *MemberExpr:
		return fmt.Sprintf("%s.%s", ExprString(e.Object), e.Field)
	default:
		return "<unknown expr>"
	}
}
