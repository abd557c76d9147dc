package parser_test

import (
	"testing"

	"nwlint/internal/ast"
	"nwlint/internal/lexer"
	"nwlint/internal/parser"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func parse(t *testing.T, input string) (*ast.Program, []parser.SyntaxError) {
	t.Helper()
	tokens, err := lexer.Lex(input)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, errs := parser.Parse(tokens)
	if prog == nil {
		t.Fatal("Parse returned a nil Program")
	}
	return prog, errs
}

func parseOK(t *testing.T, input string) *ast.Program {
	t.Helper()
	prog, errs := parse(t, input)
	if len(errs) > 0 {
		t.Fatalf("unexpected syntax errors: %v", errs)
	}
	return prog
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

func TestParseFunction(t *testing.T) {
	prog := parseOK(t, `
void main() {
    int nCount = 0;
    nCount = nCount + 1;
}`)
	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "main" {
		t.Errorf("name: got %q, want %q", fn.Name, "main")
	}
	if fn.IsPrototype {
		t.Error("main should not be a prototype")
	}
	if len(fn.Body.Stmts) != 2 {
		t.Errorf("expected 2 statements, got %d", len(fn.Body.Stmts))
	}
}

func TestParsePrototypeAndDefaults(t *testing.T) {
	prog := parseOK(t, `int Add(int a, int b = 2);`)
	fn := prog.Functions[0]
	if !fn.IsPrototype {
		t.Error("expected a prototype")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Default != nil {
		t.Error("param a should have no default")
	}
	if fn.Params[1].Default == nil {
		t.Error("param b should have a default")
	}
}

func TestParseGlobalsAndConst(t *testing.T) {
	prog := parseOK(t, `
const int MAX_HENCHMEN = 2;
int nCounter;
`)
	if len(prog.Globals) != 2 {
		t.Fatalf("expected 2 globals, got %d", len(prog.Globals))
	}
	if !prog.Globals[0].IsConst {
		t.Error("MAX_HENCHMEN should be const")
	}
	if prog.Globals[1].Init != nil {
		t.Error("nCounter should have no initializer")
	}
}

func TestParseStructDecl(t *testing.T) {
	prog := parseOK(t, `
struct rank {
    int nLevel;
    string sTitle;
};
struct rank GetRank();
`)
	if len(prog.Structs) != 1 {
		t.Fatalf("expected 1 struct, got %d", len(prog.Structs))
	}
	st := prog.Structs[0]
	if st.Name != "rank" || len(st.Fields) != 2 {
		t.Errorf("struct: got %q with %d fields", st.Name, len(st.Fields))
	}
	ret := prog.Functions[0].ReturnType
	if !ret.IsStruct || ret.StructName != "rank" {
		t.Errorf("return type: got %+v, want struct rank", ret)
	}
}

func TestParseIncludes(t *testing.T) {
	prog := parseOK(t, `
#include "k_inc_utility"
#include "k_inc_generic"
void main() {}
`)
	if len(prog.Includes) != 2 {
		t.Fatalf("expected 2 includes, got %d", len(prog.Includes))
	}
	if prog.Includes[0].Name != "k_inc_utility" {
		t.Errorf("include[0]: got %q", prog.Includes[0].Name)
	}
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func TestParseControlFlow(t *testing.T) {
	prog := parseOK(t, `
void main() {
    if (1) { } else if (2) { } else { }
    while (1) { break; }
    do { continue; } while (0);
    for (i = 0; i < 10; i++) { }
    switch (n) {
        case 1:
            break;
        default:
            break;
    }
}`)
	stmts := prog.Functions[0].Body.Stmts
	if len(stmts) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(stmts))
	}
	if _, ok := stmts[0].(*ast.IfStmt); !ok {
		t.Errorf("stmt[0]: got %T, want *ast.IfStmt", stmts[0])
	}
	if _, ok := stmts[2].(*ast.DoWhileStmt); !ok {
		t.Errorf("stmt[2]: got %T, want *ast.DoWhileStmt", stmts[2])
	}
	forStmt, ok := stmts[3].(*ast.ForStmt)
	if !ok {
		t.Fatalf("stmt[3]: got %T, want *ast.ForStmt", stmts[3])
	}
	if forStmt.Init == nil || forStmt.Condition == nil || forStmt.Update == nil {
		t.Error("for clauses should all be present")
	}
	sw, ok := stmts[4].(*ast.SwitchStmt)
	if !ok {
		t.Fatalf("stmt[4]: got %T, want *ast.SwitchStmt", stmts[4])
	}
	if len(sw.Cases) != 2 || !sw.Cases[1].IsDefault {
		t.Errorf("switch: got %d cases, default=%v", len(sw.Cases), sw.Cases[1].IsDefault)
	}
}

func TestParseEmptyForClauses(t *testing.T) {
	prog := parseOK(t, `void main() { for (;;) { break; } }`)
	forStmt := prog.Functions[0].Body.Stmts[0].(*ast.ForStmt)
	if forStmt.Init != nil || forStmt.Condition != nil || forStmt.Update != nil {
		t.Error("all for clauses should be nil")
	}
}

func TestDeclarationHeuristic(t *testing.T) {
	// "ident ident" at statement level reads as a declaration of a
	// struct-typed variable even when the type name is unknown.
	prog := parseOK(t, `void main() { rank r; }`)
	decl, ok := prog.Functions[0].Body.Stmts[0].(*ast.VariableDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.VariableDecl", prog.Functions[0].Body.Stmts[0])
	}
	if !decl.Type.IsStruct || decl.Type.StructName != "rank" {
		t.Errorf("type: got %+v", decl.Type)
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func TestBinaryPrecedence(t *testing.T) {
	prog := parseOK(t, `int a = 1 + 2 * 3;`)
	bin, ok := prog.Globals[0].Init.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.BinaryExpr", prog.Globals[0].Init)
	}
	if bin.Op != "+" {
		t.Errorf("root op: got %q, want %q", bin.Op, "+")
	}
	if inner, ok := bin.Right.(*ast.BinaryExpr); !ok || inner.Op != "*" {
		t.Errorf("right: got %T, want * expression", bin.Right)
	}
}

func TestAssignmentBindsTightest(t *testing.T) {
	// Assignment is parsed at the postfix level, so "a + b = c" reads as
	// "a + (b = c)".
	prog := parseOK(t, `void main() { a + b = c; }`)
	expr := prog.Functions[0].Body.Stmts[0].(*ast.ExprStmt).Expression
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.BinaryExpr", expr)
	}
	if _, ok := bin.Right.(*ast.AssignExpr); !ok {
		t.Errorf("right: got %T, want *ast.AssignExpr", bin.Right)
	}
}

func TestVectorLiteral(t *testing.T) {
	prog := parseOK(t, `vector vPos = [1.0, 2.0, 3.0];`)
	if _, ok := prog.Globals[0].Init.(*ast.VectorLitExpr); !ok {
		t.Fatalf("got %T, want *ast.VectorLitExpr", prog.Globals[0].Init)
	}
}

func TestVectorLiteralWrongArity(t *testing.T) {
	_, errs := parse(t, `vector vPos = [1.0, 2.0];`)
	if len(errs) == 0 {
		t.Error("expected a syntax error for a 2-component vector literal")
	}
}

func TestTernaryAndCalls(t *testing.T) {
	prog := parseOK(t, `int n = GetIsObjectValid(oTarget) ? 1 : 0;`)
	cond, ok := prog.Globals[0].Init.(*ast.CondExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.CondExpr", prog.Globals[0].Init)
	}
	if _, ok := cond.Condition.(*ast.CallExpr); !ok {
		t.Errorf("condition: got %T, want *ast.CallExpr", cond.Condition)
	}
}

func TestMemberAndPostfix(t *testing.T) {
	prog := parseOK(t, `void main() { vPos.x++; }`)
	expr := prog.Functions[0].Body.Stmts[0].(*ast.ExprStmt).Expression
	un, ok := expr.(*ast.UnaryExpr)
	if !ok || !un.Postfix || un.Op != "++" {
		t.Fatalf("got %T, want postfix ++", expr)
	}
	if _, ok := un.Operand.(*ast.MemberExpr); !ok {
		t.Errorf("operand: got %T, want *ast.MemberExpr", un.Operand)
	}
}

// ---------------------------------------------------------------------------
// Error recovery
// ---------------------------------------------------------------------------

func TestRecoveryKeepsLaterDeclarations(t *testing.T) {
	prog, errs := parse(t, `
void broken() { int x = ; }
void fine() { int y = 1; }
`)
	if len(errs) == 0 {
		t.Fatal("expected syntax errors")
	}
	if len(prog.Functions) != 2 {
		t.Fatalf("expected both functions to survive, got %d", len(prog.Functions))
	}
	if prog.Functions[1].Name != "fine" {
		t.Errorf("second function: got %q", prog.Functions[1].Name)
	}
}

func TestRecoverySubstitutesPlaceholder(t *testing.T) {
	prog, errs := parse(t, `int a = ;`)
	if len(errs) == 0 {
		t.Fatal("expected a syntax error")
	}
	lit, ok := prog.Globals[0].Init.(*ast.LiteralExpr)
	if !ok || !lit.Placeholder() {
		t.Errorf("init: got %T, want placeholder literal", prog.Globals[0].Init)
	}
}

func TestTruncatedInputStillReturnsProgram(t *testing.T) {
	prog, errs := parse(t, `void main() { if (1) {`)
	if len(errs) == 0 {
		t.Error("expected syntax errors for truncated input")
	}
	if len(prog.Functions) != 1 || prog.Functions[0].Name != "main" {
		t.Errorf("expected a partial main function, got %d functions", len(prog.Functions))
	}
}

func TestGarbageInputTerminates(t *testing.T) {
	inputs := []string{
		"",
		";;;",
		"}}}}",
		"@@@ $$$ %%%",
		"int int int int",
		"((((((((",
	}
	for _, input := range inputs {
		prog, _ := parse(t, input)
		if prog == nil {
			t.Errorf("input %q: nil Program", input)
		}
	}
}
