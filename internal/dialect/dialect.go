// Package dialect applies KOTOR-specific style and compatibility rules on
// top of the core analysis: naming conventions, engine string limits,
// include-usage hints, and version-availability notices. The pass reads only
// the AST; it never consults or mutates the symbol table.
package dialect

import (
	"strings"

	"nwlint/internal/ast"
	"nwlint/internal/diag"
	"nwlint/internal/gamever"
)

// maxTagLength is the engine's limit for tags, resrefs and script names.
const maxTagLength = 16

// hungarianPrefixes maps a type keyword to the accepted identifier prefixes.
var hungarianPrefixes = map[string][]string{
	"int":      {"n", "i", "b"},
	"float":    {"f"},
	"string":   {"s"},
	"object":   {"o"},
	"vector":   {"v"},
	"location": {"l"},
}

// taggedStringParams lists, per built-in, which parameter positions carry a
// tag or template resref subject to the engine length limit.
var taggedStringParams = map[string][]int{
	"GetObjectByTag": {0},
	"CreateObject":   {1},
}

// includeHints maps a library function-name prefix to the include that
// provides it.
var includeHints = map[string]string{
	"UT_": "k_inc_utility",
	"GN_": "k_inc_generic",
	"DB_": "k_inc_debug",
}

// k1OnlyFunctions and k2OnlyFunctions are deliberately small hard-coded
// lists, independent of the analyzer's version-filtered tables, so the
// friendlier availability message survives even when the tables disagree.
var k1OnlyFunctions = map[string]bool{
	"ShowTutorialWindow": true,
	"AddPartyMember":     true,
}

var k2OnlyFunctions = map[string]bool{
	"GetScriptParameter":       true,
	"GetScriptStringParameter": true,
	"GetPartyLeader":           true,
	"GetInfluence":             true,
	"ModifyInfluence":          true,
	"RemoveHeartbeat":          true,
}

// Validate runs the dialect pass over prog, appending notices to sink.
func Validate(prog *ast.Program, version gamever.Version, sink *diag.Sink) {
	v := &validator{version: version, sink: sink, includes: make(map[string]bool)}
	for _, inc := range prog.Includes {
		v.includes[inc.Name] = true
	}

	for _, g := range prog.Globals {
		v.checkGlobal(g)
	}
	for _, fn := range prog.Functions {
		v.checkFunctionDecl(fn)
		if fn.Body != nil {
			v.stmt(fn.Body)
		}
	}
}

type validator struct {
	version  gamever.Version
	sink     *diag.Sink
	includes map[string]bool

	// Each include is suggested at most once per run.
	suggested map[string]bool
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

func (v *validator) checkGlobal(d *ast.VariableDecl) {
	if d.IsConst {
		if d.Name != strings.ToUpper(d.Name) {
			v.sink.Addf(diag.Information, d.GetRange(), diag.CodeConstantCase,
				"constant %q should be UPPER_CASE", d.Name)
		}
	} else {
		v.checkNamingPrefix(d)
	}
	v.checkReservedName(d.Name, d.GetRange())
	if d.Init != nil {
		v.expr(d.Init)
	}
}

func (v *validator) checkFunctionDecl(fn *ast.FunctionDecl) {
	v.checkReservedName(fn.Name, fn.GetRange())
	for _, p := range fn.Params {
		if p.Default != nil {
			v.expr(p.Default)
		}
	}
}

// checkNamingPrefix warns when a variable's name does not carry the
// conventional prefix for its declared type.
func (v *validator) checkNamingPrefix(d *ast.VariableDecl) {
	if d.Type == nil || d.Type.IsStruct {
		return
	}
	prefixes, ok := hungarianPrefixes[d.Type.Name]
	if !ok {
		return
	}
	for _, p := range prefixes {
		rest := strings.TrimPrefix(d.Name, p)
		if rest != d.Name && rest != "" && rest[0] >= 'A' && rest[0] <= 'Z' {
			return
		}
	}
	v.sink.Addf(diag.Information, d.GetRange(), diag.CodeNamingPrefix,
		"%s variable %q should be prefixed with %q",
		d.Type.Name, d.Name, strings.Join(prefixes, "\" or \""))
}

func (v *validator) checkReservedName(name string, rng ast.Range) {
	if strings.HasPrefix(name, "_") {
		v.sink.Addf(diag.Warning, rng, diag.CodeReservedPrefix,
			"names beginning with %q are reserved for the engine", "_")
	}
}

// ---------------------------------------------------------------------------
// Statements and expressions
// ---------------------------------------------------------------------------

func (v *validator) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		for _, inner := range s.Stmts {
			v.stmt(inner)
		}
	case *ast.VariableDecl:
		v.checkNamingPrefix(s)
		if s.Init != nil {
			v.expr(s.Init)
		}
	case *ast.ExprStmt:
		v.expr(s.Expression)
	case *ast.ReturnStmt:
		if s.Value != nil {
			v.expr(s.Value)
		}
	case *ast.IfStmt:
		v.expr(s.Condition)
		v.stmt(s.Then)
		if s.Else != nil {
			v.stmt(s.Else)
		}
	case *ast.WhileStmt:
		v.expr(s.Condition)
		v.stmt(s.Body)
	case *ast.DoWhileStmt:
		v.stmt(s.Body)
		v.expr(s.Condition)
	case *ast.ForStmt:
		if s.Init != nil {
			v.expr(s.Init)
		}
		if s.Condition != nil {
			v.expr(s.Condition)
		}
		if s.Update != nil {
			v.expr(s.Update)
		}
		v.stmt(s.Body)
	case *ast.SwitchStmt:
		v.expr(s.Condition)
		for _, clause := range s.Cases {
			if clause.Value != nil {
				v.expr(clause.Value)
			}
			for _, inner := range clause.Stmts {
				v.stmt(inner)
			}
		}
	}
}

func (v *validator) expr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.CallExpr:
		v.checkCall(e)
		for _, arg := range e.Args {
			v.expr(arg)
		}
	case *ast.BinaryExpr:
		v.expr(e.Left)
		v.expr(e.Right)
	case *ast.UnaryExpr:
		v.expr(e.Operand)
	case *ast.AssignExpr:
		v.expr(e.Target)
		v.expr(e.Value)
	case *ast.CondExpr:
		v.expr(e.Condition)
		v.expr(e.Then)
		v.expr(e.Else)
	case *ast.MemberExpr:
		v.expr(e.Object)
	case *ast.VectorLitExpr:
		v.expr(e.X)
		v.expr(e.Y)
		v.expr(e.Z)
	}
}

func (v *validator) checkCall(e *ast.CallExpr) {
	callee, ok := e.Callee.(*ast.IdentExpr)
	if !ok {
		return
	}
	name := callee.Name

	v.checkVersionGate(name, callee.GetRange())
	v.checkIncludeHint(name, callee.GetRange())

	if positions, ok := taggedStringParams[name]; ok {
		for _, pos := range positions {
			if pos >= len(e.Args) {
				continue
			}
			lit, ok := e.Args[pos].(*ast.LiteralExpr)
			if !ok || lit.Kind != ast.StringLit {
				continue
			}
			if len(lit.Raw) > maxTagLength {
				v.sink.Addf(diag.Warning, lit.GetRange(), diag.CodeStringLength,
					"%q is %d characters; the engine truncates tags and resrefs to %d",
					lit.Raw, len(lit.Raw), maxTagLength)
			}
		}
	}
}

// checkVersionGate is the redundant, list-based availability check.
func (v *validator) checkVersionGate(name string, rng ast.Range) {
	switch v.version {
	case gamever.K1:
		if k2OnlyFunctions[name] {
			v.sink.Addf(diag.Warning, rng, diag.CodeVersionGated,
				"%s is only available in kotor2", name)
		}
	case gamever.K2:
		if k1OnlyFunctions[name] {
			v.sink.Addf(diag.Warning, rng, diag.CodeVersionGated,
				"%s is only available in kotor1", name)
		}
	}
}

// checkIncludeHint suggests the include file that provides a recognized
// library-prefixed function when the script does not include it.
func (v *validator) checkIncludeHint(name string, rng ast.Range) {
	for prefix, include := range includeHints {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if v.includes[include] {
			return
		}
		if v.suggested == nil {
			v.suggested = make(map[string]bool)
		}
		if v.suggested[include] {
			return
		}
		v.suggested[include] = true
		v.sink.Addf(diag.Hint, rng, diag.CodeMissingInclude,
			"%s looks like a %s function; add #include %q", name, include, include)
		return
	}
}
