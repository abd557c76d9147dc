package sema

import (
	"nwlint/internal/ast"
	"nwlint/internal/diag"
	"nwlint/internal/eval"
)

// validateSyntax is the first pass: structural checks that need no symbol
// table. It folds const globals up front so case labels and divisors written
// with named constants resolve.
func (a *Analyzer) validateSyntax() {
	a.prefoldConstGlobals()

	for _, g := range a.prog.Globals {
		if g.Init != nil {
			a.validateExpr(g.Init)
		}
	}
	for _, fn := range a.prog.Functions {
		for _, p := range fn.Params {
			if p.Default != nil {
				a.validateExpr(p.Default)
			}
		}
		if fn.Body != nil {
			a.validateStmt(fn.Body)
		}
	}
}

// prefoldConstGlobals records the folded values of const globals, in
// declaration order so later consts can reference earlier ones.
func (a *Analyzer) prefoldConstGlobals() {
	for _, g := range a.prog.Globals {
		if !g.IsConst || g.Init == nil {
			continue
		}
		if res, ok := eval.Evaluate(g.Init, a.resolveConst); ok {
			a.constValues[g.Name] = res.Value
		}
	}
}

func (a *Analyzer) validateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		for _, inner := range s.Stmts {
			a.validateStmt(inner)
		}
	case *ast.VariableDecl:
		if s.Init != nil {
			a.validateExpr(s.Init)
		}
	case *ast.ExprStmt:
		a.validateExpr(s.Expression)
	case *ast.ReturnStmt:
		if s.Value != nil {
			a.validateExpr(s.Value)
		}
	case *ast.IfStmt:
		a.validateExpr(s.Condition)
		a.validateStmt(s.Then)
		if s.Else != nil {
			a.validateStmt(s.Else)
		}
	case *ast.WhileStmt:
		a.validateExpr(s.Condition)
		a.validateStmt(s.Body)
	case *ast.DoWhileStmt:
		a.validateStmt(s.Body)
		a.validateExpr(s.Condition)
	case *ast.ForStmt:
		a.validateOptExpr(s.Init)
		a.validateOptExpr(s.Condition)
		a.validateOptExpr(s.Update)
		a.validateStmt(s.Body)
	case *ast.SwitchStmt:
		a.validateSwitch(s)
	}
}

func (a *Analyzer) validateOptExpr(e ast.Expr) {
	if e != nil {
		a.validateExpr(e)
	}
}

func (a *Analyzer) validateExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		a.validateExpr(e.Left)
		a.validateExpr(e.Right)
		if e.Op == "/" || e.Op == "%" {
			a.checkZeroDivisor(e)
		}
	case *ast.UnaryExpr:
		a.validateExpr(e.Operand)
	case *ast.AssignExpr:
		a.validateExpr(e.Target)
		a.validateExpr(e.Value)
	case *ast.CondExpr:
		a.validateExpr(e.Condition)
		a.validateExpr(e.Then)
		a.validateExpr(e.Else)
	case *ast.CallExpr:
		a.validateExpr(e.Callee)
		for _, arg := range e.Args {
			a.validateExpr(arg)
		}
	case *ast.MemberExpr:
		a.validateExpr(e.Object)
	case *ast.VectorLitExpr:
		a.validateExpr(e.X)
		a.validateExpr(e.Y)
		a.validateExpr(e.Z)
	}
}

// checkZeroDivisor reports a division or modulo whose divisor folds to a
// numeric zero. The evaluator itself silently refuses to fold such
// expressions; the user-facing diagnostic is produced here, structurally.
func (a *Analyzer) checkZeroDivisor(e *ast.BinaryExpr) {
	// Placeholders come from parser recovery; a diagnostic already exists.
	if lit, ok := e.Right.(*ast.LiteralExpr); ok && lit.Placeholder() {
		return
	}
	res, ok := eval.Evaluate(e.Right, a.resolveConst)
	if ok && res.Value.IsZero() {
		a.sink.Addf(diag.Error, e.Right.GetRange(), diag.CodeDivisionByZero,
			"division by zero")
	}
}

// validateSwitch detects duplicate case values and duplicate defaults via
// constant folding. Non-foldable case values are skipped, not flagged.
func (a *Analyzer) validateSwitch(s *ast.SwitchStmt) {
	type seenCase struct {
		value eval.Value
		rng   ast.Range
	}
	var seen []seenCase
	haveDefault := false

	for _, clause := range s.Cases {
		if clause.IsDefault {
			if haveDefault {
				a.sink.Addf(diag.Error, clause.GetRange(), diag.CodeDuplicateCase,
					"duplicate default clause in switch")
			}
			haveDefault = true
		} else if clause.Value != nil {
			if res, ok := eval.Evaluate(clause.Value, a.resolveConst); ok {
				for _, prev := range seen {
					if eval.Equal(prev.value, res.Value) {
						a.sink.Addf(diag.Error, clause.Value.GetRange(), diag.CodeDuplicateCase,
							"duplicate case value %s (first at %d:%d)",
							res.Value, prev.rng.Start.Line, prev.rng.Start.Column)
						break
					}
				}
				seen = append(seen, seenCase{value: res.Value, rng: clause.Value.GetRange()})
			}
		}

		for _, inner := range clause.Stmts {
			a.validateStmt(inner)
		}
	}
}
