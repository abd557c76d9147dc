package sema

import (
	"nwlint/internal/ast"
	"nwlint/internal/diag"
	"nwlint/internal/types"
)

// walkControlFlow checks break/continue placement and warns on non-void
// functions whose bodies do not guarantee a return.
func (a *Analyzer) walkControlFlow() {
	for _, fn := range a.prog.Functions {
		if fn.IsPrototype || fn.Body == nil {
			continue
		}
		w := flowWalker{a: a}
		w.stmt(fn.Body)

		ret := a.typeOf(fn.ReturnType)
		if ret.Kind != types.Void && !blockReturns(fn.Body) {
			a.sink.Addf(diag.Warning, fn.GetRange(), diag.CodeMissingReturn,
				"function %q may reach its end without returning a value", fn.Name)
		}
	}
}

// flowWalker tracks the loop and switch nesting around each statement.
type flowWalker struct {
	a           *Analyzer
	loopDepth   int
	switchDepth int
}

func (w *flowWalker) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		for _, inner := range s.Stmts {
			w.stmt(inner)
		}
	case *ast.IfStmt:
		w.stmt(s.Then)
		if s.Else != nil {
			w.stmt(s.Else)
		}
	case *ast.WhileStmt:
		w.loopDepth++
		w.stmt(s.Body)
		w.loopDepth--
	case *ast.DoWhileStmt:
		w.loopDepth++
		w.stmt(s.Body)
		w.loopDepth--
	case *ast.ForStmt:
		w.loopDepth++
		w.stmt(s.Body)
		w.loopDepth--
	case *ast.SwitchStmt:
		w.switchDepth++
		for _, clause := range s.Cases {
			for _, inner := range clause.Stmts {
				w.stmt(inner)
			}
		}
		w.switchDepth--
	case *ast.BreakStmt:
		if w.loopDepth == 0 && w.switchDepth == 0 {
			w.a.sink.Addf(diag.Error, s.GetRange(), diag.CodeBreakOutsideLoop,
				"break statement outside of loop or switch")
		}
	case *ast.ContinueStmt:
		if w.loopDepth == 0 {
			w.a.sink.Addf(diag.Error, s.GetRange(), diag.CodeContinueOutside,
				"continue statement outside of loop")
		}
	}
}

// blockReturns reports whether a block definitely returns. The heuristic is
// deliberately conservative: loops never count, even "while (TRUE)".
func blockReturns(block *ast.BlockStmt) bool {
	for _, s := range block.Stmts {
		if stmtReturns(s) {
			return true
		}
	}
	return false
}

func stmtReturns(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.BlockStmt:
		return blockReturns(s)
	case *ast.IfStmt:
		// An if guarantees a return only when both arms exist and both do.
		return s.Else != nil && stmtReturns(s.Then) && stmtReturns(s.Else)
	case *ast.SwitchStmt:
		// Every clause must return and a default must be present; otherwise
		// an unmatched value falls through the switch.
		haveDefault := false
		for _, clause := range s.Cases {
			if clause.IsDefault {
				haveDefault = true
			}
			clauseReturns := false
			for _, inner := range clause.Stmts {
				if stmtReturns(inner) {
					clauseReturns = true
					break
				}
			}
			if !clauseReturns {
				return false
			}
		}
		return haveDefault && len(s.Cases) > 0
	}
	return false
}
