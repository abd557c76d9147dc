package sema

import (
	"nwlint/internal/ast"
	"nwlint/internal/builtins"
	"nwlint/internal/diag"
	"nwlint/internal/symtab"
	"nwlint/internal/types"
)

// checkTypes is the main pass: two-pass symbol collection followed by an
// in-order walk of every declaration, running the type checker over each
// expression.
func (a *Analyzer) checkTypes() {
	a.collectStructs()
	a.collectFunctions()

	// Declarations are walked in source order: a global is visible only
	// below its declaration, while functions and structs resolve anywhere.
	for _, decl := range a.prog.Decls {
		switch d := decl.(type) {
		case *ast.VariableDecl:
			a.checkGlobal(d)
		case *ast.FunctionDecl:
			if !d.IsPrototype {
				a.checkFunction(d)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Pass 1 — symbol collection
// ---------------------------------------------------------------------------

// collectStructs registers every struct declaration before any body is
// analyzed.
func (a *Analyzer) collectStructs() {
	for _, st := range a.prog.Structs {
		if _, exists := a.structs[st.Name]; exists {
			a.sink.Addf(diag.Error, st.GetRange(), diag.CodeDuplicateStruct,
				"struct %q already declared", st.Name)
			continue
		}
		info := &structInfo{decl: st, fields: make(map[string]types.Type)}
		for _, f := range st.Fields {
			t := a.declareTypeSpec(f.Type)
			if _, dup := info.fields[f.Name]; dup {
				a.sink.Addf(diag.Error, f.GetRange(), diag.CodeDuplicateSymbol,
					"duplicate field %q in struct %q", f.Name, st.Name)
				continue
			}
			info.order = append(info.order, f.Name)
			info.fields[f.Name] = t
		}
		a.structs[st.Name] = info
	}
}

// collectFunctions registers every function declaration (prototypes and
// definitions) into the global scope so forward references and mutual
// recursion resolve. A prototype followed by its definition is legal; two
// definitions are not.
func (a *Analyzer) collectFunctions() {
	for _, fn := range a.prog.Functions {
		existing, seen := a.userFuncs[fn.Name]
		if seen && !existing.IsPrototype && !fn.IsPrototype {
			a.sink.Addf(diag.Error, fn.GetRange(), diag.CodeDuplicateFunction,
				"function %q already defined at %d:%d",
				fn.Name, existing.GetRange().Start.Line, existing.GetRange().Start.Column)
			continue
		}
		if !seen || existing.IsPrototype {
			a.userFuncs[fn.Name] = fn
		}

		sig := a.signatureOf(fn)
		a.global.Define(&symtab.Symbol{
			Name:       fn.Name,
			Type:       sig.ReturnType,
			Rng:        fn.GetRange(),
			IsFunction: true,
			Signature:  sig,
		})
		// In-file declarations take precedence over the engine table.
		a.functions[fn.Name] = sig
	}
}

// signatureOf converts a declared function into the shared signature shape.
func (a *Analyzer) signatureOf(fn *ast.FunctionDecl) *builtins.FunctionSignature {
	sig := &builtins.FunctionSignature{
		Name:       fn.Name,
		ReturnType: a.declareTypeSpec(fn.ReturnType),
		Avail:      a.version,
	}
	for _, p := range fn.Params {
		sig.Params = append(sig.Params, builtins.ParamSpec{
			Name:       p.Name,
			Type:       a.declareTypeSpec(p.Type),
			HasDefault: p.Default != nil,
		})
	}
	return sig
}

// ---------------------------------------------------------------------------
// Pass 2 — declarations in order
// ---------------------------------------------------------------------------

func (a *Analyzer) checkGlobal(d *ast.VariableDecl) {
	a.checkVariableDecl(d)
}

func (a *Analyzer) checkFunction(fn *ast.FunctionDecl) {
	a.currentFn = fn
	a.pushScope(symtab.FunctionScope)

	for _, p := range fn.Params {
		t := a.typeOf(p.Type)
		if t.Kind == types.Void {
			a.sink.Addf(diag.Error, p.GetRange(), diag.CodeVoidVariable,
				"parameter %q cannot have type void", p.Name)
		}
		if a.scope.LookupLocal(p.Name) != nil {
			a.sink.Addf(diag.Error, p.GetRange(), diag.CodeDuplicateSymbol,
				"duplicate parameter %q", p.Name)
			continue
		}
		if p.Default != nil {
			info := a.checkExpr(p.Default)
			if info.Type.Kind != types.Void && !types.IsAssignable(info.Type, t) {
				a.sink.Addf(diag.Error, p.Default.GetRange(), diag.CodeTypeMismatch,
					"default value of type %s is not assignable to parameter of type %s", info.Type, t)
			}
		}
		a.scope.Define(&symtab.Symbol{
			Name:    p.Name,
			Type:    t,
			Rng:     p.GetRange(),
			IsParam: true,
		})
	}

	// The body opens its own scope so a body-level declaration shadows a
	// parameter instead of colliding with it.
	a.pushScope(symtab.BlockScope)
	for _, s := range fn.Body.Stmts {
		a.checkStmt(s)
	}
	a.popScope()

	a.popScope()
	a.currentFn = nil
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (a *Analyzer) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		a.checkVariableDecl(s)
	case *ast.BlockStmt:
		a.pushScope(symtab.BlockScope)
		for _, inner := range s.Stmts {
			a.checkStmt(inner)
		}
		a.popScope()
	case *ast.ExprStmt:
		a.checkExpr(s.Expression)
	case *ast.ReturnStmt:
		a.checkReturn(s)
	case *ast.IfStmt:
		a.checkCondition(s.Condition)
		a.checkStmt(s.Then)
		if s.Else != nil {
			a.checkStmt(s.Else)
		}
	case *ast.WhileStmt:
		a.checkCondition(s.Condition)
		a.pushScope(symtab.LoopScope)
		a.checkStmt(s.Body)
		a.popScope()
	case *ast.DoWhileStmt:
		a.pushScope(symtab.LoopScope)
		a.checkStmt(s.Body)
		a.popScope()
		a.checkCondition(s.Condition)
	case *ast.ForStmt:
		if s.Init != nil {
			a.checkExpr(s.Init)
		}
		if s.Condition != nil {
			a.checkCondition(s.Condition)
		}
		if s.Update != nil {
			a.checkExpr(s.Update)
		}
		a.pushScope(symtab.LoopScope)
		a.checkStmt(s.Body)
		a.popScope()
	case *ast.SwitchStmt:
		a.checkSwitch(s)
	case *ast.BreakStmt, *ast.ContinueStmt:
		// Legality is the control-flow pass's concern.
	}
}

func (a *Analyzer) checkVariableDecl(d *ast.VariableDecl) {
	t := a.declareTypeSpec(d.Type)
	if t.Kind == types.Void && d.Type != nil && d.Type.Name == "void" {
		a.sink.Addf(diag.Error, d.GetRange(), diag.CodeVoidVariable,
			"variable %q cannot have type void", d.Name)
	}

	if d.Init != nil {
		info := a.checkExpr(d.Init)
		if info.Type.Kind != types.Void && t.Kind != types.Void &&
			!types.IsAssignable(info.Type, t) {
			a.sink.Addf(diag.Error, d.Init.GetRange(), diag.CodeTypeMismatch,
				"cannot assign %s value to variable %q of type %s", info.Type, d.Name, t)
		}
	} else if d.IsConst {
		a.sink.Addf(diag.Error, d.GetRange(), diag.CodeConstAssign,
			"const variable %q requires an initializer", d.Name)
	}

	// Duplicate in the same scope is an error; shadowing an outer scope is
	// allowed.
	if existing := a.scope.LookupLocal(d.Name); existing != nil {
		a.sink.Addf(diag.Error, d.GetRange(), diag.CodeDuplicateSymbol,
			"symbol %q already declared in this scope at %d:%d",
			d.Name, existing.Rng.Start.Line, existing.Rng.Start.Column)
		return
	}

	a.scope.Define(&symtab.Symbol{
		Name:    d.Name,
		Type:    t,
		Rng:     d.GetRange(),
		IsConst: d.IsConst,
	})
}

func (a *Analyzer) checkReturn(s *ast.ReturnStmt) {
	if a.currentFn == nil {
		a.sink.Addf(diag.Error, s.GetRange(), diag.CodeReturnOutside,
			"return statement outside of function")
		return
	}
	retType := a.typeOf(a.currentFn.ReturnType)

	if s.Value == nil {
		if retType.Kind != types.Void {
			a.sink.Addf(diag.Error, s.GetRange(), diag.CodeReturnType,
				"function %q must return a value of type %s", a.currentFn.Name, retType)
		}
		return
	}

	info := a.checkExpr(s.Value)
	if retType.Kind == types.Void {
		a.sink.Addf(diag.Error, s.GetRange(), diag.CodeReturnType,
			"void function %q should not return a value", a.currentFn.Name)
		return
	}
	if info.Type.Kind != types.Void && !types.IsAssignable(info.Type, retType) {
		a.sink.Addf(diag.Error, s.Value.GetRange(), diag.CodeReturnType,
			"cannot return %s from function %q with return type %s",
			info.Type, a.currentFn.Name, retType)
	}
}

// checkCondition type-checks a control-flow condition, which must be int.
func (a *Analyzer) checkCondition(cond ast.Expr) {
	info := a.checkExpr(cond)
	if info.Type.Kind == types.Void {
		return
	}
	if !types.IsAssignable(info.Type, types.TypeInt) {
		a.sink.Addf(diag.Error, cond.GetRange(), diag.CodeTypeMismatch,
			"condition must be int, got %s", info.Type)
	}
}

func (a *Analyzer) checkSwitch(s *ast.SwitchStmt) {
	a.checkCondition(s.Condition)
	a.pushScope(symtab.SwitchScope)
	for _, clause := range s.Cases {
		if clause.Value != nil {
			info := a.checkExpr(clause.Value)
			if info.Type.Kind != types.Void && !types.IsAssignable(info.Type, types.TypeInt) {
				a.sink.Addf(diag.Error, clause.Value.GetRange(), diag.CodeTypeMismatch,
					"case value must be int, got %s", info.Type)
			}
		}
		for _, inner := range clause.Stmts {
			a.checkStmt(inner)
		}
	}
	a.popScope()
}

// ---------------------------------------------------------------------------
// Expressions — the type checker proper
// ---------------------------------------------------------------------------

// checkExpr infers the type of an expression, recording diagnostics along
// the way. On failure it returns a void-typed stand-in so the caller can
// keep walking; void operands suppress cascading operator errors.
func (a *Analyzer) checkExpr(expr ast.Expr) types.Info {
	switch e := expr.(type) {
	case *ast.IdentExpr:
		return a.checkIdent(e)
	case *ast.LiteralExpr:
		return literalInfo(e)
	case *ast.VectorLitExpr:
		return a.checkVectorLit(e)
	case *ast.UnaryExpr:
		return a.checkUnary(e)
	case *ast.BinaryExpr:
		return a.checkBinary(e)
	case *ast.AssignExpr:
		return a.checkAssign(e)
	case *ast.CondExpr:
		return a.checkCond(e)
	case *ast.CallExpr:
		return a.checkCall(e)
	case *ast.MemberExpr:
		return a.checkMember(e)
	}
	return types.Info{Type: types.TypeVoid}
}

func literalInfo(e *ast.LiteralExpr) types.Info {
	switch e.Kind {
	case ast.IntLit, ast.HexLit, ast.BoolLit:
		return types.Info{Type: types.TypeInt, IsConst: true}
	case ast.FloatLit:
		return types.Info{Type: types.TypeFloat, IsConst: true}
	case ast.StringLit:
		return types.Info{Type: types.TypeString, IsConst: true}
	default:
		return types.Info{Type: types.TypeObject, IsConst: true}
	}
}

func (a *Analyzer) checkIdent(e *ast.IdentExpr) types.Info {
	if e.Name == "<error>" {
		return types.Info{Type: types.TypeVoid}
	}
	if sym := a.scope.Lookup(e.Name); sym != nil {
		if sym.IsFunction {
			a.sink.Addf(diag.Error, e.GetRange(), diag.CodeUnknownIdentifier,
				"function %q used as a value", e.Name)
			return types.Info{Type: types.TypeVoid}
		}
		return types.Info{
			Type:     sym.Type,
			IsConst:  sym.IsConst,
			IsLValue: !sym.IsConst,
		}
	}
	if c, ok := a.constants[e.Name]; ok {
		return types.Info{Type: c.Type, IsConst: true}
	}
	a.sink.Addf(diag.Error, e.GetRange(), diag.CodeUnknownIdentifier,
		"unknown identifier %q", e.Name)
	return types.Info{Type: types.TypeVoid}
}

func (a *Analyzer) checkVectorLit(e *ast.VectorLitExpr) types.Info {
	for _, comp := range []ast.Expr{e.X, e.Y, e.Z} {
		info := a.checkExpr(comp)
		if info.Type.Kind != types.Void && !types.IsNumeric(info.Type) {
			a.sink.Addf(diag.Error, comp.GetRange(), diag.CodeTypeMismatch,
				"vector component must be numeric, got %s", info.Type)
		}
	}
	return types.Info{Type: types.TypeVector, IsConst: true}
}

func (a *Analyzer) checkUnary(e *ast.UnaryExpr) types.Info {
	info := a.checkExpr(e.Operand)
	if info.Type.Kind == types.Void {
		return types.Info{Type: types.TypeVoid}
	}

	if e.Op == "++" || e.Op == "--" {
		if !info.IsLValue {
			a.sink.Addf(diag.Error, e.Operand.GetRange(), diag.CodeInvalidIncrement,
				"operand of %q must be an assignable variable", e.Op)
			return types.Info{Type: types.TypeVoid}
		}
	}

	result, ok := types.UnaryResult(e.Op, info.Type)
	if !ok {
		a.sink.Addf(diag.Error, e.GetRange(), diag.CodeInvalidOperands,
			"operator %q cannot be applied to %s", e.Op, info.Type)
		return types.Info{Type: types.TypeVoid}
	}
	return types.Info{Type: result}
}

func (a *Analyzer) checkBinary(e *ast.BinaryExpr) types.Info {
	left := a.checkExpr(e.Left)
	right := a.checkExpr(e.Right)
	if left.Type.Kind == types.Void || right.Type.Kind == types.Void {
		return types.Info{Type: types.TypeVoid}
	}

	result, ok := types.BinaryResult(e.Op, left.Type, right.Type)
	if !ok {
		a.sink.Addf(diag.Error, e.GetRange(), diag.CodeInvalidOperands,
			"operator %q cannot be applied to %s and %s", e.Op, left.Type, right.Type)
		return types.Info{Type: types.TypeVoid}
	}
	return types.Info{Type: result, IsConst: left.IsConst && right.IsConst}
}

func (a *Analyzer) checkAssign(e *ast.AssignExpr) types.Info {
	target := a.checkExpr(e.Target)
	value := a.checkExpr(e.Value)

	if target.IsConst {
		a.sink.Addf(diag.Error, e.Target.GetRange(), diag.CodeConstAssign,
			"cannot assign to constant")
		return types.Info{Type: target.Type}
	}
	if !target.IsLValue {
		if target.Type.Kind != types.Void {
			a.sink.Addf(diag.Error, e.Target.GetRange(), diag.CodeInvalidOperands,
				"invalid assignment target")
		}
		return types.Info{Type: types.TypeVoid}
	}
	if value.Type.Kind == types.Void {
		return types.Info{Type: target.Type}
	}

	if base := types.CompoundBinaryOp(e.Op); base != "" {
		result, ok := types.BinaryResult(base, target.Type, value.Type)
		if !ok {
			a.sink.Addf(diag.Error, e.GetRange(), diag.CodeInvalidOperands,
				"operator %q cannot be applied to %s and %s", e.Op, target.Type, value.Type)
			return types.Info{Type: target.Type}
		}
		if !types.IsAssignable(result, target.Type) {
			a.sink.Addf(diag.Error, e.Value.GetRange(), diag.CodeTypeMismatch,
				"result of %q has type %s, not assignable to %s", e.Op, result, target.Type)
		}
		return types.Info{Type: target.Type}
	}

	if !types.IsAssignable(value.Type, target.Type) {
		a.sink.Addf(diag.Error, e.Value.GetRange(), diag.CodeTypeMismatch,
			"cannot assign %s value to target of type %s", value.Type, target.Type)
	}
	return types.Info{Type: target.Type}
}

func (a *Analyzer) checkCond(e *ast.CondExpr) types.Info {
	a.checkCondition(e.Condition)
	then := a.checkExpr(e.Then)
	els := a.checkExpr(e.Else)
	if then.Type.Kind == types.Void || els.Type.Kind == types.Void {
		return types.Info{Type: types.TypeVoid}
	}
	if !types.IsAssignable(els.Type, then.Type) && !types.IsAssignable(then.Type, els.Type) {
		a.sink.Addf(diag.Error, e.GetRange(), diag.CodeTypeMismatch,
			"conditional branches have incompatible types %s and %s", then.Type, els.Type)
		return types.Info{Type: types.TypeVoid}
	}
	return types.Info{Type: then.Type, IsConst: then.IsConst && els.IsConst}
}

func (a *Analyzer) checkCall(e *ast.CallExpr) types.Info {
	callee, ok := e.Callee.(*ast.IdentExpr)
	if !ok {
		a.sink.Addf(diag.Error, e.Callee.GetRange(), diag.CodeUnknownFunction,
			"expression is not callable")
		for _, arg := range e.Args {
			a.checkExpr(arg)
		}
		return types.Info{Type: types.TypeVoid}
	}
	if callee.Name == "<error>" {
		for _, arg := range e.Args {
			a.checkExpr(arg)
		}
		return types.Info{Type: types.TypeVoid}
	}

	sig := a.functions[callee.Name]
	if sig == nil {
		a.sink.Addf(diag.Error, callee.GetRange(), diag.CodeUnknownFunction,
			"unknown function %q", callee.Name)
		for _, arg := range e.Args {
			a.checkExpr(arg)
		}
		return types.Info{Type: types.TypeVoid}
	}

	min, max := sig.MinArgs(), sig.MaxArgs()
	if len(e.Args) < min || len(e.Args) > max {
		if min == max {
			a.sink.Addf(diag.Error, e.GetRange(), diag.CodeArgumentCount,
				"function %q expects %d argument(s), got %d", sig.Name, max, len(e.Args))
		} else {
			a.sink.Addf(diag.Error, e.GetRange(), diag.CodeArgumentCount,
				"function %q expects between %d and %d arguments, got %d",
				sig.Name, min, max, len(e.Args))
		}
	}

	for i, arg := range e.Args {
		info := a.checkExpr(arg)
		if i >= len(sig.Params) || info.Type.Kind == types.Void {
			continue
		}
		// Actions are special: any statement-like expression may be passed
		// where an action parameter is expected.
		if sig.Params[i].Type.Kind == types.Action {
			continue
		}
		if !types.IsAssignable(info.Type, sig.Params[i].Type) {
			a.sink.Addf(diag.Error, arg.GetRange(), diag.CodeArgumentType,
				"argument %d of %q: expected %s, got %s",
				i+1, sig.Name, sig.Params[i].Type, info.Type)
		}
	}

	return types.Info{Type: sig.ReturnType}
}

func (a *Analyzer) checkMember(e *ast.MemberExpr) types.Info {
	obj := a.checkExpr(e.Object)
	if obj.Type.Kind == types.Void || e.Field == "<error>" {
		return types.Info{Type: types.TypeVoid}
	}

	switch obj.Type.Kind {
	case types.Vector:
		switch e.Field {
		case "x", "y", "z":
			return types.Info{Type: types.TypeFloat, IsLValue: obj.IsLValue, IsConst: obj.IsConst}
		}
		a.sink.Addf(diag.Error, e.GetRange(), diag.CodeUnknownMember,
			"vector has no member %q", e.Field)
		return types.Info{Type: types.TypeVoid}

	case types.Struct:
		info, ok := a.structs[obj.Type.StructName]
		if !ok {
			return types.Info{Type: types.TypeVoid}
		}
		fieldType, ok := info.fields[e.Field]
		if !ok {
			a.sink.Addf(diag.Error, e.GetRange(), diag.CodeUnknownMember,
				"struct %q has no member %q", obj.Type.StructName, e.Field)
			return types.Info{Type: types.TypeVoid}
		}
		return types.Info{Type: fieldType, IsLValue: obj.IsLValue, IsConst: obj.IsConst}
	}

	a.sink.Addf(diag.Error, e.GetRange(), diag.CodeUnknownMember,
		"type %s has no members", obj.Type)
	return types.Info{Type: types.TypeVoid}
}
