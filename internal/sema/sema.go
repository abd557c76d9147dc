// Package sema is the semantic analysis orchestrator: a fixed sequence of
// passes over one Program, all appending to one shared diagnostics sink.
package sema

import (
	"nwlint/internal/ast"
	"nwlint/internal/builtins"
	"nwlint/internal/diag"
	"nwlint/internal/eval"
	"nwlint/internal/gamever"
	"nwlint/internal/symtab"
	"nwlint/internal/types"
)

// Options configures one analysis run. Functions and Constants are the
// externally resolved tables (include files); the engine tables are always
// merged underneath, first writer wins.
type Options struct {
	Functions []builtins.FunctionSignature
	Constants []builtins.ConstantSignature
	Version   gamever.Version
}

// passState names the orchestrator's sequential states.
type passState int

const (
	syntaxValidation passState = iota
	typeChecking
	scopeWalk
	entryPointValidation
)

func (s passState) String() string {
	switch s {
	case syntaxValidation:
		return "syntax validation"
	case typeChecking:
		return "type checking"
	case scopeWalk:
		return "scope walk"
	case entryPointValidation:
		return "entry point validation"
	default:
		return "unknown"
	}
}

// structInfo is the registry entry for a declared struct: an ordered
// member-name→type map.
type structInfo struct {
	decl   *ast.StructDecl
	order  []string
	fields map[string]types.Type
}

// Analyzer holds the state shared by the passes of one run.
type Analyzer struct {
	prog    *ast.Program
	sink    *diag.Sink
	version gamever.Version

	functions map[string]*builtins.FunctionSignature // version-filtered, merged
	constants map[string]*builtins.ConstantSignature
	structs   map[string]*structInfo
	userFuncs map[string]*ast.FunctionDecl

	global *symtab.Scope
	scope  *symtab.Scope

	currentFn *ast.FunctionDecl

	// Folded values of const globals, for the constant evaluator.
	constValues map[string]eval.Value
}

// Analyze runs all semantic passes over prog, appending diagnostics to sink.
// It returns the global scope tree for read-only consumers. A panic inside
// any pass is converted into a single internal-error diagnostic; the run
// still returns whatever was collected before the fault.
func Analyze(prog *ast.Program, opts Options, sink *diag.Sink) *symtab.Scope {
	a := &Analyzer{
		prog:        prog,
		sink:        sink,
		version:     opts.Version,
		structs:     make(map[string]*structInfo),
		userFuncs:   make(map[string]*ast.FunctionDecl),
		constValues: make(map[string]eval.Value),
	}

	// The built-in tables are restricted to the target version before any
	// resolution occurs, so version-inappropriate built-ins are simply
	// unknown at this layer.
	a.functions = builtins.FilterFunctions(
		builtins.MergeFunctions(builtins.Functions(), opts.Functions), opts.Version)
	a.constants = builtins.FilterConstants(
		builtins.MergeConstants(builtins.Constants(), opts.Constants), opts.Version)

	a.global = symtab.NewScope(nil, symtab.GlobalScope)
	a.scope = a.global

	for _, state := range []passState{syntaxValidation, typeChecking, scopeWalk, entryPointValidation} {
		a.runPass(state)
	}
	return a.global
}

// runPass executes one state behind a recover boundary.
func (a *Analyzer) runPass(state passState) {
	defer func() {
		if r := recover(); r != nil {
			a.sink.Addf(diag.Error, a.prog.GetRange(), diag.CodeInternal,
				"internal analysis error during %s: %v", state, r)
		}
	}()

	switch state {
	case syntaxValidation:
		a.validateSyntax()
	case typeChecking:
		a.checkTypes()
	case scopeWalk:
		a.walkControlFlow()
	case entryPointValidation:
		a.validateEntryPoints()
	}
}

// ---------------------------------------------------------------------------
// Scope helpers
// ---------------------------------------------------------------------------

func (a *Analyzer) pushScope(kind symtab.ScopeKind) {
	a.scope = symtab.NewScope(a.scope, kind)
}

func (a *Analyzer) popScope() {
	a.scope = a.scope.Parent()
}

// resolveConst is the evaluator's named-constant resolver: engine constants
// plus folded const globals.
func (a *Analyzer) resolveConst(name string) (eval.Value, bool) {
	if c, ok := a.constants[name]; ok {
		return c.Value, true
	}
	if v, ok := a.constValues[name]; ok {
		return v, true
	}
	return eval.Value{}, false
}

// declareTypeSpec turns a parsed type annotation into a semantic type,
// reporting unknown names. It is called exactly once per annotation, at the
// declaration site; later passes re-resolve with the silent typeOf.
func (a *Analyzer) declareTypeSpec(spec *ast.TypeSpec) types.Type {
	if spec == nil || spec.Name == "<error>" {
		return types.TypeVoid
	}
	if spec.IsStruct {
		if _, ok := a.structs[spec.StructName]; !ok {
			a.sink.Addf(diag.Error, spec.GetRange(), diag.CodeUnknownStruct,
				"unknown struct type %q", spec.StructName)
			return types.TypeVoid
		}
		return types.StructType(spec.StructName)
	}
	if t, ok := types.FromKeyword(spec.Name); ok {
		return t
	}
	a.sink.Addf(diag.Error, spec.GetRange(), diag.CodeUnknownType,
		"unknown type %q", spec.Name)
	return types.TypeVoid
}

// typeOf is the non-reporting form of declareTypeSpec.
func (a *Analyzer) typeOf(spec *ast.TypeSpec) types.Type {
	if spec == nil || spec.Name == "<error>" {
		return types.TypeVoid
	}
	if spec.IsStruct {
		if _, ok := a.structs[spec.StructName]; !ok {
			return types.TypeVoid
		}
		return types.StructType(spec.StructName)
	}
	if t, ok := types.FromKeyword(spec.Name); ok {
		return t
	}
	return types.TypeVoid
}

// ---------------------------------------------------------------------------
// Entry point validation
// ---------------------------------------------------------------------------

// validateEntryPoints enforces the shapes of the two script entry points:
// "void main()" and "int StartingConditional()".
func (a *Analyzer) validateEntryPoints() {
	for _, fn := range a.prog.Functions {
		if fn.IsPrototype {
			continue
		}
		switch fn.Name {
		case "main":
			ret := a.typeOf(fn.ReturnType)
			if ret.Kind != types.Void {
				a.sink.Addf(diag.Error, fn.ReturnType.GetRange(), diag.CodeMainReturnType,
					"entry point main must return void, not %s", ret)
			}
			if len(fn.Params) > 0 {
				a.sink.Addf(diag.Warning, fn.GetRange(), diag.CodeMainParams,
					"entry point main takes no parameters; %d declared", len(fn.Params))
			}
		case "StartingConditional":
			ret := a.typeOf(fn.ReturnType)
			if ret.Kind != types.Int {
				a.sink.Addf(diag.Error, fn.ReturnType.GetRange(), diag.CodeCondReturnType,
					"StartingConditional must return int, not %s", ret)
			}
		}
	}
}
