// Package symtab provides the lexical scope tree and symbol records built
// during semantic analysis. Scopes follow strict stack discipline: a child
// scope is opened on entry to a function, block, loop or switch body and
// closed on exit.
package symtab

import (
	"nwlint/internal/ast"
	"nwlint/internal/builtins"
	"nwlint/internal/types"
)

// ScopeKind describes what construct a scope belongs to.
type ScopeKind int

const (
	GlobalScope ScopeKind = iota
	FunctionScope
	BlockScope
	LoopScope
	SwitchScope
)

func (k ScopeKind) String() string {
	switch k {
	case GlobalScope:
		return "global"
	case FunctionScope:
		return "function"
	case BlockScope:
		return "block"
	case LoopScope:
		return "loop"
	case SwitchScope:
		return "switch"
	default:
		return "unknown"
	}
}

// Symbol records the declaration of a name. Symbols are created during
// analysis, never before.
type Symbol struct {
	Name       string
	Type       types.Type
	Rng        ast.Range
	ScopeKind  ScopeKind
	IsConst    bool
	IsParam    bool
	IsFunction bool

	// Function-only: the resolved signature.
	Signature *builtins.FunctionSignature
}

// Scope is a symbol table with an optional parent.
type Scope struct {
	Kind    ScopeKind
	parent  *Scope
	symbols map[string]*Symbol
}

// NewScope creates a scope nested inside parent (nil for the global scope).
func NewScope(parent *Scope, kind ScopeKind) *Scope {
	return &Scope{Kind: kind, parent: parent, symbols: make(map[string]*Symbol)}
}

// Parent returns the enclosing scope, or nil for the global scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Define adds a symbol to this scope, overwriting any previous entry with
// the same name. Duplicate detection is the analyzer's job (LookupLocal
// before Define).
func (s *Scope) Define(sym *Symbol) {
	sym.ScopeKind = s.Kind
	s.symbols[sym.Name] = sym
}

// LookupLocal returns the symbol declared in this scope only.
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.symbols[name]
}

// Lookup walks the parent chain to find a symbol; nested declarations
// shadow outer ones.
func (s *Scope) Lookup(name string) *Symbol {
	if sym := s.symbols[name]; sym != nil {
		return sym
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil
}

// InLoop reports whether this scope or any enclosing scope up to the
// nearest function boundary is a loop scope.
func (s *Scope) InLoop() bool {
	for sc := s; sc != nil && sc.Kind != FunctionScope && sc.Kind != GlobalScope; sc = sc.parent {
		if sc.Kind == LoopScope {
			return true
		}
	}
	return false
}

// InLoopOrSwitch reports whether break is legal in this scope.
func (s *Scope) InLoopOrSwitch() bool {
	for sc := s; sc != nil && sc.Kind != FunctionScope && sc.Kind != GlobalScope; sc = sc.parent {
		if sc.Kind == LoopScope || sc.Kind == SwitchScope {
			return true
		}
	}
	return false
}

// Names returns the symbols declared directly in this scope, for read-only
// consumers (hover/completion layers).
func (s *Scope) Names() []*Symbol {
	out := make([]*Symbol, 0, len(s.symbols))
	for _, sym := range s.symbols {
		out = append(out, sym)
	}
	return out
}
