package symtab

import (
	"testing"

	"nwlint/internal/types"
)

func TestLookupWalksParents(t *testing.T) {
	global := NewScope(nil, GlobalScope)
	global.Define(&Symbol{Name: "nGlobal", Type: types.TypeInt})

	fn := NewScope(global, FunctionScope)
	fn.Define(&Symbol{Name: "sParam", Type: types.TypeString, IsParam: true})

	block := NewScope(fn, BlockScope)

	if block.Lookup("nGlobal") == nil {
		t.Error("nGlobal should resolve from a nested block")
	}
	if block.Lookup("sParam") == nil {
		t.Error("sParam should resolve from a nested block")
	}
	if block.Lookup("nMissing") != nil {
		t.Error("nMissing should not resolve")
	}
}

func TestShadowing(t *testing.T) {
	global := NewScope(nil, GlobalScope)
	global.Define(&Symbol{Name: "x", Type: types.TypeInt})

	block := NewScope(global, BlockScope)
	block.Define(&Symbol{Name: "x", Type: types.TypeString})

	if got := block.Lookup("x").Type.Kind; got != types.String {
		t.Errorf("inner lookup: got %v, want String", got)
	}
	if got := global.Lookup("x").Type.Kind; got != types.Int {
		t.Errorf("outer lookup: got %v, want Int", got)
	}
}

func TestLookupLocalStaysLocal(t *testing.T) {
	global := NewScope(nil, GlobalScope)
	global.Define(&Symbol{Name: "x", Type: types.TypeInt})
	block := NewScope(global, BlockScope)

	if block.LookupLocal("x") != nil {
		t.Error("LookupLocal must not consult parents")
	}
}

func TestLoopDetectionStopsAtFunctionBoundary(t *testing.T) {
	global := NewScope(nil, GlobalScope)
	loop := NewScope(NewScope(global, FunctionScope), LoopScope)
	inner := NewScope(loop, BlockScope)

	if !inner.InLoop() {
		t.Error("block inside a loop should report InLoop")
	}
	if !inner.InLoopOrSwitch() {
		t.Error("block inside a loop should report InLoopOrSwitch")
	}

	// A nested function body does not inherit the caller's loop context.
	nestedFn := NewScope(loop, FunctionScope)
	nestedBlock := NewScope(nestedFn, BlockScope)
	if nestedBlock.InLoop() {
		t.Error("function scope must cut off loop detection")
	}

	sw := NewScope(NewScope(global, FunctionScope), SwitchScope)
	if sw.InLoop() {
		t.Error("switch is not a loop")
	}
	if !sw.InLoopOrSwitch() {
		t.Error("break is legal directly inside a switch")
	}
}
