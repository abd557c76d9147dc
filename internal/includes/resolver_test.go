package includes_test

import (
	"os"
	"path/filepath"
	"testing"

	"nwlint/internal/ast"
	"nwlint/internal/includes"
	"nwlint/internal/lexer"
	"nwlint/internal/parser"
	"nwlint/internal/types"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func parseSource(t *testing.T, source string) *ast.Program {
	t.Helper()
	tokens, err := lexer.Lex(source)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, errs := parser.Parse(tokens)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	return prog
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestResolveExtractsSignaturesAndConstants(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "k_inc_utility.nss", `
const int UT_MODE_QUIET = 1;
const int UT_MODE_LOUD = UT_MODE_QUIET + 1;

void UT_SetTalkedTo(object oNPC);
int UT_GetTalkedTo(object oNPC) {
    return TRUE;
}
void main() {}
`)
	script := writeFile(t, dir, "script.nss", `#include "k_inc_utility"`)

	prog := parseSource(t, `#include "k_inc_utility"`)
	r := includes.NewResolver(dir)
	fns, consts, errs := r.Resolve(prog, script)
	if len(errs) > 0 {
		t.Fatalf("resolve errors: %v", errs)
	}

	// main is excluded; the prototype and the definition each count once.
	if len(fns) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(fns))
	}
	byName := make(map[string]bool)
	for _, f := range fns {
		byName[f.Name] = true
	}
	if !byName["UT_SetTalkedTo"] || !byName["UT_GetTalkedTo"] {
		t.Errorf("unexpected function set: %v", byName)
	}

	if len(consts) != 2 {
		t.Fatalf("expected 2 constants, got %d", len(consts))
	}
	if consts[1].Name != "UT_MODE_LOUD" || consts[1].Value.Int != 2 {
		t.Errorf("const folding: got %s = %s", consts[1].Name, consts[1].Value)
	}
	if consts[0].Type.Kind != types.Int {
		t.Errorf("const type: got %s", consts[0].Type)
	}
}

func TestTransitiveIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "k_inc_base.nss", `int BASE_Value() { return 1; }`)
	writeFile(t, dir, "k_inc_top.nss", `
#include "k_inc_base"
int TOP_Value() { return BASE_Value() + 1; }
`)
	script := writeFile(t, dir, "script.nss", `#include "k_inc_top"`)

	prog := parseSource(t, `#include "k_inc_top"`)
	r := includes.NewResolver(dir)
	fns, _, errs := r.Resolve(prog, script)
	if len(errs) > 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	byName := make(map[string]bool)
	for _, f := range fns {
		byName[f.Name] = true
	}
	if !byName["BASE_Value"] || !byName["TOP_Value"] {
		t.Errorf("transitive include missing functions: %v", byName)
	}
}

func TestCircularIncludeDetected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "k_inc_a.nss", `#include "k_inc_b"`)
	writeFile(t, dir, "k_inc_b.nss", `#include "k_inc_a"`)
	script := writeFile(t, dir, "script.nss", `#include "k_inc_a"`)

	prog := parseSource(t, `#include "k_inc_a"`)
	r := includes.NewResolver(dir)
	_, _, errs := r.Resolve(prog, script)
	if len(errs) == 0 {
		t.Fatal("expected a circular-include error")
	}
}

func TestMissingIncludeReported(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "script.nss", `#include "k_inc_nowhere"`)

	prog := parseSource(t, `#include "k_inc_nowhere"`)
	r := includes.NewResolver(dir)
	_, _, errs := r.Resolve(prog, script)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
}

func TestFirstWriterWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "k_inc_one.nss", `int Shared() { return 1; }`)
	writeFile(t, dir, "k_inc_two.nss", `
float Shared() { return 2.0; }
int Unique() { return 3; }
`)
	script := writeFile(t, dir, "script.nss", "#include \"k_inc_one\"\n#include \"k_inc_two\"")

	prog := parseSource(t, "#include \"k_inc_one\"\n#include \"k_inc_two\"")
	r := includes.NewResolver(dir)
	fns, _, errs := r.Resolve(prog, script)
	if len(errs) > 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	count := 0
	var sharedKind types.Kind
	for _, f := range fns {
		if f.Name == "Shared" {
			count++
			sharedKind = f.ReturnType.Kind
		}
	}
	if count != 1 {
		t.Fatalf("Shared should merge once, got %d", count)
	}
	if sharedKind != types.Int {
		t.Error("first writer should win: Shared must keep the int signature")
	}
}

func TestMemoization(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "k_inc_shared.nss", `int Shared() { return 1; }`)
	writeFile(t, dir, "k_inc_a.nss", "#include \"k_inc_shared\"\nint A() { return 1; }")
	writeFile(t, dir, "k_inc_b.nss", "#include \"k_inc_shared\"\nint B() { return 2; }")
	src := "#include \"k_inc_a\"\n#include \"k_inc_b\""
	script := writeFile(t, dir, "script.nss", src)

	prog := parseSource(t, src)
	r := includes.NewResolver(dir)
	fns, _, errs := r.Resolve(prog, script)
	if len(errs) > 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	n := 0
	for _, f := range fns {
		if f.Name == "Shared" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("Shared should merge once, got %d", n)
	}

	// The shared file is parsed once even though it is included twice.
	seen := make(map[string]int)
	for _, file := range r.Files() {
		seen[file.FilePath]++
	}
	for path, count := range seen {
		if filepath.Base(path) == "k_inc_shared.nss" && count != 2 {
			t.Errorf("shared include should appear twice in order, got %d", count)
		}
	}
}

func TestParamDefaultsExtracted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "k_inc_lib.nss", `void Emit(string sMsg, int nTimes = 3);`)
	script := writeFile(t, dir, "script.nss", `#include "k_inc_lib"`)

	prog := parseSource(t, `#include "k_inc_lib"`)
	r := includes.NewResolver(dir)
	fns, _, errs := r.Resolve(prog, script)
	if len(errs) > 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	if len(fns) != 1 {
		t.Fatalf("expected 1 function, got %d", len(fns))
	}
	sig := fns[0]
	if sig.MinArgs() != 1 || sig.MaxArgs() != 2 {
		t.Errorf("arg bounds: got (%d, %d), want (1, 2)", sig.MinArgs(), sig.MaxArgs())
	}
	if sig.Params[1].Default.Int != 3 {
		t.Errorf("default value: got %s", sig.Params[1].Default)
	}
}
