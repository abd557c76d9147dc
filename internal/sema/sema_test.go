package sema_test

import (
	"testing"

	"nwlint/internal/builtins"
	"nwlint/internal/diag"
	"nwlint/internal/gamever"
	"nwlint/internal/lexer"
	"nwlint/internal/parser"
	"nwlint/internal/sema"
	"nwlint/internal/types"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func analyzeVersion(t *testing.T, input string, version gamever.Version) []diag.Diagnostic {
	t.Helper()
	tokens, err := lexer.Lex(input)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, parseErrs := parser.Parse(tokens)
	if len(parseErrs) > 0 {
		t.Fatalf("parse errors: %v", parseErrs)
	}
	sink := diag.NewSink()
	sema.Analyze(prog, sema.Options{Version: version}, sink)
	return sink.All()
}

func analyze(t *testing.T, input string) []diag.Diagnostic {
	t.Helper()
	return analyzeVersion(t, input, gamever.Both)
}

func countSeverity(diags []diag.Diagnostic, sev diag.Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

func expectErrors(t *testing.T, diags []diag.Diagnostic, want int) {
	t.Helper()
	if got := countSeverity(diags, diag.Error); got != want {
		t.Errorf("expected %d error(s), got %d", want, got)
		for _, d := range diags {
			t.Logf("  %s", d.String())
		}
	}
}

func expectCode(t *testing.T, diags []diag.Diagnostic, code string) {
	t.Helper()
	for _, d := range diags {
		if d.Code == code {
			return
		}
	}
	t.Errorf("expected a diagnostic with code %q", code)
	for _, d := range diags {
		t.Logf("  %s", d.String())
	}
}

func expectNoCode(t *testing.T, diags []diag.Diagnostic, code string) {
	t.Helper()
	for _, d := range diags {
		if d.Code == code {
			t.Errorf("unexpected diagnostic with code %q: %s", code, d.Message)
		}
	}
}

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

func TestStringToIntMismatch(t *testing.T) {
	diags := analyze(t, `
void main() {
    int x = "hello";
}`)
	expectErrors(t, diags, 1)
	expectCode(t, diags, diag.CodeTypeMismatch)
	// Range covers the string literal.
	for _, d := range diags {
		if d.Code == diag.CodeTypeMismatch && d.Rng.Start.Line != 3 {
			t.Errorf("mismatch range: got line %d, want 3", d.Rng.Start.Line)
		}
	}
}

func TestNumericPromotionAccepted(t *testing.T) {
	diags := analyze(t, `
void main() {
    float f = 1;
    int n = 2.5;
    f = n + 0.5;
}`)
	expectErrors(t, diags, 0)
}

func TestPermissiveStringAssignment(t *testing.T) {
	diags := analyze(t, `
void main() {
    string s = 42;
    s = 3.14;
}`)
	expectErrors(t, diags, 0)
}

func TestVoidVariable(t *testing.T) {
	diags := analyze(t, `void main() { void v; }`)
	expectCode(t, diags, diag.CodeVoidVariable)
}

func TestUnknownIdentifier(t *testing.T) {
	diags := analyze(t, `void main() { int x = nMissing; }`)
	expectCode(t, diags, diag.CodeUnknownIdentifier)
}

func TestUnknownFunction(t *testing.T) {
	diags := analyze(t, `void main() { DoMissingThing(); }`)
	expectCode(t, diags, diag.CodeUnknownFunction)
}

func TestBuiltinCall(t *testing.T) {
	diags := analyze(t, `
void main() {
    object oPC = GetFirstPC();
    if (GetIsObjectValid(oPC)) {
        SendMessageToPC(oPC, "hi");
    }
}`)
	expectErrors(t, diags, 0)
}

func TestArgumentCount(t *testing.T) {
	diags := analyze(t, `void main() { GetStringLength(); }`)
	expectCode(t, diags, diag.CodeArgumentCount)
}

func TestDefaultedArgumentsOptional(t *testing.T) {
	// Random(nMaxInteger) has no defaults; GetObjectByTag's later params do.
	diags := analyze(t, `
void main() {
    object o = GetObjectByTag("door_a");
}`)
	expectErrors(t, diags, 0)
}

func TestArgumentType(t *testing.T) {
	diags := analyze(t, `void main() { float f = fabs("x"); }`)
	expectErrors(t, diags, 1)
	expectCode(t, diags, diag.CodeArgumentType)
}

func TestArgumentTypeLaterPosition(t *testing.T) {
	diags := analyze(t, `void main() { SignalEvent(OBJECT_SELF, 1); }`)
	expectErrors(t, diags, 1)
	expectCode(t, diags, diag.CodeArgumentType)
}

func TestStringParameterIsPermissive(t *testing.T) {
	// Numeric arguments coerce into string parameters, same as assignment.
	diags := analyze(t, `void main() { int n = GetStringLength(42); }`)
	expectErrors(t, diags, 0)
}

func TestInvalidOperands(t *testing.T) {
	diags := analyze(t, `
void main() {
    object o = GetFirstPC();
    int n = o - 3;
}`)
	expectCode(t, diags, diag.CodeInvalidOperands)
}

func TestBitwiseRequiresInt(t *testing.T) {
	diags := analyze(t, `void main() { int n = 1 & 2.5; }`)
	expectCode(t, diags, diag.CodeInvalidOperands)
}

func TestIncrementNeedsLValue(t *testing.T) {
	diags := analyze(t, `void main() { 5++; }`)
	expectCode(t, diags, diag.CodeInvalidIncrement)
}

func TestConstAssignment(t *testing.T) {
	diags := analyze(t, `
const int MAX = 3;
void main() {
    MAX = 4;
}`)
	expectCode(t, diags, diag.CodeConstAssign)
}

func TestEngineConstantResolves(t *testing.T) {
	diags := analyze(t, `void main() { int n = TRUE + DAMAGE_TYPE_PIERCING; }`)
	expectErrors(t, diags, 0)
}

// ---------------------------------------------------------------------------
// Structs and vectors
// ---------------------------------------------------------------------------

func TestStructMemberAccess(t *testing.T) {
	diags := analyze(t, `
struct rank {
    int nLevel;
    string sTitle;
};
void main() {
    struct rank r;
    int n = r.nLevel;
    string s = r.sTitle;
    int bad = r.nMissing;
}`)
	expectCode(t, diags, diag.CodeUnknownMember)
	expectErrors(t, diags, 1)
}

func TestUnknownStructType(t *testing.T) {
	diags := analyze(t, `void main() { struct nope n; }`)
	expectCode(t, diags, diag.CodeUnknownStruct)
}

func TestVectorComponents(t *testing.T) {
	diags := analyze(t, `
void main() {
    vector v = [1.0, 2.0, 3.0];
    float f = v.x + v.y + v.z;
    v.x = 4.0;
    float bad = v.w;
}`)
	expectCode(t, diags, diag.CodeUnknownMember)
	expectErrors(t, diags, 1)
}

func TestVectorArithmetic(t *testing.T) {
	diags := analyze(t, `
void main() {
    vector a = [1.0, 0.0, 0.0];
    vector b = [0.0, 1.0, 0.0];
    vector c = a + b;
    float dot = a * b;
    vector scaled = a * 2.0;
}`)
	expectErrors(t, diags, 0)
}

// ---------------------------------------------------------------------------
// Scopes
// ---------------------------------------------------------------------------

func TestShadowingAllowedDuplicateRejected(t *testing.T) {
	// A nested block may shadow a parameter; the same block may not declare
	// a name twice.
	diags := analyze(t, `
void f(int x) {
    {
        int x = 1;
    }
}`)
	expectNoCode(t, diags, diag.CodeDuplicateSymbol)

	diags = analyze(t, `
void f() {
    int x = 1;
    int x = 2;
}`)
	expectCode(t, diags, diag.CodeDuplicateSymbol)
}

func TestDuplicateFunction(t *testing.T) {
	diags := analyze(t, `
void f() {}
void f() {}
`)
	expectCode(t, diags, diag.CodeDuplicateFunction)
}

func TestPrototypeThenDefinition(t *testing.T) {
	diags := analyze(t, `
int Twice(int n);
void main() { int x = Twice(2); }
int Twice(int n) { return n * 2; }
`)
	expectNoCode(t, diags, diag.CodeDuplicateFunction)
	expectErrors(t, diags, 0)
}

func TestForwardReference(t *testing.T) {
	diags := analyze(t, `
void main() { Helper(); }
void Helper() {}
`)
	expectErrors(t, diags, 0)
}

func TestGlobalVisibleBelowDeclaration(t *testing.T) {
	diags := analyze(t, `
int nCounter = 0;
void main() { nCounter = nCounter + 1; }
`)
	expectErrors(t, diags, 0)
}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

func TestBreakContinuePlacement(t *testing.T) {
	diags := analyze(t, `
void main() {
    break;
    continue;
    while (1) { break; continue; }
    switch (1) {
        case 1:
            break;
    }
}`)
	expectCode(t, diags, diag.CodeBreakOutsideLoop)
	expectCode(t, diags, diag.CodeContinueOutside)
	expectErrors(t, diags, 2)
}

func TestContinueInSwitchOnly(t *testing.T) {
	diags := analyze(t, `
void main() {
    switch (1) {
        case 1:
            continue;
    }
}`)
	expectCode(t, diags, diag.CodeContinueOutside)
}

func TestReturnTypeChecks(t *testing.T) {
	diags := analyze(t, `
void f() { return 1; }
int g() { return; }
int h() { return "no"; }
`)
	expectErrors(t, diags, 3)
	expectCode(t, diags, diag.CodeReturnType)
}

func TestMissingReturnHeuristic(t *testing.T) {
	diags := analyze(t, `
int OnlySometimes(int n) {
    if (n > 0) {
        return 1;
    }
}`)
	expectCode(t, diags, diag.CodeMissingReturn)
	if countSeverity(diags, diag.Error) != 0 {
		t.Error("missing return is a warning, not an error")
	}
}

func TestIfElseBothReturn(t *testing.T) {
	diags := analyze(t, `
int Sign(int n) {
    if (n >= 0) {
        return 1;
    } else {
        return -1;
    }
}`)
	expectNoCode(t, diags, diag.CodeMissingReturn)
}

func TestLoopNeverGuaranteesReturn(t *testing.T) {
	// Even "while (TRUE)" does not count as a guaranteed return.
	diags := analyze(t, `
int Spin() {
    while (TRUE) {
        return 1;
    }
}`)
	expectCode(t, diags, diag.CodeMissingReturn)
}

func TestSwitchReturnNeedsDefault(t *testing.T) {
	diags := analyze(t, `
int Pick(int n) {
    switch (n) {
        case 1:
            return 10;
        default:
            return 0;
    }
}`)
	expectNoCode(t, diags, diag.CodeMissingReturn)

	diags = analyze(t, `
int Pick(int n) {
    switch (n) {
        case 1:
            return 10;
    }
}`)
	expectCode(t, diags, diag.CodeMissingReturn)
}

// ---------------------------------------------------------------------------
// Constant validation
// ---------------------------------------------------------------------------

func TestDivisionByZero(t *testing.T) {
	diags := analyze(t, `int a = 1 / 0;`)
	expectErrors(t, diags, 1)
	expectCode(t, diags, diag.CodeDivisionByZero)
	for _, d := range diags {
		if d.Code == diag.CodeDivisionByZero && d.Rng.Start.Column != 13 {
			t.Errorf("range should cover the zero literal, got col %d", d.Rng.Start.Column)
		}
	}
}

func TestDivisionByConstZero(t *testing.T) {
	diags := analyze(t, `
const int ZERO = 0;
void main() {
    int n = 10 / ZERO;
}`)
	expectCode(t, diags, diag.CodeDivisionByZero)
}

func TestDivisionByVariableNotFlagged(t *testing.T) {
	diags := analyze(t, `
void main() {
    int nDiv = 0;
    int n = 10 / nDiv;
}`)
	expectNoCode(t, diags, diag.CodeDivisionByZero)
}

func TestDuplicateCase(t *testing.T) {
	diags := analyze(t, `
const int MODE_ONE = 1;
void main() {
    switch (2) {
        case 1:
            break;
        case MODE_ONE:
            break;
        default:
            break;
        default:
            break;
    }
}`)
	expectCode(t, diags, diag.CodeDuplicateCase)
	expectErrors(t, diags, 2) // duplicate value + duplicate default
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

func TestMainReturnType(t *testing.T) {
	diags := analyze(t, `int main() { return 1; }`)
	expectCode(t, diags, diag.CodeMainReturnType)
	if countSeverity(diags, diag.Error) == 0 {
		t.Error("wrong main return type must be an error")
	}
}

func TestMainWithParamsWarns(t *testing.T) {
	diags := analyze(t, `void main(int nArg) {}`)
	expectCode(t, diags, diag.CodeMainParams)
	if countSeverity(diags, diag.Warning) == 0 {
		t.Error("main with parameters must be a warning")
	}
	expectErrors(t, diags, 0)
}

func TestStartingConditional(t *testing.T) {
	diags := analyze(t, `int StartingConditional() { return TRUE; }`)
	expectErrors(t, diags, 0)

	diags = analyze(t, `void StartingConditional() {}`)
	expectCode(t, diags, diag.CodeCondReturnType)
}

// ---------------------------------------------------------------------------
// Version gating
// ---------------------------------------------------------------------------

func TestVersionGatedBuiltins(t *testing.T) {
	src := `void main() { GetInfluence(0); }`

	// GetInfluence exists only in the kotor2 table; under kotor1 it is
	// simply unknown at this layer.
	diags := analyzeVersion(t, src, gamever.K1)
	expectCode(t, diags, diag.CodeUnknownFunction)

	diags = analyzeVersion(t, src, gamever.K2)
	expectNoCode(t, diags, diag.CodeUnknownFunction)

	diags = analyzeVersion(t, src, gamever.Both)
	expectNoCode(t, diags, diag.CodeUnknownFunction)
}

func TestVersionGatedConstants(t *testing.T) {
	src := `void main() { int n = NPC_ATTON; }`
	diags := analyzeVersion(t, src, gamever.K1)
	expectCode(t, diags, diag.CodeUnknownIdentifier)

	diags = analyzeVersion(t, src, gamever.K2)
	expectErrors(t, diags, 0)
}

// ---------------------------------------------------------------------------
// External tables
// ---------------------------------------------------------------------------

func externalFns(t *testing.T) []builtins.FunctionSignature {
	t.Helper()
	return []builtins.FunctionSignature{{
		Name:       "UT_DoThing",
		ReturnType: types.TypeVoid,
		Params:     []builtins.ParamSpec{{Name: "nArg", Type: types.TypeInt}},
		Avail:      gamever.Both,
	}}
}

func TestExternalFunctionTable(t *testing.T) {
	tokens, err := lexer.Lex(`void main() { UT_DoThing(2); }`)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, _ := parser.Parse(tokens)

	sink := diag.NewSink()
	sema.Analyze(prog, sema.Options{
		Functions: externalFns(t),
		Version:   gamever.Both,
	}, sink)
	for _, d := range sink.All() {
		if d.Severity == diag.Error {
			t.Errorf("unexpected error: %s", d.String())
		}
	}
}

// ---------------------------------------------------------------------------
// Recovery interplay
// ---------------------------------------------------------------------------

func TestSemanticsSurviveEarlierSyntaxError(t *testing.T) {
	// A syntax error in one function must not suppress semantic findings in
	// another.
	tokens, err := lexer.Lex(`
void broken() { int x = ; }
void fine() { int y = "oops"; }
`)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, parseErrs := parser.Parse(tokens)
	if len(parseErrs) == 0 {
		t.Fatal("expected syntax errors")
	}
	sink := diag.NewSink()
	sema.Analyze(prog, sema.Options{Version: gamever.Both}, sink)
	expectCode(t, sink.All(), diag.CodeTypeMismatch)
}
