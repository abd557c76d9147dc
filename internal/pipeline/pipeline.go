// Package pipeline wires the full analysis chain: lex, parse, semantic
// analysis, dialect validation. One run is a pure function of the source
// text and options; callers triggering a run per document-change event can
// simply discard superseded results.
package pipeline

import (
	"errors"

	"nwlint/internal/ast"
	"nwlint/internal/builtins"
	"nwlint/internal/diag"
	"nwlint/internal/dialect"
	"nwlint/internal/gamever"
	"nwlint/internal/lexer"
	"nwlint/internal/parser"
	"nwlint/internal/sema"
	"nwlint/internal/symtab"
)

// DefaultMaxDiagnostics caps the list handed back per run.
const DefaultMaxDiagnostics = 100

// Options configures one pipeline run. Functions and Constants come from an
// include resolver; the engine tables are merged in by the analyzer itself.
type Options struct {
	Functions []builtins.FunctionSignature
	Constants []builtins.ConstantSignature
	Version   gamever.Version

	// MaxDiagnostics caps the returned list; zero means
	// DefaultMaxDiagnostics, negative means unlimited.
	MaxDiagnostics int
}

// Result is everything one run produces. Program and Globals are nil when
// lexing failed; they are non-nil for any parseable-enough input, however
// broken. Consumers must treat both as read-only.
type Result struct {
	Program     *ast.Program
	Globals     *symtab.Scope
	Diagnostics []diag.Diagnostic
}

// HasErrors reports whether any diagnostic has Error severity.
func (r Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.Error {
			return true
		}
	}
	return false
}

// Run executes the full chain over source. Diagnostics come back in pass
// order: syntax first, then type and semantic findings, then dialect
// notices.
func Run(source string, opts Options) Result {
	max := opts.MaxDiagnostics
	if max == 0 {
		max = DefaultMaxDiagnostics
	}

	sink := diag.NewSink()

	tokens, err := lexer.Lex(source)
	if err != nil {
		var unterminated *lexer.UnterminatedStringError
		rng := ast.Range{}
		if errors.As(err, &unterminated) {
			rng = unterminated.Rng
		}
		sink.Addf(diag.Error, rng, diag.CodeUnterminatedString, "%s", err.Error())
		return Result{Diagnostics: capDiagnostics(sink, max)}
	}

	prog, syntaxErrs := parser.Parse(tokens)
	for _, se := range syntaxErrs {
		code := se.Code
		if code == "" {
			code = diag.CodeSyntaxError
		}
		sink.Addf(diag.Error, se.Rng, code, "%s", se.Message)
	}

	globals := sema.Analyze(prog, sema.Options{
		Functions: opts.Functions,
		Constants: opts.Constants,
		Version:   opts.Version,
	}, sink)

	dialect.Validate(prog, opts.Version, sink)

	return Result{
		Program:     prog,
		Globals:     globals,
		Diagnostics: capDiagnostics(sink, max),
	}
}

func capDiagnostics(sink *diag.Sink, max int) []diag.Diagnostic {
	if max < 0 {
		return sink.All()
	}
	return sink.Capped(max)
}
