// Package diag defines the diagnostic record shared by every analysis pass
// and the insertion-ordered aggregator that merges their findings.
package diag

import (
	"fmt"

	"nwlint/internal/ast"
)

// Severity of a diagnostic, from fatal to cosmetic.
type Severity int

const (
	Error Severity = iota
	Warning
	Information
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Information:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Stable diagnostic codes. Tests and editor consumers assert on these, not
// on message text.
const (
	CodeUnterminatedString = "unterminated-string"
	CodeSyntaxError        = "syntax-error"
	CodeUnknownType        = "unknown-type"
	CodeDuplicateSymbol    = "duplicate-symbol"
	CodeDuplicateFunction  = "duplicate-function"
	CodeDuplicateStruct    = "duplicate-struct"
	CodeUnknownIdentifier  = "unknown-identifier"
	CodeUnknownFunction    = "unknown-function"
	CodeUnknownStruct      = "unknown-struct"
	CodeUnknownMember      = "unknown-struct-member"
	CodeTypeMismatch       = "type-mismatch"
	CodeInvalidOperands    = "invalid-operands"
	CodeInvalidIncrement   = "invalid-increment-target"
	CodeArgumentCount      = "argument-count"
	CodeArgumentType       = "argument-type"
	CodeDivisionByZero     = "division-by-zero"
	CodeDuplicateCase      = "duplicate-case"
	CodeBreakOutsideLoop   = "break-outside-loop"
	CodeContinueOutside    = "continue-outside-loop"
	CodeReturnOutside      = "return-outside-function"
	CodeReturnType         = "return-type-mismatch"
	CodeMissingReturn      = "missing-return"
	CodeVoidVariable       = "void-variable"
	CodeVectorArity        = "vector-literal-arity"
	CodeConstAssign        = "const-assignment"
	CodeInternal           = "internal-error"

	CodeMainReturnType     = "main-return-type"
	CodeMainParams         = "main-params"
	CodeCondReturnType     = "starting-conditional-return-type"
	CodeNamingPrefix       = "naming-prefix"
	CodeConstantCase       = "constant-case"
	CodeStringLength       = "string-length"
	CodeReservedPrefix     = "reserved-prefix"
	CodeMissingInclude     = "missing-include"
	CodeVersionGated       = "version-gated"
)

// Diagnostic is one finding. Immutable once created.
type Diagnostic struct {
	Severity Severity
	Rng      ast.Range
	Message  string
	Code     string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s [%s]",
		d.Rng.Start.Line, d.Rng.Start.Column, d.Severity, d.Message, d.Code)
}

// Sink collects diagnostics in insertion order across passes. Passes append
// only; no pass may suppress another pass's findings.
type Sink struct {
	diags []Diagnostic
}

// NewSink creates an empty diagnostics sink.
func NewSink() *Sink {
	return &Sink{}
}

// Add appends a diagnostic.
func (s *Sink) Add(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// Addf appends a diagnostic built from a format string.
func (s *Sink) Addf(sev Severity, rng ast.Range, code, format string, args ...interface{}) {
	s.Add(Diagnostic{
		Severity: sev,
		Rng:      rng,
		Message:  fmt.Sprintf(format, args...),
		Code:     code,
	})
}

// All returns the collected diagnostics in insertion order.
func (s *Sink) All() []Diagnostic {
	return s.diags
}

// Capped returns at most max diagnostics (all of them when max <= 0).
func (s *Sink) Capped(max int) []Diagnostic {
	if max <= 0 || len(s.diags) <= max {
		return s.diags
	}
	return s.diags[:max]
}

// HasErrors reports whether any collected diagnostic has Error severity.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
