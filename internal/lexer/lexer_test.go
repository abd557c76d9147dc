package lexer

import (
	"strings"
	"testing"
)

func lexOK(t *testing.T, input string) []Token {
	t.Helper()
	tokens, err := Lex(input)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	return tokens
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	tokens := lexOK(t, "void int float string object vector struct action effect event location talent if else while for do switch case default break continue return const foo _bar baz42")
	expected := []struct {
		typ string
		val string
	}{
		{VOID, "void"},
		{INT_TYPE, "int"},
		{FLOAT_TYPE, "float"},
		{STRING_TYPE, "string"},
		{OBJECT, "object"},
		{VECTOR, "vector"},
		{STRUCT, "struct"},
		{ACTION, "action"},
		{EFFECT, "effect"},
		{EVENT, "event"},
		{LOCATION, "location"},
		{TALENT, "talent"},
		{IF, "if"},
		{ELSE, "else"},
		{WHILE, "while"},
		{FOR, "for"},
		{DO, "do"},
		{SWITCH, "switch"},
		{CASE, "case"},
		{DEFAULT, "default"},
		{BREAK, "break"},
		{CONTINUE, "continue"},
		{RETURN, "return"},
		{CONST, "const"},
		{IDENT, "foo"},
		{IDENT, "_bar"},
		{IDENT, "baz42"},
		{EOF, ""},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("token count: got %d, want %d", len(tokens), len(expected))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp.typ || tokens[i].Value != exp.val {
			t.Errorf("token[%d]: got (%s, %q), want (%s, %q)",
				i, tokens[i].Type, tokens[i].Value, exp.typ, exp.val)
		}
	}
}

func TestLiteralKinds(t *testing.T) {
	tokens := lexOK(t, "42 0xFF 3.14 2.5f 2f TRUE FALSE OBJECT_SELF OBJECT_INVALID")
	expected := []struct {
		typ string
		val string
	}{
		{INT, "42"},
		{HEXINT, "0xFF"},
		{FLOAT, "3.14"},
		{FLOAT, "2.5f"},
		{FLOAT, "2f"},
		{TRUE, "TRUE"},
		{FALSE, "FALSE"},
		{OBJECT_SELF, "OBJECT_SELF"},
		{OBJECT_INVALID, "OBJECT_INVALID"},
		{EOF, ""},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("token count: got %d, want %d", len(tokens), len(expected))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp.typ || tokens[i].Value != exp.val {
			t.Errorf("token[%d]: got (%s, %q), want (%s, %q)",
				i, tokens[i].Type, tokens[i].Value, exp.typ, exp.val)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	tokens := lexOK(t, `"a\nb\t\"c\\" "plain"`)
	if tokens[0].Type != STRING || tokens[0].Value != "a\nb\t\"c\\" {
		t.Errorf("token[0]: got (%s, %q)", tokens[0].Type, tokens[0].Value)
	}
	if tokens[1].Type != STRING || tokens[1].Value != "plain" {
		t.Errorf("token[1]: got (%s, %q)", tokens[1].Type, tokens[1].Value)
	}
}

func TestUnknownEscapeKeptVerbatim(t *testing.T) {
	tokens := lexOK(t, `"a\qb"`)
	if tokens[0].Value != `a\qb` {
		t.Errorf("got %q, want %q", tokens[0].Value, `a\qb`)
	}
}

func TestUnterminatedStringIsFatal(t *testing.T) {
	_, err := Lex(`void main() { string s = "oops`)
	if err == nil {
		t.Fatal("expected an error for unterminated string")
	}
	if _, ok := err.(*UnterminatedStringError); !ok {
		t.Fatalf("expected *UnterminatedStringError, got %T", err)
	}
}

func TestOperators(t *testing.T) {
	tokens := lexOK(t, "+ - * / % = == != < > <= >= && || ! ~ & | ^ << >> ++ -- += -= *= /= %= &= |= ^= <<= >>= ? :")
	expected := []string{
		PLUS, MINUS, STAR, SLASH, PERCENT, ASSIGN, EQ, NEQ, LT, GT, LTE, GTE,
		AND, OR, BANG, TILDE, AMPERSAND, PIPE, CARET, SHL, SHR, INC, DEC,
		PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN, PERCENT_ASSIGN,
		AND_ASSIGN, OR_ASSIGN, XOR_ASSIGN, SHL_ASSIGN, SHR_ASSIGN,
		QUESTION, COLON, EOF,
	}
	if len(tokens) != len(expected) {
		t.Fatalf("token count: got %d, want %d", len(tokens), len(expected))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token[%d]: got %s, want %s", i, tokens[i].Type, exp)
		}
	}
}

func TestComments(t *testing.T) {
	tokens := lexOK(t, "1 // line comment\n2 /* block\ncomment */ 3")
	expected := []string{INT, INT, INT, EOF}
	if len(tokens) != len(expected) {
		t.Fatalf("token count: got %d, want %d", len(tokens), len(expected))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token[%d]: got %s, want %s", i, tokens[i].Type, exp)
		}
	}
}

func TestIncludeDirective(t *testing.T) {
	tokens := lexOK(t, "#include \"k_inc_utility\"\n#pragma once")
	if tokens[0].Type != INCLUDE {
		t.Errorf("token[0]: got %s, want INCLUDE", tokens[0].Type)
	}
	if tokens[1].Type != STRING || tokens[1].Value != "k_inc_utility" {
		t.Errorf("token[1]: got (%s, %q)", tokens[1].Type, tokens[1].Value)
	}
	if tokens[2].Type != HASH {
		t.Errorf("token[2]: got %s, want HASH", tokens[2].Type)
	}
}

func TestIllegalCharacter(t *testing.T) {
	tokens := lexOK(t, "int a @ b")
	found := false
	for _, tok := range tokens {
		if tok.Type == ILLEGAL {
			found = true
			if tok.Value != "@" {
				t.Errorf("illegal token value: got %q, want %q", tok.Value, "@")
			}
		}
	}
	if !found {
		t.Error("expected an ILLEGAL token for '@'")
	}
}

func TestPositions(t *testing.T) {
	tokens := lexOK(t, "int a;\nfloat b;")
	// "float" starts at line 2, column 1.
	if tokens[3].Type != FLOAT_TYPE {
		t.Fatalf("token[3]: got %s, want FLOAT_TYPE", tokens[3].Type)
	}
	if tokens[3].Rng.Start.Line != 2 || tokens[3].Rng.Start.Column != 1 {
		t.Errorf("float position: got %d:%d, want 2:1",
			tokens[3].Rng.Start.Line, tokens[3].Rng.Start.Column)
	}
}

func TestVectorBrackets(t *testing.T) {
	tokens := lexOK(t, "[1.0, 2.0, 3.0]")
	expected := []string{LBRACKET, FLOAT, COMMA, FLOAT, COMMA, FLOAT, RBRACKET, EOF}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token[%d]: got %s, want %s", i, tokens[i].Type, exp)
		}
	}
}

func TestEmptyAndWhitespaceInput(t *testing.T) {
	for _, input := range []string{"", "   \n\t  ", "// only a comment"} {
		tokens := lexOK(t, input)
		if len(tokens) != 1 || tokens[0].Type != EOF {
			t.Errorf("input %q: expected lone EOF, got %d tokens", input, len(tokens))
		}
	}
}

func TestLongInputTerminates(t *testing.T) {
	input := strings.Repeat("int x; ", 2000)
	tokens := lexOK(t, input)
	if tokens[len(tokens)-1].Type != EOF {
		t.Error("token stream must end with EOF")
	}
}
