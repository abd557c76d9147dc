package lexer

import (
	"fmt"

	"nwlint/internal/ast"
)

const (
	// Special
	EOF     = "EOF"
	ILLEGAL = "ILLEGAL" // unknown character, emitted as a degenerate token

	// Literals
	IDENT          = "IDENT"
	INT            = "INT"    // 42
	FLOAT          = "FLOAT"  // 3.14, 1.5f, 2f
	HEXINT         = "HEXINT" // 0xFF
	STRING         = "STRING" // "hello"
	TRUE           = "TRUE"
	FALSE          = "FALSE"
	OBJECT_SELF    = "OBJECT_SELF"
	OBJECT_INVALID = "OBJECT_INVALID"

	// Type keywords
	VOID        = "VOID"
	INT_TYPE    = "INT_TYPE"
	FLOAT_TYPE  = "FLOAT_TYPE"
	STRING_TYPE = "STRING_TYPE"
	OBJECT      = "OBJECT"
	VECTOR      = "VECTOR"
	STRUCT      = "STRUCT"
	ACTION      = "ACTION"
	EFFECT      = "EFFECT"
	EVENT       = "EVENT"
	LOCATION    = "LOCATION"
	TALENT      = "TALENT"

	// Control keywords
	IF       = "IF"
	ELSE     = "ELSE"
	WHILE    = "WHILE"
	FOR      = "FOR"
	DO       = "DO"
	SWITCH   = "SWITCH"
	CASE     = "CASE"
	DEFAULT  = "DEFAULT"
	BREAK    = "BREAK"
	CONTINUE = "CONTINUE"
	RETURN   = "RETURN"
	CONST    = "CONST"

	// Preprocessor
	INCLUDE = "INCLUDE" // #include
	HASH    = "HASH"    // bare '#' (unknown directive)

	// Delimiters
	LPAREN    = "LPAREN"    // (
	RPAREN    = "RPAREN"    // )
	LBRACE    = "LBRACE"    // {
	RBRACE    = "RBRACE"    // }
	LBRACKET  = "LBRACKET"  // [
	RBRACKET  = "RBRACKET"  // ]
	SEMICOLON = "SEMICOLON" // ;
	COLON     = "COLON"     // :
	COMMA     = "COMMA"     // ,
	DOT       = "DOT"       // .
	QUESTION  = "QUESTION"  // ?

	// Operators
	ASSIGN    = "ASSIGN"    // =
	PLUS      = "PLUS"      // +
	MINUS     = "MINUS"     // -
	STAR      = "STAR"      // *
	SLASH     = "SLASH"     // /
	PERCENT   = "PERCENT"   // %
	AMPERSAND = "AMPERSAND" // &
	PIPE      = "PIPE"      // |
	CARET     = "CARET"     // ^
	TILDE     = "TILDE"     // ~
	BANG      = "BANG"      // !
	SHL       = "SHL"       // <<
	SHR       = "SHR"       // >>
	INC       = "INC"       // ++
	DEC       = "DEC"       // --

	// Compound assignment
	PLUS_ASSIGN    = "PLUS_ASSIGN"    // +=
	MINUS_ASSIGN   = "MINUS_ASSIGN"   // -=
	STAR_ASSIGN    = "STAR_ASSIGN"    // *=
	SLASH_ASSIGN   = "SLASH_ASSIGN"   // /=
	PERCENT_ASSIGN = "PERCENT_ASSIGN" // %=
	AND_ASSIGN     = "AND_ASSIGN"     // &=
	OR_ASSIGN      = "OR_ASSIGN"      // |=
	XOR_ASSIGN     = "XOR_ASSIGN"     // ^=
	SHL_ASSIGN     = "SHL_ASSIGN"     // <<=
	SHR_ASSIGN     = "SHR_ASSIGN"     // >>=

	// Comparison
	EQ  = "EQ"  // ==
	NEQ = "NEQ" // !=
	LT  = "LT"  // <
	GT  = "GT"  // >
	LTE = "LTE" // <=
	GTE = "GTE" // >=

	// Logical
	AND = "AND" // &&
	OR  = "OR"  // ||
)

// keywords maps reserved words to their token types. TRUE/FALSE and the two
// engine sentinels are lexed as dedicated literal kinds, not identifiers.
var keywords = map[string]string{
	"void":     VOID,
	"int":      INT_TYPE,
	"float":    FLOAT_TYPE,
	"string":   STRING_TYPE,
	"object":   OBJECT,
	"vector":   VECTOR,
	"struct":   STRUCT,
	"action":   ACTION,
	"effect":   EFFECT,
	"event":    EVENT,
	"location": LOCATION,
	"talent":   TALENT,

	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"do":       DO,
	"switch":   SWITCH,
	"case":     CASE,
	"default":  DEFAULT,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
	"const":    CONST,

	"TRUE":           TRUE,
	"FALSE":          FALSE,
	"OBJECT_SELF":    OBJECT_SELF,
	"OBJECT_INVALID": OBJECT_INVALID,
}

// Token is a single lexical token with its source range. Value holds the
// decoded content for strings and the raw lexeme for everything else.
type Token struct {
	Type  string
	Value string
	Rng   ast.Range
}

// IsType reports whether the token is a primitive type keyword.
func (t Token) IsType() bool {
	switch t.Type {
	case VOID, INT_TYPE, FLOAT_TYPE, STRING_TYPE, OBJECT, VECTOR,
		ACTION, EFFECT, EVENT, LOCATION, TALENT:
		return true
	}
	return false
}

// UnterminatedStringError is the one fatal lexical condition: end of input
// was reached inside a string literal. The whole analysis run aborts with a
// single diagnostic at Rng.
type UnterminatedStringError struct {
	Rng ast.Range
}

func (e *UnterminatedStringError) Error() string {
	return fmt.Sprintf("line %d, col %d: unterminated string literal", e.Rng.Start.Line, e.Rng.Start.Column)
}

// lexer holds scanning state over the raw source bytes.
type lexer struct {
	input string
	pos   int
	line  int
	col   int
}

// Lex converts source text into a flat token sequence, always terminated by
// an EOF token. Unknown characters become ILLEGAL tokens rather than errors;
// the returned error is non-nil only for an unterminated string literal.
func Lex(input string) ([]Token, error) {
	l := &lexer{input: input, line: 1, col: 1}
	var tokens []Token

	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if isWhitespace(ch) {
			l.advance()
			continue
		}

		// Comments
		if ch == '/' && l.pos+1 < len(l.input) {
			if l.input[l.pos+1] == '/' {
				l.skipLineComment()
				continue
			}
			if l.input[l.pos+1] == '*' {
				l.skipBlockComment()
				continue
			}
		}

		if ch == '"' {
			tok, err := l.lexString()
			if err != nil {
				return tokens, err
			}
			tokens = append(tokens, tok)
			continue
		}

		if isDigit(ch) {
			tokens = append(tokens, l.lexNumber())
			continue
		}

		if isIdentStart(ch) {
			tokens = append(tokens, l.lexIdentifier())
			continue
		}

		if ch == '#' {
			tokens = append(tokens, l.lexDirective())
			continue
		}

		if tok, ok := l.lexOperatorOrDelimiter(); ok {
			tokens = append(tokens, tok)
			continue
		}

		// Unknown character: emit a degenerate token so the parser can keep
		// going, never abort.
		start := l.position()
		l.advance()
		tokens = append(tokens, Token{
			Type:  ILLEGAL,
			Value: string(ch),
			Rng:   ast.Range{Start: start, End: l.position()},
		})
	}

	end := l.position()
	tokens = append(tokens, Token{Type: EOF, Rng: ast.Range{Start: end, End: end}})
	return tokens, nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func (l *lexer) position() ast.Position {
	return ast.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// advance consumes one byte, tracking line/column.
func (l *lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *lexer) peekAt(offset int) byte {
	idx := l.pos + offset
	if idx < len(l.input) {
		return l.input[idx]
	}
	return 0
}

func (l *lexer) skipLineComment() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.advance()
	}
}

// skipBlockComment consumes up to and including the first "*/". Block
// comments do not nest. An unclosed comment simply runs to EOF.
func (l *lexer) skipBlockComment() {
	l.advance() // '/'
	l.advance() // '*'
	for l.pos < len(l.input) {
		if l.input[l.pos] == '*' && l.peekAt(1) == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
}

// lexString scans a double-quoted string literal, decoding the supported
// escapes (\n \t \r \\ \"). Reaching EOF mid-string is fatal.
func (l *lexer) lexString() (Token, error) {
	start := l.position()
	l.advance() // opening quote

	var out []byte
	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if ch == '\\' {
			next := l.peekAt(1)
			switch next {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			default:
				// Unknown escape: keep both characters verbatim.
				out = append(out, ch, next)
			}
			l.advance()
			if l.pos < len(l.input) {
				l.advance()
			}
			continue
		}

		if ch == '"' {
			l.advance()
			return Token{
				Type:  STRING,
				Value: string(out),
				Rng:   ast.Range{Start: start, End: l.position()},
			}, nil
		}

		out = append(out, ch)
		l.advance()
	}

	return Token{}, &UnterminatedStringError{
		Rng: ast.Range{Start: start, End: l.position()},
	}
}

// lexNumber scans an integer, float or hex literal. Floats are written with
// a dot, a trailing f/F suffix, or both; hex integers use the 0x prefix.
// A dot is only consumed when followed by a digit, so "1.x" stays INT DOT
// IDENT.
func (l *lexer) lexNumber() Token {
	start := l.position()

	// Hexadecimal: 0x… / 0X…
	if l.input[l.pos] == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()
		for l.pos < len(l.input) && isHexDigit(l.input[l.pos]) {
			l.advance()
		}
		return Token{
			Type:  HEXINT,
			Value: l.input[start.Offset:l.pos],
			Rng:   ast.Range{Start: start, End: l.position()},
		}
	}

	isFloat := false
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.advance()
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' && isDigit(l.peekAt(1)) {
		isFloat = true
		l.advance() // '.'
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.advance()
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'f' || l.input[l.pos] == 'F') {
		isFloat = true
		l.advance()
	}

	typ := INT
	if isFloat {
		typ = FLOAT
	}
	return Token{
		Type:  typ,
		Value: l.input[start.Offset:l.pos],
		Rng:   ast.Range{Start: start, End: l.position()},
	}
}

func (l *lexer) lexIdentifier() Token {
	start := l.position()
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.advance()
	}
	word := l.input[start.Offset:l.pos]
	typ := IDENT
	if kw, ok := keywords[word]; ok {
		typ = kw
	}
	return Token{
		Type:  typ,
		Value: word,
		Rng:   ast.Range{Start: start, End: l.position()},
	}
}

// lexDirective scans '#' plus a following word. "#include" is the only
// recognised directive; anything else is a bare HASH followed by whatever
// the next scan produces.
func (l *lexer) lexDirective() Token {
	start := l.position()
	l.advance() // '#'
	wordStart := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.advance()
	}
	word := l.input[wordStart:l.pos]
	if word == "include" {
		return Token{
			Type:  INCLUDE,
			Value: "#include",
			Rng:   ast.Range{Start: start, End: l.position()},
		}
	}
	return Token{
		Type:  HASH,
		Value: "#" + word,
		Rng:   ast.Range{Start: start, End: l.position()},
	}
}

// lexOperatorOrDelimiter matches 1–3 character operators and punctuation.
func (l *lexer) lexOperatorOrDelimiter() (Token, bool) {
	start := l.position()
	ch := l.input[l.pos]
	next := l.peekAt(1)

	emit := func(typ string, width int) (Token, bool) {
		value := l.input[l.pos : l.pos+width]
		for i := 0; i < width; i++ {
			l.advance()
		}
		return Token{Type: typ, Value: value, Rng: ast.Range{Start: start, End: l.position()}}, true
	}

	switch ch {
	case '+':
		if next == '+' {
			return emit(INC, 2)
		}
		if next == '=' {
			return emit(PLUS_ASSIGN, 2)
		}
		return emit(PLUS, 1)
	case '-':
		if next == '-' {
			return emit(DEC, 2)
		}
		if next == '=' {
			return emit(MINUS_ASSIGN, 2)
		}
		return emit(MINUS, 1)
	case '*':
		if next == '=' {
			return emit(STAR_ASSIGN, 2)
		}
		return emit(STAR, 1)
	case '/':
		if next == '=' {
			return emit(SLASH_ASSIGN, 2)
		}
		return emit(SLASH, 1)
	case '%':
		if next == '=' {
			return emit(PERCENT_ASSIGN, 2)
		}
		return emit(PERCENT, 1)
	case '=':
		if next == '=' {
			return emit(EQ, 2)
		}
		return emit(ASSIGN, 1)
	case '!':
		if next == '=' {
			return emit(NEQ, 2)
		}
		return emit(BANG, 1)
	case '<':
		if next == '<' {
			if l.peekAt(2) == '=' {
				return emit(SHL_ASSIGN, 3)
			}
			return emit(SHL, 2)
		}
		if next == '=' {
			return emit(LTE, 2)
		}
		return emit(LT, 1)
	case '>':
		if next == '>' {
			if l.peekAt(2) == '=' {
				return emit(SHR_ASSIGN, 3)
			}
			return emit(SHR, 2)
		}
		if next == '=' {
			return emit(GTE, 2)
		}
		return emit(GT, 1)
	case '&':
		if next == '&' {
			return emit(AND, 2)
		}
		if next == '=' {
			return emit(AND_ASSIGN, 2)
		}
		return emit(AMPERSAND, 1)
	case '|':
		if next == '|' {
			return emit(OR, 2)
		}
		if next == '=' {
			return emit(OR_ASSIGN, 2)
		}
		return emit(PIPE, 1)
	case '^':
		if next == '=' {
			return emit(XOR_ASSIGN, 2)
		}
		return emit(CARET, 1)
	case '~':
		return emit(TILDE, 1)
	case '(':
		return emit(LPAREN, 1)
	case ')':
		return emit(RPAREN, 1)
	case '{':
		return emit(LBRACE, 1)
	case '}':
		return emit(RBRACE, 1)
	case '[':
		return emit(LBRACKET, 1)
	case ']':
		return emit(RBRACKET, 1)
	case ';':
		return emit(SEMICOLON, 1)
	case ':':
		return emit(COLON, 1)
	case ',':
		return emit(COMMA, 1)
	case '.':
		return emit(DOT, 1)
	case '?':
		return emit(QUESTION, 1)
	}

	return Token{}, false
}

// ---------------------------------------------------------------------------
// Character classes
// ---------------------------------------------------------------------------

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}
