package parser

import (
	"fmt"

	"nwlint/internal/ast"
	"nwlint/internal/diag"
	"nwlint/internal/lexer"
)

// ---------------------------------------------------------------------------
// Precedence levels for binary operators (loosest to tightest)
// ---------------------------------------------------------------------------

const (
	precNone       = iota
	precOr         // ||
	precAnd        // &&
	precBitOr      // |
	precBitXor     // ^
	precBitAnd     // &
	precEquality   // == !=
	precComparison // < > <= >=
	precShift      // << >>
	precAdditive   // + -
	precMultiply   // * / %
)

func infixPrecedence(typ string) int {
	switch typ {
	case lexer.OR:
		return precOr
	case lexer.AND:
		return precAnd
	case lexer.PIPE:
		return precBitOr
	case lexer.CARET:
		return precBitXor
	case lexer.AMPERSAND:
		return precBitAnd
	case lexer.EQ, lexer.NEQ:
		return precEquality
	case lexer.LT, lexer.GT, lexer.LTE, lexer.GTE:
		return precComparison
	case lexer.SHL, lexer.SHR:
		return precShift
	case lexer.PLUS, lexer.MINUS:
		return precAdditive
	case lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return precMultiply
	default:
		return precNone
	}
}

func isAssignOp(typ string) bool {
	switch typ {
	case lexer.ASSIGN, lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN, lexer.STAR_ASSIGN,
		lexer.SLASH_ASSIGN, lexer.PERCENT_ASSIGN, lexer.AND_ASSIGN,
		lexer.OR_ASSIGN, lexer.XOR_ASSIGN, lexer.SHL_ASSIGN, lexer.SHR_ASSIGN:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// SyntaxError
// ---------------------------------------------------------------------------

// SyntaxError is a single recorded parse error. Parsing never aborts on one;
// the parser resynchronizes and keeps going. Code is set only for the few
// errors with a more specific diagnostic code than the generic syntax error.
type SyntaxError struct {
	Message string
	Rng     ast.Range
	Code    string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Rng.Start.Line, e.Rng.Start.Column, e.Message)
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parser holds the state for a single parse pass over a token stream.
type Parser struct {
	tokens []lexer.Token
	pos    int
	errors []SyntaxError
}

// Parse consumes a token slice (as produced by lexer.Lex) and returns an AST
// program plus all recorded syntax errors. For any input, including garbage,
// it terminates and returns a non-nil Program.
func Parse(tokens []lexer.Token) (*ast.Program, []SyntaxError) {
	p := &Parser{tokens: tokens}
	prog := p.parseProgram()
	return prog, p.errors
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

func (p *Parser) peek() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return lexer.Token{Type: lexer.EOF}
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= 0 && idx < len(p.tokens) {
		return p.tokens[idx]
	}
	return lexer.Token{Type: lexer.EOF}
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) previous() lexer.Token {
	if p.pos > 0 {
		return p.tokens[p.pos-1]
	}
	return lexer.Token{Type: lexer.EOF}
}

func (p *Parser) check(typ string) bool {
	return p.peek().Type == typ
}

func (p *Parser) match(types ...string) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes the current token if it matches typ; otherwise it records
// an error and returns the current token WITHOUT advancing.
func (p *Parser) expect(typ string, msg string) lexer.Token {
	if p.check(typ) {
		return p.advance()
	}
	tok := p.peek()
	p.addError(tok.Rng, fmt.Sprintf("%s (got %s %q)", msg, tok.Type, tok.Value))
	return tok
}

func (p *Parser) addError(rng ast.Range, msg string) {
	p.errors = append(p.errors, SyntaxError{Message: msg, Rng: rng})
}

// synchronize advances past tokens until a likely statement boundary: either
// just past a semicolon, or at a token that starts a new construct.
func (p *Parser) synchronize() {
	p.advance()
	for !p.check(lexer.EOF) {
		if p.previous().Type == lexer.SEMICOLON {
			return
		}
		switch p.peek().Type {
		case lexer.IF, lexer.ELSE, lexer.WHILE, lexer.FOR, lexer.DO,
			lexer.SWITCH, lexer.RETURN, lexer.BREAK, lexer.CONTINUE,
			lexer.CONST, lexer.STRUCT, lexer.INCLUDE, lexer.RBRACE:
			return
		}
		if p.peek().IsType() {
			return
		}
		p.advance()
	}
}

// isDeclarationStart implements the typed-declaration heuristic: a type
// keyword, const, struct, or a bare identifier followed immediately by
// another identifier (struct-typed locals). The identifier case has a known
// failure mode: an identifier expression statement followed by another
// identifier on the same statement boundary is misparsed as a declaration.
// That ambiguity is part of the grammar and deliberately preserved.
func (p *Parser) isDeclarationStart() bool {
	tok := p.peek()
	if tok.IsType() || tok.Type == lexer.CONST || tok.Type == lexer.STRUCT {
		return true
	}
	return tok.Type == lexer.IDENT && p.peekAt(1).Type == lexer.IDENT
}

// =========================================================================
// Top-level parsing
// =========================================================================

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{Rng: p.peek().Rng}

	for !p.check(lexer.EOF) {
		startPos := p.pos

		switch {
		case p.check(lexer.INCLUDE):
			if inc := p.parseInclude(); inc != nil {
				prog.Includes = append(prog.Includes, inc)
				prog.Decls = append(prog.Decls, inc)
			}

		case p.check(lexer.STRUCT) && p.peekAt(1).Type == lexer.IDENT && p.peekAt(2).Type == lexer.LBRACE:
			if st := p.parseStructDecl(); st != nil {
				prog.Structs = append(prog.Structs, st)
				prog.Decls = append(prog.Decls, st)
			}

		case p.isDeclarationStart():
			p.parseTopLevelDecl(prog)

		default:
			tok := p.peek()
			p.addError(tok.Rng, fmt.Sprintf("expected declaration, got %s %q", tok.Type, tok.Value))
			p.synchronize()
		}

		// Safety: if no tokens were consumed, skip one to guarantee progress.
		if p.pos == startPos {
			p.advance()
		}
	}

	if len(p.tokens) > 0 {
		prog.Rng = ast.Span(prog.Rng, p.tokens[len(p.tokens)-1].Rng)
	}
	return prog
}

// parseInclude: #include "name"
func (p *Parser) parseInclude() *ast.IncludeDirective {
	tok := p.advance() // consume #include
	name := p.expect(lexer.STRING, "expected file name string after #include")
	if name.Type != lexer.STRING {
		p.synchronize()
		return nil
	}
	return &ast.IncludeDirective{
		Name: name.Value,
		Rng:  ast.Span(tok.Rng, name.Rng),
	}
}

// parseStructDecl: struct name { type field; ... };
func (p *Parser) parseStructDecl() *ast.StructDecl {
	tok := p.advance() // consume STRUCT
	name := p.expect(lexer.IDENT, "expected struct name")
	p.expect(lexer.LBRACE, "expected '{' after struct name")

	st := &ast.StructDecl{Name: name.Value, Rng: tok.Rng}

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		startPos := p.pos
		fieldType := p.parseTypeSpec()
		fieldName := p.expect(lexer.IDENT, "expected field name")
		semi := p.expect(lexer.SEMICOLON, "expected ';' after struct field")
		st.Fields = append(st.Fields, &ast.VariableDecl{
			Name: fieldName.Value,
			Type: fieldType,
			Rng:  ast.Span(fieldType.Rng, semi.Rng),
		})
		if p.pos == startPos {
			p.advance()
		}
	}

	closing := p.expect(lexer.RBRACE, "expected '}' after struct fields")
	end := p.expect(lexer.SEMICOLON, "expected ';' after struct declaration")
	if end.Type != lexer.SEMICOLON {
		end = closing
	}
	st.Rng = ast.Span(tok.Rng, end.Rng)
	return st
}

// parseTopLevelDecl parses a function prototype/definition or a global
// variable declaration and appends it to the program.
func (p *Parser) parseTopLevelDecl(prog *ast.Program) {
	start := p.peek().Rng
	isConst := p.match(lexer.CONST)
	typeSpec := p.parseTypeSpec()
	name := p.expect(lexer.IDENT, "expected declaration name")
	if name.Type != lexer.IDENT {
		p.synchronize()
		return
	}

	if p.check(lexer.LPAREN) {
		fn := p.parseFunctionRest(start, typeSpec, name)
		if fn != nil {
			if isConst {
				p.addError(start, "functions cannot be declared const")
			}
			prog.Functions = append(prog.Functions, fn)
			prog.Decls = append(prog.Decls, fn)
		}
		return
	}

	decl := p.parseVariableRest(start, typeSpec, name, isConst)
	prog.Globals = append(prog.Globals, decl)
	prog.Decls = append(prog.Decls, decl)
}

// parseTypeSpec parses a primitive type keyword, "struct <name>", or a bare
// identifier used as a struct type name via the declaration heuristic.
func (p *Parser) parseTypeSpec() *ast.TypeSpec {
	tok := p.peek()

	if tok.Type == lexer.STRUCT {
		p.advance()
		name := p.expect(lexer.IDENT, "expected struct name after 'struct'")
		return &ast.TypeSpec{
			Name:       "struct",
			IsStruct:   true,
			StructName: name.Value,
			Rng:        ast.Span(tok.Rng, name.Rng),
		}
	}

	if tok.IsType() {
		p.advance()
		return &ast.TypeSpec{Name: tok.Value, Rng: tok.Rng}
	}

	if tok.Type == lexer.IDENT {
		// Bare identifier in type position: a struct-typed declaration
		// without the struct keyword.
		p.advance()
		return &ast.TypeSpec{
			Name:       tok.Value,
			IsStruct:   true,
			StructName: tok.Value,
			Rng:        tok.Rng,
		}
	}

	p.addError(tok.Rng, fmt.Sprintf("expected type name, got %s", tok.Type))
	return &ast.TypeSpec{Name: "<error>", Rng: tok.Rng}
}

// parseFunctionRest parses a function declaration after the return type and
// name: parameter list, then either ';' (prototype) or a body block.
func (p *Parser) parseFunctionRest(start ast.Range, ret *ast.TypeSpec, name lexer.Token) *ast.FunctionDecl {
	p.expect(lexer.LPAREN, "expected '(' after function name")

	var params []*ast.Param
	if !p.check(lexer.RPAREN) {
		params = append(params, p.parseParam())
		for p.match(lexer.COMMA) {
			params = append(params, p.parseParam())
		}
	}
	p.expect(lexer.RPAREN, "expected ')' after parameters")

	fn := &ast.FunctionDecl{
		Name:       name.Value,
		ReturnType: ret,
		Params:     params,
		Rng:        start,
	}

	if p.check(lexer.SEMICOLON) {
		end := p.advance()
		fn.IsPrototype = true
		fn.Rng = ast.Span(start, end.Rng)
		return fn
	}

	fn.Body = p.parseBlock()
	fn.Rng = ast.Span(start, fn.Body.Rng)
	return fn
}

func (p *Parser) parseParam() *ast.Param {
	typeSpec := p.parseTypeSpec()
	name := p.expect(lexer.IDENT, "expected parameter name")

	param := &ast.Param{
		Name: name.Value,
		Type: typeSpec,
		Rng:  ast.Span(typeSpec.Rng, name.Rng),
	}
	if p.match(lexer.ASSIGN) {
		param.Default = p.parseExpression()
		param.Rng = ast.Span(param.Rng, param.Default.GetRange())
	}
	return param
}

// parseVariableRest parses a variable declaration after its type and name.
func (p *Parser) parseVariableRest(start ast.Range, typeSpec *ast.TypeSpec, name lexer.Token, isConst bool) *ast.VariableDecl {
	decl := &ast.VariableDecl{
		Name:    name.Value,
		Type:    typeSpec,
		IsConst: isConst,
		Rng:     ast.Span(start, name.Rng),
	}
	if p.match(lexer.ASSIGN) {
		decl.Init = p.parseExpression()
		decl.Rng = ast.Span(decl.Rng, decl.Init.GetRange())
	}
	end := p.expect(lexer.SEMICOLON, "expected ';' after variable declaration")
	if end.Type == lexer.SEMICOLON {
		decl.Rng = ast.Span(decl.Rng, end.Rng)
	}
	return decl
}

// =========================================================================
// Statements
// =========================================================================

func (p *Parser) parseBlock() *ast.BlockStmt {
	tok := p.expect(lexer.LBRACE, "expected '{'")
	block := &ast.BlockStmt{Rng: tok.Rng}

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		startPos := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		if p.pos == startPos {
			p.advance()
		}
	}

	end := p.expect(lexer.RBRACE, "expected '}'")
	block.Rng = ast.Span(tok.Rng, end.Rng)
	return block
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.peek().Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.DO:
		return p.parseDoWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.SWITCH:
		return p.parseSwitchStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.BREAK:
		tok := p.advance()
		end := p.expect(lexer.SEMICOLON, "expected ';' after break")
		return &ast.BreakStmt{Rng: ast.Span(tok.Rng, end.Rng)}
	case lexer.CONTINUE:
		tok := p.advance()
		end := p.expect(lexer.SEMICOLON, "expected ';' after continue")
		return &ast.ContinueStmt{Rng: ast.Span(tok.Rng, end.Rng)}
	case lexer.SEMICOLON:
		p.advance() // empty statement
		return nil
	}

	if p.isDeclarationStart() {
		return p.parseLocalDecl()
	}

	return p.parseExprStmt()
}

func (p *Parser) parseLocalDecl() ast.Stmt {
	start := p.peek().Rng
	isConst := p.match(lexer.CONST)
	typeSpec := p.parseTypeSpec()
	name := p.expect(lexer.IDENT, "expected variable name")
	if name.Type != lexer.IDENT {
		p.synchronize()
		return nil
	}
	return p.parseVariableRest(start, typeSpec, name, isConst)
}

func (p *Parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpression()
	end := p.expect(lexer.SEMICOLON, "expected ';' after expression")
	rng := expr.GetRange()
	if end.Type == lexer.SEMICOLON {
		rng = ast.Span(rng, end.Rng)
	}
	return &ast.ExprStmt{Expression: expr, Rng: rng}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	tok := p.advance() // consume IF
	p.expect(lexer.LPAREN, "expected '(' after 'if'")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, "expected ')' after if condition")
	then := p.parseStatement()
	if then == nil {
		then = &ast.BlockStmt{Rng: p.peek().Rng}
	}

	stmt := &ast.IfStmt{Condition: cond, Then: then, Rng: ast.Span(tok.Rng, then.GetRange())}
	if p.match(lexer.ELSE) {
		stmt.Else = p.parseStatement()
		if stmt.Else != nil {
			stmt.Rng = ast.Span(stmt.Rng, stmt.Else.GetRange())
		}
	}
	return stmt
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	tok := p.advance() // consume WHILE
	p.expect(lexer.LPAREN, "expected '(' after 'while'")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, "expected ')' after while condition")
	body := p.parseStatement()
	if body == nil {
		body = &ast.BlockStmt{Rng: p.peek().Rng}
	}
	return &ast.WhileStmt{Condition: cond, Body: body, Rng: ast.Span(tok.Rng, body.GetRange())}
}

func (p *Parser) parseDoWhileStmt() ast.Stmt {
	tok := p.advance() // consume DO
	body := p.parseStatement()
	if body == nil {
		body = &ast.BlockStmt{Rng: p.peek().Rng}
	}
	p.expect(lexer.WHILE, "expected 'while' after do body")
	p.expect(lexer.LPAREN, "expected '(' after 'while'")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, "expected ')' after do-while condition")
	end := p.expect(lexer.SEMICOLON, "expected ';' after do-while")
	rng := ast.Span(tok.Rng, cond.GetRange())
	if end.Type == lexer.SEMICOLON {
		rng = ast.Span(rng, end.Rng)
	}
	return &ast.DoWhileStmt{Body: body, Condition: cond, Rng: rng}
}

// parseForStmt: for ([init]; [cond]; [update]) <body>
// Each clause is an optional expression.
func (p *Parser) parseForStmt() ast.Stmt {
	tok := p.advance() // consume FOR
	p.expect(lexer.LPAREN, "expected '(' after 'for'")

	var init, cond, update ast.Expr
	if !p.check(lexer.SEMICOLON) {
		init = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON, "expected ';' after for initializer")
	if !p.check(lexer.SEMICOLON) {
		cond = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON, "expected ';' after for condition")
	if !p.check(lexer.RPAREN) {
		update = p.parseExpression()
	}
	p.expect(lexer.RPAREN, "expected ')' after for clauses")

	body := p.parseStatement()
	if body == nil {
		body = &ast.BlockStmt{Rng: p.peek().Rng}
	}
	return &ast.ForStmt{
		Init:      init,
		Condition: cond,
		Update:    update,
		Body:      body,
		Rng:       ast.Span(tok.Rng, body.GetRange()),
	}
}

func (p *Parser) parseSwitchStmt() ast.Stmt {
	tok := p.advance() // consume SWITCH
	p.expect(lexer.LPAREN, "expected '(' after 'switch'")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, "expected ')' after switch condition")
	p.expect(lexer.LBRACE, "expected '{' to open switch body")

	stmt := &ast.SwitchStmt{Condition: cond, Rng: tok.Rng}

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		startPos := p.pos
		if clause := p.parseCaseClause(); clause != nil {
			stmt.Cases = append(stmt.Cases, clause)
		}
		if p.pos == startPos {
			p.advance()
		}
	}

	end := p.expect(lexer.RBRACE, "expected '}' to close switch body")
	stmt.Rng = ast.Span(tok.Rng, end.Rng)
	return stmt
}

func (p *Parser) parseCaseClause() *ast.CaseClause {
	tok := p.peek()
	clause := &ast.CaseClause{Rng: tok.Rng}

	switch tok.Type {
	case lexer.CASE:
		p.advance()
		clause.Value = p.parseExpression()
		p.expect(lexer.COLON, "expected ':' after case value")
	case lexer.DEFAULT:
		p.advance()
		clause.IsDefault = true
		p.expect(lexer.COLON, "expected ':' after default")
	default:
		p.addError(tok.Rng, fmt.Sprintf("expected 'case' or 'default' in switch body, got %s", tok.Type))
		p.synchronize()
		return nil
	}

	for !p.check(lexer.CASE) && !p.check(lexer.DEFAULT) &&
		!p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		startPos := p.pos
		if s := p.parseStatement(); s != nil {
			clause.Stmts = append(clause.Stmts, s)
		}
		if p.pos == startPos {
			p.advance()
		}
	}

	if n := len(clause.Stmts); n > 0 {
		clause.Rng = ast.Span(clause.Rng, clause.Stmts[n-1].GetRange())
	}
	return clause
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	tok := p.advance() // consume RETURN
	var value ast.Expr
	if !p.check(lexer.SEMICOLON) {
		value = p.parseExpression()
	}
	end := p.expect(lexer.SEMICOLON, "expected ';' after return statement")
	rng := tok.Rng
	if value != nil {
		rng = ast.Span(rng, value.GetRange())
	}
	if end.Type == lexer.SEMICOLON {
		rng = ast.Span(rng, end.Rng)
	}
	return &ast.ReturnStmt{Value: value, Rng: rng}
}

// =========================================================================
// Expressions
// =========================================================================

// parseExpression is the public entry point: conditional is the loosest
// level and is right-associative.
func (p *Parser) parseExpression() ast.Expr {
	cond := p.parseBinary(precOr)

	if p.check(lexer.QUESTION) {
		p.advance()
		then := p.parseExpression()
		p.expect(lexer.COLON, "expected ':' in conditional expression")
		els := p.parseExpression()
		return &ast.CondExpr{
			Condition: cond,
			Then:      then,
			Else:      els,
			Rng:       ast.Span(cond.GetRange(), els.GetRange()),
		}
	}
	return cond
}

// parseBinary is precedence climbing over the binary operator table.
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()

	for {
		tok := p.peek()
		prec := infixPrecedence(tok.Type)
		if prec < minPrec {
			break
		}
		p.advance()
		right := p.parseBinary(prec + 1)
		left = &ast.BinaryExpr{
			Op:    tok.Value,
			Left:  left,
			Right: right,
			Rng:   ast.Span(left.GetRange(), right.GetRange()),
		}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case lexer.BANG, lexer.MINUS, lexer.PLUS, lexer.TILDE:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{
			Op:      tok.Value,
			Operand: operand,
			Rng:     ast.Span(tok.Rng, operand.GetRange()),
		}
	case lexer.INC, lexer.DEC:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{
			Op:      tok.Value,
			Operand: operand,
			Rng:     ast.Span(tok.Rng, operand.GetRange()),
		}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by its postfix chain
// (calls, member access, ++/--), then checks for an assignment operator.
// Assignment deliberately binds at this tightest level, nested inside the
// postfix chain rather than as the loosest binary operator: "a + b = c"
// parses as "a + (b = c)". This is a structural property of the grammar and
// is preserved for parity with existing scripts.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()

	for {
		tok := p.peek()
		switch tok.Type {
		case lexer.LPAREN:
			expr = p.parseCall(expr)
			continue
		case lexer.DOT:
			p.advance()
			field := p.peek()
			if field.Type == lexer.IDENT {
				p.advance()
				expr = &ast.MemberExpr{
					Object: expr,
					Field:  field.Value,
					Rng:    ast.Span(expr.GetRange(), field.Rng),
				}
			} else {
				p.addError(field.Rng, "expected field name after '.'")
				expr = &ast.MemberExpr{
					Object: expr,
					Field:  "<error>",
					Rng:    ast.Span(expr.GetRange(), tok.Rng),
				}
			}
			continue
		case lexer.INC, lexer.DEC:
			p.advance()
			expr = &ast.UnaryExpr{
				Op:      tok.Value,
				Operand: expr,
				Postfix: true,
				Rng:     ast.Span(expr.GetRange(), tok.Rng),
			}
			continue
		}
		break
	}

	if isAssignOp(p.peek().Type) {
		op := p.advance()
		value := p.parseExpression()
		return &ast.AssignExpr{
			Op:     op.Value,
			Target: expr,
			Value:  value,
			Rng:    ast.Span(expr.GetRange(), value.GetRange()),
		}
	}
	return expr
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	p.advance() // consume '('
	var args []ast.Expr

	if !p.check(lexer.RPAREN) {
		args = append(args, p.parseExpression())
		for p.match(lexer.COMMA) {
			args = append(args, p.parseExpression())
		}
	}

	end := p.expect(lexer.RPAREN, "expected ')' after arguments")
	return &ast.CallExpr{
		Callee: callee,
		Args:   args,
		Rng:    ast.Span(callee.GetRange(), end.Rng),
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()

	switch tok.Type {
	case lexer.IDENT:
		p.advance()
		return &ast.IdentExpr{Name: tok.Value, Rng: tok.Rng}

	case lexer.INT:
		p.advance()
		return &ast.LiteralExpr{Kind: ast.IntLit, Raw: tok.Value, Rng: tok.Rng}
	case lexer.HEXINT:
		p.advance()
		return &ast.LiteralExpr{Kind: ast.HexLit, Raw: tok.Value, Rng: tok.Rng}
	case lexer.FLOAT:
		p.advance()
		return &ast.LiteralExpr{Kind: ast.FloatLit, Raw: tok.Value, Rng: tok.Rng}
	case lexer.STRING:
		p.advance()
		return &ast.LiteralExpr{Kind: ast.StringLit, Raw: tok.Value, Rng: tok.Rng}
	case lexer.TRUE, lexer.FALSE:
		p.advance()
		return &ast.LiteralExpr{Kind: ast.BoolLit, Raw: tok.Value, Rng: tok.Rng}
	case lexer.OBJECT_SELF:
		p.advance()
		return &ast.LiteralExpr{Kind: ast.ObjectSelfLit, Raw: tok.Value, Rng: tok.Rng}
	case lexer.OBJECT_INVALID:
		p.advance()
		return &ast.LiteralExpr{Kind: ast.ObjectInvalidLit, Raw: tok.Value, Rng: tok.Rng}

	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpression()
		p.expect(lexer.RPAREN, "expected ')' after expression")
		return expr

	case lexer.LBRACKET:
		return p.parseVectorLiteral()
	}

	// Unexpected token in expression position: record the error, advance to
	// the next recovery point, and substitute a placeholder zero literal so
	// the AST stays well-formed for downstream passes.
	p.addError(tok.Rng, fmt.Sprintf("unexpected token %s %q in expression", tok.Type, tok.Value))
	p.recoverExpression()
	return &ast.LiteralExpr{Kind: ast.IntLit, Raw: "", Rng: tok.Rng}
}

// recoverExpression advances to the next of , ) ; } without consuming it.
func (p *Parser) recoverExpression() {
	for !p.check(lexer.EOF) {
		switch p.peek().Type {
		case lexer.COMMA, lexer.RPAREN, lexer.SEMICOLON, lexer.RBRACE:
			return
		}
		p.advance()
	}
}

// parseVectorLiteral: [x, y, z] with exactly three components.
func (p *Parser) parseVectorLiteral() ast.Expr {
	tok := p.advance() // consume '['

	var elems []ast.Expr
	if !p.check(lexer.RBRACKET) {
		elems = append(elems, p.parseExpression())
		for p.match(lexer.COMMA) {
			elems = append(elems, p.parseExpression())
		}
	}
	end := p.expect(lexer.RBRACKET, "expected ']' after vector literal")

	rng := ast.Span(tok.Rng, end.Rng)
	if len(elems) != 3 {
		p.errors = append(p.errors, SyntaxError{
			Message: fmt.Sprintf("vector literal requires exactly 3 components, got %d", len(elems)),
			Rng:     rng,
			Code:    diag.CodeVectorArity,
		})
	}
	lit := &ast.VectorLitExpr{Rng: rng}
	filler := func(i int) ast.Expr {
		if i < len(elems) {
			return elems[i]
		}
		return &ast.LiteralExpr{Kind: ast.IntLit, Raw: "", Rng: rng}
	}
	lit.X, lit.Y, lit.Z = filler(0), filler(1), filler(2)
	return lit
}
