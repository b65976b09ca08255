package parser

import (
	"strconv"

	"github.com/maxc-lang/maxc/internal/ast"
	"github.com/maxc-lang/maxc/internal/token"
	"github.com/maxc-lang/maxc/internal/typesystem"
)

// parseExpression is the entry point for the precedence-climbing grammar
// of spec.md §4.1 (lowest to highest: assignment, logical-or, logical-and,
// equality, comparison, bitshift, additive, multiplicative, unary-prefix,
// postfix, primary).
func (p *Parser) parseExpression() *ast.Node {
	return p.parseAssignment()
}

// parseAssignment is right-associative (spec.md §4.1).
func (p *Parser) parseAssignment() *ast.Node {
	left := p.parseLogicalOr()
	if p.check(token.ASSIGN) {
		tok := p.advance()
		right := p.parseAssignment()
		return ast.NewAssignment(tok, left, right)
	}
	return left
}

func (p *Parser) parseLogicalOr() *ast.Node {
	left := p.parseLogicalAnd()
	for p.check(token.OR) {
		tok := p.advance()
		right := p.parseLogicalAnd()
		left = ast.NewBinary(tok, token.TokenOpCode(tok.Kind), left, right)
	}
	return left
}

func (p *Parser) parseLogicalAnd() *ast.Node {
	left := p.parseEquality()
	for p.check(token.AND) {
		tok := p.advance()
		right := p.parseEquality()
		left = ast.NewBinary(tok, token.TokenOpCode(tok.Kind), left, right)
	}
	return left
}

func (p *Parser) parseEquality() *ast.Node {
	left := p.parseComparison()
	for p.check(token.EQ) || p.check(token.NEQ) {
		tok := p.advance()
		right := p.parseComparison()
		left = ast.NewBinary(tok, token.TokenOpCode(tok.Kind), left, right)
	}
	return left
}

func (p *Parser) parseComparison() *ast.Node {
	left := p.parseBitshift()
	for p.check(token.LT) || p.check(token.LE) || p.check(token.GT) || p.check(token.GE) {
		tok := p.advance()
		right := p.parseBitshift()
		left = ast.NewBinary(tok, token.TokenOpCode(tok.Kind), left, right)
	}
	return left
}

func (p *Parser) parseBitshift() *ast.Node {
	left := p.parseAdditive()
	for p.check(token.SHL) || p.check(token.SHR) {
		tok := p.advance()
		right := p.parseAdditive()
		left = ast.NewBinary(tok, token.TokenOpCode(tok.Kind), left, right)
	}
	return left
}

func (p *Parser) parseAdditive() *ast.Node {
	left := p.parseMultiplicative()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		tok := p.advance()
		right := p.parseMultiplicative()
		left = ast.NewBinary(tok, token.TokenOpCode(tok.Kind), left, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() *ast.Node {
	left := p.parseUnary()
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		tok := p.advance()
		right := p.parseUnary()
		left = ast.NewBinary(tok, token.TokenOpCode(tok.Kind), left, right)
	}
	return left
}

func (p *Parser) parseUnary() *ast.Node {
	if p.check(token.MINUS) || p.check(token.BANG) {
		tok := p.advance()
		operand := p.parseUnary()
		return ast.NewUnary(tok, token.TokenOpCode(tok.Kind), operand)
	}
	return p.parsePostfix()
}

// parsePostfix implements `.`, `[]`, `()` per spec.md §4.1: a `.` either
// continues as a method call (the left operand is implicitly the first
// argument) when a `(` follows the name, or as a plain field access
// otherwise. A `()` after a call may be followed by a `.FAILURE { ... }`
// typed block.
func (p *Parser) parsePostfix() *ast.Node {
	expr := p.parsePrimary()
	for {
		switch {
		case p.check(token.DOT):
			tok := p.advance()
			if p.check(token.FAILURE) {
				p.advance()
				handler := p.parseBlock()
				if expr.Kind == ast.FnCall {
					expr.FailureBlock = handler
				} else {
					// `.FAILURE` on a non-call is a parse error: the
					// handler block is parsed and discarded, and P060 is
					// reported against the expression.
					p.errorf("P060", "'.FAILURE' must follow a call expression")
				}
				continue
			}
			name := p.expect(token.IDENT, "P061", "expected field or method name after '.'").Lexeme
			if p.check(token.LPAREN) {
				args := p.parseArgList()
				callee := ast.NewVariableRef(tok, name)
				fullArgs := append([]*ast.Node{expr}, args...)
				expr = ast.NewFnCall(tok, callee, fullArgs, nil)
			} else {
				expr = ast.NewMember(tok, expr, name)
			}
		case p.check(token.LBRACKET):
			tok := p.advance()
			idx := p.parseExpression()
			p.expect(token.RBRACKET, "P062", "expected ']' to close subscript")
			expr = ast.NewSubscript(tok, expr, idx)
		case p.check(token.LPAREN):
			tok := p.cur()
			args := p.parseArgList()
			expr = ast.NewFnCall(tok, expr, args, nil)
		default:
			return expr
		}
	}
}

// parseArgList consumes `( expr, ... )`.
func (p *Parser) parseArgList() []*ast.Node {
	p.expect(token.LPAREN, "P063", "expected '('")
	var args []*ast.Node
	for !p.check(token.RPAREN) && !p.atEOF() {
		args = append(args, p.parseExpression())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN, "P064", "expected ')' to close argument list")
	return args
}

func (p *Parser) parsePrimary() *ast.Node {
	tok := p.cur()
	switch tok.Kind {
	case token.INT:
		p.advance()
		v, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return ast.NewNumber(tok, false, v, 0)
	case token.FLOAT:
		p.advance()
		v, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return ast.NewNumber(tok, true, 0, v)
	case token.TRUE:
		p.advance()
		return ast.NewBool(tok, true)
	case token.FALSE:
		p.advance()
		return ast.NewBool(tok, false)
	case token.CHAR:
		p.advance()
		var r rune
		for _, c := range tok.Lexeme {
			r = c
			break
		}
		return ast.NewChar(tok, r)
	case token.STRING:
		p.advance()
		return ast.NewString(tok, tok.Lexeme)
	case token.IDENT:
		p.advance()
		return ast.NewVariableRef(tok, tok.Lexeme)
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.NEW:
		return p.parseNewExpr()
	case token.IF:
		n := p.parseIfStatement()
		n.IsExpr = true
		return n
	case token.LBRACE:
		return p.parseBlock()
	default:
		p.errorf("P070", "unexpected token in expression: "+tok.String())
		p.sync()
		return ast.NewNone(tok)
	}
}

// parseParenOrTuple disambiguates `(expr)` from `(a, b, ...)` by whether a
// comma follows the first element (spec.md's Tuple literal).
func (p *Parser) parseParenOrTuple() *ast.Node {
	tok := p.advance() // '('
	if p.check(token.RPAREN) {
		p.advance()
		return ast.NewTuple(tok, nil)
	}
	first := p.parseExpression()
	if p.check(token.COMMA) {
		elems := []*ast.Node{first}
		for p.match(token.COMMA) {
			if p.check(token.RPAREN) {
				break
			}
			elems = append(elems, p.parseExpression())
		}
		p.expect(token.RPAREN, "P080", "expected ')' to close tuple literal")
		return ast.NewTuple(tok, elems)
	}
	p.expect(token.RPAREN, "P081", "expected ')'")
	return first
}

func (p *Parser) parseListLiteral() *ast.Node {
	tok := p.advance() // '['
	var elems []*ast.Node
	for !p.check(token.RBRACKET) && !p.atEOF() {
		elems = append(elems, p.parseExpression())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACKET, "P082", "expected ']' to close list literal")
	return ast.NewList(tok, elems)
}

// parseNewExpr: `new Name { field: expr, ... }` (spec.md §3's StructInit).
func (p *Parser) parseNewExpr() *ast.Node {
	tok := p.advance() // 'new'
	name := p.expect(token.IDENT, "P090", "expected struct type name after 'new'").Lexeme
	p.expect(token.LBRACE, "P091", "expected '{' after struct type name")

	var names []string
	var values []*ast.Node
	for !p.check(token.RBRACE) && !p.atEOF() {
		fname := p.expect(token.IDENT, "P092", "expected field name").Lexeme
		p.expect(token.COLON, "P093", "expected ':' after field name")
		val := p.parseExpression()
		names = append(names, fname)
		values = append(values, val)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE, "P094", "expected '}' to close struct literal")
	return ast.NewStructInit(tok, name, names, values)
}

// parseFnDef: `fn [<typevars>] name(params) [: T] ( block | = expr ; )`
// (spec.md §4.1), plus the back-quoted operator-overload form
// `` fn `+`(a: T, b: U): V { ... } ``.
func (p *Parser) parseFnDef() *ast.Node {
	tok := p.advance() // 'fn'

	var typeVars []string
	if p.match(token.LT) {
		typeVars = append(typeVars, p.expect(token.IDENT, "P100", "expected type variable").Lexeme)
		for p.match(token.COMMA) {
			typeVars = append(typeVars, p.expect(token.IDENT, "P100", "expected type variable").Lexeme)
		}
		p.expect(token.GT, "P101", "expected '>' to close type variable list")
	}

	name := ""
	op := token.OpNone
	if p.match(token.BACKTICK) {
		opTok := p.advance()
		op = token.TokenOpCode(opTok.Kind)
		name = opTok.Lexeme
		p.expect(token.BACKTICK, "P102", "expected closing '`' after operator symbol")
	} else {
		name = p.expect(token.IDENT, "P103", "expected function name").Lexeme
	}

	paramNames, paramTypes := p.parseParamList()

	retType := typesystem.TUninferred
	if p.match(token.COLON) {
		retType = p.parseTypeAnnotation()
	}

	var body *ast.Node
	if p.match(token.ASSIGN) {
		expr := p.parseExpression()
		p.match(token.SEMI)
		body = ast.NewBlock(tok, []*ast.Node{ast.NewReturn(tok, expr)})
	} else {
		body = p.parseBlock()
	}

	n := ast.NewFnDef(tok, name, typeVars, op, body)
	n.ForVars = paramNames
	n.List = paramTypes
	n.CType = retType
	return n
}

// parseParamList parses `(a, b: int, c: string)`, handling spec.md §4.1's
// name-grouping sugar (`a, b: int` assigns `int` to both). Returns parallel
// name/type-node slices; the analyzer reads n.ForVars/n.List off the FnDef
// node built by the caller.
func (p *Parser) parseParamList() ([]string, []*ast.Node) {
	p.expect(token.LPAREN, "P110", "expected '(' to start parameter list")
	var names []string
	var types []*ast.Node

	for !p.check(token.RPAREN) && !p.atEOF() {
		group := []string{p.expect(token.IDENT, "P111", "expected parameter name").Lexeme}
		for p.check(token.COMMA) && p.peek(1).Kind == token.IDENT {
			// Only treat the comma as a name-group separator when it is
			// eventually followed by a ':'; otherwise it separates params.
			m := p.mark()
			p.advance() // ','
			nextName := p.advance().Lexeme
			if p.check(token.COLON) || p.check(token.COMMA) {
				group = append(group, nextName)
				continue
			}
			p.reset(m)
			break
		}
		var pt *ast.Node
		if p.match(token.COLON) {
			t := p.parseTypeAnnotation()
			pt = &ast.Node{Kind: ast.NoneLit, CType: t}
		} else {
			pt = &ast.Node{Kind: ast.NoneLit, CType: typesystem.TUninferred}
		}
		for _, nm := range group {
			names = append(names, nm)
			types = append(types, pt)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN, "P112", "expected ')' to close parameter list")
	return names, types
}

// builtinTypeNames maps the lexical type-annotation keywords to their Type
// constructor (spec.md §4.2's constructor list, restricted to the scalar
// ones parseable as a bare identifier).
var builtinTypeNames = map[string]typesystem.Type{
	"int":    typesystem.TInt,
	"uint":   typesystem.TUInt,
	"float":  typesystem.TFloat,
	"bool":   typesystem.TBool,
	"char":   typesystem.TChar,
	"string": typesystem.TString,
	"none":   typesystem.TNone,
	"any":    typesystem.TAny,
}

// parseTypeAnnotation parses a type per spec.md §3's constructor set:
// scalar keywords, `[T]` (List), `(T, ...)` (Tuple), `fn(T,...): T`
// (Function), a trailing `?` for Optional, `any...` for AnyVararg, and any
// other identifier as `Undefined(name)` (a not-yet-resolved struct name).
func (p *Parser) parseTypeAnnotation() typesystem.Type {
	t := p.parseTypeAtom()
	for p.check(token.QUESTION) {
		p.advance()
		t = typesystem.TOptional(t)
	}
	return t
}

func (p *Parser) parseTypeAtom() typesystem.Type {
	switch {
	case p.check(token.LBRACKET):
		p.advance()
		elem := p.parseTypeAnnotation()
		p.expect(token.RBRACKET, "P120", "expected ']' to close list type")
		return typesystem.TList(elem)

	case p.check(token.LPAREN):
		p.advance()
		var elems []typesystem.Type
		for !p.check(token.RPAREN) && !p.atEOF() {
			elems = append(elems, p.parseTypeAnnotation())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN, "P121", "expected ')' to close tuple type")
		return typesystem.TTuple(elems)

	case p.check(token.FN):
		p.advance()
		p.expect(token.LPAREN, "P122", "expected '(' in function type")
		var args []typesystem.Type
		for !p.check(token.RPAREN) && !p.atEOF() {
			args = append(args, p.parseTypeAnnotation())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN, "P123", "expected ')' to close function type")
		ret := typesystem.TNone
		if p.match(token.COLON) {
			ret = p.parseTypeAnnotation()
		}
		return typesystem.TFunction(args, ret)

	case p.check(token.IDENT):
		name := p.advance().Lexeme
		if name == "any" && p.check(token.DOT) && p.peek(1).Kind == token.DOT && p.peek(2).Kind == token.DOT {
			p.advance()
			p.advance()
			p.advance()
			return typesystem.TAnyVararg
		}
		if builtin, ok := builtinTypeNames[name]; ok {
			return builtin
		}
		return typesystem.TUndefined(name)

	default:
		p.errorf("P124", "expected a type")
		return typesystem.TUninferred
	}
}
