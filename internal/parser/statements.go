package parser

import (
	"os"
	"path/filepath"

	"github.com/maxc-lang/maxc/internal/ast"
	"github.com/maxc-lang/maxc/internal/lexer"
	"github.com/maxc-lang/maxc/internal/token"
	"github.com/maxc-lang/maxc/internal/typesystem"
	"github.com/maxc-lang/maxc/internal/utils"
)

// parseStatement dispatches on the leading token to one of spec.md §4.1's
// statement forms.
func (p *Parser) parseStatement() *ast.Node {
	switch p.cur().Kind {
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIfStatement()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhile()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		tok := p.advance()
		p.match(token.SEMI)
		return ast.NewBreak(tok)
	case token.LET:
		return p.parseVarDecl(false)
	case token.CONST:
		return p.parseVarDecl(true)
	case token.FN:
		return p.parseFnDef()
	case token.OBJECT:
		return p.parseObjectDecl()
	case token.IMPORT:
		return p.parseImport()
	case token.TYPEDEF:
		// spec.md §4.1: "typedef (reserved, unimplemented)".
		p.advance()
		for !p.check(token.SEMI) && !p.atEOF() {
			p.advance()
		}
		p.match(token.SEMI)
		return nil
	default:
		expr := p.parseExpression()
		p.match(token.SEMI)
		return expr
	}
}

func (p *Parser) parseBlock() *ast.Node {
	tok := p.expect(token.LBRACE, "P010", "expected '{'")
	var stmts []*ast.Node
	for !p.check(token.RBRACE) && !p.atEOF() {
		before := p.pos
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		if p.pos == before {
			p.sync()
		}
	}
	p.expect(token.RBRACE, "P011", "expected '}' to close block")
	return ast.NewBlock(tok, stmts)
}

// parseIfStatement handles both the statement and expression form
// (spec.md §4.1: "if/else (statement or expression form, the expression
// form propagates the else-branch type)"). This function always builds
// the If node with IsExpr false; parsePrimary sets it when the `if`
// appears in expression position, and the analyzer's visitExpr
// (analyzer.go) also marks every If it visits as an expression.
func (p *Parser) parseIfStatement() *ast.Node {
	tok := p.advance() // 'if'
	cond := p.parseExpression()
	then := p.parseBlock()
	var els *ast.Node
	if p.match(token.ELSE) {
		if p.check(token.IF) {
			els = p.parseIfStatement()
		} else {
			els = p.parseBlock()
		}
	}
	return ast.NewIf(tok, cond, then, els, false)
}

func (p *Parser) parseFor() *ast.Node {
	tok := p.advance() // 'for'
	var vars []string
	vars = append(vars, p.expect(token.IDENT, "P020", "expected loop variable name").Lexeme)
	for p.match(token.COMMA) {
		vars = append(vars, p.expect(token.IDENT, "P020", "expected loop variable name").Lexeme)
	}
	p.expect(token.IN, "P021", "expected 'in' in for-loop")
	iter := p.parseExpression()
	body := p.parseStatement()
	return ast.NewFor(tok, vars, iter, body)
}

func (p *Parser) parseWhile() *ast.Node {
	tok := p.advance() // 'while'
	cond := p.parseExpression()
	body := p.parseStatement()
	return ast.NewWhile(tok, cond, body)
}

func (p *Parser) parseReturn() *ast.Node {
	tok := p.advance() // 'return'
	var val *ast.Node
	if !p.check(token.SEMI) && !p.check(token.RBRACE) {
		val = p.parseExpression()
	}
	p.match(token.SEMI)
	return ast.NewReturn(tok, val)
}

// parseVarDecl handles both `let name[:T] = expr;` and
// `const name[:T] = expr;` (spec.md §4.1). const requires an initializer.
func (p *Parser) parseVarDecl(isConst bool) *ast.Node {
	tok := p.advance() // 'let' or 'const'
	name := p.expect(token.IDENT, "P030", "expected variable name").Lexeme

	declared := typesystem.TUninferred
	if p.match(token.COLON) {
		declared = p.parseTypeAnnotation()
	}

	var init *ast.Node
	if p.match(token.ASSIGN) {
		init = p.parseExpression()
	} else if isConst {
		p.errorf("P031", "const declaration requires an initializer")
	}
	p.match(token.SEMI)

	n := ast.NewVarDecl(tok, name, init)
	n.CType = declared
	n.BoolVal = isConst
	return n
}

// parseObjectDecl: `object Name { field: T, ... }` (spec.md §4.1).
func (p *Parser) parseObjectDecl() *ast.Node {
	tok := p.advance() // 'object'
	name := p.expect(token.IDENT, "P040", "expected object type name").Lexeme
	p.expect(token.LBRACE, "P041", "expected '{' after object name")

	var names []string
	var types []*ast.Node
	for !p.check(token.RBRACE) && !p.atEOF() {
		fname := p.expect(token.IDENT, "P042", "expected field name").Lexeme
		p.expect(token.COLON, "P043", "expected ':' after field name")
		ft := p.parseTypeAnnotation()
		ftNode := &ast.Node{Kind: ast.NoneLit, CType: ft}
		names = append(names, fname)
		types = append(types, ftNode)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE, "P044", "expected '}' to close object declaration")

	n := ast.NewStructInit(tok, name, names, types)
	n.Kind = ast.Object
	return n
}

// parseImport: `import name;` — resolve `./lib/<name>.mxc` then
// `./<name>.mxc` relative to the importing file's directory, relex and
// recursively parse it, and splice the resulting statement list in at the
// import site as a non-scope block whose declarations share the
// enclosing scope (spec.md §4.1). A missing file is a fatal parse error.
func (p *Parser) parseImport() *ast.Node {
	tok := p.advance() // 'import'
	name := p.expect(token.IDENT, "P050", "expected module name").Lexeme
	p.match(token.SEMI)

	baseDir := "."
	if p.ctx != nil && p.ctx.FilePath != "" {
		baseDir = filepath.Dir(p.ctx.FilePath)
	}
	path, err := utils.ResolveImport(baseDir, name)
	if err != nil {
		p.errorf("P051", "cannot find module '"+name+"': looked in "+baseDir+"/lib and "+baseDir)
		return ast.NewNonScopeBlock(tok, nil)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		p.errorf("P052", "reading module '"+name+"' at "+path+": "+err.Error())
		return ast.NewNonScopeBlock(tok, nil)
	}

	sub := New(lexer.All(string(source)), p.ctx)
	subProg := sub.ParseProgram()
	return ast.NewNonScopeBlock(tok, subProg.Statements)
}
