// Package parser implements the recursive-descent parser of spec.md §4.1:
// tokens -> AST, encoding syntactic structure only.
//
// File layout is grounded on funvibe-funxy/internal/parser's split
// (expressions_core.go, expressions_calls.go, statements*.go, processor.go
// as the pipeline.Processor entry point) — contents are maxc's grammar,
// not funxy's.
package parser

import (
	"github.com/maxc-lang/maxc/internal/ast"
	"github.com/maxc-lang/maxc/internal/diagnostics"
	"github.com/maxc-lang/maxc/internal/pipeline"
	"github.com/maxc-lang/maxc/internal/token"
)

// Parser holds a token vector and a position cursor (spec.md §4.1:
// "Consumes a token vector and a position cursor").
type Parser struct {
	toks []token.Token
	pos  int
	ctx  *pipeline.Context
}

func New(toks []token.Token, ctx *pipeline.Context) *Parser {
	return &Parser{toks: toks, ctx: ctx}
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[idx]
}

func (p *Parser) atEOF() bool { return p.cur().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if !p.atEOF() {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// mark/reset implement spec.md §4.1's "save/restore cursor": the parser
// snapshots the cursor before speculative lookahead (e.g. "is this a
// function-definition header?") and restores it on mismatch.
func (p *Parser) mark() int { return p.pos }
func (p *Parser) reset(m int) { p.pos = m }

// expect consumes a token of kind k or emits a parse diagnostic
// (spec.md §7: "Unexpected token or missing terminator emits a diagnostic
// against the last-seen span") and returns the zero Token so callers can
// still build a (partially sentinel) node rather than panicking.
func (p *Parser) expect(k token.Kind, code, msg string) token.Token {
	if p.check(k) {
		return p.advance()
	}
	p.errorf(code, msg)
	return token.Token{Kind: k}
}

func (p *Parser) errorf(code, msg string) {
	p.ctx.AddError(diagnostics.NewParseError(code, p.cur(), msg))
}

// sync advances past the offending token so the parser can continue and
// the analyzer can short-circuit on the resulting nil nodes (spec.md §7).
func (p *Parser) sync() {
	if !p.atEOF() {
		p.advance()
	}
}

// ParseProgram parses the whole token stream into a Program.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.atEOF() {
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if p.pos == before {
			// Defensive: parseStatement must always consume at least one
			// token or emit an error and sync; this guards against an
			// infinite loop if a future grammar addition forgets to.
			p.sync()
		}
	}
	return prog
}
