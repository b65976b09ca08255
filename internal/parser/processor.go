package parser

import (
	"github.com/maxc-lang/maxc/internal/diagnostics"
	"github.com/maxc-lang/maxc/internal/pipeline"
	"github.com/maxc-lang/maxc/internal/token"
)

// Processor adapts the parser into a pipeline.Processor.
type Processor struct{}

func (Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Tokens == nil {
		ctx.AddError(diagnostics.NewParseError("P000", token.Token{}, "parser: token stream is nil"))
		return ctx
	}
	p := New(ctx.Tokens, ctx)
	ctx.Program = p.ParseProgram()
	if ctx.Program != nil {
		ctx.Program.File = ctx.FilePath
	}
	return ctx
}
