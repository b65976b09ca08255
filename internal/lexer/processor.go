package lexer

import "github.com/maxc-lang/maxc/internal/pipeline"

// Processor adapts the lexer into a pipeline.Processor.
type Processor struct{}

func (Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	ctx.Tokens = All(ctx.Source)
	return ctx
}
