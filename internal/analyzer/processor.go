package analyzer

import "github.com/maxc-lang/maxc/internal/pipeline"

// Processor adapts the Analyzer into a pipeline.Processor.
type Processor struct{}

func (Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Program == nil {
		return ctx
	}
	a := New(ctx)
	ctx.NGlobals = a.Analyze(ctx.Program)
	return ctx
}
