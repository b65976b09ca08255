// Package pipeline threads a Context through the Parse -> Analyze -> Emit
// stages, reifying spec.md §9's "Global compiler state ... reify into a
// CompileContext threaded explicitly through analyzer and emitter" design
// note. Grounded closely on funvibe-funxy/internal/pipeline/pipeline.go.
package pipeline

import (
	"github.com/maxc-lang/maxc/internal/ast"
	"github.com/maxc-lang/maxc/internal/diagnostics"
	"github.com/maxc-lang/maxc/internal/symbols"
	"github.com/maxc-lang/maxc/internal/token"
	"github.com/maxc-lang/maxc/internal/typesystem"
)

// Context carries one compilation unit's state across pipeline stages.
// A REPL reuses one Context across submissions (persistent top scope),
// per spec.md §5.
type Context struct {
	Source   string
	FilePath string

	Tokens  []token.Token
	Program *ast.Program

	// Persistent across REPL submissions.
	Globals   *symbols.Scope
	GlobalEnv *symbols.FuncEnv
	Ops       *typesystem.OperatorRegistry
	NGlobals  int

	// Filled by the emitter.
	Code []byte
	Pool []interface{}

	Errors []*diagnostics.Diagnostic
}

// NewContext creates a Context with a fresh global scope, for a one-shot
// run (file execution or `-c` compile).
func NewContext(source, file string) *Context {
	return &Context{
		Source:    source,
		FilePath:  file,
		Globals:   symbols.NewScope(nil),
		GlobalEnv: symbols.NewFuncEnv(nil),
		Ops:       typesystem.NewOperatorRegistry(),
	}
}

// Reset clears per-submission fields but keeps Globals/GlobalEnv/Ops/NGlobals
// and the literal Pool, for the REPL's persistent-top-frame re-entry
// (spec.md §5). Keeping Pool lets functions compiled on an earlier line
// still find their constants at the same indices.
func (c *Context) Reset(source string) {
	c.Source = source
	c.Tokens = nil
	c.Program = nil
	c.Code = nil
	c.Errors = nil
}

func (c *Context) AddError(d *diagnostics.Diagnostic) {
	c.Errors = append(c.Errors, d)
}

func (c *Context) HasErrors() bool { return len(c.Errors) > 0 }

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs an ordered sequence of Processors and stops before the
// next stage as soon as the Context carries any error.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

func (p *Pipeline) Run(ctx *Context) *Context {
	for _, proc := range p.processors {
		if ctx.HasErrors() {
			break // spec.md §7: "Parse and semantic errors abort compilation"
		}
		ctx = proc.Process(ctx)
	}
	return ctx
}
