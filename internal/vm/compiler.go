package vm

import (
	"github.com/maxc-lang/maxc/internal/ast"
	"github.com/maxc-lang/maxc/internal/pipeline"
	"github.com/maxc-lang/maxc/internal/symbols"
	"github.com/maxc-lang/maxc/internal/typesystem"
)

// Compiler walks the analyzed AST and emits bytecode into a Chunk,
// implementing spec.md §4.4. One Compiler instance emits exactly one
// top-level chunk; nested fn defs each get their own Chunk, interned as a
// *FunctionObj pool constant and loaded at the definition site with
// FUNCTIONSET (spec.md §4.5: "Function(code, nlvars, var_info)").
//
// Grounded on funvibe-funxy/internal/vm's compiler*.go split; maxc uses
// compiler.go (statements, blocks, variables, fn defs),
// compiler_expressions.go and compiler_loops.go (if/while/for).
type Compiler struct {
	chunk      *Chunk
	pool       []interface{}
	loopStack  []*loopCtx
	globalPool map[string]uint32 // interned string pool index cache
}

type loopCtx struct {
	breakJumps []int // positions of JMP operands pending patch to loop end
}

// NewCompiler starts a fresh top-level chunk sharing pool with an
// existing REPL Context.Pool (nil for a first submission).
func NewCompiler(file string, pool []interface{}) *Compiler {
	return &Compiler{chunk: NewChunk(file), pool: pool, globalPool: map[string]uint32{}}
}

// Compile lowers prog into a flat instruction stream and returns it along
// with the (possibly grown) literal pool, for pipeline.Context.Code/Pool.
func (c *Compiler) Compile(prog *ast.Program) ([]byte, []interface{}) {
	for _, stmt := range prog.Statements {
		c.emitStmt(stmt, false)
	}
	c.chunk.WriteOp(END, 0)
	return c.chunk.Code, c.pool
}

// Processor adapts Compiler into a pipeline.Processor, the emitter stage.
type Processor struct{}

func (Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Program == nil || ctx.HasErrors() {
		return ctx
	}
	c := NewCompiler(ctx.FilePath, ctx.Pool)
	code, pool := c.Compile(ctx.Program)
	ctx.Code = code
	ctx.Pool = pool
	return ctx
}

func (c *Compiler) line(n *ast.Node) int { return n.Tok.Span.StartLine }

func (c *Compiler) internString(s string) uint32 {
	if idx, ok := c.globalPool[s]; ok {
		if idx < uint32(len(c.pool)) && c.pool[idx] == s {
			return idx
		}
	}
	idx := c.addConst(s)
	c.globalPool[s] = idx
	return idx
}

// addConst interns a comparable constant (float64, string), or simply
// appends a non-comparable one (e.g. a []string field-name list for
// STRUCTSET) without attempting deduplication.
func (c *Compiler) addConst(v interface{}) uint32 {
	switch v.(type) {
	case float64, string:
		for i, existing := range c.pool {
			if existing == v {
				return uint32(i)
			}
		}
	}
	c.pool = append(c.pool, v)
	return uint32(len(c.pool) - 1)
}

// emitJump writes op followed by a placeholder 4-byte operand and returns
// its byte position, to be back-patched once the destination is known
// (spec.md §4.4's if/while/for jump lowering).
func (c *Compiler) emitJump(op Opcode, line int) int {
	c.chunk.WriteOp(op, line)
	pos := len(c.chunk.Code)
	c.chunk.WriteU32(0, line)
	return pos
}

func (c *Compiler) patchJumpHere(pos int) {
	c.chunk.PatchU32(pos, uint32(len(c.chunk.Code)))
}

func (c *Compiler) emitStmt(n *ast.Node, useRet bool) {
	switch n.Kind {
	case ast.Block, ast.TypedBlock, ast.NonScopeBlock:
		c.emitBlock(n, useRet)
	case ast.If:
		c.emitIf(n, useRet)
	case ast.For:
		c.emitFor(n)
	case ast.While:
		c.emitWhile(n)
	case ast.Return:
		c.emitReturn(n)
	case ast.Break:
		c.emitBreak(n)
	case ast.VarDecl:
		c.emitVarDecl(n)
	case ast.FnDef:
		c.emitFnDef(n)
	case ast.Object:
		// struct declarations carry no runtime representation of their own;
		// instances are built at each `new Name{...}` site (emitStructInit).
	default:
		c.emitExpr(n)
		if !useRet {
			c.chunk.WriteOp(POP, c.line(n))
		}
	}
}

// emitBlock runs every statement but the last with its value discarded;
// the last statement's use_ret follows the block's own (spec.md §4.4:
// "a trailing POP is inserted whenever a statement's value is unused").
func (c *Compiler) emitBlock(n *ast.Node, useRet bool) {
	for i, stmt := range n.List {
		last := i == len(n.List)-1
		if last {
			c.emitStmt(stmt, useRet)
		} else {
			c.emitStmt(stmt, false)
		}
	}
	if len(n.List) == 0 && useRet {
		c.chunk.WriteOp(PUSHNULL, c.line(n))
	}
}

func (c *Compiler) emitReturn(n *ast.Node) {
	if n.A != nil {
		c.emitExpr(n.A)
	} else {
		c.chunk.WriteOp(PUSHNULL, c.line(n))
	}
	c.chunk.WriteOp(RET, c.line(n))
}

func (c *Compiler) emitBreak(n *ast.Node) {
	top := c.loopStack[len(c.loopStack)-1]
	pos := c.emitJump(JMP, c.line(n))
	top.breakJumps = append(top.breakJumps, pos)
}

func (c *Compiler) emitVarDecl(n *ast.Node) {
	if n.B != nil {
		c.emitExpr(n.B)
	} else {
		c.chunk.WriteOp(PUSHNULL, c.line(n))
	}
	c.storeVariable(n.Variable, c.line(n))
}

func (c *Compiler) storeVariable(v *symbols.Variable, line int) {
	if v.IsGlobal {
		c.chunk.WriteOp(STORE_GLOBAL, line)
	} else {
		c.chunk.WriteOp(STORE_LOCAL, line)
	}
	c.chunk.WriteU32(uint32(v.Vid), line)
}

func (c *Compiler) loadVariable(v *symbols.Variable, line int) {
	if v.IsGlobal {
		c.chunk.WriteOp(LOAD_GLOBAL, line)
	} else {
		c.chunk.WriteOp(LOAD_LOCAL, line)
	}
	c.chunk.WriteU32(uint32(v.Vid), line)
}

// emitFnDef compiles the body into its own chunk (sharing this
// Compiler's literal pool) and interns the resulting *FunctionObj,
// loading it into the enclosing variable with FUNCTIONSET.
func (c *Compiler) emitFnDef(n *ast.Node) {
	inner := &Compiler{chunk: NewChunk(c.chunk.File), pool: c.pool, globalPool: c.globalPool}
	inner.emitStmt(n.A, true)
	if inner.lastOpIsNot(RET) {
		inner.chunk.WriteOp(RET, c.line(n))
	}
	c.pool = inner.pool

	varInfo := make([]string, len(n.ForVars))
	copy(varInfo, n.ForVars)
	fn := NewFunction(n.Name, inner.chunk.Code, n.LVars, varInfo)
	idx := c.addConst(fn)

	c.chunk.WriteOp(FUNCTIONSET, c.line(n))
	c.chunk.WriteU32(idx, c.line(n))
	if n.Variable != nil {
		c.storeVariable(n.Variable, c.line(n))
	} else {
		c.chunk.WriteOp(POP, c.line(n))
	}
}

func (c *Compiler) lastOpIsNot(op Opcode) bool {
	if len(c.chunk.Code) == 0 {
		return true
	}
	return Opcode(c.chunk.Code[len(c.chunk.Code)-1]) != op
}

// showOpcodeFor resolves the display-builtin special case:
// println's argument opcodes are chosen at compile time from the static
// argument type, per spec.md §4.4's "println lowering inserts SHOWINT /
// SHOWFLOAT / SHOWBOOL ahead of the builtin call based on the compile-time
// type of each argument".
func showOpcodeFor(t typesystem.Type) (Opcode, bool) {
	switch t.Kind {
	case typesystem.Int, typesystem.UInt:
		return SHOWINT, true
	case typesystem.Float:
		return SHOWFLOAT, true
	case typesystem.Bool:
		return SHOWBOOL, true
	default:
		return 0, false
	}
}
