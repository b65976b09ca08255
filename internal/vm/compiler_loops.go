package vm

import "github.com/maxc-lang/maxc/internal/ast"

// emitIf lowers both statement and expression forms (spec.md §4.1's
// IsExpr flag): JMP_NOTEQ skips the then-branch when the condition is
// false; a final JMP skips the else-branch once then has run.
func (c *Compiler) emitIf(n *ast.Node, useRet bool) {
	line := c.line(n)
	c.emitExpr(n.A)
	elseJump := c.emitJump(JMP_NOTEQ, line)
	c.emitStmt(n.B, useRet)

	if n.C != nil {
		endJump := c.emitJump(JMP, line)
		c.patchJumpHere(elseJump)
		c.emitStmt(n.C, useRet)
		c.patchJumpHere(endJump)
	} else {
		c.patchJumpHere(elseJump)
		if useRet {
			c.chunk.WriteOp(PUSHNULL, line)
		}
	}
}

// emitWhile lowers `while cond stmt` with a back-edge JMP to the
// condition test (spec.md §4.1).
func (c *Compiler) emitWhile(n *ast.Node) {
	line := c.line(n)
	c.loopStack = append(c.loopStack, &loopCtx{})

	condPos := len(c.chunk.Code)
	c.emitExpr(n.A)
	exitJump := c.emitJump(JMP_NOTEQ, line)

	c.emitStmt(n.B, false)
	c.chunk.WriteOp(JMP, line)
	c.chunk.WriteU32(uint32(condPos), line)

	c.patchJumpHere(exitJump)
	c.patchBreaks()
}

// emitFor lowers `for vars in iter stmt` over a List/Tuple source by
// building an Iterator heap object and driving it with ITER_NEXT, whose
// pushed bool result gates the loop exit (spec.md §4.1, and the iterator
// restriction to List/Tuple values, literal or not, decided in DESIGN.md's
// Open Question resolution).
func (c *Compiler) emitFor(n *ast.Node) {
	line := c.line(n)
	c.loopStack = append(c.loopStack, &loopCtx{})

	c.emitExpr(n.A)
	c.chunk.WriteOp(MAKEITER, line)

	condPos := len(c.chunk.Code)
	c.chunk.WriteOp(ITER_NEXT, line)
	exitJump := c.emitJump(JMP_NOTEQ, line)

	c.emitForVarBind(n, line)

	c.emitStmt(n.B, false)
	c.chunk.WriteOp(JMP, line)
	c.chunk.WriteU32(uint32(condPos), line)

	c.patchJumpHere(exitJump)
	c.chunk.WriteOp(POP, line) // drop the exhausted iterator
	c.patchBreaks()
}

// emitForVarBind stores the just-iterated element into the loop's
// variable(s): a single var takes the element directly; multiple vars
// require the element to be a Tuple, destructured by index.
func (c *Compiler) emitForVarBind(n *ast.Node, line int) {
	if len(n.ForVarDecls) <= 1 {
		if len(n.ForVarDecls) == 1 {
			c.storeVariable(n.ForVarDecls[0], line)
		} else {
			c.chunk.WriteOp(POP, line)
		}
		return
	}
	// top of stack: tuple element. DUP it for every variable but the last,
	// then SUBSCR out each index in turn.
	last := len(n.ForVarDecls) - 1
	for i, v := range n.ForVarDecls {
		if i < last {
			c.chunk.WriteOp(DUP, line)
		}
		c.chunk.WriteOp(IPUSH, line)
		c.chunk.WriteU32(uint32(i), line)
		c.chunk.WriteOp(SUBSCR, line)
		c.storeVariable(v, line)
	}
}

func (c *Compiler) patchBreaks() {
	top := c.loopStack[len(c.loopStack)-1]
	for _, pos := range top.breakJumps {
		c.patchJumpHere(pos)
	}
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}
