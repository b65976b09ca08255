package vm

import (
	"github.com/maxc-lang/maxc/internal/ast"
	"github.com/maxc-lang/maxc/internal/config"
	"github.com/maxc-lang/maxc/internal/token"
	"github.com/maxc-lang/maxc/internal/typesystem"
)

// emitExpr lowers an expression node, leaving exactly one value on the
// operand stack.
func (c *Compiler) emitExpr(n *ast.Node) {
	line := c.line(n)
	switch n.Kind {
	case ast.Number:
		c.emitNumber(n, line)
	case ast.Bool:
		if n.BoolVal {
			c.chunk.WriteOp(PUSHTRUE, line)
		} else {
			c.chunk.WriteOp(PUSHFALSE, line)
		}
	case ast.Char:
		idx := c.internString(string(n.CharVal))
		c.chunk.WriteOp(STRINGSET, line)
		c.chunk.WriteU32(idx, line)
	case ast.String:
		idx := c.internString(n.StringVal)
		c.chunk.WriteOp(STRINGSET, line)
		c.chunk.WriteU32(idx, line)
	case ast.NoneLit:
		c.chunk.WriteOp(PUSHNULL, line)
	case ast.ListLit:
		for _, e := range n.List {
			c.emitExpr(e)
		}
		c.chunk.WriteOp(LISTSET, line)
		c.chunk.WriteU32(uint32(len(n.List)), line)
	case ast.TupleLit:
		for _, e := range n.List {
			c.emitExpr(e)
		}
		c.chunk.WriteOp(TUPLESET, line)
		c.chunk.WriteU32(uint32(len(n.List)), line)
	case ast.StructInit:
		c.emitStructInit(n, line)
	case ast.Subscript:
		c.emitExpr(n.A)
		c.emitExpr(n.B)
		c.chunk.WriteOp(SUBSCR, line)
	case ast.Member:
		c.emitMember(n, line)
	case ast.Binary:
		c.emitBinary(n, line)
	case ast.Unary:
		c.emitUnary(n, line)
	case ast.Assignment:
		c.emitAssignment(n, line)
	case ast.VariableRef:
		c.loadVariable(n.Variable, line)
	case ast.FnCall:
		c.emitFnCall(n, line)
	case ast.If:
		c.emitIf(n, true)
	case ast.Block, ast.TypedBlock:
		c.emitBlock(n, true)
	default:
		c.chunk.WriteOp(PUSHNULL, line)
	}
}

func (c *Compiler) emitNumber(n *ast.Node, line int) {
	if n.IsFloatLit() {
		idx := c.addConst(n.FloatVal)
		c.chunk.WriteOp(FPUSH, line)
		c.chunk.WriteU32(idx, line)
		return
	}
	if n.IntVal >= 0 && n.IntVal <= 3 {
		c.chunk.WriteOp(Opcode(int(PUSHCONST_0)+int(n.IntVal)), line)
		return
	}
	c.chunk.WriteOp(IPUSH, line)
	c.chunk.WriteU32(uint32(int32(n.IntVal)), line)
}

func (c *Compiler) emitStructInit(n *ast.Node, line int) {
	for _, v := range n.List {
		c.emitExpr(v)
	}
	nameIdx := c.internString(n.Name)
	fieldNames := make([]string, len(n.ForVars))
	copy(fieldNames, n.ForVars)
	fieldsIdx := c.addConst(fieldNames)
	c.chunk.WriteOp(STRUCTSET, line)
	c.chunk.WriteU32(nameIdx, line)
	c.chunk.WriteU32(fieldsIdx, line)
}

func (c *Compiler) emitMember(n *ast.Node, line int) {
	if n.Name == config.ListLenMember {
		c.emitExpr(n.A)
		c.chunk.WriteOp(LISTLENGTH, line)
		return
	}
	c.emitExpr(n.A)
	idx := c.internString(n.Name)
	c.chunk.WriteOp(MEMBER_LOAD, line)
	c.chunk.WriteU32(idx, line)
}

// emitBinary dispatches on the operand's analyzed type for the
// int/float/string opcode family, or to a user operator overload's
// function call when the analyzer rewrote it (n.Impl != nil, spec.md
// §4.2).
func (c *Compiler) emitBinary(n *ast.Node, line int) {
	if n.Impl != nil {
		c.loadVariable(n.Impl.Variable, line)
		c.emitExpr(n.A)
		c.emitExpr(n.B)
		c.chunk.WriteOp(CALL, line)
		c.chunk.WriteU32(2, line)
		return
	}

	c.emitExpr(n.A)
	c.emitExpr(n.B)

	operandKind := n.A.CType.Kind
	switch n.Tok.Kind {
	case token.PLUS:
		switch operandKind {
		case typesystem.Float:
			c.chunk.WriteOp(FADD, line)
		case typesystem.String:
			c.chunk.WriteOp(STRCAT, line)
		default:
			c.chunk.WriteOp(ADD, line)
		}
	case token.MINUS:
		if operandKind == typesystem.Float {
			c.chunk.WriteOp(FSUB, line)
		} else {
			c.chunk.WriteOp(SUB, line)
		}
	case token.STAR:
		if operandKind == typesystem.Float {
			c.chunk.WriteOp(FMUL, line)
		} else {
			c.chunk.WriteOp(MUL, line)
		}
	case token.SLASH:
		if operandKind == typesystem.Float {
			c.chunk.WriteOp(FDIV, line)
		} else {
			c.chunk.WriteOp(DIV, line)
		}
	case token.PERCENT:
		if operandKind == typesystem.Float {
			c.chunk.WriteOp(FMOD, line)
		} else {
			c.chunk.WriteOp(MOD, line)
		}
	case token.EQ:
		if operandKind == typesystem.Float {
			c.chunk.WriteOp(FEQ, line)
		} else {
			c.chunk.WriteOp(OPEQ, line)
		}
	case token.NEQ:
		if operandKind == typesystem.Float {
			c.chunk.WriteOp(FNOTEQ, line)
		} else {
			c.chunk.WriteOp(NOTEQ, line)
		}
	case token.LT:
		if operandKind == typesystem.Float {
			c.chunk.WriteOp(FLT, line)
		} else {
			c.chunk.WriteOp(LT, line)
		}
	case token.LE:
		if operandKind == typesystem.Float {
			c.chunk.WriteOp(FLTE, line)
		} else {
			c.chunk.WriteOp(LTE, line)
		}
	case token.GT:
		if operandKind == typesystem.Float {
			c.chunk.WriteOp(FGT, line)
		} else {
			c.chunk.WriteOp(GT, line)
		}
	case token.GE:
		if operandKind == typesystem.Float {
			c.chunk.WriteOp(FGTE, line)
		} else {
			c.chunk.WriteOp(GTE, line)
		}
	case token.AND:
		c.chunk.WriteOp(LOGAND, line)
	case token.OR:
		c.chunk.WriteOp(LOGOR, line)
	default:
		c.chunk.WriteOp(ADD, line)
	}
}

func (c *Compiler) emitUnary(n *ast.Node, line int) {
	c.emitExpr(n.A)
	switch n.Tok.Kind {
	case token.MINUS:
		if n.A.CType.Kind == typesystem.Float {
			c.chunk.WriteOp(FNEG, line)
		} else {
			c.chunk.WriteOp(INEG, line)
		}
	case token.BANG:
		c.chunk.WriteOp(PUSHTRUE, line)
		c.chunk.WriteOp(NOTEQ, line)
	}
}

func (c *Compiler) emitAssignment(n *ast.Node, line int) {
	switch n.A.Kind {
	case ast.VariableRef:
		c.emitExpr(n.B)
		c.storeVariable(n.A.Variable, line)
		c.loadVariable(n.A.Variable, line) // assignment is itself an expression
	case ast.Subscript:
		c.emitExpr(n.A.A)
		c.emitExpr(n.A.B)
		c.emitExpr(n.B)
		c.chunk.WriteOp(SUBSCR_STORE, line)
		c.emitExpr(n.A.A)
		c.emitExpr(n.A.B)
		c.chunk.WriteOp(SUBSCR, line)
	case ast.Member:
		c.emitExpr(n.A.A)
		idx := c.internString(n.A.Name)
		c.emitExpr(n.B)
		c.chunk.WriteOp(MEMBER_STORE, line)
		c.chunk.WriteU32(idx, line)
		c.emitExpr(n.A.A)
		c.chunk.WriteOp(MEMBER_LOAD, line)
		c.chunk.WriteU32(idx, line)
	}
}

// emitFnCall lowers a call. A builtin callee gets its arguments
// left-to-right followed by a direct CALL_BLTIN; a user function gets its
// callee value pushed first, then the arguments left-to-right, then CALL.
// print/println whose arguments are all Int/Float/Bool are lowered to
// SHOWINT/SHOWFLOAT/SHOWBOOL per argument instead (emitShowCall,
// spec.md §4.4).
func (c *Compiler) emitFnCall(n *ast.Node, line int) {
	info := n.FnInfo
	if info != nil && info.IsBuiltin {
		if (info.BuiltinKind == config.PrintFuncName || info.BuiltinKind == config.PrintlnFuncName) && c.allShowable(n.List) {
			c.emitShowCall(n, line, info.BuiltinKind)
			return
		}
		for _, arg := range n.List {
			c.emitExpr(arg)
		}
		c.chunk.WriteOp(CALL_BLTIN, line)
		c.chunk.WriteU32(uint32(len(n.List)), line)
		c.chunk.WriteU32(c.internString(info.BuiltinKind), line)
		if n.FailureBlock != nil {
			c.emitFailureBlock(n, line)
		}
		return
	}

	if n.A.Kind == ast.VariableRef {
		c.loadVariable(n.A.Variable, line)
	} else {
		c.emitExpr(n.A)
	}
	for _, arg := range n.List {
		c.emitExpr(arg)
	}
	c.chunk.WriteOp(CALL, line)
	c.chunk.WriteU32(uint32(len(n.List)), line)

	if n.FailureBlock != nil {
		c.emitFailureBlock(n, line)
	}
}

func (c *Compiler) allShowable(args []*ast.Node) bool {
	if len(args) == 0 {
		return false
	}
	for _, a := range args {
		if _, ok := showOpcodeFor(a.CType); !ok {
			return false
		}
	}
	return true
}

// emitShowCall lowers print/println with exclusively Int/Float/Bool
// arguments directly to SHOWINT/SHOWFLOAT/SHOWBOOL (spec.md §4.4),
// separated by SHOWSEP between arguments (never trailing, matching
// builtinPrint's own space-only-between discipline), then a trailing
// zero-argument builtin call for println's newline.
func (c *Compiler) emitShowCall(n *ast.Node, line int, kind string) {
	for i, arg := range n.List {
		if i > 0 {
			c.chunk.WriteOp(SHOWSEP, line)
		}
		c.emitExpr(arg)
		op, _ := showOpcodeFor(arg.CType)
		c.chunk.WriteOp(op, line)
	}
	if kind == config.PrintlnFuncName {
		c.chunk.WriteOp(CALL_BLTIN, line)
		c.chunk.WriteU32(0, line)
		c.chunk.WriteU32(c.internString(kind), line)
	} else {
		c.chunk.WriteOp(PUSHNULL, line) // keep the one-value-per-expression stack discipline
	}
}

// emitFailureBlock lowers `call().FAILURE { ... }`: JMP_NERR skips the
// handler when the call's result was not an Error (spec.md §4.4).
func (c *Compiler) emitFailureBlock(n *ast.Node, line int) {
	skip := c.emitJump(JMP_NERR, line)
	c.chunk.WriteOp(POP, line)
	c.emitStmt(n.FailureBlock, true)
	c.patchJumpHere(skip)
}
