package exec

import (
	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/program"
	"github.com/xushengj/bundlekit/internal/value"
)

// evaluate computes the value of the expression at exprIndex in the
// current frame's function. Sub-expression dependencies, when an
// expression declares any, are evaluated first and a failure aborts;
// their results are not passed on, since none of the four built-in
// kinds use them (see program.Expression).
func (ctx *Context) evaluate(exprIndex int) (value.Value, bool) {
	f := ctx.top()
	e := f.fn.ExpressionAt(exprIndex)

	for _, depIdx := range e.Deps {
		if _, ok := ctx.evaluate(depIdx); !ok {
			return value.Uninitialized(), false
		}
	}

	switch e.Kind {
	case program.ExprLiteral:
		return e.Literal, true
	case program.ExprVariableRead:
		v, ok := ctx.readByName(e.Name)
		if ok && v.Kind() != e.ResultKind {
			ctx.diag.Diagnostic(diag.Err_Exec_TypeMismatch_ReadByName, diag.StringParam(e.Name), diag.KindParam(e.ResultKind), diag.KindParam(v.Kind()))
			return value.Uninitialized(), false
		}
		return v, ok
	case program.ExprVariableAddress:
		ptr, ok := ctx.takeAddress(e.Name)
		return value.FromValuePtr(ptr), ok
	case program.ExprNodePtrCurrent:
		return value.FromNodePtr(ctx.currentNodePtr()), true
	case program.ExprNodePtrRoot:
		return value.FromNodePtr(ctx.rootNodePtr()), true
	}
	return value.Uninitialized(), false
}

// functionMainLoop runs statements from the top frame's current
// position until it returns (explicitly or implicitly) and is popped,
// driving nested Call statements by recursing into this same loop.
// Returning false means a runtime error aborted the current pass; the
// diagnostic describing why has already been emitted.
func (ctx *Context) functionMainLoop() bool {
	for len(ctx.stack) > 0 {
		f := ctx.top()
		if f.stmtIndex >= f.fn.StatementCount() {
			ctx.popFrame()
			continue
		}

		stmtIndex := f.stmtIndex
		stmt := f.fn.StatementAt(stmtIndex)
		f.stmtIndex++

		switch stmt.Kind {
		case program.StmtUnreachable:
			ctx.diag.Diagnostic(diag.Err_Exec_Unreachable)
			return false
		case program.StmtReturn:
			ctx.popFrame()
		case program.StmtAssignment:
			if !ctx.execAssignment(stmt.Assignment) {
				return false
			}
		case program.StmtOutput:
			if !ctx.execOutput(stmt.Output) {
				return false
			}
		case program.StmtCall:
			if !ctx.execCall(stmt.Call) {
				return false
			}
		case program.StmtBranch:
			if !ctx.execBranch(stmt.Branch) {
				return false
			}
		}
	}
	return true
}

func (ctx *Context) execAssignment(a program.Assignment) bool {
	rhs, ok := ctx.evaluate(a.RValueExprIndex)
	if !ok {
		return false
	}
	if a.LValueExprIndex == -1 {
		return ctx.writeByName(a.LValueName, rhs)
	}
	lhs, ok := ctx.evaluate(a.LValueExprIndex)
	if !ok {
		return false
	}
	if lhs.Kind() != value.ValuePtr {
		ctx.diag.Diagnostic(diag.Err_Exec_Assign_InvalidLHSType, diag.KindParam(lhs.Kind()))
		return false
	}
	return ctx.writePointer(lhs.ValuePtrValue(), rhs)
}

func (ctx *Context) execOutput(o program.Output) bool {
	v, ok := ctx.evaluate(o.ExprIndex)
	if !ok {
		return false
	}
	if v.Kind() != value.String {
		ctx.diag.Diagnostic(diag.Err_Exec_Output_UnknownKind, diag.KindParam(v.Kind()))
		return false
	}
	if err := ctx.out.Write(v); err != nil {
		ctx.diag.Diagnostic(diag.Err_Exec_Output_Failed, diag.StringParam(err.Error()))
		return false
	}
	return true
}

func (ctx *Context) execCall(c program.Call) bool {
	calleeIdx := ctx.task.FunctionIndex(c.FunctionName)
	if calleeIdx < 0 {
		ctx.diag.Diagnostic(diag.Err_Exec_Call_BadReference, diag.StringParam(c.FunctionName))
		return false
	}
	callee := ctx.task.Function(calleeIdx)
	if len(c.ArgExprs) < callee.RequiredParamCount() || len(c.ArgExprs) > callee.ParamCount() {
		ctx.diag.Diagnostic(diag.Err_Exec_Call_BadArgumentList_Count, diag.StringParam(c.FunctionName), diag.IntParam(int64(len(c.ArgExprs))))
		return false
	}

	args := make([]value.Value, len(c.ArgExprs))
	for i, exprIdx := range c.ArgExprs {
		v, ok := ctx.evaluate(exprIdx)
		if !ok {
			return false
		}
		if v.Kind() != callee.LocalVariableKind(i) {
			ctx.diag.Diagnostic(diag.Err_Exec_Call_BadArgumentList_Type, diag.StringParam(c.FunctionName), diag.IntParam(int64(i)), diag.KindParam(callee.LocalVariableKind(i)))
			return false
		}
		args[i] = v
	}

	caller := ctx.top()
	return ctx.pushFrame(calleeIdx, caller.nodeIndex, caller.nodeTypeIndex, args)
}

func (ctx *Context) execBranch(b program.Branch) bool {
	f := ctx.top()
	action := b.DefaultAction
	target := b.DefaultTargetIndex

	for _, c := range b.Cases {
		v, ok := ctx.evaluate(c.ExprIndex)
		if !ok {
			return false
		}
		if v.Kind() != value.Int64 && v.Kind() != value.ValuePtr {
			ctx.diag.Diagnostic(diag.Err_Exec_Branch_InvalidConditionType, diag.KindParam(v.Kind()))
			return false
		}
		if v.Truthy() {
			action = c.Action
			target = c.TargetStmtIndex
			break
		}
	}

	switch action {
	case program.BranchUnreachable:
		ctx.diag.Diagnostic(diag.Err_Exec_Branch_Unreachable)
		return false
	case program.BranchFallthrough:
		// statement index already advanced past the branch statement
	case program.BranchJump:
		f.stmtIndex = target
	}
	return true
}
