package program

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/schema"
	"github.com/xushengj/bundlekit/internal/value"
)

func helloSchema(t *testing.T) *schema.RootType {
	rt := schema.NewRootType("Script")
	root := schema.NewNodeType("root")
	root.AddChildType("speech")
	speech := schema.NewNodeType("speech")
	speech.AddParameter("character", value.String, true)
	speech.AddParameter("text", value.String, false)
	speech.SetPrimaryKey("character")
	rt.AddNodeType(root)
	rt.AddNodeType(speech)
	rt.SetRootNodeType("root")
	require.True(t, rt.Validate(diag.NewCollectingSink()))
	return rt
}

func TestFunctionValidate_Success(t *testing.T) {
	f := NewFunction("greet")
	f.SetParamCount(1)
	f.SetRequiredParamCount(1)
	f.AddLocalVariable("name", value.String, nil)
	greeting := value.FromString("Hello, ")
	f.AddLocalVariable("greeting", value.String, &greeting)

	lit := f.AddExpression(NewLiteralExpr(value.FromString("Hello, world")))
	f.AddOutputStatement(Output{ExprIndex: lit})
	f.AddReturnStatement()

	d := diag.NewCollectingSink()
	require.True(t, f.Validate(d, nil))
	require.False(t, d.HasErrors())
}

func TestFunctionValidate_VoidLocal(t *testing.T) {
	f := NewFunction("bad")
	f.AddLocalVariable("v", value.Void, nil)
	d := diag.NewCollectingSink()
	require.False(t, f.Validate(d, nil))
	found := false
	for _, r := range d.Records() {
		if r.Category == diag.Err_Task_VoidKindVariable {
			found = true
		}
	}
	require.True(t, found)
}

func TestFunctionValidate_MissingOptionalInitializer(t *testing.T) {
	f := NewFunction("f")
	f.SetParamCount(1)
	f.SetRequiredParamCount(0)
	f.AddLocalVariable("x", value.Int64, nil)
	d := diag.NewCollectingSink()
	require.False(t, f.Validate(d, nil))
}

func TestFunctionValidate_BranchLabelResolution(t *testing.T) {
	f := NewFunction("loop")
	cond := f.AddExpression(NewLiteralExpr(value.FromInt64(1)))
	f.AddBranchStatement(Branch{
		Cases:         []BranchCase{{ExprIndex: cond, Action: BranchJump, LabelName: "done"}},
		DefaultAction: BranchFallthrough,
	})
	f.AddLabel("done")
	f.AddReturnStatement()

	d := diag.NewCollectingSink()
	require.True(t, f.Validate(d, nil))
	require.Equal(t, 1, f.StatementAt(0).Branch.Cases[0].TargetStmtIndex)
}

func TestFunctionValidate_BadLabelReference(t *testing.T) {
	f := NewFunction("loop")
	cond := f.AddExpression(NewLiteralExpr(value.FromInt64(1)))
	f.AddBranchStatement(Branch{
		Cases:         []BranchCase{{ExprIndex: cond, Action: BranchJump, LabelName: "missing"}},
		DefaultAction: BranchFallthrough,
	})
	d := diag.NewCollectingSink()
	require.False(t, f.Validate(d, nil))
}

func TestFunctionValidate_BadExpressionDependencyOrder(t *testing.T) {
	f := NewFunction("f")
	e := Expression{Kind: ExprLiteral, ResultKind: value.Int64, Deps: []int{5}, DepKinds: []value.Kind{value.Int64}}
	f.AddExpression(e)
	d := diag.NewCollectingSink()
	require.False(t, f.Validate(d, nil))
}

func TestTaskValidate_Success(t *testing.T) {
	rt := helloSchema(t)
	task := NewTask(rt)
	task.AddGlobalVariable("counter", value.Int64, nil)

	emit := NewFunction("emitAll")
	lit := emit.AddExpression(NewLiteralExpr(value.FromString("tick")))
	emit.AddOutputStatement(Output{ExprIndex: lit})
	emit.AddReturnStatement()
	task.AddFunction(emit)

	task.AddNewPass()
	speechIdx := rt.NodeTypeIndex("speech")
	task.SetNodeCallback(speechIdx, "emitAll", OnEntry)

	d := diag.NewCollectingSink()
	require.True(t, task.Validate(d))
	require.False(t, d.HasErrors())
	require.Equal(t, 0, task.NodeCallback(0, speechIdx, OnEntry))
}

func TestTaskValidate_DuplicateFunctionName(t *testing.T) {
	rt := helloSchema(t)
	task := NewTask(rt)
	task.AddFunction(NewFunction("f"))
	task.AddFunction(NewFunction("f"))
	d := diag.NewCollectingSink()
	require.False(t, task.Validate(d))
}

func TestTaskValidate_CallResolution(t *testing.T) {
	rt := helloSchema(t)
	task := NewTask(rt)

	callee := NewFunction("helper")
	callee.SetParamCount(1)
	callee.SetRequiredParamCount(1)
	callee.AddLocalVariable("x", value.Int64, nil)
	callee.AddReturnStatement()
	task.AddFunction(callee)

	caller := NewFunction("main")
	arg := caller.AddExpression(NewLiteralExpr(value.FromInt64(1)))
	caller.AddCallStatement(Call{FunctionName: "helper", ArgExprs: []int{arg}})
	caller.AddReturnStatement()
	task.AddFunction(caller)

	task.AddNewPass()
	rootIdx := rt.NodeTypeIndex("root")
	task.SetNodeCallback(rootIdx, "main", OnEntry)

	d := diag.NewCollectingSink()
	require.True(t, task.Validate(d))
	require.False(t, d.HasErrors())
}

// TestTaskValidate_UnreachableFunctionWarns exercises the reachability
// pass: helper is never called from any callback-reachable function, so
// it should produce a warning without failing validation.
func TestTaskValidate_UnreachableFunctionWarns(t *testing.T) {
	rt := helloSchema(t)
	task := NewTask(rt)

	helper := NewFunction("helper")
	helper.AddReturnStatement()
	task.AddFunction(helper)

	main := NewFunction("main")
	main.AddReturnStatement()
	task.AddFunction(main)

	task.AddNewPass()
	rootIdx := rt.NodeTypeIndex("root")
	task.SetNodeCallback(rootIdx, "main", OnEntry)

	d := diag.NewCollectingSink()
	require.True(t, task.Validate(d))

	found := false
	for _, r := range d.Records() {
		if r.Category == diag.Warn_Task_UnreachableFunction {
			found = true
		}
	}
	require.True(t, found)
}

// TestTaskValidate_NoCallback exercises the spec's requirement that a
// task with no callback attached anywhere fails validation.
func TestTaskValidate_NoCallback(t *testing.T) {
	rt := helloSchema(t)
	task := NewTask(rt)
	task.AddFunction(NewFunction("unused"))

	d := diag.NewCollectingSink()
	require.False(t, task.Validate(d))

	found := false
	for _, r := range d.Records() {
		if r.Category == diag.Err_Task_NoCallback {
			found = true
		}
	}
	require.True(t, found)
}

func TestTaskValidate_CallBadArgCount(t *testing.T) {
	rt := helloSchema(t)
	task := NewTask(rt)

	callee := NewFunction("helper")
	callee.SetParamCount(1)
	callee.SetRequiredParamCount(1)
	callee.AddLocalVariable("x", value.Int64, nil)
	callee.AddReturnStatement()
	task.AddFunction(callee)

	caller := NewFunction("main")
	caller.AddCallStatement(Call{FunctionName: "helper"})
	caller.AddReturnStatement()
	task.AddFunction(caller)

	task.AddNewPass()
	rootIdx := rt.NodeTypeIndex("root")
	task.SetNodeCallback(rootIdx, "main", OnEntry)

	d := diag.NewCollectingSink()
	require.False(t, task.Validate(d))

	found := false
	for _, r := range d.Records() {
		if r.Category == diag.Err_Task_BadCall_ParameterCount {
			found = true
		}
	}
	require.True(t, found)
}

func TestTaskValidate_NodeCallbackAlwaysTargetsLatestPass(t *testing.T) {
	rt := helloSchema(t)
	task := NewTask(rt)
	f1 := NewFunction("a")
	f1.AddReturnStatement()
	f2 := NewFunction("b")
	f2.AddReturnStatement()
	task.AddFunction(f1)
	task.AddFunction(f2)

	rootIdx := rt.NodeTypeIndex("root")
	task.AddNewPass()
	task.SetNodeCallback(rootIdx, "a", OnEntry)
	task.AddNewPass()
	task.SetNodeCallback(rootIdx, "b", OnEntry)

	require.Equal(t, 0, task.NodeCallback(0, rootIdx, OnEntry))
	require.Equal(t, 1, task.NodeCallback(1, rootIdx, OnEntry))
}
