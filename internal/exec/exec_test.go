package exec

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/instance"
	"github.com/xushengj/bundlekit/internal/program"
	"github.com/xushengj/bundlekit/internal/schema"
	"github.com/xushengj/bundlekit/internal/value"
)

type recordingSink struct {
	values []string
}

func (r *recordingSink) Write(v value.Value) error {
	r.values = append(r.values, v.StringValue())
	return nil
}

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

func helloInstance(t *testing.T, rt *schema.RootType) *instance.RootInstance {
	ri := instance.NewRootInstance(rt)
	ri.AddNode(instance.NewNodeInstance(0, 0, -1, nil, []int{1}))
	ri.AddNode(instance.NewNodeInstance(1, 1, 0, []value.Value{value.FromString("TA"), value.FromString("Hello")}, nil))
	require.True(t, ri.Validate(diag.NewCollectingSink()))
	return ri
}

func TestRun_OutputsNodeTextOnEntry(t *testing.T) {
	rt := helloSchema(t)
	ri := helloInstance(t, rt)
	task := program.NewTask(rt)

	emit := program.NewFunction("emit")
	emit.AddExternVariableRef("text", value.String)
	text := emit.AddExpression(program.NewVariableReadExpr(value.String, "text"))
	emit.AddOutputStatement(program.Output{ExprIndex: text})
	emit.AddReturnStatement()
	task.AddFunction(emit)

	task.AddNewPass()
	speechIdx := rt.NodeTypeIndex("speech")
	task.SetNodeCallback(speechIdx, "emit", program.OnEntry)

	d := diag.NewCollectingSink()
	require.True(t, task.Validate(d))

	out := &recordingSink{}
	ctx := NewContext(task, ri, d, out)
	require.True(t, ctx.Run())
	require.Equal(t, []string{"Hello"}, out.values)
}

func TestAssignment_ByNameAndByPointer(t *testing.T) {
	rt := helloSchema(t)
	ri := helloInstance(t, rt)
	task := program.NewTask(rt)
	task.AddGlobalVariable("counter", value.Int64, nil)

	fn := program.NewFunction("bump")
	fn.AddExternVariableRef("counter", value.Int64)
	lit := fn.AddExpression(program.NewLiteralExpr(value.FromInt64(1)))
	fn.AddAssignmentStatement(program.Assignment{LValueExprIndex: -1, RValueExprIndex: lit, LValueName: "counter"})

	ptrExpr := fn.AddExpression(program.NewVariableAddressExpr("counter"))
	lit2 := fn.AddExpression(program.NewLiteralExpr(value.FromInt64(5)))
	fn.AddAssignmentStatement(program.Assignment{LValueExprIndex: ptrExpr, RValueExprIndex: lit2})
	fn.AddReturnStatement()
	task.AddFunction(fn)

	task.AddNewPass()
	rootIdx := rt.NodeTypeIndex("root")
	task.SetNodeCallback(rootIdx, "bump", program.OnEntry)

	d := diag.NewCollectingSink()
	require.True(t, task.Validate(d))

	ctx := NewContext(task, ri, d, &recordingSink{})
	require.True(t, ctx.Run())
	require.Equal(t, int64(5), ctx.globals[0].Int64Value())
}

// TestCrossFrameWrite_AlwaysFails exercises the Open Question
// resolution: a ValuePtr to a LocalVariable created by a still-live
// caller frame is rejected as dangling by the callee, since the
// original engine's stack walk never credits a non-top frame as live
// for writes even when one is found.
func TestCrossFrameWrite_AlwaysFails(t *testing.T) {
	rt := helloSchema(t)
	ri := helloInstance(t, rt)
	task := program.NewTask(rt)

	inner := program.NewFunction("inner")
	inner.SetParamCount(1)
	inner.SetRequiredParamCount(1)
	inner.AddLocalVariable("p", value.ValuePtr, nil)
	pRead := inner.AddExpression(program.NewVariableReadExpr(value.ValuePtr, "p"))
	lit42 := inner.AddExpression(program.NewLiteralExpr(value.FromInt64(42)))
	inner.AddAssignmentStatement(program.Assignment{LValueExprIndex: pRead, RValueExprIndex: lit42})
	inner.AddReturnStatement()
	task.AddFunction(inner)

	outer := program.NewFunction("outer")
	outer.AddLocalVariable("x", value.Int64, nil)
	xAddr := outer.AddExpression(program.NewVariableAddressExpr("x"))
	outer.AddCallStatement(program.Call{FunctionName: "inner", ArgExprs: []int{xAddr}})
	outer.AddReturnStatement()
	task.AddFunction(outer)

	task.AddNewPass()
	rootIdx := rt.NodeTypeIndex("root")
	task.SetNodeCallback(rootIdx, "outer", program.OnEntry)

	d := diag.NewCollectingSink()
	require.True(t, task.Validate(d))

	ctx := NewContext(task, ri, d, &recordingSink{})
	require.False(t, ctx.Run())
	found := false
	for _, r := range d.Records() {
		if r.Category == diag.Err_Exec_DanglingPointerException_WriteValue {
			found = true
		}
	}
	require.True(t, found)
}

// TestNodeTraversal_ParentAndChildLookup exercises the §4.8 Context API
// (ParentNode, ChildNodeByPrimaryKey, ChildNodeByField) directly, the
// way the original ExecutionContext::getParentNode/getChildNode are
// called by external collaborators rather than by any Expression kind.
func TestNodeTraversal_ParentAndChildLookup(t *testing.T) {
	rt := helloSchema(t)
	ri := helloInstance(t, rt)
	task := program.NewTask(rt)

	noop := program.NewFunction("noop")
	noop.AddReturnStatement()
	task.AddFunction(noop)

	task.AddNewPass()
	rootIdx := rt.NodeTypeIndex("root")
	task.SetNodeCallback(rootIdx, "noop", program.OnEntry)

	d := diag.NewCollectingSink()
	require.True(t, task.Validate(d))

	ctx := NewContext(task, ri, d, &recordingSink{})
	require.True(t, ctx.pushFrame(0, 0, rootIdx, nil))

	root := ctx.rootNodePtr()
	speech := value.NodePtrValue{Head: root.Head, NodeIndex: 1}

	parent, ok := ctx.ParentNode(speech)
	require.True(t, ok)
	require.Equal(t, 0, parent.NodeIndex)

	found, ok := ctx.ChildNodeByPrimaryKey(root, "speech", value.FromString("TA"))
	require.True(t, ok)
	require.Equal(t, 1, found.NodeIndex)

	miss, ok := ctx.ChildNodeByPrimaryKey(root, "speech", value.FromString("nope"))
	require.True(t, ok)
	require.Equal(t, -1, miss.NodeIndex)

	foundByField, ok := ctx.ChildNodeByField(root, "speech", "character", value.FromString("TA"))
	require.True(t, ok)
	require.Equal(t, 1, foundByField.NodeIndex)

	_, ok = ctx.ChildNodeByField(root, "speech", "text", value.FromString("Hello"))
	require.False(t, ok)
	require.Equal(t, diag.Err_Exec_ParameterNotUnique, d.Records()[len(d.Records())-1].Category)

	_, ok = ctx.ParentNode(value.NullNodePtr(root.Head))
	require.False(t, ok)
}
