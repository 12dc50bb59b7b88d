package bundle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/instance"
	"github.com/xushengj/bundlekit/internal/program"
	"github.com/xushengj/bundlekit/internal/schema"
	"github.com/xushengj/bundlekit/internal/sink"
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
	return rt
}

func TestBundle_ValidateRunRoundTrip(t *testing.T) {
	b := New()
	schemaIdx := b.AddSchema(helloSchema(t))

	task := program.NewTask(b.Schema(schemaIdx))
	emit := program.NewFunction("emit")
	emit.AddExternVariableRef("text", value.String)
	text := emit.AddExpression(program.NewVariableReadExpr(value.String, "text"))
	emit.AddOutputStatement(program.Output{ExprIndex: text})
	emit.AddReturnStatement()
	task.AddFunction(emit)
	task.AddNewPass()
	task.SetNodeCallback(b.Schema(schemaIdx).NodeTypeIndex("speech"), "emit", program.OnEntry)
	taskIdx := b.AddTask(task, schemaIdx, NoOutput)

	d := diag.NewCollectingSink()
	require.True(t, b.Validate(d), d.Records())

	ri := instance.NewRootInstance(b.Schema(schemaIdx))
	ri.AddNode(instance.NewNodeInstance(0, 0, -1, nil, []int{1}))
	ri.AddNode(instance.NewNodeInstance(1, 1, 0, []value.Value{value.FromString("TA"), value.FromString("Hi")}, nil))
	require.True(t, ri.Validate(d))

	out := sink.NewTextSink(sink.UTF8)
	require.True(t, b.Run(taskIdx, ri, d, out))
	require.Equal(t, "Hi", string(out.Result()))
}
