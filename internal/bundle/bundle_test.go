package bundle

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/instance"
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

func TestXMLRoundTrip(t *testing.T) {
	rt := helloSchema(t)
	ri := instance.NewRootInstance(rt)
	ri.AddNode(instance.NewNodeInstance(0, 0, -1, nil, []int{1}))
	ri.AddNode(instance.NewNodeInstance(1, 1, 0, []value.Value{value.FromString("TA"), value.FromString("Hello")}, nil))
	require.True(t, ri.Validate(diag.NewCollectingSink()))

	var buf bytes.Buffer
	require.NoError(t, SaveInstanceXML(&buf, ri))

	d := diag.NewCollectingSink()
	loaded, ok := LoadInstanceXML(&buf, rt, d)
	require.True(t, ok, d.Records())
	require.Equal(t, 2, loaded.NodeCount())
	require.Equal(t, "TA", loaded.Node(1).Parameter(0).StringValue())
	require.Equal(t, "Hello", loaded.Node(1).Parameter(1).StringValue())
	require.True(t, loaded.Validate(diag.NewCollectingSink()))
}

func TestLoadInstanceXML_UnknownNodeType(t *testing.T) {
	rt := helloSchema(t)
	doc := `<IRInstance TypeName="Script"><Node TypeName="bogus" ID="0"></Node></IRInstance>`

	d := diag.NewCollectingSink()
	_, ok := LoadInstanceXML(bytes.NewBufferString(doc), rt, d)
	require.False(t, ok)
	require.True(t, d.HasErrors())
}

func TestTaskJSONRoundTrip(t *testing.T) {
	rt := helloSchema(t)
	doc := []byte(`{
		"Function": [
			{
				"Name": "emit",
				"LocalVariable": [{"Name": "x", "Type": "Int"}],
				"Statement": [
					{"Type": "Return"}
				]
			}
		]
	}`)

	d := diag.NewCollectingSink()
	task, ok := LoadTaskJSON(doc, rt, d)
	require.True(t, ok, d.Records())
	require.Equal(t, 1, task.FunctionCount())
	fn := task.Function(0)
	require.Equal(t, "emit", fn.Name())
	require.Equal(t, 1, fn.LocalVariableCount())
	require.Equal(t, "x", fn.LocalVariableName(0))

	out, err := SaveTaskJSON(task)
	require.NoError(t, err)
	require.Contains(t, string(out), "emit")
}
