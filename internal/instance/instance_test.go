package instance

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

func TestRootInstanceValidate_Success(t *testing.T) {
	rt := helloSchema(t)
	ri := NewRootInstance(rt)
	ri.AddNode(NewNodeInstance(0, 0, -1, nil, []int{1}))
	ri.AddNode(NewNodeInstance(1, 1, 0, []value.Value{value.FromString("TA"), value.FromString("Hello")}, nil))

	d := diag.NewCollectingSink()
	require.True(t, ri.Validate(d))
	require.False(t, d.HasErrors())

	idx, found := ri.Node(0).LookupChildByParam(1, 0, value.FromString("TA"))
	require.True(t, found)
	require.Equal(t, 1, idx)
}

func TestRootInstanceValidate_EmptyTree(t *testing.T) {
	rt := helloSchema(t)
	ri := NewRootInstance(rt)
	d := diag.NewCollectingSink()
	require.False(t, ri.Validate(d))
	require.Equal(t, diag.Err_Instance_EmptyTree, d.Records()[0].Category)
}

func TestRootInstanceValidate_BadNodeOrder(t *testing.T) {
	rt := helloSchema(t)
	ri := NewRootInstance(rt)
	// node 2 lists node 1 as its child; 1 is not greater than its parent 2
	ri.AddNode(NewNodeInstance(0, 0, -1, nil, []int{2}))
	ri.AddNode(NewNodeInstance(1, 1, 2, []value.Value{value.FromString("TA"), value.FromString("Hi")}, nil))
	ri.AddNode(NewNodeInstance(1, 2, 0, []value.Value{value.FromString("TB"), value.FromString("Yo")}, []int{1}))
	d := diag.NewCollectingSink()
	require.False(t, ri.Validate(d))
	require.Equal(t, diag.Err_Instance_BadNodeOrder, d.Records()[0].Category)
}

func TestRootInstanceValidate_UniqueConstraintViolation(t *testing.T) {
	rt := helloSchema(t)
	ri := NewRootInstance(rt)
	ri.AddNode(NewNodeInstance(0, 0, -1, nil, []int{1, 2}))
	ri.AddNode(NewNodeInstance(1, 1, 0, []value.Value{value.FromString("TA"), value.FromString("Hi")}, nil))
	ri.AddNode(NewNodeInstance(1, 2, 0, []value.Value{value.FromString("TA"), value.FromString("Yo")}, nil))

	d := diag.NewCollectingSink()
	require.False(t, ri.Validate(d))
	found := false
	for _, r := range d.Records() {
		if r.Category == diag.Err_Instance_BrokenConstraint_ParamNotUnique {
			found = true
		}
	}
	require.True(t, found)
}

func TestRootInstanceValidate_UnreachableNode(t *testing.T) {
	rt := helloSchema(t)
	ri := NewRootInstance(rt)
	ri.AddNode(NewNodeInstance(0, 0, -1, nil, nil))
	ri.AddNode(NewNodeInstance(1, 1, 0, []value.Value{value.FromString("TA"), value.FromString("Hi")}, nil))
	d := diag.NewCollectingSink()
	require.False(t, ri.Validate(d))
}

func TestRootInstanceValidate_UnexpectedChild(t *testing.T) {
	rt := schema.NewRootType("Script")
	root := schema.NewNodeType("root")
	// root permits no children
	other := schema.NewNodeType("speech")
	other.AddParameter("character", value.String, false)
	rt.AddNodeType(root)
	rt.AddNodeType(other)
	rt.SetRootNodeType("root")
	require.True(t, rt.Validate(diag.NewCollectingSink()))

	ri := NewRootInstance(rt)
	ri.AddNode(NewNodeInstance(0, 0, -1, nil, []int{1}))
	ri.AddNode(NewNodeInstance(1, 1, 0, []value.Value{value.FromString("x")}, nil))
	d := diag.NewCollectingSink()
	require.False(t, ri.Validate(d))
}
