package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/value"
)

func helloWorldSchema() *RootType {
	rt := NewRootType("Script")
	root := NewNodeType("root")
	root.AddChildType("speech")
	speech := NewNodeType("speech")
	speech.AddParameter("character", value.String, false)
	speech.AddParameter("text", value.String, false)
	rt.AddNodeType(root)
	rt.AddNodeType(speech)
	rt.SetRootNodeType("root")
	return rt
}

func TestRootTypeValidate_Success(t *testing.T) {
	rt := helloWorldSchema()
	d := diag.NewCollectingSink()
	require.True(t, rt.Validate(d))
	require.False(t, d.HasErrors())
	require.Equal(t, 0, rt.RootNodeTypeIndex())
	require.Equal(t, 1, rt.NodeTypeIndex("speech"))
}

func TestRootTypeValidate_IsIdempotent(t *testing.T) {
	rt := helloWorldSchema()
	d1 := diag.NewCollectingSink()
	ok1 := rt.Validate(d1)
	d2 := diag.NewCollectingSink()
	ok2 := rt.Validate(d2)
	require.Equal(t, ok1, ok2)
	require.Equal(t, len(d1.Records()), len(d2.Records()))
}

func TestRootTypeValidate_NameClash(t *testing.T) {
	rt := NewRootType("Script")
	rt.AddNodeType(NewNodeType("dup"))
	rt.AddNodeType(NewNodeType("dup"))
	rt.SetRootNodeType("dup")
	d := diag.NewCollectingSink()
	require.False(t, rt.Validate(d))
	found := false
	for _, r := range d.Records() {
		if r.Category == diag.Err_Schema_NameClash_NodeType {
			found = true
		}
	}
	require.True(t, found)
}

func TestNodeTypeValidate_BadParameterKind(t *testing.T) {
	rt := NewRootType("Script")
	nt := NewNodeType("n")
	nt.AddParameter("p", value.NodePtr, false)
	rt.AddNodeType(nt)
	rt.SetRootNodeType("n")
	d := diag.NewCollectingSink()
	require.False(t, rt.Validate(d))
}

func TestNodeTypeValidate_PrimaryKey(t *testing.T) {
	rt := NewRootType("Script")
	nt := NewNodeType("speech")
	nt.AddParameter("character", value.String, true)
	nt.SetPrimaryKey("character")
	rt.AddNodeType(nt)
	rt.SetRootNodeType("speech")
	d := diag.NewCollectingSink()
	require.True(t, rt.Validate(d))
	require.Equal(t, 0, nt.PrimaryKeyIndex())
}

func TestNodeTypeValidate_PrimaryKeyNotUnique(t *testing.T) {
	rt := NewRootType("Script")
	nt := NewNodeType("speech")
	nt.AddParameter("character", value.String, false)
	nt.SetPrimaryKey("character")
	rt.AddNodeType(nt)
	rt.SetRootNodeType("speech")
	d := diag.NewCollectingSink()
	require.False(t, rt.Validate(d))
}

func TestValidateName_PureNumber(t *testing.T) {
	d := diag.NewCollectingSink()
	require.False(t, ValidateName(d, "0"))
	require.Len(t, d.Records(), 1)
	require.Equal(t, diag.Err_Schema_BadName_PureNumber, d.Records()[0].Category)
}

func TestValidateName_IllegalChar(t *testing.T) {
	d := diag.NewCollectingSink()
	require.False(t, ValidateName(d, "a\tb"))
	require.Equal(t, diag.Err_Schema_BadName_IllegalChar, d.Records()[0].Category)
}

func TestNodeTypeValidate_ChildReference(t *testing.T) {
	rt := NewRootType("Script")
	root := NewNodeType("root")
	root.AddChildType("missing")
	rt.AddNodeType(root)
	rt.SetRootNodeType("root")
	d := diag.NewCollectingSink()
	require.False(t, rt.Validate(d))
}

func TestNodeTypeValidate_DuplicateChildReference(t *testing.T) {
	rt := NewRootType("Script")
	root := NewNodeType("root")
	root.AddChildType("speech")
	root.AddChildType("speech")
	rt.AddNodeType(root)
	rt.AddNodeType(NewNodeType("speech"))
	rt.SetRootNodeType("root")
	d := diag.NewCollectingSink()
	require.False(t, rt.Validate(d))
}
