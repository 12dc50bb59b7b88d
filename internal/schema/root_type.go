package schema

import (
	"fmt"

	"github.com/xushengj/bundlekit/internal/diag"
)

// RootType is a complete IR schema: an ordered list of NodeTypes plus a
// designated root node type. Build one with NewRootType/AddNodeType,
// then call Validate exactly once per logical change (Validate is
// idempotent and safe to call again).
type RootType struct {
	name              string
	nodeTypes         []*NodeType
	nodeTypeIndex     map[string]int
	rootNodeTypeName  string
	rootNodeTypeIndex int

	validated bool
}

// NewRootType returns an empty RootType builder.
func NewRootType(name string) *RootType {
	return &RootType{name: name, rootNodeTypeIndex: -1}
}

func (rt *RootType) Name() string { return rt.name }

// AddNodeType appends nt to the schema and returns its index.
func (rt *RootType) AddNodeType(nt *NodeType) int {
	rt.validated = false
	rt.nodeTypes = append(rt.nodeTypes, nt)
	return len(rt.nodeTypes) - 1
}

// NodeTypes returns the ordered node type list.
func (rt *RootType) NodeTypes() []*NodeType { return rt.nodeTypes }

// NodeType returns the node type at index i.
func (rt *RootType) NodeType(i int) *NodeType { return rt.nodeTypes[i] }

// NodeTypeCount returns the number of declared node types.
func (rt *RootType) NodeTypeCount() int { return len(rt.nodeTypes) }

// SetRootNodeType declares the name of the node type that instances of
// this schema must be rooted at. Pass "" to leave it unresolved.
func (rt *RootType) SetRootNodeType(name string) {
	rt.validated = false
	rt.rootNodeTypeName = name
}

// RootNodeTypeIndex returns the resolved root node type index, or -1.
// Only meaningful after Validate succeeds.
func (rt *RootType) RootNodeTypeIndex() int { return rt.rootNodeTypeIndex }

func (rt *RootType) nodeTypeIndexByName(name string) (int, bool) {
	if rt.nodeTypeIndex != nil {
		idx, ok := rt.nodeTypeIndex[name]
		return idx, ok
	}
	for i, nt := range rt.nodeTypes {
		if nt.Name() == name {
			return i, true
		}
	}
	return -1, false
}

// NodeTypeIndex resolves a node type name to its index, or -1 if it
// does not exist in the schema.
func (rt *RootType) NodeTypeIndex(name string) int {
	idx, ok := rt.nodeTypeIndexByName(name)
	if !ok {
		return -1
	}
	return idx
}

// Validate resolves and checks this schema: the root name, the
// node-type-name-to-index map (detecting clashes), the root node type
// reference, and every NodeType in turn. It is idempotent — running it
// again on an unchanged RootType rebuilds the same lookup tables and
// emits the same diagnostics. It never short-circuits: every NodeType
// is validated even if an earlier one failed, per spec.md §4.2.
func (rt *RootType) Validate(d diag.Sink) bool {
	ok := true

	pop := d.PushPath(fmt.Sprintf("RootType %q", rt.name))
	defer pop()

	if ValidateName(d, rt.name) {
		d.SetDetailedName(rt.name)
	} else {
		ok = false
	}

	rt.nodeTypeIndex = make(map[string]int, len(rt.nodeTypes))
	for i, nt := range rt.nodeTypes {
		if _, clash := rt.nodeTypeIndex[nt.Name()]; clash {
			d.Diagnostic(diag.Err_Schema_NameClash_NodeType, diag.StringParam(nt.Name()))
			ok = false
			continue
		}
		rt.nodeTypeIndex[nt.Name()] = i
	}

	rt.rootNodeTypeIndex = -1
	if rt.rootNodeTypeName != "" {
		idx, found := rt.nodeTypeIndexByName(rt.rootNodeTypeName)
		if !found {
			d.Diagnostic(diag.Err_Schema_BadRootReference, diag.StringParam(rt.rootNodeTypeName))
			ok = false
		} else {
			rt.rootNodeTypeIndex = idx
		}
	}

	for i, nt := range rt.nodeTypes {
		popNT := d.PushPath(fmt.Sprintf("NodeType %d", i))
		if !nt.Validate(d, rt) {
			ok = false
		}
		popNT()
	}

	rt.validated = ok
	return ok
}

// Validated reports whether this schema's last Validate call succeeded.
func (rt *RootType) Validated() bool { return rt.validated }
