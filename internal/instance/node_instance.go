// Package instance implements the IR instance: a concrete tree
// conforming to a schema.RootType, with a validator that enforces
// well-formedness, uniqueness, and parent/child consistency, and that
// builds the lookup indexes the execution context's node-pointer
// traversal relies on. See spec.md §3/§4.3.
package instance

import (
	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/schema"
	"github.com/xushengj/bundlekit/internal/value"
)

// ChildTypeRecord groups one node's children of a single local child
// type: the ordered list of child node indices, plus a hash from each
// unique parameter's value to the child node index holding it,
// populated only once every child in the bucket has validated clean.
type ChildTypeRecord struct {
	NodeList     []int
	PerParamHash []map[value.Value]int // indexed by parameter index; nil entries for non-unique parameters
}

// NodeInstance is one node of a RootInstance tree.
type NodeInstance struct {
	typeIndex    int
	nodeIndex    int
	parentIndex  int
	parameters   []value.Value
	children     []int

	childTypeLocalIndex []int // indexed by global node-type index -> local index into childTypeRecords, or -1
	childTypeRecords    []ChildTypeRecord
}

// NewNodeInstance constructs a node of the given type at position
// nodeIndex with the given parent. parameters and children are stored
// as given; Validate checks them against the schema.
func NewNodeInstance(typeIndex, nodeIndex, parentIndex int, parameters []value.Value, children []int) *NodeInstance {
	return &NodeInstance{
		typeIndex:   typeIndex,
		nodeIndex:   nodeIndex,
		parentIndex: parentIndex,
		parameters:  parameters,
		children:    children,
	}
}

func (n *NodeInstance) TypeIndex() int       { return n.typeIndex }
func (n *NodeInstance) NodeIndex() int       { return n.nodeIndex }
func (n *NodeInstance) ParentIndex() int     { return n.parentIndex }
func (n *NodeInstance) Children() []int      { return n.children }
func (n *NodeInstance) Parameter(i int) value.Value { return n.parameters[i] }
func (n *NodeInstance) Parameters() []value.Value   { return n.parameters }

// LookupChildByParam resolves a child of globalTypeIndex whose
// parameter at paramIndex equals key, using the precomputed
// per-parameter hash built during RootInstance.Validate. A miss
// (unknown bucket, non-unique parameter, or no matching value) returns
// (-1, false) — this is not itself an error, per spec.md §4.8.
func (n *NodeInstance) LookupChildByParam(globalTypeIndex, paramIndex int, key value.Value) (int, bool) {
	rec := n.ChildTypeRecordFor(globalTypeIndex)
	if rec == nil || paramIndex < 0 || paramIndex >= len(rec.PerParamHash) {
		return -1, false
	}
	hash := rec.PerParamHash[paramIndex]
	if hash == nil {
		return -1, false
	}
	idx, ok := hash[key]
	if !ok {
		return -1, false
	}
	return idx, true
}

// ChildTypeRecordFor returns the bucket of this node's children
// belonging to the schema node type at globalTypeIndex, or nil if that
// type is not a permitted child type of this node (or instance
// validation failed before buckets were built).
func (n *NodeInstance) ChildTypeRecordFor(globalTypeIndex int) *ChildTypeRecord {
	if globalTypeIndex < 0 || globalTypeIndex >= len(n.childTypeLocalIndex) {
		return nil
	}
	local := n.childTypeLocalIndex[globalTypeIndex]
	if local < 0 {
		return nil
	}
	return &n.childTypeRecords[local]
}

// validateParameters checks the parameter count and per-parameter kind
// against nt, accumulating (not short-circuiting) errors.
func (n *NodeInstance) validateParameters(d diag.Sink, nt *schema.NodeType) bool {
	ok := true
	params := nt.Parameters()
	if len(n.parameters) != len(params) {
		d.Diagnostic(diag.Err_Instance_BadParameterList_Count, diag.IntParam(int64(len(params))), diag.IntParam(int64(len(n.parameters))))
		ok = false
	}
	limit := len(params)
	if len(n.parameters) < limit {
		limit = len(n.parameters)
	}
	for i := 0; i < limit; i++ {
		if !n.parameters[i].IsInitialized() || n.parameters[i].Kind() != params[i].Kind {
			d.Diagnostic(diag.Err_Instance_BadParameterList_Type, diag.IntParam(int64(i)), diag.KindParam(params[i].Kind))
			ok = false
		}
	}
	return ok
}
