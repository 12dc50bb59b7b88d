package instance

import (
	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/schema"
	"github.com/xushengj/bundlekit/internal/value"
)

// RootInstance is a concrete tree conforming to a RootType schema. Node
// 0 is always the root. Children of any node have node indices strictly
// greater than their parent (pre-order numbering), per spec.md §3.
type RootInstance struct {
	schema *schema.RootType
	nodes  []*NodeInstance

	validated bool
}

// NewRootInstance returns an empty instance builder bound to sch.
func NewRootInstance(sch *schema.RootType) *RootInstance {
	return &RootInstance{schema: sch}
}

// AddNode appends n to the instance and returns its node index. Callers
// are responsible for constructing n with that same index.
func (ri *RootInstance) AddNode(n *NodeInstance) int {
	ri.nodes = append(ri.nodes, n)
	return len(ri.nodes) - 1
}

func (ri *RootInstance) Node(i int) *NodeInstance    { return ri.nodes[i] }
func (ri *RootInstance) NodeCount() int              { return len(ri.nodes) }
func (ri *RootInstance) Schema() *schema.RootType     { return ri.schema }
func (ri *RootInstance) Validated() bool             { return ri.validated }

type bfsItem struct {
	index, parent int
}

// Validate runs the two-phase check described in spec.md §4.3: a
// BFS reachability pass enforcing pre-order numbering and consistent
// parent links, followed (only when that pass found nothing wrong) by
// a recursive per-node validation that checks parameters, child-type
// membership, and per-unique-parameter sibling uniqueness.
func (ri *RootInstance) Validate(d diag.Sink) bool {
	if len(ri.nodes) == 0 {
		d.Diagnostic(diag.Err_Instance_EmptyTree)
		ri.validated = false
		return false
	}

	ok := true
	visited := make([]bool, len(ri.nodes))
	queue := []bfsItem{{index: 0, parent: -1}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.index < 0 || item.index >= len(ri.nodes) {
			continue
		}
		if visited[item.index] {
			d.Diagnostic(diag.Err_Instance_DuplicatedReference_ChildNode, diag.IntParam(int64(item.index)))
			ok = false
			continue
		}
		visited[item.index] = true

		n := ri.nodes[item.index]
		if item.index <= item.parent {
			d.Diagnostic(diag.Err_Instance_BadNodeOrder, diag.IntParam(int64(item.index)), diag.IntParam(int64(item.parent)))
			ok = false
		}
		if n.parentIndex != item.parent {
			d.Diagnostic(diag.Err_Instance_ConflictingParentReference, diag.IntParam(int64(item.index)))
			ok = false
		}
		if n.typeIndex < 0 || n.typeIndex >= ri.schema.NodeTypeCount() {
			d.Diagnostic(diag.Err_Instance_BadNodeTypeIndex, diag.IntParam(int64(item.index)))
			ok = false
			continue
		}

		for _, c := range n.children {
			queue = append(queue, bfsItem{index: c, parent: item.index})
		}
	}

	for i, seen := range visited {
		if !seen {
			d.Diagnostic(diag.Err_Instance_UnreachableNode, diag.IntParam(int64(i)))
			ok = false
		}
	}

	if ok {
		if !ri.nodes[0].Validate(d, ri) {
			ok = false
		}
	}

	ri.validated = ok
	return ok
}

// Validate recursively validates n's parameters against its schema
// node type, resolves its children's membership into n's permitted
// child-type buckets, recurses into each child, and — only if every
// child validated clean — builds the per-unique-parameter lookup
// tables used by node-pointer traversal (spec.md §4.8).
func (n *NodeInstance) Validate(d diag.Sink, ri *RootInstance) bool {
	nt := ri.schema.NodeType(n.typeIndex)
	ok := n.validateParameters(d, nt)

	childTypeIndices := nt.ChildTypeIndices()
	n.childTypeLocalIndex = make([]int, ri.schema.NodeTypeCount())
	for i := range n.childTypeLocalIndex {
		n.childTypeLocalIndex[i] = -1
	}
	n.childTypeRecords = make([]ChildTypeRecord, len(childTypeIndices))
	for local, global := range childTypeIndices {
		n.childTypeLocalIndex[global] = local
	}

	childrenOK := true
	for _, c := range n.children {
		child := ri.nodes[c]
		if !child.Validate(d, ri) {
			childrenOK = false
		}
		local := -1
		if child.typeIndex >= 0 && child.typeIndex < len(n.childTypeLocalIndex) {
			local = n.childTypeLocalIndex[child.typeIndex]
		}
		if local < 0 {
			childTypeName := ""
			if child.typeIndex >= 0 && child.typeIndex < ri.schema.NodeTypeCount() {
				childTypeName = ri.schema.NodeType(child.typeIndex).Name()
			}
			d.Diagnostic(diag.Err_Instance_UnexpectedChild, diag.IntParam(int64(c)), diag.StringParam(childTypeName))
			childrenOK = false
			continue
		}
		n.childTypeRecords[local].NodeList = append(n.childTypeRecords[local].NodeList, c)
	}
	if !childrenOK {
		ok = false
	}

	if ok {
		for local, global := range childTypeIndices {
			childNT := ri.schema.NodeType(global)
			params := childNT.Parameters()
			rec := &n.childTypeRecords[local]
			rec.PerParamHash = make([]map[value.Value]int, len(params))
			for pi, p := range params {
				if !p.Unique {
					continue
				}
				hash := make(map[value.Value]int, len(rec.NodeList))
				rec.PerParamHash[pi] = hash
				for _, childIdx := range rec.NodeList {
					v := ri.nodes[childIdx].Parameter(pi)
					if prior, dup := hash[v]; dup {
						d.Diagnostic(diag.Err_Instance_BrokenConstraint_ParamNotUnique,
							diag.IntParam(int64(prior)), diag.IntParam(int64(childIdx)), diag.StringParam(v.String()))
						ok = false
						continue
					}
					hash[v] = childIdx
				}
			}
		}
	}

	return ok
}
