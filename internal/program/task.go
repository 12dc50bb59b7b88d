package program

import (
	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/schema"
	"github.com/xushengj/bundlekit/internal/value"
)

// CallbackType distinguishes the two points in node traversal a
// function can be attached to, per spec.md §4.9.
type CallbackType int

const (
	OnEntry CallbackType = iota
	OnExit
)

type nodeCallbackRecord struct {
	onEntryFunctionIndex int
	onExitFunctionIndex  int
}

func newNodeCallbackRecord() nodeCallbackRecord {
	return nodeCallbackRecord{onEntryFunctionIndex: -1, onExitFunctionIndex: -1}
}

// Task is a program bound to a schema.RootType: global variables,
// per-node-type member variables, a set of functions, and one or more
// traversal passes, each pass carrying its own entry/exit callback
// assignment per node type. See spec.md §3/§4.4.
type Task struct {
	root *schema.RootType

	globals        memberDecl
	nodeMemberDecl []memberDecl // indexed by node type index

	// nodeCallbacks[pass][nodeTypeIndex] holds that pass's entry/exit
	// function assignment for that node type.
	nodeCallbacks [][]nodeCallbackRecord

	functions         []*Function
	functionNameToIndex map[string]int

	validated bool
}

// NewTask returns an empty task bound to root, with per-node-type
// member declarations pre-sized and no passes yet.
func NewTask(root *schema.RootType) *Task {
	t := &Task{root: root}
	t.nodeMemberDecl = make([]memberDecl, root.NodeTypeCount())
	return t
}

func (t *Task) RootType() *schema.RootType { return t.root }

func (t *Task) AddGlobalVariable(name string, kind value.Kind, initializer *value.Value) {
	t.globals.add(name, kind, initializer)
}

func (t *Task) GlobalVariableCount() int               { return t.globals.count() }
func (t *Task) GlobalVariableName(i int) string         { return t.globals.names[i] }
func (t *Task) GlobalVariableKind(i int) value.Kind     { return t.globals.kinds[i] }
func (t *Task) GlobalVariableIndex(name string) int     { return t.globals.indexOf(name) }
func (t *Task) GlobalVariableInitializer(i int) *value.Value { return t.globals.initializers[i] }

// AddNodeMember adds a member variable to the node type at
// nodeTypeIndex, the index space of the bound schema's node types.
func (t *Task) AddNodeMember(nodeTypeIndex int, name string, kind value.Kind, initializer *value.Value) {
	t.nodeMemberDecl[nodeTypeIndex].add(name, kind, initializer)
}

func (t *Task) NodeMemberCount(nodeTypeIndex int) int { return t.nodeMemberDecl[nodeTypeIndex].count() }
func (t *Task) NodeMemberName(nodeTypeIndex, i int) string {
	return t.nodeMemberDecl[nodeTypeIndex].names[i]
}
func (t *Task) NodeMemberKind(nodeTypeIndex, i int) value.Kind {
	return t.nodeMemberDecl[nodeTypeIndex].kinds[i]
}
func (t *Task) NodeMemberIndex(nodeTypeIndex int, name string) int {
	return t.nodeMemberDecl[nodeTypeIndex].indexOf(name)
}
func (t *Task) NodeMemberInitializer(nodeTypeIndex, i int) *value.Value {
	return t.nodeMemberDecl[nodeTypeIndex].initializers[i]
}

// AddFunction appends f and returns its index.
func (t *Task) AddFunction(f *Function) int {
	t.functions = append(t.functions, f)
	return len(t.functions) - 1
}

func (t *Task) FunctionCount() int        { return len(t.functions) }
func (t *Task) Function(i int) *Function  { return t.functions[i] }

func (t *Task) FunctionIndex(name string) int {
	if t.functionNameToIndex == nil {
		for i, f := range t.functions {
			if f.name == name {
				return i
			}
		}
		return -1
	}
	idx, ok := t.functionNameToIndex[name]
	if !ok {
		return -1
	}
	return idx
}

// AddNewPass appends an empty traversal pass (no node type has an
// entry/exit callback yet) and returns its index.
func (t *Task) AddNewPass() int {
	record := make([]nodeCallbackRecord, t.root.NodeTypeCount())
	for i := range record {
		record[i] = newNodeCallbackRecord()
	}
	t.nodeCallbacks = append(t.nodeCallbacks, record)
	return len(t.nodeCallbacks) - 1
}

func (t *Task) PassCount() int { return len(t.nodeCallbacks) }

// SetNodeCallback attaches functionName as the ty callback of
// nodeTypeIndex on the MOST RECENTLY ADDED pass. The original engine
// exposes no way to target an earlier pass once a later one exists;
// passes remain addressable by index only for running them, not for
// attaching callbacks (see Open Question resolution in the design
// notes).
func (t *Task) SetNodeCallback(nodeTypeIndex int, functionName string, ty CallbackType) {
	pass := &t.nodeCallbacks[len(t.nodeCallbacks)-1][nodeTypeIndex]
	idx := t.FunctionIndex(functionName)
	switch ty {
	case OnEntry:
		pass.onEntryFunctionIndex = idx
	case OnExit:
		pass.onExitFunctionIndex = idx
	}
}

// NodeCallback returns the function index attached as the ty callback
// of nodeTypeIndex on the given pass, or -1 if none is attached.
func (t *Task) NodeCallback(passIndex, nodeTypeIndex int, ty CallbackType) int {
	rec := t.nodeCallbacks[passIndex][nodeTypeIndex]
	switch ty {
	case OnEntry:
		return rec.onEntryFunctionIndex
	case OnExit:
		return rec.onExitFunctionIndex
	}
	return -1
}

func (t *Task) Validated() bool { return t.validated }

// Validate checks global and per-node-type member declarations, builds
// the function name index, and checks callback assignments (including
// that at least one callback is set anywhere). If any of that top-level
// structure is wrong, Validate stops there and returns false without
// validating function bodies, to avoid cascading errors from bodies
// whose binding to the task was never sound to begin with. Otherwise it
// validates every function body and finishes with a function-
// reachability pass from the callback-attached functions, which only
// warns and never affects the return value.
func (t *Task) Validate(d diag.Sink) bool {
	ok := true

	seen := make(map[string]bool, t.globals.count())
	for i, name := range t.globals.names {
		pop := d.PushPath("global " + name)
		if seen[name] {
			d.Diagnostic(diag.Err_Task_NameClash_Extern, diag.StringParam(name))
			ok = false
		}
		seen[name] = true
		if t.globals.kinds[i] == value.Void {
			d.Diagnostic(diag.Err_Task_VoidKindVariable, diag.StringParam(name))
			ok = false
		}
		if !t.globals.validateInitializerKind(d, i, name) {
			ok = false
		}
		pop()
	}
	t.globals.rebuildIndex()

	for nt := range t.nodeMemberDecl {
		decl := &t.nodeMemberDecl[nt]
		memberSeen := make(map[string]bool, decl.count())
		for i, name := range decl.names {
			pop := d.PushPath("node member " + name)
			if memberSeen[name] {
				d.Diagnostic(diag.Err_Task_NameClash_Extern, diag.StringParam(name))
				ok = false
			}
			memberSeen[name] = true
			if decl.kinds[i] == value.Void {
				d.Diagnostic(diag.Err_Task_VoidKindVariable, diag.StringParam(name))
				ok = false
			}
			if !decl.validateInitializerKind(d, i, name) {
				ok = false
			}
			pop()
		}
		decl.rebuildIndex()
	}

	t.functionNameToIndex = make(map[string]int, len(t.functions))
	for i, f := range t.functions {
		if _, dup := t.functionNameToIndex[f.name]; dup {
			d.Diagnostic(diag.Err_Task_NameClash_Function, diag.StringParam(f.name))
			ok = false
			continue
		}
		t.functionNameToIndex[f.name] = i
	}

	// Callbacks are validated before any function body: a callback
	// referencing an out-of-range function index, or no callback being
	// set anywhere, is a top-level structural error that should stop
	// validation before function bodies run (spec.md §4.4 step 4), to
	// avoid cascading errors from bodies that were never reachable
	// in the first place.
	callbackSeed := make(map[int]bool)
	anyCallback := false
	for passIdx, pass := range t.nodeCallbacks {
		for ntIdx, rec := range pass {
			if rec.onEntryFunctionIndex == -1 && rec.onExitFunctionIndex == -1 {
				continue
			}
			anyCallback = true
			if (rec.onEntryFunctionIndex != -1 && rec.onEntryFunctionIndex >= len(t.functions)) ||
				(rec.onExitFunctionIndex != -1 && rec.onExitFunctionIndex >= len(t.functions)) {
				d.Diagnostic(diag.Err_Task_BadCallbackReference, diag.IntParam(int64(passIdx)), diag.IntParam(int64(ntIdx)))
				ok = false
				continue
			}
			if rec.onEntryFunctionIndex != -1 {
				callbackSeed[rec.onEntryFunctionIndex] = true
			}
			if rec.onExitFunctionIndex != -1 {
				callbackSeed[rec.onExitFunctionIndex] = true
			}
		}
	}
	if !anyCallback {
		d.Diagnostic(diag.Err_Task_NoCallback)
		ok = false
	}

	if !ok {
		t.validated = false
		return false
	}

	for _, f := range t.functions {
		if !f.Validate(d, t) {
			ok = false
		}
	}

	// Function-reachability: BFS from the callback-reachable seed over
	// each function's recorded Call targets, warning (not failing) on
	// any function never reached this way (spec.md §4.4 step 6).
	reached := make(map[int]bool, len(callbackSeed))
	var queue []int
	for idx := range callbackSeed {
		reached[idx] = true
		queue = append(queue, idx)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, name := range t.functions[cur].CalledFunctionNames() {
			calleeIdx := t.FunctionIndex(name)
			if calleeIdx < 0 || reached[calleeIdx] {
				continue
			}
			reached[calleeIdx] = true
			queue = append(queue, calleeIdx)
		}
	}
	for i, f := range t.functions {
		if !reached[i] {
			d.Diagnostic(diag.Warn_Task_UnreachableFunction, diag.StringParam(f.name))
		}
	}

	t.validated = ok
	return ok
}
