// Package exec implements the tree-walking interpreter that runs a
// program.Task's passes against an instance.RootInstance: name
// resolution, pointer dereference with dangling-pointer detection,
// node-pointer traversal, and the statement/expression evaluation loop.
// See spec.md §4.6–§4.9.
package exec

import (
	"fmt"

	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/instance"
	"github.com/xushengj/bundlekit/internal/program"
	"github.com/xushengj/bundlekit/internal/value"
)

// OutputSink receives values produced by Output statements. Defined
// here, at the point of use, so internal/sink implementations need not
// import this package.
type OutputSink interface {
	Write(v value.Value) error
}

const defaultMaxDepth = 1024

// Context is one execution of a Task against a RootInstance: the call
// stack, global and per-node-member storage, and the diagnostics/output
// sinks everything reports to.
type Context struct {
	task *program.Task
	root *instance.RootInstance
	diag diag.Sink
	out  OutputSink

	stack             []*frame
	globals           []value.Value
	nodeMembers       [][]value.Value // indexed by node instance index
	activationCounter int
	maxDepth          int
}

// NewContext returns a Context ready to Run task against root. Global
// variables and every node's RW member storage are default-initialized
// from their declared initializers (or the kind's zero value).
func NewContext(task *program.Task, root *instance.RootInstance, d diag.Sink, out OutputSink) *Context {
	ctx := &Context{task: task, root: root, diag: d, out: out, maxDepth: defaultMaxDepth}

	ctx.globals = make([]value.Value, task.GlobalVariableCount())
	for i := range ctx.globals {
		ctx.globals[i] = ctx.initialValue(task.GlobalVariableInitializer(i), task.GlobalVariableKind(i))
	}

	ctx.nodeMembers = make([][]value.Value, root.NodeCount())
	for ni := 0; ni < root.NodeCount(); ni++ {
		nt := root.Node(ni).TypeIndex()
		cnt := task.NodeMemberCount(nt)
		members := make([]value.Value, cnt)
		for mi := 0; mi < cnt; mi++ {
			members[mi] = ctx.initialValue(task.NodeMemberInitializer(nt, mi), task.NodeMemberKind(nt, mi))
		}
		ctx.nodeMembers[ni] = members
	}

	return ctx
}

func (ctx *Context) initialValue(init *value.Value, kind value.Kind) value.Value {
	if init != nil && init.IsInitialized() {
		return *init
	}
	return value.ZeroOf(kind, value.PointerHead{FunctionID: -1, StmtID: -1, ActivationID: -1})
}

// SetMaxDepth overrides the call stack depth limit (default 1024,
// mirroring the teacher's call stack default).
func (ctx *Context) SetMaxDepth(n int) {
	if n > 0 {
		ctx.maxDepth = n
	}
}

func (ctx *Context) top() *frame {
	if len(ctx.stack) == 0 {
		return nil
	}
	return ctx.stack[len(ctx.stack)-1]
}

// Run executes every pass declared on the bound task in order, each
// pass traversing the instance tree pre-order from the root node. It
// returns false (without panicking) the first time a runtime error
// makes further execution meaningless; the diagnostic describing why
// has already been emitted to the sink.
func (ctx *Context) Run() bool {
	for passIndex := 0; passIndex < ctx.task.PassCount(); passIndex++ {
		pop := ctx.diag.PushPath(fmt.Sprintf("pass %d", passIndex))
		ok := ctx.traverse(passIndex, 0)
		pop()
		if !ok {
			return false
		}
	}
	return true
}

// traverse runs passIndex's entry callback (if any) for nodeIndex,
// recurses pre-order into its children in stored order, then runs the
// exit callback. See spec.md §4.9.
func (ctx *Context) traverse(passIndex, nodeIndex int) bool {
	node := ctx.root.Node(nodeIndex)
	nodeTypeIndex := node.TypeIndex()
	nt := ctx.root.Schema().NodeType(nodeTypeIndex)

	pop := ctx.diag.PushPath(fmt.Sprintf("node %d", nodeIndex))
	ctx.diag.SetDetailedName(nt.Name())
	defer pop()

	entryFn := ctx.task.NodeCallback(passIndex, nodeTypeIndex, program.OnEntry)
	if entryFn >= 0 {
		if !ctx.runCallback(entryFn, nodeIndex, nodeTypeIndex) {
			return false
		}
	}

	for i, childIndex := range node.Children() {
		popC := ctx.diag.PushPath(fmt.Sprintf("child %d", i))
		ok := ctx.traverse(passIndex, childIndex)
		popC()
		if !ok {
			return false
		}
	}

	exitFn := ctx.task.NodeCallback(passIndex, nodeTypeIndex, program.OnExit)
	if exitFn >= 0 {
		if !ctx.runCallback(exitFn, nodeIndex, nodeTypeIndex) {
			return false
		}
	}

	return true
}

func (ctx *Context) runCallback(functionIndex, nodeIndex, nodeTypeIndex int) bool {
	if !ctx.pushFrame(functionIndex, nodeIndex, nodeTypeIndex, nil) {
		return false
	}
	return ctx.functionMainLoop()
}

// pushFrame activates functionIndex against nodeIndex. Functions with
// no statements are not pushed at all, matching the teacher's
// performance note in the original engine. params, when non-nil, seed
// the leading local variables (the formal arguments) of the new frame.
func (ctx *Context) pushFrame(functionIndex, nodeIndex, nodeTypeIndex int, params []value.Value) bool {
	fn := ctx.task.Function(functionIndex)
	if fn.StatementCount() == 0 {
		return true
	}
	if len(ctx.stack) >= ctx.maxDepth {
		ctx.diag.Diagnostic(diag.Err_Exec_StackOverflow, diag.IntParam(int64(ctx.maxDepth)))
		return false
	}

	activationIndex := ctx.activationCounter
	ctx.activationCounter++

	f := &frame{
		fn:              fn,
		functionIndex:   functionIndex,
		nodeIndex:       nodeIndex,
		nodeTypeIndex:   nodeTypeIndex,
		activationIndex: activationIndex,
		locals:          make([]value.Value, fn.LocalVariableCount()),
	}
	for i := 0; i < fn.LocalVariableCount(); i++ {
		f.locals[i] = ctx.initialValue(fn.LocalVariableInitializer(i), fn.LocalVariableKind(i))
	}
	for i, p := range params {
		f.locals[i] = p
	}
	ctx.stack = append(ctx.stack, f)
	return true
}

func (ctx *Context) popFrame() {
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
}
