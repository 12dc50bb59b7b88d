package exec

import (
	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/value"
)

// readByName resolves name against the current frame in the order
// local variable, node RW member, node RO parameter, global variable,
// per spec.md §4.6 (also documented by value.ValuePtrKind's declaration
// order).
func (ctx *Context) readByName(name string) (value.Value, bool) {
	f := ctx.top()

	if idx := f.fn.LocalVariableIndex(name); idx >= 0 {
		return ctx.checkUninitialized(f.locals[idx], f.fn.LocalVariableKind(idx)), true
	}
	if idx := ctx.task.NodeMemberIndex(f.nodeTypeIndex, name); idx >= 0 {
		return ctx.checkUninitialized(ctx.nodeMembers[f.nodeIndex][idx], ctx.task.NodeMemberKind(f.nodeTypeIndex, idx)), true
	}
	nt := ctx.root.Schema().NodeType(f.nodeTypeIndex)
	if idx := nt.ParameterIndex(name); idx >= 0 {
		v := ctx.root.Node(f.nodeIndex).Parameter(idx)
		return ctx.checkUninitialized(v, nt.Parameters()[idx].Kind), true
	}
	if idx := ctx.task.GlobalVariableIndex(name); idx >= 0 {
		return ctx.checkUninitialized(ctx.globals[idx], ctx.task.GlobalVariableKind(idx)), true
	}

	ctx.diag.Diagnostic(diag.Err_Exec_BadReference_VariableRead, diag.StringParam(name))
	return value.Uninitialized(), false
}

// writeByName resolves name the same way readByName does, then stores
// v if its kind matches the target's declared kind. Node RO parameters
// can never be targeted by name.
func (ctx *Context) writeByName(name string, v value.Value) bool {
	f := ctx.top()

	if idx := f.fn.LocalVariableIndex(name); idx >= 0 {
		if v.Kind() != f.fn.LocalVariableKind(idx) {
			ctx.diag.Diagnostic(diag.Err_Exec_TypeMismatch_WriteByName, diag.StringParam(name), diag.KindParam(v.Kind()))
			return false
		}
		f.locals[idx] = v
		return true
	}
	if idx := ctx.task.NodeMemberIndex(f.nodeTypeIndex, name); idx >= 0 {
		if v.Kind() != ctx.task.NodeMemberKind(f.nodeTypeIndex, idx) {
			ctx.diag.Diagnostic(diag.Err_Exec_TypeMismatch_WriteByName, diag.StringParam(name), diag.KindParam(v.Kind()))
			return false
		}
		ctx.nodeMembers[f.nodeIndex][idx] = v
		return true
	}
	nt := ctx.root.Schema().NodeType(f.nodeTypeIndex)
	if nt.ParameterIndex(name) >= 0 {
		ctx.diag.Diagnostic(diag.Err_Exec_WriteToConst_WriteNodeParamByName, diag.StringParam(name))
		return false
	}
	if idx := ctx.task.GlobalVariableIndex(name); idx >= 0 {
		if v.Kind() != ctx.task.GlobalVariableKind(idx) {
			ctx.diag.Diagnostic(diag.Err_Exec_TypeMismatch_WriteByName, diag.StringParam(name), diag.KindParam(v.Kind()))
			return false
		}
		ctx.globals[idx] = v
		return true
	}

	ctx.diag.Diagnostic(diag.Err_Exec_BadReference_VariableWrite, diag.StringParam(name))
	return false
}

// takeAddress builds a ValuePtr to the storage name resolves to,
// stamped with the current frame's head.
func (ctx *Context) takeAddress(name string) (value.ValuePtrValue, bool) {
	f := ctx.top()
	head := f.head()

	if idx := f.fn.LocalVariableIndex(name); idx >= 0 {
		return value.ValuePtrValue{Head: head, Kind: value.PtrLocalVariable, ValueIndex: idx, NodeIndex: -1}, true
	}
	if idx := ctx.task.NodeMemberIndex(f.nodeTypeIndex, name); idx >= 0 {
		return value.ValuePtrValue{Head: head, Kind: value.PtrNodeRWMember, ValueIndex: idx, NodeIndex: f.nodeIndex}, true
	}
	nt := ctx.root.Schema().NodeType(f.nodeTypeIndex)
	if idx := nt.ParameterIndex(name); idx >= 0 {
		return value.ValuePtrValue{Head: head, Kind: value.PtrNodeROParameter, ValueIndex: idx, NodeIndex: f.nodeIndex}, true
	}
	if idx := ctx.task.GlobalVariableIndex(name); idx >= 0 {
		return value.ValuePtrValue{Head: head, Kind: value.PtrGlobalVariable, ValueIndex: idx, NodeIndex: -1}, true
	}

	ctx.diag.Diagnostic(diag.Err_Exec_BadReference_VariableTakeAddress, diag.StringParam(name))
	return value.ValuePtrValue{}, false
}

// findLiveFrame linear-scans the call stack for a frame whose
// activationIndex matches id, in no particular order. Only readPointer
// uses it; writePointer rejects every LocalVariable pointer that is not
// for the top frame without scanning.
func (ctx *Context) findLiveFrame(id int) *frame {
	for _, f := range ctx.stack {
		if f.activationIndex == id {
			return f
		}
	}
	return nil
}

// readPointer dereferences ptr for a read. Reads succeed whenever the
// addressed storage is live: the top frame always, any other frame
// found by the (unordered) activation scan, or node/global storage
// which never goes dangling.
func (ctx *Context) readPointer(ptr value.ValuePtrValue) (value.Value, bool) {
	switch ptr.Kind {
	case value.PtrNull:
		ctx.diag.Diagnostic(diag.Err_Exec_NullPointerException_ReadValue)
		return value.Uninitialized(), false
	case value.PtrLocalVariable:
		top := ctx.top()
		if ptr.Head.ActivationID == top.activationIndex {
			return ctx.checkUninitialized(top.locals[ptr.ValueIndex], top.fn.LocalVariableKind(ptr.ValueIndex)), true
		}
		if f := ctx.findLiveFrame(ptr.Head.ActivationID); f != nil {
			return ctx.checkUninitialized(f.locals[ptr.ValueIndex], f.fn.LocalVariableKind(ptr.ValueIndex)), true
		}
		ctx.diag.Diagnostic(diag.Err_Exec_DanglingPointerException_ReadValue)
		return value.Uninitialized(), false
	case value.PtrNodeRWMember:
		nodeTypeIndex := ctx.root.Node(ptr.NodeIndex).TypeIndex()
		return ctx.checkUninitialized(ctx.nodeMembers[ptr.NodeIndex][ptr.ValueIndex], ctx.task.NodeMemberKind(nodeTypeIndex, ptr.ValueIndex)), true
	case value.PtrNodeROParameter:
		nt := ctx.root.Schema().NodeType(ctx.root.Node(ptr.NodeIndex).TypeIndex())
		v := ctx.root.Node(ptr.NodeIndex).Parameter(ptr.ValueIndex)
		return ctx.checkUninitialized(v, nt.Parameters()[ptr.ValueIndex].Kind), true
	case value.PtrGlobalVariable:
		return ctx.checkUninitialized(ctx.globals[ptr.ValueIndex], ctx.task.GlobalVariableKind(ptr.ValueIndex)), true
	}
	return value.Uninitialized(), false
}

// writePointer dereferences ptr for a write. See the dangling-pointer
// write resolution in the design notes: a LocalVariable pointer whose
// activation id is not the current top-of-stack frame always fails,
// even when a matching frame still exists elsewhere on the stack.
func (ctx *Context) writePointer(ptr value.ValuePtrValue, v value.Value) bool {
	switch ptr.Kind {
	case value.PtrNull:
		ctx.diag.Diagnostic(diag.Err_Exec_NullPointerException_WriteValue)
		return false
	case value.PtrLocalVariable:
		top := ctx.top()
		if ptr.Head.ActivationID != top.activationIndex {
			ctx.diag.Diagnostic(diag.Err_Exec_DanglingPointerException_WriteValue)
			return false
		}
		if v.Kind() != top.fn.LocalVariableKind(ptr.ValueIndex) {
			ctx.diag.Diagnostic(diag.Err_Exec_TypeMismatch_WriteByPointer, diag.KindParam(v.Kind()))
			return false
		}
		top.locals[ptr.ValueIndex] = v
		return true
	case value.PtrNodeRWMember:
		nodeTypeIndex := ctx.root.Node(ptr.NodeIndex).TypeIndex()
		if v.Kind() != ctx.task.NodeMemberKind(nodeTypeIndex, ptr.ValueIndex) {
			ctx.diag.Diagnostic(diag.Err_Exec_TypeMismatch_WriteByPointer, diag.KindParam(v.Kind()))
			return false
		}
		ctx.nodeMembers[ptr.NodeIndex][ptr.ValueIndex] = v
		return true
	case value.PtrNodeROParameter:
		ctx.diag.Diagnostic(diag.Err_Exec_WriteToConst_WriteNodeParamByPointer)
		return false
	case value.PtrGlobalVariable:
		if v.Kind() != ctx.task.GlobalVariableKind(ptr.ValueIndex) {
			ctx.diag.Diagnostic(diag.Err_Exec_TypeMismatch_WriteByPointer, diag.KindParam(v.Kind()))
			return false
		}
		ctx.globals[ptr.ValueIndex] = v
		return true
	}
	return false
}

func (ctx *Context) checkUninitialized(v value.Value, kind value.Kind) value.Value {
	if v.IsInitialized() {
		return v
	}
	ctx.diag.Diagnostic(diag.Warn_Exec_UninitializedRead)
	return value.ZeroOf(kind, ctx.top().head())
}

// currentNodePtr returns a NodePtr to the node the top frame is
// running against.
func (ctx *Context) currentNodePtr() value.NodePtrValue {
	f := ctx.top()
	return value.NodePtrValue{Head: f.head(), NodeIndex: f.nodeIndex}
}

// rootNodePtr returns a NodePtr to the instance's root node (index 0).
func (ctx *Context) rootNodePtr() value.NodePtrValue {
	return value.NodePtrValue{Head: ctx.top().head(), NodeIndex: 0}
}

// ParentNode resolves src's parent, per spec.md §4.8. It is exported as
// Context API, mirroring the original ExecutionContext::getParentNode,
// since no Expression kind in this engine's algebra carries node-parent
// traversal itself — callers reach it directly off a running Context.
func (ctx *Context) ParentNode(src value.NodePtrValue) (value.NodePtrValue, bool) {
	if src.IsNull() {
		ctx.diag.Diagnostic(diag.Err_Exec_BadNodePointer_TraverseToParent)
		return value.NodePtrValue{}, false
	}
	return value.NodePtrValue{Head: ctx.top().head(), NodeIndex: ctx.root.Node(src.NodeIndex).ParentIndex()}, true
}

// ChildNodeByPrimaryKey resolves the child of src named childTypeName
// whose primary key parameter equals key, per spec.md §4.8. Exported as
// Context API, mirroring the original ExecutionContext::getChildNode's
// primary-key overload.
func (ctx *Context) ChildNodeByPrimaryKey(src value.NodePtrValue, childTypeName string, key value.Value) (value.NodePtrValue, bool) {
	if src.IsNull() {
		ctx.diag.Diagnostic(diag.Err_Exec_BadNodePointer_TraverseToChild)
		return value.NodePtrValue{}, false
	}
	childTypeIndex := ctx.root.Schema().NodeTypeIndex(childTypeName)
	childNT := ctx.root.Schema().NodeType(childTypeIndex)
	pkIndex := childNT.PrimaryKeyIndex()
	if pkIndex < 0 {
		ctx.diag.Diagnostic(diag.Err_Exec_BadTraverse_ChildWithoutPrimaryKey, diag.StringParam(childTypeName))
		return value.NodePtrValue{}, false
	}
	if childNT.Parameters()[pkIndex].Kind != key.Kind() {
		ctx.diag.Diagnostic(diag.Err_Exec_PrimaryKeyTypeMismatch, diag.StringParam(childTypeName), diag.KindParam(key.Kind()))
		return value.NodePtrValue{}, false
	}
	idx, found := ctx.root.Node(src.NodeIndex).LookupChildByParam(childTypeIndex, pkIndex, key)
	if !found {
		idx = -1
	}
	return value.NodePtrValue{Head: ctx.top().head(), NodeIndex: idx}, true
}

// ChildNodeByField resolves the child of src named childTypeName whose
// unique parameter keyField equals key, per spec.md §4.8. Exported as
// Context API, mirroring the original ExecutionContext::getChildNode's
// named-field overload.
func (ctx *Context) ChildNodeByField(src value.NodePtrValue, childTypeName, keyField string, key value.Value) (value.NodePtrValue, bool) {
	if src.IsNull() {
		ctx.diag.Diagnostic(diag.Err_Exec_BadNodePointer_TraverseToChild)
		return value.NodePtrValue{}, false
	}
	childTypeIndex := ctx.root.Schema().NodeTypeIndex(childTypeName)
	childNT := ctx.root.Schema().NodeType(childTypeIndex)
	paramIndex := childNT.ParameterIndex(keyField)
	if paramIndex < 0 {
		ctx.diag.Diagnostic(diag.Err_Exec_ParameterNotFound, diag.StringParam(childTypeName), diag.StringParam(keyField))
		return value.NodePtrValue{}, false
	}
	if !childNT.Parameters()[paramIndex].Unique {
		ctx.diag.Diagnostic(diag.Err_Exec_ParameterNotUnique, diag.StringParam(childTypeName), diag.StringParam(keyField))
		return value.NodePtrValue{}, false
	}
	if childNT.Parameters()[paramIndex].Kind != key.Kind() {
		ctx.diag.Diagnostic(diag.Err_Exec_UniqueKeyTypeMismatch, diag.StringParam(childTypeName), diag.StringParam(keyField), diag.KindParam(key.Kind()))
		return value.NodePtrValue{}, false
	}
	idx, found := ctx.root.Node(src.NodeIndex).LookupChildByParam(childTypeIndex, paramIndex, key)
	if !found {
		idx = -1
	}
	return value.NodePtrValue{Head: ctx.top().head(), NodeIndex: idx}, true
}
