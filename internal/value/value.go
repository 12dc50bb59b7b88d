// Package value defines the typed value vocabulary shared by the schema,
// instance, program and execution layers: the five value kinds, the two
// pointer record shapes, and the tagged-union Value used by the
// interpreter.
package value

import "fmt"

// Kind is the closed enum of value kinds in the engine. Void is
// runtime-only; IR node parameters may only ever be Int64 or String.
type Kind int

const (
	Void Kind = iota
	Int64
	String
	NodePtr
	ValuePtr
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "Void"
	case Int64:
		return "Int64"
	case String:
		return "String"
	case NodePtr:
		return "NodePtr"
	case ValuePtr:
		return "ValuePtr"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsIRParameterKind reports whether k is one of the two kinds a schema
// node parameter may declare.
func (k Kind) IsIRParameterKind() bool {
	return k == Int64 || k == String
}

// PointerHead is attached to every pointer value. It records the
// function/statement/activation that created the pointer, used for
// diagnostics and for detecting dangling pointers to stack variables.
type PointerHead struct {
	FunctionID   int
	StmtID       int
	ActivationID int
}

// NodePtrValue is PointerHead plus a node index. A negative NodeIndex
// denotes the null node.
type NodePtrValue struct {
	Head      PointerHead
	NodeIndex int
}

// IsNull reports whether this node pointer refers to the null node.
func (p NodePtrValue) IsNull() bool { return p.NodeIndex < 0 }

// ValuePtrKind is the closed enum of storage classes a ValuePtr may
// address. Name resolution order elsewhere in the engine matches the
// order these constants are declared in: LocalVariable, NodeRWMember,
// NodeROParameter, GlobalVariable.
type ValuePtrKind int

const (
	PtrNull ValuePtrKind = iota
	PtrLocalVariable
	PtrNodeRWMember
	PtrNodeROParameter
	PtrGlobalVariable
)

func (k ValuePtrKind) String() string {
	switch k {
	case PtrNull:
		return "Null"
	case PtrLocalVariable:
		return "LocalVariable"
	case PtrNodeRWMember:
		return "NodeRWMember"
	case PtrNodeROParameter:
		return "NodeROParameter"
	case PtrGlobalVariable:
		return "GlobalVariable"
	default:
		return fmt.Sprintf("ValuePtrKind(%d)", int(k))
	}
}

// ValuePtrValue is PointerHead plus a storage-class tag, a value index
// within that storage, and a node index meaningful only for the two
// Node* kinds.
type ValuePtrValue struct {
	Head       PointerHead
	Kind       ValuePtrKind
	ValueIndex int
	NodeIndex  int
}

// IsNull reports whether this value pointer is the null pointer.
func (p ValuePtrValue) IsNull() bool { return p.Kind == PtrNull }

// NullValuePtr returns the null ValuePtr stamped with head.
func NullValuePtr(head PointerHead) ValuePtrValue {
	return ValuePtrValue{Head: head, Kind: PtrNull, ValueIndex: -1, NodeIndex: -1}
}

// NullNodePtr returns the null NodePtr stamped with head.
func NullNodePtr(head PointerHead) NodePtrValue {
	return NodePtrValue{Head: head, NodeIndex: -1}
}

// Value is a heterogeneous runtime value: one of Int64, String, NodePtr,
// ValuePtr, or the zero Value which is "uninitialized". Callers MUST
// check IsInitialized before trusting the Kind of a freshly zero Value,
// since the zero Kind (Void) is also used as the uninitialized marker.
type Value struct {
	kind        Kind
	initialized bool
	i           int64
	s           string
	nodePtr     NodePtrValue
	valuePtr    ValuePtrValue
}

// Uninitialized returns the uninitialized sentinel Value.
func Uninitialized() Value {
	return Value{}
}

// IsInitialized reports whether the value carries a concrete payload.
func (v Value) IsInitialized() bool { return v.initialized }

// Kind returns the declared kind of an initialized value. Calling this
// on an uninitialized value returns Void.
func (v Value) Kind() Kind { return v.kind }

func FromInt64(i int64) Value {
	return Value{kind: Int64, initialized: true, i: i}
}

func FromString(s string) Value {
	return Value{kind: String, initialized: true, s: s}
}

func FromNodePtr(p NodePtrValue) Value {
	return Value{kind: NodePtr, initialized: true, nodePtr: p}
}

func FromValuePtr(p ValuePtrValue) Value {
	return Value{kind: ValuePtr, initialized: true, valuePtr: p}
}

// Int64Value returns the wrapped int64. Panics if Kind() != Int64.
func (v Value) Int64Value() int64 {
	if v.kind != Int64 {
		panic(fmt.Sprintf("value: Int64Value called on %s", v.kind))
	}
	return v.i
}

// StringValue returns the wrapped string. Panics if Kind() != String.
func (v Value) StringValue() string {
	if v.kind != String {
		panic(fmt.Sprintf("value: StringValue called on %s", v.kind))
	}
	return v.s
}

// NodePtrValue returns the wrapped node pointer. Panics if Kind() != NodePtr.
func (v Value) NodePtrValue() NodePtrValue {
	if v.kind != NodePtr {
		panic(fmt.Sprintf("value: NodePtrValue called on %s", v.kind))
	}
	return v.nodePtr
}

// ValuePtrValue returns the wrapped value pointer. Panics if Kind() != ValuePtr.
func (v Value) ValuePtrValue() ValuePtrValue {
	if v.kind != ValuePtr {
		panic(fmt.Sprintf("value: ValuePtrValue called on %s", v.kind))
	}
	return v.valuePtr
}

// ZeroOf returns the zero value of kind k, stamped with head for the
// pointer kinds. Used to default-initialize an uninitialized slot on
// first (warned) read, and to seed declared-but-not-yet-assigned
// storage.
func ZeroOf(k Kind, head PointerHead) Value {
	switch k {
	case Int64:
		return FromInt64(0)
	case String:
		return FromString("")
	case NodePtr:
		return FromNodePtr(NullNodePtr(head))
	case ValuePtr:
		return FromValuePtr(NullValuePtr(head))
	default:
		return Uninitialized()
	}
}

// Truthy reports whether v is a "true" branch condition: a non-zero
// Int64, or a non-null ValuePtr. Any other kind is not a valid branch
// condition and callers must reject it before calling Truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case Int64:
		return v.i != 0
	case ValuePtr:
		return !v.valuePtr.IsNull()
	default:
		return false
	}
}

// String renders a human-readable form of v, used by diagnostics and by
// debug output. It never panics, unlike the typed accessors.
func (v Value) String() string {
	if !v.initialized {
		return "<uninitialized>"
	}
	switch v.kind {
	case Int64:
		return fmt.Sprintf("%d", v.i)
	case String:
		return v.s
	case NodePtr:
		if v.nodePtr.IsNull() {
			return "nil@Node"
		}
		return fmt.Sprintf("Node#%d", v.nodePtr.NodeIndex)
	case ValuePtr:
		if v.valuePtr.IsNull() {
			return "nil@Value"
		}
		return fmt.Sprintf("%s#%d", v.valuePtr.Kind, v.valuePtr.ValueIndex)
	default:
		return "<void>"
	}
}
