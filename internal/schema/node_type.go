// Package schema implements the declarative IR schema: node types with
// typed parameters, uniqueness flags, primary keys, and permitted child
// lists, plus the validator that resolves names and detects schema
// errors. See spec.md §3/§4.2.
package schema

import (
	"fmt"

	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/value"
)

// Parameter is one ordered (name, kind, unique?) entry of a NodeType.
type Parameter struct {
	Name   string
	Kind   value.Kind
	Unique bool
}

// NodeType is one schema element: a node's declared shape. Build it
// with the Add* builder methods below, then validate it as part of its
// owning RootType.
type NodeType struct {
	name              string
	parameters        []Parameter
	primaryKeyName    string
	primaryKeyIndex   int
	childTypeNames    []string
	childTypeIndices  []int

	validated bool
}

// NewNodeType returns a NodeType builder for the given name.
func NewNodeType(name string) *NodeType {
	return &NodeType{name: name, primaryKeyIndex: -1}
}

func (nt *NodeType) Name() string { return nt.name }

// AddParameter appends a new parameter to this node type's ordered
// parameter list. Returns the parameter's index.
func (nt *NodeType) AddParameter(name string, kind value.Kind, unique bool) int {
	nt.validated = false
	nt.parameters = append(nt.parameters, Parameter{Name: name, Kind: kind, Unique: unique})
	return len(nt.parameters) - 1
}

// Parameters returns the ordered parameter list.
func (nt *NodeType) Parameters() []Parameter { return nt.parameters }

// ParameterCount returns the number of declared parameters.
func (nt *NodeType) ParameterCount() int { return len(nt.parameters) }

// ParameterIndex returns the index of the named parameter, or -1.
func (nt *NodeType) ParameterIndex(name string) int {
	for i, p := range nt.parameters {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// SetPrimaryKey declares which parameter (by name) is this node type's
// primary key. Pass "" to clear it.
func (nt *NodeType) SetPrimaryKey(name string) {
	nt.validated = false
	nt.primaryKeyName = name
}

// PrimaryKeyIndex returns the resolved primary-key parameter index, or
// -1 if none is declared. Only meaningful after Validate succeeds.
func (nt *NodeType) PrimaryKeyIndex() int { return nt.primaryKeyIndex }

// AddChildType appends a permitted child-type name.
func (nt *NodeType) AddChildType(name string) {
	nt.validated = false
	nt.childTypeNames = append(nt.childTypeNames, name)
}

// ChildTypeNames returns the ordered list of permitted child-type names.
func (nt *NodeType) ChildTypeNames() []string { return nt.childTypeNames }

// ChildTypeIndices returns the resolved permitted child-type indices,
// valid only after Validate succeeds.
func (nt *NodeType) ChildTypeIndices() []int { return nt.childTypeIndices }

// Validate checks this node type's name, parameters, primary key, and
// child-type references against root. It accumulates every error it
// finds rather than stopping at the first one, matching the
// accumulate-don't-short-circuit contract of spec.md §4.2.
func (nt *NodeType) Validate(d diag.Sink, root *RootType) bool {
	ok := true

	if ValidateName(d, nt.name) {
		d.SetDetailedName(nt.name)
	} else {
		ok = false
	}

	seenParamNames := make(map[string]bool, len(nt.parameters))
	for i, p := range nt.parameters {
		pop := d.PushPath(fmt.Sprintf("Parameter %d", i))
		if !ValidateName(d, p.Name) {
			ok = false
		} else if seenParamNames[p.Name] {
			d.Diagnostic(diag.Err_Schema_NameClash_Parameter, diag.StringParam(p.Name))
			ok = false
		} else {
			seenParamNames[p.Name] = true
		}
		if !p.Kind.IsIRParameterKind() {
			d.Diagnostic(diag.Err_Schema_BadType_BadTypeForNodeParam, diag.KindParam(p.Kind))
			ok = false
		}
		pop()
	}

	nt.primaryKeyIndex = -1
	if nt.primaryKeyName != "" {
		idx := nt.ParameterIndex(nt.primaryKeyName)
		if idx < 0 {
			d.Diagnostic(diag.Err_Schema_BadPrimaryKey_KeyNotFound, diag.StringParam(nt.primaryKeyName))
			ok = false
		} else if !nt.parameters[idx].Unique {
			d.Diagnostic(diag.Err_Schema_BadPrimaryKey_KeyNotUnique, diag.StringParam(nt.primaryKeyName))
			ok = false
		} else {
			nt.primaryKeyIndex = idx
		}
	}

	nt.childTypeIndices = nt.childTypeIndices[:0]
	seenChildTypes := make(map[string]bool, len(nt.childTypeNames))
	for _, childName := range nt.childTypeNames {
		idx, found := root.nodeTypeIndexByName(childName)
		if !found {
			d.Diagnostic(diag.Err_Schema_BadReference_ChildNodeType, diag.StringParam(childName))
			ok = false
			continue
		}
		if seenChildTypes[childName] {
			d.Diagnostic(diag.Err_Schema_DuplicatedReference_ChildNodeType, diag.StringParam(childName))
			ok = false
			continue
		}
		seenChildTypes[childName] = true
		nt.childTypeIndices = append(nt.childTypeIndices, idx)
	}

	nt.validated = ok
	return ok
}

// Validated reports whether this node type's last Validate call
// succeeded.
func (nt *NodeType) Validated() bool { return nt.validated }
