// Package program implements the Task (a program over the IR): global
// and per-node-type variable declarations, functions, passes, and the
// small expression/statement algebra the interpreter evaluates. See
// spec.md §3/§4.4/§4.5.
package program

import "github.com/xushengj/bundlekit/internal/value"

// ExprKind is the closed set of expression forms, per spec.md §3.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprVariableRead
	ExprVariableAddress
	ExprNodePtrCurrent
	ExprNodePtrRoot
)

// Expression is one entry of a Function's expression table. Every
// expression knows its own result kind and the (possibly empty) list of
// expression indices it depends on; none of the four built-in kinds
// currently declare dependencies, but the dependency machinery in
// Function.Validate and exec's evaluate is kept general so a future
// expression kind can use it without changing either.
type Expression struct {
	Kind       ExprKind
	ResultKind value.Kind

	// Deps and DepKinds are parallel slices: Deps[i] is the index of a
	// sub-expression this expression depends on, and DepKinds[i] is the
	// kind that sub-expression's evaluated result MUST have.
	Deps     []int
	DepKinds []value.Kind

	// Literal is populated when Kind == ExprLiteral.
	Literal value.Value

	// Name is populated when Kind is VariableRead or VariableAddress.
	Name string
}

// NewLiteralExpr returns a Literal expression wrapping v.
func NewLiteralExpr(v value.Value) Expression {
	return Expression{Kind: ExprLiteral, ResultKind: v.Kind(), Literal: v}
}

// NewVariableReadExpr returns a VariableRead expression expecting kind
// from a variable named name.
func NewVariableReadExpr(kind value.Kind, name string) Expression {
	return Expression{Kind: ExprVariableRead, ResultKind: kind, Name: name}
}

// NewVariableAddressExpr returns a VariableAddress expression; its
// result kind is always ValuePtr.
func NewVariableAddressExpr(name string) Expression {
	return Expression{Kind: ExprVariableAddress, ResultKind: value.ValuePtr, Name: name}
}

// NewNodePtrExpr returns a NodePtr expression for the current node or
// the root node; its result kind is always NodePtr.
func NewNodePtrExpr(current bool) Expression {
	k := ExprNodePtrRoot
	if current {
		k = ExprNodePtrCurrent
	}
	return Expression{Kind: k, ResultKind: value.NodePtr}
}
