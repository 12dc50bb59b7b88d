package program

import (
	"sort"

	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/value"
)

// Function is a callable unit of a Task: a flat list of local variables
// (the first ParamCount of which are the call's formal arguments,
// RequiredParamCount of those mandatory), an expression table, a
// statement list, and the labels statements may branch to. See
// spec.md §3/§4.4.
type Function struct {
	name string

	paramCount         int
	requiredParamCount int
	locals             memberDecl
	externs            memberDecl

	exprs []Expression
	stmts []Statement

	labelNames     []string
	labelStmtIndex []int

	// calledFunctionNames is the sorted set of callee names this
	// function's Call statements name, recorded by Validate to drive the
	// Task's function-reachability pass (spec.md §4.4.2 last line).
	calledFunctionNames []string

	validated bool
}

// NewFunction returns an empty function named name.
func NewFunction(name string) *Function {
	return &Function{name: name}
}

func (f *Function) Name() string { return f.name }

// AddExternVariableRef declares name/kind as a variable this function
// may read, write, or take the address of by name at runtime without it
// being one of its own locals — resolved against the Task's node
// members, node parameters, or globals at runtime per spec.md §4.6; the
// declaration only exists so Validate can check the reference is at
// least accounted for at compile time (spec.md §3/§4.4.2).
func (f *Function) AddExternVariableRef(name string, kind value.Kind) {
	f.externs.add(name, kind, nil)
}

func (f *Function) ExternVariableRefCount() int           { return f.externs.count() }
func (f *Function) ExternVariableRefName(i int) string     { return f.externs.names[i] }
func (f *Function) ExternVariableRefKind(i int) value.Kind { return f.externs.kinds[i] }
func (f *Function) ExternVariableRefIndex(name string) int { return f.externs.indexOf(name) }

// CalledFunctionNames returns the sorted set of function names this
// function's Call statements reference, as recorded by the last
// Validate call.
func (f *Function) CalledFunctionNames() []string { return f.calledFunctionNames }

// resolveLocalOrExtern reports the declared kind of name if it is one
// of this function's locals or extern variable references.
func (f *Function) resolveLocalOrExtern(name string) (value.Kind, bool) {
	if idx := f.locals.indexOf(name); idx >= 0 {
		return f.locals.kinds[idx], true
	}
	if idx := f.externs.indexOf(name); idx >= 0 {
		return f.externs.kinds[idx], true
	}
	return value.Void, false
}

// AddLocalVariable adds a local variable or, when called before any
// plain local, a formal parameter — callers use SetParamCount /
// SetRequiredParamCount to mark how many of the leading locals are
// parameters. initializer may be nil.
func (f *Function) AddLocalVariable(name string, kind value.Kind, initializer *value.Value) {
	f.locals.add(name, kind, initializer)
}

func (f *Function) SetParamCount(n int)         { f.paramCount = n }
func (f *Function) SetRequiredParamCount(n int) { f.requiredParamCount = n }

func (f *Function) ParamCount() int           { return f.paramCount }
func (f *Function) RequiredParamCount() int   { return f.requiredParamCount }
func (f *Function) LocalVariableCount() int   { return f.locals.count() }
func (f *Function) LocalVariableName(i int) string     { return f.locals.names[i] }
func (f *Function) LocalVariableKind(i int) value.Kind { return f.locals.kinds[i] }
func (f *Function) LocalVariableInitializer(i int) *value.Value { return f.locals.initializers[i] }
func (f *Function) LocalVariableIndex(name string) int { return f.locals.indexOf(name) }

// AddExpression appends e and returns its index.
func (f *Function) AddExpression(e Expression) int {
	f.exprs = append(f.exprs, e)
	return len(f.exprs) - 1
}

func (f *Function) ExpressionCount() int        { return len(f.exprs) }
func (f *Function) ExpressionAt(i int) Expression { return f.exprs[i] }

// addStatement appends s and returns its index.
func (f *Function) addStatement(s Statement) int {
	f.stmts = append(f.stmts, s)
	return len(f.stmts) - 1
}

func (f *Function) AddUnreachableStatement() int { return f.addStatement(Statement{Kind: StmtUnreachable}) }
func (f *Function) AddReturnStatement() int      { return f.addStatement(Statement{Kind: StmtReturn}) }

func (f *Function) AddAssignmentStatement(a Assignment) int {
	return f.addStatement(Statement{Kind: StmtAssignment, Assignment: a})
}
func (f *Function) AddOutputStatement(o Output) int {
	return f.addStatement(Statement{Kind: StmtOutput, Output: o})
}
func (f *Function) AddCallStatement(c Call) int {
	return f.addStatement(Statement{Kind: StmtCall, Call: c})
}
func (f *Function) AddBranchStatement(b Branch) int {
	return f.addStatement(Statement{Kind: StmtBranch, Branch: b})
}

// AddLabel marks the statement about to be added (i.e. the current end
// of the statement list) as the target of labelName.
func (f *Function) AddLabel(labelName string) int {
	index := len(f.labelNames)
	f.labelNames = append(f.labelNames, labelName)
	f.labelStmtIndex = append(f.labelStmtIndex, len(f.stmts))
	return index
}

func (f *Function) StatementCount() int        { return len(f.stmts) }
func (f *Function) StatementAt(i int) Statement { return f.stmts[i] }

func (f *Function) labelIndex(name string) int {
	for i, n := range f.labelNames {
		if n == name {
			return i
		}
	}
	return -1
}

// Validate checks this function's local variables, expression table,
// and statement list for internal consistency, resolving branch
// targets by label name to statement indices. Cross-function Call
// targets are resolved against task. Validation accumulates; it never
// stops at the first error.
func (f *Function) Validate(d diag.Sink, task *Task) bool {
	pop := d.PushPath("function " + f.name)
	defer pop()

	ok := true

	if f.requiredParamCount > f.paramCount {
		d.Diagnostic(diag.Err_Task_BadParameterCounts, diag.IntParam(int64(f.requiredParamCount)), diag.IntParam(int64(f.paramCount)))
		ok = false
	}

	nameSeen := make(map[string]bool, len(f.locals.names))
	for i, name := range f.locals.names {
		popV := d.PushPath("local " + name)
		if nameSeen[name] {
			d.Diagnostic(diag.Err_Task_NameClash_Local, diag.StringParam(name))
			ok = false
		}
		nameSeen[name] = true

		kind := f.locals.kinds[i]
		if kind == value.Void {
			d.Diagnostic(diag.Err_Task_VoidKindVariable, diag.StringParam(name))
			ok = false
		}

		init := f.locals.initializers[i]
		switch {
		case i < f.requiredParamCount:
			// required parameter: initializer, if present, is simply unused at call sites
			// supplying an argument; no structural requirement either way.
		case i < f.paramCount:
			if init == nil {
				d.Diagnostic(diag.Err_Task_MissingOptionalInitializer, diag.StringParam(name))
				ok = false
			}
		}
		if !f.locals.validateInitializerKind(d, i, name) {
			ok = false
		}
		popV()
	}
	f.locals.rebuildIndex()

	externSeen := make(map[string]bool, len(f.externs.names))
	for i, name := range f.externs.names {
		popV := d.PushPath("extern " + name)
		if externSeen[name] {
			d.Diagnostic(diag.Err_Task_NameClash_Extern, diag.StringParam(name))
			ok = false
		}
		externSeen[name] = true

		if f.externs.kinds[i] == value.Void {
			d.Diagnostic(diag.Err_Task_VoidKindVariable, diag.StringParam(name))
			ok = false
		}
		popV()
	}
	f.externs.rebuildIndex()

	for i, e := range f.exprs {
		for k, depIdx := range e.Deps {
			if depIdx < 0 || depIdx >= i {
				d.Diagnostic(diag.Err_Task_BadExpressionDependency, diag.IntParam(int64(i)), diag.IntParam(int64(depIdx)))
				ok = false
				continue
			}
			if k < len(e.DepKinds) && f.exprs[depIdx].ResultKind != e.DepKinds[k] {
				d.Diagnostic(diag.Err_Task_BadExpressionDependency, diag.IntParam(int64(i)), diag.IntParam(int64(depIdx)))
				ok = false
			}
		}
		if e.Kind == ExprVariableRead || e.Kind == ExprVariableAddress {
			if _, found := f.resolveLocalOrExtern(e.Name); !found {
				cat := diag.Err_Task_BadReference_VariableRead
				if e.Kind == ExprVariableAddress {
					cat = diag.Err_Task_BadReference_VariableTakeAddress
				}
				d.Diagnostic(cat, diag.StringParam(e.Name))
				ok = false
			}
		}
	}

	if !f.validateStatements(d, task) {
		ok = false
	}

	f.validated = ok
	return ok
}

func (f *Function) validateStatements(d diag.Sink, task *Task) bool {
	ok := true
	exprInBounds := func(i int) bool { return i >= 0 && i < len(f.exprs) }
	calledSeen := make(map[string]bool)

	for i := range f.stmts {
		s := &f.stmts[i]
		popV := d.PushPath("statement")
		switch s.Kind {
		case StmtUnreachable, StmtReturn:
			// no payload to check
		case StmtAssignment:
			a := &s.Assignment
			// Name-based assignment may target a local, a node member, or a
			// global; which one depends on the node type the function runs
			// against at a given callback site, but a name-lhs MUST at
			// least resolve to a declared local or extern, with a kind
			// equal to the rhs expression's kind (spec.md §4.4.2).
			if a.LValueExprIndex == -1 {
				kind, found := f.resolveLocalOrExtern(a.LValueName)
				if !found {
					d.Diagnostic(diag.Err_Task_BadReference_VariableWrite, diag.StringParam(a.LValueName))
					ok = false
				} else if exprInBounds(a.RValueExprIndex) && f.exprs[a.RValueExprIndex].ResultKind != kind {
					d.Diagnostic(diag.Err_Task_BadAssignment, diag.IntParam(int64(i)))
					ok = false
				}
			} else if !exprInBounds(a.LValueExprIndex) || f.exprs[a.LValueExprIndex].ResultKind != value.ValuePtr {
				d.Diagnostic(diag.Err_Task_BadAssignment, diag.IntParam(int64(i)))
				ok = false
			}
			if !exprInBounds(a.RValueExprIndex) {
				d.Diagnostic(diag.Err_Task_BadAssignment, diag.IntParam(int64(i)))
				ok = false
			}
		case StmtOutput:
			if !exprInBounds(s.Output.ExprIndex) || f.exprs[s.Output.ExprIndex].ResultKind != value.String {
				d.Diagnostic(diag.Err_Task_BadOutputExpressionKind, diag.IntParam(int64(i)))
				ok = false
			}
		case StmtCall:
			c := &s.Call
			calledSeen[c.FunctionName] = true
			calleeIdx := -1
			if task != nil {
				calleeIdx = task.FunctionIndex(c.FunctionName)
			}
			if calleeIdx < 0 {
				d.Diagnostic(diag.Err_Task_BadCall_BadReference, diag.StringParam(c.FunctionName))
				ok = false
				break
			}
			callee := task.Function(calleeIdx)
			argCount := len(c.ArgExprs)
			if argCount < callee.RequiredParamCount() || argCount > callee.ParamCount() {
				d.Diagnostic(diag.Err_Task_BadCall_ParameterCount, diag.StringParam(c.FunctionName), diag.IntParam(int64(argCount)))
				ok = false
				break
			}
			for ai, exprIdx := range c.ArgExprs {
				if !exprInBounds(exprIdx) {
					d.Diagnostic(diag.Err_Task_BadCall_ParameterKind, diag.IntParam(int64(ai)))
					ok = false
					continue
				}
				if f.exprs[exprIdx].ResultKind != callee.LocalVariableKind(ai) {
					d.Diagnostic(diag.Err_Task_BadCall_ParameterKind, diag.IntParam(int64(ai)), diag.KindParam(callee.LocalVariableKind(ai)))
					ok = false
				}
			}
		case StmtBranch:
			b := &s.Branch
			for ci := range b.Cases {
				c := &b.Cases[ci]
				condKind := value.Void
				if exprInBounds(c.ExprIndex) {
					condKind = f.exprs[c.ExprIndex].ResultKind
				}
				if !exprInBounds(c.ExprIndex) || (condKind != value.Int64 && condKind != value.ValuePtr) {
					d.Diagnostic(diag.Err_Task_BadBranch_ConditionKind, diag.IntParam(int64(ci)))
					ok = false
				}
				if c.Action == BranchJump {
					target := f.labelIndex(c.LabelName)
					if target < 0 {
						d.Diagnostic(diag.Err_Task_BadLabelReference, diag.StringParam(c.LabelName))
						ok = false
					} else {
						c.TargetStmtIndex = f.labelStmtIndex[target]
					}
				}
			}
			if b.DefaultAction == BranchJump {
				target := f.labelIndex(b.DefaultLabelName)
				if target < 0 {
					d.Diagnostic(diag.Err_Task_BadLabelReference, diag.StringParam(b.DefaultLabelName))
					ok = false
				} else {
					b.DefaultTargetIndex = f.labelStmtIndex[target]
				}
			}
		}
		popV()
	}

	seen := make(map[string]bool, len(f.labelNames))
	for _, n := range f.labelNames {
		if seen[n] {
			d.Diagnostic(diag.Err_Task_DuplicateLabel, diag.StringParam(n))
			ok = false
		}
		seen[n] = true
	}

	f.calledFunctionNames = make([]string, 0, len(calledSeen))
	for n := range calledSeen {
		f.calledFunctionNames = append(f.calledFunctionNames, n)
	}
	sort.Strings(f.calledFunctionNames)

	return ok
}
