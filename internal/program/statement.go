package program

// StmtKind is the closed set of statement forms a Function body can
// contain, per spec.md §3/§4.5.
type StmtKind int

const (
	StmtUnreachable StmtKind = iota
	StmtAssignment
	StmtOutput
	StmtCall
	StmtReturn
	StmtBranch
)

// Assignment is the payload of an Assignment statement: write RHS into
// the location named by LValueExprIndex (a ValuePtr-kind expression),
// or, when LValueExprIndex is -1, into the variable LValueName resolved
// by name (local, node member, or global).
type Assignment struct {
	LValueExprIndex int
	RValueExprIndex int
	LValueName      string
}

// Output is the payload of an Output statement: evaluate ExprIndex and
// hand the result to the active output sink.
type Output struct {
	ExprIndex int
}

// Call is the payload of a Call statement: invoke FunctionName with the
// listed argument expressions, discarding any return value.
type Call struct {
	FunctionName string
	ArgExprs     []int
}

// BranchAction is what a BranchCase (or a branch's default arm) does
// when taken.
type BranchAction int

const (
	BranchUnreachable BranchAction = iota
	BranchFallthrough
	BranchJump
)

// BranchCase is one conditional arm of a Branch statement: if ExprIndex
// evaluates truthy, Action determines what happens next.
type BranchCase struct {
	ExprIndex int
	Action    BranchAction
	// TargetStmtIndex is the resolved jump target when Action ==
	// BranchJump; populated from LabelName by Function.Validate.
	TargetStmtIndex int
	LabelName       string // only meaningful pre-resolution
}

// Branch is the payload of a Branch statement: the cases are tested in
// order, the first true one taken; if none match, DefaultAction/
// DefaultTargetIndex apply.
type Branch struct {
	Cases               []BranchCase
	DefaultAction       BranchAction
	DefaultTargetIndex  int
	DefaultLabelName    string // only meaningful pre-resolution
}

// Statement is one entry of a Function's statement list. Exactly one of
// the payload fields is meaningful, selected by Kind; Unreachable and
// Return carry no payload.
type Statement struct {
	Kind       StmtKind
	Assignment Assignment
	Output     Output
	Call       Call
	Branch     Branch
}
