package exec

import (
	"github.com/xushengj/bundlekit/internal/program"
	"github.com/xushengj/bundlekit/internal/value"
)

// frame is one activation record on the interpreter's call stack: the
// function being run, the IR node it was entered against, and the
// activation's local variable storage. activationIndex is a monotonically
// increasing id stamped at push time, used to detect whether a pointer
// captured from this frame still refers to a live activation.
type frame struct {
	fn              *program.Function
	functionIndex   int
	nodeIndex       int
	nodeTypeIndex   int
	activationIndex int
	stmtIndex       int
	locals          []value.Value
}

func (f *frame) head() value.PointerHead {
	return value.PointerHead{FunctionID: f.functionIndex, StmtID: f.stmtIndex, ActivationID: f.activationIndex}
}
