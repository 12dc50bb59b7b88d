package diag

import (
	"fmt"
	"strings"
)

// ActivationFrame describes a single entry of an interpreter call stack
// for rendering. internal/exec does not build ActivationTraces: its
// stack-overflow check counts its own frames, and runtime aborts are
// reported without a trace.
type ActivationFrame struct {
	FunctionName string
	ActivationID int
	StmtIndex    int
}

func (f ActivationFrame) String() string {
	return fmt.Sprintf("%s [activation %d, stmt %d]", f.FunctionName, f.ActivationID, f.StmtIndex)
}

// ActivationTrace is a complete call stack snapshot, ordered oldest
// (bottom) to newest (top) — the same shape as the teacher's
// StackTrace, but holding function activations rather than source
// positions.
type ActivationTrace []ActivationFrame

// String renders the trace most-recent-first, one frame per line.
func (t ActivationTrace) String() string {
	if len(t) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(t) - 1; i >= 0; i-- {
		sb.WriteString(t[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Top returns the most recent frame, or nil if the trace is empty.
func (t ActivationTrace) Top() *ActivationFrame {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// Depth returns the number of frames currently on the trace.
func (t ActivationTrace) Depth() int { return len(t) }
