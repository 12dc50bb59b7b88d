package diag

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/xushengj/bundlekit/internal/value"
)

// TestFormatter_FormatAll snapshots the rendered text for a representative
// mix of severities, paths, and parameter kinds, the way the teacher
// snapshots rendered fixture output with go-snaps.
func TestFormatter_FormatAll(t *testing.T) {
	d := NewCollectingSink()

	popRoot := d.PushPath("root")
	popNode := d.PushPath("speech[0]")
	d.Diagnostic(Err_Schema_BadType_BadTypeForNodeParam, StringParam("text"), KindParam(value.Int64))
	d.SetDetailedName("speech")
	popNode()
	popRoot()

	d.Diagnostic(Warn_Task_UnreachableFunction, StringParam("helper"))

	formatter := Formatter{Color: false}
	snaps.MatchSnapshot(t, "diagnostics_plain", formatter.FormatAll(d.Records()))
}

// TestFormatter_FormatOne_SingleRecord snapshots the single-record path,
// which skips the summary header entirely.
func TestFormatter_FormatOne_SingleRecord(t *testing.T) {
	d := NewCollectingSink()
	pop := d.PushPath("header")
	d.Diagnostic(Err_Instance_BadNodeTypeIndex, IntParam(7))
	pop()

	formatter := Formatter{Color: false}
	snaps.MatchSnapshot(t, "diagnostics_single", formatter.FormatAll(d.Records()))
}
