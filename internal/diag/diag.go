// Package diag provides the structured diagnostics sink used by every
// validation and execution pass in the engine: categorized records with
// a hierarchical path, dispatched by severity, with no authority to
// abort — callers decide what to do with a failed validity boolean.
package diag

import (
	"fmt"
	"strings"

	"github.com/xushengj/bundlekit/internal/value"
)

// Severity is the level a Category is registered under, mirroring the
// three-severity dispatch of the engine's diagnostic id space.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

// Category is a diagnostic identifier. The constants in categories.go
// are grouped into id blocks by subsystem; SeverityOf derives a
// Category's Severity from the registry there, not from its id.
type Category int

// Param is a diagnostic parameter. The engine restricts parameters to
// value.Kind, integer, and string — never an arbitrary interface{} blob
// — so the sink's formatting stays total and panic-free.
type Param struct {
	kind  paramKind
	k     value.Kind
	i     int64
	s     string
}

type paramKind int

const (
	paramKindValueKind paramKind = iota
	paramKindInt
	paramKindString
)

func KindParam(k value.Kind) Param { return Param{kind: paramKindValueKind, k: k} }
func IntParam(i int64) Param      { return Param{kind: paramKindInt, i: i} }
func StringParam(s string) Param  { return Param{kind: paramKindString, s: s} }

func (p Param) String() string {
	switch p.kind {
	case paramKindValueKind:
		return p.k.String()
	case paramKindInt:
		return fmt.Sprintf("%d", p.i)
	default:
		return p.s
	}
}

// Frame is one entry of the diagnostics path stack: a structural name
// (e.g. "Parameter 2") and an optional detailed name attached once the
// entity it names has been validated (e.g. the node type's own name).
type Frame struct {
	PathName     string
	DetailedName string
}

func (f Frame) String() string {
	if f.DetailedName == "" {
		return f.PathName
	}
	return fmt.Sprintf("%s(%s)", f.PathName, f.DetailedName)
}

// Record is one emitted diagnostic: its category, severity, the path
// stack at the time of emission, and its parameters.
type Record struct {
	Category Category
	Severity Severity
	Path     []Frame
	Params   []Param
}

func (r Record) PathString() string {
	parts := make([]string, len(r.Path))
	for i, f := range r.Path {
		parts[i] = f.String()
	}
	return strings.Join(parts, "/")
}

func (r Record) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", r.Severity, CategoryName(r.Category)))
	if p := r.PathString(); p != "" {
		sb.WriteString(" at ")
		sb.WriteString(p)
	}
	if len(r.Params) > 0 {
		args := make([]string, len(r.Params))
		for i, p := range r.Params {
			args[i] = p.String()
		}
		sb.WriteString(" (")
		sb.WriteString(strings.Join(args, ", "))
		sb.WriteString(")")
	}
	return sb.String()
}

// Sink receives diagnostic records and maintains the path stack. It
// never aborts on its own: validators and the execution driver are the
// ones that decide whether an Error-severity record should stop the
// current pass. Severity is not chosen by the caller: it is looked up
// from the Category's registered severity (see SeverityOf).
type Sink interface {
	Diagnostic(cat Category, params ...Param)

	// PushPath pushes a named path frame and returns a function that
	// pops it. Callers MUST defer the returned function so the frame
	// is popped on every exit path, including an early return.
	PushPath(name string) (pop func())

	// SetDetailedName attaches a detailed name to the current (top)
	// path frame, once the entity it names is known to be well-formed.
	SetDetailedName(name string)

	// HasErrors reports whether any Error-severity record has been
	// emitted since the sink was created (or last Reset, for
	// implementations that support it).
	HasErrors() bool
}

// CollectingSink is the in-memory Sink implementation used by every
// validator and by the execution driver; it records every emitted
// Record for later inspection or formatting.
type CollectingSink struct {
	path    []Frame
	records []Record
	errors  int
}

// NewCollectingSink returns an empty CollectingSink.
func NewCollectingSink() *CollectingSink {
	return &CollectingSink{}
}

func (s *CollectingSink) Diagnostic(cat Category, params ...Param) {
	sev := SeverityOf(cat)
	pathCopy := make([]Frame, len(s.path))
	copy(pathCopy, s.path)
	s.records = append(s.records, Record{
		Category: cat,
		Severity: sev,
		Path:     pathCopy,
		Params:   params,
	})
	if sev == Error {
		s.errors++
	}
}

func (s *CollectingSink) PushPath(name string) (pop func()) {
	s.path = append(s.path, Frame{PathName: name})
	idx := len(s.path) - 1
	popped := false
	return func() {
		if popped || idx >= len(s.path) {
			return
		}
		popped = true
		s.path = s.path[:idx]
	}
}

func (s *CollectingSink) SetDetailedName(name string) {
	if len(s.path) == 0 {
		return
	}
	s.path[len(s.path)-1].DetailedName = name
}

func (s *CollectingSink) HasErrors() bool { return s.errors > 0 }

// Records returns every diagnostic emitted so far, in emission order.
func (s *CollectingSink) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Reset clears all recorded diagnostics and the path stack, allowing a
// CollectingSink to be reused across an idempotent re-validation.
func (s *CollectingSink) Reset() {
	s.path = nil
	s.records = nil
	s.errors = 0
}
