// Package bundle is bundlekit's public surface: a container of IR
// schemas and the tasks that run against them, plus the load/save and
// execution entry points cmd/bundlerun drives. It is a thin facade
// over internal/schema, internal/instance, internal/program,
// internal/exec, and internal/bundle's serialization helpers — no
// algorithmic content of its own, grounded on
// original_source/core/Bundle.h's named collection of schema+task
// pairs (see SPEC_FULL.md §11).
package bundle

import (
	"io"

	serial "github.com/xushengj/bundlekit/internal/bundle"
	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/exec"
	"github.com/xushengj/bundlekit/internal/instance"
	"github.com/xushengj/bundlekit/internal/program"
	"github.com/xushengj/bundlekit/internal/schema"
)

// OutputKind classifies what a Task entry produces, mirroring
// Bundle::TaskRecord::TaskOutputType in the original implementation.
type OutputKind int

const (
	NoOutput OutputKind = iota
	IROutput
	ExternalOutput
)

// TaskEntry pairs a Task with the schema it runs against and what
// kind of output it produces.
type TaskEntry struct {
	Task             *program.Task
	InputSchemaIndex int
	Output           OutputKind
}

// Bundle is a named collection of IR schemas and tasks, loadable as a
// unit. It owns no algorithmic behavior; every operation it exposes
// delegates to the core packages.
type Bundle struct {
	schemas []*schema.RootType
	tasks   []TaskEntry

	schemaNameToIndex map[string]int
}

// New returns an empty Bundle.
func New() *Bundle {
	return &Bundle{schemaNameToIndex: make(map[string]int)}
}

// AddSchema registers rt under its own name and returns its index.
func (b *Bundle) AddSchema(rt *schema.RootType) int {
	idx := len(b.schemas)
	b.schemas = append(b.schemas, rt)
	b.schemaNameToIndex[rt.Name()] = idx
	return idx
}

func (b *Bundle) SchemaCount() int                { return len(b.schemas) }
func (b *Bundle) Schema(i int) *schema.RootType    { return b.schemas[i] }
func (b *Bundle) SchemaIndex(name string) int {
	if idx, ok := b.schemaNameToIndex[name]; ok {
		return idx
	}
	return -1
}

// AddTask registers task as running against the schema at
// inputSchemaIndex, producing outputs of kind, and returns its index.
func (b *Bundle) AddTask(task *program.Task, inputSchemaIndex int, kind OutputKind) int {
	idx := len(b.tasks)
	b.tasks = append(b.tasks, TaskEntry{Task: task, InputSchemaIndex: inputSchemaIndex, Output: kind})
	return idx
}

func (b *Bundle) TaskCount() int          { return len(b.tasks) }
func (b *Bundle) TaskEntry(i int) TaskEntry { return b.tasks[i] }

// Validate validates every registered schema and task, accumulating
// every failure rather than stopping at the first, per the core's
// validation contract.
func (b *Bundle) Validate(d diag.Sink) bool {
	ok := true
	for i, s := range b.schemas {
		pop := d.PushPath("schema " + s.Name())
		if !s.Validate(d) {
			ok = false
		}
		pop()
		_ = i
	}
	for i, t := range b.tasks {
		pop := d.PushPath("task " + t.Task.RootType().Name())
		if !t.Task.Validate(d) {
			ok = false
		}
		pop()
		_ = i
	}
	return ok
}

// LoadInstanceXML parses an XML IR instance document against the
// schema registered at schemaIndex.
func (b *Bundle) LoadInstanceXML(r io.Reader, schemaIndex int, d diag.Sink) (*instance.RootInstance, bool) {
	return serial.LoadInstanceXML(r, b.schemas[schemaIndex], d)
}

// SaveInstanceXML writes ri as an XML IR instance document.
func (b *Bundle) SaveInstanceXML(w io.Writer, ri *instance.RootInstance) error {
	return serial.SaveInstanceXML(w, ri)
}

// LoadTaskJSON parses a Task manifest document against the schema
// registered at schemaIndex and appends it as a new task entry,
// returning its index.
func (b *Bundle) LoadTaskJSON(json []byte, schemaIndex int, kind OutputKind, d diag.Sink) (int, bool) {
	task, ok := serial.LoadTaskJSON(json, b.schemas[schemaIndex], d)
	if task == nil {
		return -1, false
	}
	return b.AddTask(task, schemaIndex, kind), ok
}

// SaveTaskJSON serializes the task at taskIndex back to a manifest
// document.
func (b *Bundle) SaveTaskJSON(taskIndex int) ([]byte, error) {
	return serial.SaveTaskJSON(b.tasks[taskIndex].Task)
}

// Run builds an execution context for the task at taskIndex against
// root and drives it to completion, writing Output statements to out.
func (b *Bundle) Run(taskIndex int, root *instance.RootInstance, d diag.Sink, out exec.OutputSink) bool {
	return b.RunWithMaxDepth(taskIndex, root, d, out, 0)
}

// RunWithMaxDepth is Run with an explicit call stack depth override;
// maxDepth <= 0 keeps the engine's default.
func (b *Bundle) RunWithMaxDepth(taskIndex int, root *instance.RootInstance, d diag.Sink, out exec.OutputSink, maxDepth int) bool {
	ctx := exec.NewContext(b.tasks[taskIndex].Task, root, d, out)
	if maxDepth > 0 {
		ctx.SetMaxDepth(maxDepth)
	}
	return ctx.Run()
}
