package program

import (
	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/value"
)

// memberDecl is a flat list of named, typed declarations with optional
// initializers: the shape shared by a Task's global variables and each
// node type's member variables (spec.md §4.4). The name-to-index map is
// rebuilt by validate and is nil beforehand.
type memberDecl struct {
	names        []string
	kinds        []value.Kind
	initializers []*value.Value // nil element = no initializer
	nameToIndex  map[string]int
}

func (m *memberDecl) add(name string, kind value.Kind, initializer *value.Value) {
	m.names = append(m.names, name)
	m.kinds = append(m.kinds, kind)
	m.initializers = append(m.initializers, initializer)
}

func (m *memberDecl) count() int { return len(m.names) }

func (m *memberDecl) indexOf(name string) int {
	if m.nameToIndex == nil {
		return -1
	}
	idx, ok := m.nameToIndex[name]
	if !ok {
		return -1
	}
	return idx
}

func (m *memberDecl) rebuildIndex() {
	m.nameToIndex = make(map[string]int, len(m.names))
	for i, n := range m.names {
		if _, dup := m.nameToIndex[n]; !dup {
			m.nameToIndex[n] = i
		}
	}
}

// validateInitializerKind checks the spec.md §4.4.1 requirement shared by
// globals, per-node extra members, and function locals: an initializer,
// when provided, must match its member's declared kind.
func (m *memberDecl) validateInitializerKind(d diag.Sink, i int, name string) bool {
	init := m.initializers[i]
	if init == nil || !init.IsInitialized() {
		return true
	}
	if init.Kind() != m.kinds[i] {
		d.Diagnostic(diag.Err_Task_BadLocalInitializerKind, diag.StringParam(name), diag.KindParam(m.kinds[i]))
		return false
	}
	return true
}
