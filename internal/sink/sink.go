// Package sink implements the execution context's output sink: the
// component an exec.Context writes Output-statement values to. See
// spec.md §4.10.
package sink

import "github.com/xushengj/bundlekit/internal/value"

// Sink describes an output sink: which kinds it accepts, how it
// receives a value, and how the caller retrieves the accumulated result
// once a run completes. exec.Context does not use this interface; it
// writes through the narrower exec.OutputSink, which TextSink also
// implements.
type Sink interface {
	// AllowedKinds returns the ValueKinds this sink accepts from an
	// Output statement. exec.Context does not consult it: it sends
	// String values only and rejects any other kind itself.
	AllowedKinds() []value.Kind

	// AddOutput buffers v in the sink's native encoding. For TextSink,
	// a false result makes Write fail, which aborts the run with an
	// Output_Unknown_Failed diagnostic.
	AddOutput(v value.Value) bool

	// Result returns the accumulated output bytes.
	Result() []byte
}
