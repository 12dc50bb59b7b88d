package sink

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/xushengj/bundlekit/internal/value"
)

// ByteEncoding names a target byte encoding TextSink can produce.
// The teacher's loader goes the other direction (file bytes -> UTF-8,
// detected by BOM); a TextSink is always told its target encoding up
// front, since an output stream has no BOM to sniff.
type ByteEncoding int

const (
	UTF8 ByteEncoding = iota
	UTF16LE
	UTF16BE
	Windows1252
)

func (e ByteEncoding) encoder() encoding.Encoding {
	switch e {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case Windows1252:
		return charmap.Windows1252
	default:
		return encoding.Nop
	}
}

// TextSink is the default OutputSink: it accepts only value.String and
// encodes every appended string to a configured target ByteEncoding,
// replacing any code point the target encoding cannot represent with
// NUL rather than failing the run, per spec.md §4.10.
type TextSink struct {
	enc ByteEncoding
	buf bytes.Buffer
}

// NewTextSink returns a TextSink that encodes to enc.
func NewTextSink(enc ByteEncoding) *TextSink {
	return &TextSink{enc: enc}
}

func (s *TextSink) AllowedKinds() []value.Kind {
	return []value.Kind{value.String}
}

// AddOutput encodes v's runes one at a time so that a rune the target
// encoding cannot represent can be replaced with a single NUL byte
// without poisoning the rest of the string, per spec.md §4.10.
func (s *TextSink) AddOutput(v value.Value) bool {
	if v.Kind() != value.String {
		return false
	}
	enc := s.enc.encoder().NewEncoder()
	var rbuf [utf8.UTFMax]byte
	for _, r := range v.StringValue() {
		n := utf8.EncodeRune(rbuf[:], r)
		out, _, err := transform.Bytes(enc, rbuf[:n])
		enc.Reset()
		if err != nil {
			s.buf.WriteByte(0)
			continue
		}
		s.buf.Write(out)
	}
	return true
}

func (s *TextSink) Result() []byte {
	return s.buf.Bytes()
}

// Write adapts TextSink to exec.OutputSink without internal/sink
// importing internal/exec: exec defines OutputSink itself as the
// narrower interface it actually needs, and TextSink satisfies it
// structurally.
func (s *TextSink) Write(v value.Value) error {
	if !s.AddOutput(v) {
		return errUnsupportedOutput
	}
	return nil
}

type sinkError string

func (e sinkError) Error() string { return string(e) }

const errUnsupportedOutput = sinkError("sink: unsupported output value")
