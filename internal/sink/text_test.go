package sink

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xushengj/bundlekit/internal/value"
)

func TestTextSink_UTF8RoundTrip(t *testing.T) {
	s := NewTextSink(UTF8)
	require.Equal(t, []value.Kind{value.String}, s.AllowedKinds())
	require.True(t, s.AddOutput(value.FromString("hello")))
	require.Equal(t, "hello", string(s.Result()))
}

func TestTextSink_RejectsNonString(t *testing.T) {
	s := NewTextSink(UTF8)
	require.False(t, s.AddOutput(value.FromInt64(1)))
}

func TestTextSink_Windows1252ReplacesUnsupportedWithNUL(t *testing.T) {
	s := NewTextSink(Windows1252)
	// U+4E2D (a CJK ideograph) has no Windows-1252 representation.
	require.True(t, s.AddOutput(value.FromString("a中z")))
	result := s.Result()
	require.Equal(t, []byte{'a', 0x00, 'z'}, result)
}

func TestTextSink_UTF16LEEncodesASCII(t *testing.T) {
	s := NewTextSink(UTF16LE)
	require.True(t, s.AddOutput(value.FromString("AB")))
	require.Equal(t, []byte{'A', 0x00, 'B', 0x00}, s.Result())
}

func TestTextSink_AppendsAcrossMultipleOutputs(t *testing.T) {
	s := NewTextSink(UTF8)
	require.True(t, s.AddOutput(value.FromString("foo")))
	require.True(t, s.AddOutput(value.FromString("bar")))
	require.Equal(t, "foobar", string(s.Result()))
}
