package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

func TestFormatWithoutColorIsPlainAndChronological(t *testing.T) {
	exc := value.NewException(value.ErrValueError, "bad input").AsException()
	exc.Traceback = []value.Frame{
		{FuncName: "<module>", Line: 10, Filename: "main.tr"},
		{FuncName: "helper", Line: 3, Filename: "main.tr"},
	}

	out := Format(exc, false)
	assert.Contains(t, out, "Traceback (most recent call last):")
	moduleIdx := bytesIndex(out, `File "main.tr", line 10, in <module>`)
	helperIdx := bytesIndex(out, `File "main.tr", line 3, in helper`)
	require.GreaterOrEqual(t, moduleIdx, 0)
	require.GreaterOrEqual(t, helperIdx, 0)
	assert.Less(t, moduleIdx, helperIdx, "frames must print oldest first")
	assert.Contains(t, out, "ValueError: bad input")
	assert.NotContains(t, out, "\x1b[")
}

func TestFormatWithoutMessageOmitsColon(t *testing.T) {
	exc := value.NewException(value.ErrStopIteration, "").AsException()
	out := Format(exc, false)
	assert.Contains(t, out, "StopIteration\n")
	assert.NotContains(t, out, "StopIteration:")
}

func TestFormatWithColorEmitsAnsiCodes(t *testing.T) {
	exc := value.NewException(value.ErrTypeError, "nope").AsException()
	out := Format(exc, true)
	assert.Contains(t, out, "\x1b[")
}

func TestFormatChainsCauseWithDuringHandlingSeparator(t *testing.T) {
	cause := value.NewException(value.ErrKeyError, "missing").AsException()
	exc := value.NewException(value.ErrRuntimeError, "wrapped").AsException()
	exc.Cause = cause

	out := Format(exc, false)
	causeIdx := bytesIndex(out, "KeyError: missing")
	sepIdx := bytesIndex(out, "During handling of the above exception, another exception occurred:")
	finalIdx := bytesIndex(out, "RuntimeError: wrapped")
	require.GreaterOrEqual(t, causeIdx, 0)
	require.GreaterOrEqual(t, sepIdx, 0)
	require.GreaterOrEqual(t, finalIdx, 0)
	assert.Less(t, causeIdx, sepIdx)
	assert.Less(t, sepIdx, finalIdx)
}

func TestPrintWritesToWriter(t *testing.T) {
	exc := value.NewException(value.ErrNameError, "x is not defined").AsException()
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, exc, false))
	assert.Contains(t, buf.String(), "NameError: x is not defined")
}

func bytesIndex(s, substr string) int {
	return bytes.Index([]byte(s), []byte(substr))
}
