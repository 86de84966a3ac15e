package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

var (
	headerColor = color.New(color.FgRed, color.Bold)
	locColor    = color.New(color.FgCyan)
)

// Format renders exc as CPython-style traceback text: a "Traceback
// (most recent call last)" header, one "File ..., line N, in func"
// entry per value.Frame oldest-first, and a final "TypeName: message"
// line (spec.md §7). When exc.Cause is set, the chained exception is
// rendered first under a "During handling of the above exception,
// another exception occurred" separator, mirroring CPython's own
// exception-chaining output. useColor bolds the header line and the
// final "TypeName: message" line; callers decide whether stdout/stderr
// is a terminal before passing true.
func Format(exc *value.ExceptionObj, useColor bool) string {
	var b strings.Builder
	formatChain(&b, exc, useColor)
	return b.String()
}

func formatChain(b *strings.Builder, exc *value.ExceptionObj, useColor bool) {
	if exc.Cause != nil {
		formatChain(b, exc.Cause, useColor)
		b.WriteString("\nDuring handling of the above exception, another exception occurred:\n\n")
	}
	writeHeader(b, useColor)
	for _, f := range exc.Traceback {
		writeFrame(b, f, useColor)
	}
	writeSummary(b, exc, useColor)
}

func writeHeader(b *strings.Builder, useColor bool) {
	line := "Traceback (most recent call last):"
	if useColor {
		line = headerColor.Sprint(line)
	}
	b.WriteString(line)
	b.WriteByte('\n')
}

func writeFrame(b *strings.Builder, f value.Frame, useColor bool) {
	loc := fmt.Sprintf("  File %q, line %d, in %s", f.Filename, f.Line, f.FuncName)
	if useColor {
		loc = locColor.Sprint(loc)
	}
	b.WriteString(loc)
	b.WriteByte('\n')
}

func writeSummary(b *strings.Builder, exc *value.ExceptionObj, useColor bool) {
	summary := exc.TypeName
	if exc.Message != "" {
		summary = fmt.Sprintf("%s: %s", exc.TypeName, exc.Message)
	}
	if useColor {
		summary = headerColor.Sprint(summary)
	}
	b.WriteString(summary)
	b.WriteByte('\n')
}

// Print writes exc's formatted traceback to w. useColor is typically
// the result of golang.org/x/term.IsTerminal on the underlying file
// descriptor, so redirected output (a log file, a pipe) stays plain.
func Print(w io.Writer, exc *value.ExceptionObj, useColor bool) error {
	_, err := io.WriteString(w, Format(exc, useColor))
	return err
}
