package vm

import (
	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// newOpError constructs a Go error carrying a Tauraro exception of the
// given built-in type, the single currency every VM-internal failure
// (arithmetic, attribute lookup, call binding...) is reported in before
// it reaches raisedException/the frame's exception table.
func newOpError(typeName, msg string) error {
	return value.NewException(typeName, msg).AsException()
}

// asException normalizes any error returned by a value-package helper
// or a native built-in into a *value.ExceptionObj: OpError and a
// previously-raised ExceptionObj pass through as the type they already
// carry, anything else (a Go-internal fault) becomes a RuntimeError --
// mirroring db47h-ngaro/vm/core.go's panic-to-error boundary, except
// here the boundary is an ordinary error return rather than recover().
func asException(err error) *value.ExceptionObj {
	switch e := err.(type) {
	case *value.ExceptionObj:
		return e
	case *value.OpError:
		return value.NewException(e.TypeName, e.Message).AsException()
	default:
		return value.NewException(value.ErrRuntimeError, e.Error()).AsException()
	}
}

// findHandler searches f.Code's exception table for the innermost
// range covering pc that applies to exc -- an except clause matching
// exc's type name (an empty Types list is a catch-all / bare except),
// or a finally -- returning the entry if found. Innermost means
// narrowest: nested try statements are compiled (and appended) before
// their enclosing one, so table order alone does not say which is
// inner. A finally range is widened to also cover its own handler/else
// bodies (so cleanup still runs if those raise), which makes it wider
// than its own except clauses, so those still outrank it; among ranges
// of equal width the first in the table (the first except clause) wins.
func findHandler(co *compiler.CodeObject, pc int, exc *value.ExceptionObj) (compiler.ExcRange, bool) {
	var best compiler.ExcRange
	found := false
	for _, r := range co.ExcTable {
		if pc < r.Start || pc >= r.End || (!r.IsFinally && !matchesType(r, exc)) {
			continue
		}
		if !found || r.End-r.Start < best.End-best.Start {
			best, found = r, true
		}
	}
	return best, found
}

func matchesType(r compiler.ExcRange, exc *value.ExceptionObj) bool {
	if len(r.Types) == 0 {
		return true
	}
	for _, t := range r.Types {
		if t == exc.TypeName {
			return true
		}
	}
	return false
}

// pushTraceback records the current frame's position before an
// exception unwinds past it (spec.md §7 "the traceback is built lazily
// by walking the frame stack").
func pushTraceback(exc *value.ExceptionObj, f *Frame, line int) {
	exc.Traceback = append(exc.Traceback, value.Frame{
		FuncName: f.FuncName,
		Line:     line,
		Filename: f.Code.Filename,
	})
}
