package vm

import (
	"fmt"

	"github.com/Yusee-Programmer/tauraro-sub008/internal/compiler"
	"github.com/Yusee-Programmer/tauraro-sub008/internal/value"
)

// bindCall binds positional and keyword arguments against co.Params,
// producing one value per co.Locals[:len(co.Params)] slot in
// declaration order -- the register-machine analogue of Python's
// argument-binding algorithm (spec.md §4.4 "Calling convention").
func bindCall(co *compiler.CodeObject, positional []value.Value, kwargs map[string]value.Value) ([]value.Value, error) {
	params := co.Params
	out := make([]value.Value, len(params))
	used := make(map[string]bool, len(kwargs))

	pi := 0 // next positional param index (skips *args/**kwargs slots)
	ai := 0 // next positional argument index
	for pi < len(params) {
		p := params[pi]
		if p.Variadic {
			rest := append([]value.Value(nil), positional[ai:]...)
			out[pi] = value.Tuple(rest)
			ai = len(positional)
			pi++
			continue
		}
		if p.KwVariadic {
			d := value.NewDict()
			for k, v := range kwargs {
				if !used[k] {
					d.AsDict().Set(value.Str(k), v)
					used[k] = true
				}
			}
			out[pi] = d
			pi++
			continue
		}
		if !p.KeywordOnly && ai < len(positional) {
			out[pi] = positional[ai]
			ai++
			pi++
			continue
		}
		if v, ok := kwargs[p.Name]; ok {
			out[pi] = v
			used[p.Name] = true
			pi++
			continue
		}
		if p.HasDefault {
			out[pi] = co.Consts[p.DefaultConst]
			pi++
			continue
		}
		return nil, newOpError(value.ErrTypeError,
			fmt.Sprintf("%s() missing required argument: %q", co.Name, p.Name))
	}
	if ai < len(positional) {
		return nil, newOpError(value.ErrTypeError,
			fmt.Sprintf("%s() takes at most %d positional argument(s)", co.Name, ai))
	}
	for k := range kwargs {
		if !used[k] {
			return nil, newOpError(value.ErrTypeError,
				fmt.Sprintf("%s() got an unexpected keyword argument %q", co.Name, k))
		}
	}
	return out, nil
}

// expandCallArgs flattens an OpCallUnpack window into the
// (positional, keyword) pair bindCall expects, expanding a trailing
// *args iterable and/or **kwargs mapping (compileCall restricts spreads
// to a single trailing occurrence of each kind; see compiler.go).
func expandCallArgs(args []value.Value, kwNames []value.Value, kwVals []value.Value, starArgs, starKwargs bool) ([]value.Value, map[string]value.Value, error) {
	positional := args
	if starArgs && len(positional) > 0 {
		last := positional[len(positional)-1]
		it, ok := value.Iter(last)
		if !ok {
			return nil, nil, newOpError(value.ErrTypeError, "argument after * must be iterable")
		}
		var spread []value.Value
		for {
			v, ok := it.Next()
			if !ok {
				break
			}
			spread = append(spread, v)
		}
		positional = append(append([]value.Value(nil), positional[:len(positional)-1]...), spread...)
	}

	kwargs := make(map[string]value.Value, len(kwNames))
	n := len(kwNames)
	if starKwargs && n > 0 {
		n--
		last := kwVals[len(kwVals)-1]
		if last.Kind != value.KindDict {
			return nil, nil, newOpError(value.ErrTypeError, "argument after ** must be a dict")
		}
		for _, kv := range last.AsDict().Items() {
			if kv[0].Kind != value.KindStr {
				return nil, nil, newOpError(value.ErrTypeError, "keywords must be strings")
			}
			kwargs[kv[0].AsStr()] = kv[1]
		}
	}
	for i := 0; i < n; i++ {
		kwargs[kwNames[i].AsStr()] = kwVals[i]
	}
	return positional, kwargs, nil
}
