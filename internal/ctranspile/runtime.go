package ctranspile

import "strings"

// RuntimeHeader returns the tauraro_rt.h text Transpile's output always
// `#include`s: the boxed Value representation and the tauraro_* helper
// functions boxed arithmetic lowers to (spec.md §4.7 "Boxed. A
// tagged-union struct ... arithmetic goes through runtime functions
// (tauraro_add, tauraro_sub, ...) that implement the same semantics as
// the VM"). The tag names mirror internal/value.Kind's own ordering
// (value.go) so a reader can cross-reference the two representations.
func RuntimeHeader(opts Options) string {
	var b strings.Builder
	b.WriteString("#ifndef TAURARO_RT_H\n#define TAURARO_RT_H\n\n")
	if !opts.Freestanding {
		b.WriteString("#include <stdint.h>\n#include <stdbool.h>\n#include <stdio.h>\n#include <stdlib.h>\n#include <string.h>\n\n")
	} else {
		b.WriteString("#include <stdint.h>\n#include <stdbool.h>\n\n")
	}

	b.WriteString("typedef enum {\n")
	b.WriteString("\tTAURARO_NONE,\n\tTAURARO_BOOL,\n\tTAURARO_INT,\n\tTAURARO_FLOAT,\n\tTAURARO_STR,\n\tTAURARO_OBJECT,\n")
	b.WriteString("} TaurarroKind;\n\n")

	b.WriteString("typedef struct Value {\n\tTaurarroKind kind;\n\tunion {\n\t\tbool b;\n\t\tint64_t i;\n\t\tdouble f;\n\t\tconst char *s;\n\t\tvoid *obj;\n\t} as;\n} Value;\n\n")

	writeMemoryStrategy(&b, opts.Memory)

	b.WriteString("static inline Value tauraro_box_int(int64_t n) { Value v; v.kind = TAURARO_INT; v.as.i = n; return v; }\n")
	b.WriteString("static inline Value tauraro_box_float(double f) { Value v; v.kind = TAURARO_FLOAT; v.as.f = f; return v; }\n")
	b.WriteString("static inline Value tauraro_box_bool(bool b) { Value v; v.kind = TAURARO_BOOL; v.as.b = b; return v; }\n")
	b.WriteString("static inline Value tauraro_box_str(const char *s) { Value v; v.kind = TAURARO_STR; v.as.s = s; return v; }\n\n")

	b.WriteString("static inline int64_t tauraro_unbox_int(Value v) { return v.as.i; }\n")
	b.WriteString("static inline double tauraro_unbox_float(Value v) { return v.kind == TAURARO_INT ? (double)v.as.i : v.as.f; }\n")
	b.WriteString("static inline bool tauraro_unbox_bool(Value v) { return v.as.b; }\n")
	b.WriteString("static inline const char *tauraro_unbox_str(Value v) { return v.as.s; }\n\n")

	b.WriteString("typedef struct TaurarroClassDesc TaurarroClassDesc;\n")
	b.WriteString("typedef struct TaurarroMethodEntry {\n\tconst char *name;\n\tValue (*fn)(Value self, Value *args, int nargs);\n} TaurarroMethodEntry;\n")
	b.WriteString("struct TaurarroClassDesc {\n\tconst char *name;\n\tTaurarroClassDesc **bases;\n\tint nbases;\n\tTaurarroMethodEntry *methods;\n\tint nmethods;\n};\n\n")

	for _, op := range []struct{ name, sym string }{
		{"add", "+"}, {"sub", "-"}, {"mul", "*"}, {"div", "/"},
	} {
		b.WriteString("Value tauraro_" + op.name + "(Value a, Value b);\n")
	}
	b.WriteString("Value tauraro_floordiv(Value a, Value b);\n")
	b.WriteString("Value tauraro_mod(Value a, Value b);\n")
	b.WriteString("Value tauraro_pow(Value a, Value b);\n")
	b.WriteString("void tauraro_print_n(Value *vs, int n);\n")
	b.WriteString("bool tauraro_truthy(Value v);\n")
	b.WriteString("int tauraro_compare(Value a, Value b);\n\n")

	b.WriteString(hardwareIntrinsicDecls(opts))

	b.WriteString("\n#endif\n")
	return b.String()
}

func writeMemoryStrategy(b *strings.Builder, m MemStrategy) {
	switch m {
	case MemManual:
		b.WriteString("/* memory strategy: manual -- allocate/free surfaced directly, no automatic decrements */\n")
		b.WriteString("static inline void *allocate(size_t n) { return malloc(n); }\n")
		b.WriteString("static inline void free_(void *p) { free(p); }\n\n")
	case MemArena:
		b.WriteString("/* memory strategy: arena -- bump allocator, reset on function exit */\n")
		b.WriteString("typedef struct TaurarroArena { char *base; size_t size, used; } TaurarroArena;\n")
		b.WriteString("static inline void *arena_alloc(TaurarroArena *a, size_t n) {\n")
		b.WriteString("\tif (a->used + n > a->size) return NULL;\n\tvoid *p = a->base + a->used;\n\ta->used += n;\n\treturn p;\n}\n")
		b.WriteString("static inline void arena_reset(TaurarroArena *a) { a->used = 0; }\n\n")
	default:
		b.WriteString("/* memory strategy: automatic -- reference counted, decrement on scope exit */\n")
		b.WriteString("typedef struct TaurarroObj { int32_t refcount; } TaurarroObj;\n")
		b.WriteString("static inline void tauraro_incref(TaurarroObj *o) { if (o) o->refcount++; }\n")
		b.WriteString("void tauraro_decref(TaurarroObj *o);\n\n")
	}
}
