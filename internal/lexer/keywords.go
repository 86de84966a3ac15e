package lexer

// keywords is the closed reserved-word set (spec.md §4.2): the ~35
// standard Python keywords plus the soft keywords this grammar subset
// treats as reserved (match/case), plus bilingual Hausa aliases that
// resolve to the same canonical (English) keyword. Using any of these
// spellings as an identifier fails with "SyntaxError: reserved
// keyword"; the lexer always reports the canonical English spelling in
// Token.Literal so the parser has exactly one spelling per keyword to
// match against.
var keywords = map[string]string{
	// English keywords.
	"False": "False", "None": "None", "True": "True",
	"and": "and", "as": "as", "assert": "assert", "async": "async",
	"await": "await", "break": "break", "class": "class",
	"continue": "continue", "def": "def", "del": "del", "elif": "elif",
	"else": "else", "except": "except", "finally": "finally",
	"for": "for", "from": "from", "global": "global", "if": "if",
	"import": "import", "in": "in", "is": "is", "lambda": "lambda",
	"nonlocal": "nonlocal", "not": "not", "or": "or", "pass": "pass",
	"raise": "raise", "return": "return", "try": "try", "while": "while",
	"with": "with", "yield": "yield", "match": "match", "case": "case",

	// Bilingual Hausa aliases -> canonical English keyword.
	"gaskiya": "True", "karya": "False", "babu": "None",
	"kuma": "and", "ko": "or", "ba": "not",
	"aiki": "def", "mayar": "return", "domin": "for",
	"yayinda": "while", "rukuni": "class", "shigo": "import",
	"tsaya": "break", "cigaba": "continue", "wuce": "pass",
	"gwada": "try", "jefa": "raise", "tare": "with",
	"cikin": "in", "shine": "is", "idan": "if",
}

// LookupKeyword returns the canonical keyword spelling for s (English
// or Hausa alias) and true, or ("", false) if s is an ordinary
// identifier.
func LookupKeyword(s string) (string, bool) {
	k, ok := keywords[s]
	return k, ok
}
