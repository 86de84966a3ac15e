package ffi

import "fmt"

// Signature is one foreign-function binding: a library, a symbol
// inside it, and the C ABI shape of a call to that symbol (spec.md
// §4.8 "Define").
type Signature struct {
	Library    string
	Symbol     string
	Params     []TypeTag
	Return     TypeTag
	Convention string // reserved for a future calling-convention tag; "" means the platform default
}

// Key is the "libname!symbol" string the registry indexes signatures
// and bound functions under (SPEC_FULL.md §D).
func (s *Signature) Key() string {
	return fmt.Sprintf("%s!%s", s.Library, s.Symbol)
}
