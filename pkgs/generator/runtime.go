package generator

import _ "embed"

// The C++ runtime that generated headers include as "parse.hpp". It carries
// the stream-backed parser state and the primitive matchers; generated code
// links against nothing else.
//
//go:embed runtime/parse.hpp
var runtimeSource string

// RuntimeSource returns the contents of the runtime header. The CLI writes it
// next to generated parsers.
func RuntimeSource() string {
	return runtimeSource
}
