// Package peg supplies the primitive matchers and the result type that both
// the grammar parser and generated parsers are built from. A matcher consumes
// input by advancing the buffer's read head; failure never moves it.
package peg

import "github.com/egglang/egg/pkgs/buffer"

// Result is the outcome of a matcher: success carrying a value, or failure.
// Inspect it explicitly with Ok; Value yields the zero value after a failure.
type Result[T any] struct {
	ok    bool
	value T
}

// Match creates a successful result carrying v.
func Match[T any](v T) Result[T] {
	return Result[T]{ok: true, value: v}
}

// Fail creates a failed result.
func Fail[T any]() Result[T] {
	return Result[T]{}
}

// Ok reports whether the match succeeded.
func (r Result[T]) Ok() bool {
	return r.ok
}

// Value returns the matched value, or the zero value after a failure.
func (r Result[T]) Value() T {
	return r.value
}

// Value is the unit return of rules that declare no type.
type Value struct{}

// byteAt reads ps[i], folding buffer failures into the EOF sentinel. Matchers
// only ever read at or ahead of the head, which is never discarded.
func byteAt(ps *buffer.Buffer, i int) byte {
	c, err := ps.At(i)
	if err != nil {
		return buffer.EOF
	}
	return c
}

// Any matches any single byte except end of input.
func Any(ps *buffer.Buffer) Result[byte] {
	c := byteAt(ps, ps.Pos)
	if c == buffer.EOF {
		return Fail[byte]()
	}
	ps.Pos++
	return Match(c)
}

// Matches consumes one byte equal to c.
func Matches(ps *buffer.Buffer, c byte) Result[byte] {
	if byteAt(ps, ps.Pos) != c {
		return Fail[byte]()
	}
	ps.Pos++
	return Match(c)
}

// InRange consumes one byte in the inclusive range [lo, hi].
func InRange(ps *buffer.Buffer, lo, hi byte) Result[byte] {
	c := byteAt(ps, ps.Pos)
	if c < lo || c > hi {
		return Fail[byte]()
	}
	ps.Pos++
	return Match(c)
}
