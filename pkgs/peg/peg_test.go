package peg

import (
	"strings"
	"testing"

	"github.com/egglang/egg/pkgs/buffer"
)

func newBuf(s string) *buffer.Buffer {
	return buffer.New(strings.NewReader(s))
}

func TestAny(t *testing.T) {
	ps := newBuf("ab")

	r := Any(ps)
	if !r.Ok() || r.Value() != 'a' {
		t.Fatalf("Any = (%v, %q), want (true, 'a')", r.Ok(), r.Value())
	}
	if ps.Pos != 1 {
		t.Errorf("Pos = %d after match, want 1", ps.Pos)
	}

	Any(ps) // consume 'b'
	r = Any(ps)
	if r.Ok() {
		t.Error("Any succeeded at end of input")
	}
	if ps.Pos != 2 {
		t.Errorf("Pos = %d after failure, want 2", ps.Pos)
	}
}

func TestMatches(t *testing.T) {
	ps := newBuf("xy")

	if r := Matches(ps, 'q'); r.Ok() {
		t.Error("Matches('q') succeeded on 'x'")
	}
	if ps.Pos != 0 {
		t.Errorf("Pos = %d after failed match, want 0", ps.Pos)
	}

	if r := Matches(ps, 'x'); !r.Ok() || r.Value() != 'x' {
		t.Errorf("Matches('x') = (%v, %q), want (true, 'x')", r.Ok(), r.Value())
	}
	if ps.Pos != 1 {
		t.Errorf("Pos = %d after match, want 1", ps.Pos)
	}
}

func TestInRange(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		lo, hi byte
		ok     bool
	}{
		{"inside", "m", 'a', 'z', true},
		{"at low bound", "a", 'a', 'z', true},
		{"at high bound", "z", 'a', 'z', true},
		{"below", "A", 'a', 'z', false},
		{"above", "{", 'a', 'z', false},
		{"end of input", "", 'a', 'z', false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := newBuf(tt.input)
			r := InRange(ps, tt.lo, tt.hi)
			if r.Ok() != tt.ok {
				t.Errorf("InRange = %v, want %v", r.Ok(), tt.ok)
			}
			wantPos := 0
			if tt.ok {
				wantPos = 1
			}
			if ps.Pos != wantPos {
				t.Errorf("Pos = %d, want %d", ps.Pos, wantPos)
			}
		})
	}
}

func TestResultValueAfterFailure(t *testing.T) {
	r := Fail[int]()
	if r.Ok() {
		t.Error("Fail.Ok() = true")
	}
	if r.Value() != 0 {
		t.Errorf("Fail.Value() = %d, want zero value", r.Value())
	}
}
