package buffer

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestAtReadsOnDemand(t *testing.T) {
	b := New(strings.NewReader("hello"))

	for i, want := range []byte("hello") {
		got, err := b.At(i)
		if err != nil {
			t.Fatalf("At(%d) returned error: %v", i, err)
		}
		if got != want {
			t.Errorf("At(%d) = %q, want %q", i, got, want)
		}
	}
	if b.MaxRead() != 5 {
		t.Errorf("MaxRead() = %d, want 5", b.MaxRead())
	}
}

func TestAtPastEOFReturnsSentinel(t *testing.T) {
	b := New(strings.NewReader("ab"))

	c, err := b.At(10)
	if err != nil {
		t.Fatalf("At(10) returned error: %v", err)
	}
	if c != EOF {
		t.Errorf("At(10) = %q, want EOF sentinel", c)
	}
	// Reading past the end must not extend the buffer.
	if b.MaxRead() != 2 {
		t.Errorf("MaxRead() = %d, want 2", b.MaxRead())
	}
}

func TestAtExtendsExactly(t *testing.T) {
	b := New(strings.NewReader("abcdef"))

	if _, err := b.At(2); err != nil {
		t.Fatal(err)
	}
	if b.MaxRead() != 3 {
		t.Errorf("MaxRead() = %d after At(2), want 3", b.MaxRead())
	}
}

func TestAtWithSlowReader(t *testing.T) {
	b := New(iotest.OneByteReader(strings.NewReader("xyz")))

	c, err := b.At(2)
	if err != nil {
		t.Fatal(err)
	}
	if c != 'z' {
		t.Errorf("At(2) = %q, want 'z'", c)
	}
}

func TestSubstring(t *testing.T) {
	tests := []struct {
		name  string
		input string
		i, n  int
		want  string
	}{
		{"middle", "hello world", 6, 5, "world"},
		{"clamped to available input", "short", 3, 100, "rt"},
		{"zero length", "abc", 1, 0, ""},
		{"start past end", "abc", 10, 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(strings.NewReader(tt.input))
			got, err := b.Substring(tt.i, tt.n)
			if err != nil {
				t.Fatalf("Substring(%d, %d) returned error: %v", tt.i, tt.n, err)
			}
			if got != tt.want {
				t.Errorf("Substring(%d, %d) = %q, want %q", tt.i, tt.n, got, tt.want)
			}
		})
	}
}

func TestForgetTo(t *testing.T) {
	b := New(strings.NewReader("abc\ndef\nghi"))
	if _, err := b.At(10); err != nil {
		t.Fatal(err)
	}

	b.ForgetTo(8) // discards "abc\ndef\n"

	if got := b.NewlinesDiscarded(); got != 2 {
		t.Errorf("NewlinesDiscarded() = %d, want 2", got)
	}
	if got := b.MaxRead(); got != 11 {
		t.Errorf("MaxRead() = %d, want 11", got)
	}

	// Indices at or above the floor still read the same bytes.
	c, err := b.At(8)
	if err != nil {
		t.Fatalf("At(8) after ForgetTo: %v", err)
	}
	if c != 'g' {
		t.Errorf("At(8) = %q, want 'g'", c)
	}

	// Indices below the floor fail with the carried context.
	_, err = b.At(3)
	var fr *ForgottenRangeError
	if !errors.As(err, &fr) {
		t.Fatalf("At(3) error = %v, want ForgottenRangeError", err)
	}
	if fr.Requested != 3 || fr.Available != 8 || fr.NewlinesDiscarded != 2 {
		t.Errorf("ForgottenRangeError = %+v, want {3 8 2}", fr)
	}
}

func TestForgetToIsIdempotentBelowFloor(t *testing.T) {
	b := New(strings.NewReader("a\nb\nc"))
	if _, err := b.At(4); err != nil {
		t.Fatal(err)
	}

	b.ForgetTo(4)
	before := b.NewlinesDiscarded()
	b.ForgetTo(2)
	b.ForgetTo(4)
	if got := b.NewlinesDiscarded(); got != before {
		t.Errorf("NewlinesDiscarded() = %d after repeated ForgetTo, want %d", got, before)
	}
}

func TestNewlineAccounting(t *testing.T) {
	// Across any sequence of discards, the discarded count plus the newlines
	// still buffered equals the total newlines in the consumed prefix.
	input := "one\ntwo\nthree\nfour\nfive\n"
	b := New(strings.NewReader(input))
	if _, err := b.At(len(input) - 1); err != nil {
		t.Fatal(err)
	}

	total := strings.Count(input, "\n")
	for _, cut := range []int{3, 4, 9, 15, len(input)} {
		b.ForgetTo(cut)
		rest, err := b.Substring(cut, len(input)-cut)
		if err != nil {
			t.Fatalf("Substring after ForgetTo(%d): %v", cut, err)
		}
		if got := b.NewlinesDiscarded() + strings.Count(rest, "\n"); got != total {
			t.Errorf("after ForgetTo(%d): discarded+buffered newlines = %d, want %d", cut, got, total)
		}
	}
}

func TestBytesViewClamped(t *testing.T) {
	b := New(strings.NewReader("abcdef"))
	v, err := b.Bytes(4, 10)
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "ef" {
		t.Errorf("Bytes(4, 10) = %q, want \"ef\"", v)
	}
}

func TestPosIsClientOwned(t *testing.T) {
	b := New(strings.NewReader("abc"))
	b.Pos = 2
	if _, err := b.At(b.Pos); err != nil {
		t.Fatal(err)
	}
	if b.Pos != 2 {
		t.Errorf("Pos = %d after At, want 2", b.Pos)
	}
}
