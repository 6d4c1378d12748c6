// Package buffer provides a random-access view over a forward-only input
// stream. Bytes are pulled from the underlying reader on demand and retained
// until explicitly discarded with ForgetTo, so parsers may backtrack freely
// within the retained window while long-running clients keep memory bounded.
package buffer

import (
	"fmt"
	"io"
)

// EOF is the sentinel byte returned for any index at or past end of input.
// Real NUL bytes in the input are indistinguishable from end of input.
const EOF byte = 0

// Buffer is a stream-backed byte buffer with a movable read head.
//
// Pos is owned by clients: matchers advance it on success and restore it on
// failure. The buffer itself never moves Pos. Indices handed to At, Bytes and
// Substring are absolute stream offsets; offsets below the discard floor fail
// with a ForgottenRangeError.
type Buffer struct {
	// Pos is the current read head.
	Pos int

	r           io.Reader
	buf         []byte
	off         int // stream offset of buf[0]
	newlinesOff int // '\n' count in the discarded prefix [0, off)
	eof         bool
}

// New creates a buffer over r. The reader is borrowed, not owned. The buffer
// reads exactly the bytes that are demanded, so MaxRead always reflects the
// furthest position a client examined; wrap r in a bufio.Reader to keep the
// underlying read count low.
func New(r io.Reader) *Buffer {
	return &Buffer{r: r}
}

// ForgottenRangeError reports an access into a discarded input region.
type ForgottenRangeError struct {
	Requested         int // the index that was asked for
	Available         int // the current discard floor
	NewlinesDiscarded int // '\n' count in the discarded prefix
}

func (e *ForgottenRangeError) Error() string {
	return fmt.Sprintf("input index %d is below the retention floor %d (%d newlines discarded)",
		e.Requested, e.Available, e.NewlinesDiscarded)
}

// fill reads from the stream until index i is buffered or the stream ends.
// Any read error terminates the stream; the prefix read so far stays valid.
func (b *Buffer) fill(i int) {
	need := i + 1 - (b.off + len(b.buf))
	if need <= 0 || b.eof {
		return
	}
	chunk := make([]byte, need)
	n, err := io.ReadFull(b.r, chunk)
	b.buf = append(b.buf, chunk[:n]...)
	if err != nil {
		b.eof = true
	}
}

// At returns the byte at stream index i, reading more input as needed.
// Indices at or past end of input return the EOF sentinel without error.
func (b *Buffer) At(i int) (byte, error) {
	if i < b.off {
		return EOF, &ForgottenRangeError{Requested: i, Available: b.off, NewlinesDiscarded: b.newlinesOff}
	}
	b.fill(i)
	if i >= b.off+len(b.buf) {
		return EOF, nil
	}
	return b.buf[i-b.off], nil
}

// Bytes returns a view over up to n bytes starting at index i, clamped to the
// available input. The view is valid only until the next call on the buffer.
func (b *Buffer) Bytes(i, n int) ([]byte, error) {
	if i < b.off {
		return nil, &ForgottenRangeError{Requested: i, Available: b.off, NewlinesDiscarded: b.newlinesOff}
	}
	if n > 0 {
		b.fill(i + n - 1)
	}
	lo := i - b.off
	if lo > len(b.buf) {
		lo = len(b.buf)
	}
	hi := i - b.off + n
	if hi > len(b.buf) {
		hi = len(b.buf)
	}
	if hi < lo {
		hi = lo
	}
	return b.buf[lo:hi], nil
}

// Substring returns the materialized form of Bytes(i, n).
func (b *Buffer) Substring(i, n int) (string, error) {
	v, err := b.Bytes(i, n)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// ForgetTo discards all input below index i. Newlines in the discarded prefix
// are accumulated so error reporting stays line-accurate across discards.
// Calls with i at or below the current floor are no-ops; i is clamped to
// MaxRead.
func (b *Buffer) ForgetTo(i int) {
	if i > b.MaxRead() {
		i = b.MaxRead()
	}
	if i <= b.off {
		return
	}
	n := i - b.off
	for _, c := range b.buf[:n] {
		if c == '\n' {
			b.newlinesOff++
		}
	}
	b.buf = b.buf[n:]
	b.off = i
}

// MaxRead returns the stream offset just past the last buffered byte. After a
// failed parse this is the furthest position the parser examined.
func (b *Buffer) MaxRead() int {
	return b.off + len(b.buf)
}

// NewlinesDiscarded returns the number of '\n' bytes in the discarded prefix.
func (b *Buffer) NewlinesDiscarded() int {
	return b.newlinesOff
}
