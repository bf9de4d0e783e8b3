// Package outbuf implements the renderer's output byte buffer: a
// geometrically growing (doubling) byte slice that is fully consumed by a
// single blocking write on Flush. A render pass never performs a partial
// flush — the emitted escape sequences (in particular a sixel DCS block)
// must stay balanced, so a flush is all-or-nothing.
package outbuf

import "io"

const minCapacity = 4096

// Buffer accumulates output bytes for one render pass.
type Buffer struct {
	buf []byte
}

// New returns an empty buffer with a modest initial capacity.
func New() *Buffer {
	return &Buffer{buf: make([]byte, 0, minCapacity)}
}

// Write appends p, doubling the backing array whenever it would overflow,
// and implements io.Writer so encoders (sixel.Encode, fmt.Fprintf) can
// write directly into the buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.grow(len(p))
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(c byte) error {
	b.grow(1)
	b.buf = append(b.buf, c)
	return nil
}

// WriteString appends s.
func (b *Buffer) WriteString(s string) (int, error) {
	b.grow(len(s))
	b.buf = append(b.buf, s...)
	return len(s), nil
}

func (b *Buffer) grow(n int) {
	need := len(b.buf) + n
	if cap(b.buf) >= need {
		return
	}
	newCap := cap(b.buf)
	if newCap == 0 {
		newCap = minCapacity
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, len(b.buf), newCap)
	copy(grown, b.buf)
	b.buf = grown
}

// Len reports how many bytes are pending.
func (b *Buffer) Len() int { return len(b.buf) }

// Bytes exposes the pending bytes without copying; callers must not retain
// the slice past the next Write/Flush.
func (b *Buffer) Bytes() []byte { return b.buf }

// Reset discards any pending bytes without releasing capacity.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

// Flush writes every pending byte to w in one call and resets the buffer.
// A short write (n < len(buf)) is reported as an error: the caller cannot
// retry a partial escape-sequence write safely.
func (b *Buffer) Flush(w io.Writer) error {
	if len(b.buf) == 0 {
		return nil
	}
	n, err := w.Write(b.buf)
	if err != nil {
		return err
	}
	if n != len(b.buf) {
		return io.ErrShortWrite
	}
	b.Reset()
	return nil
}
