// Package bufseekio provides a buffered io.ReadSeeker that keeps track of
// its logical position, so Tell never touches the underlying reader.
package bufseekio

import (
	"errors"
	"io"
)

// DefaultSize is the buffer size used by New.
const DefaultSize = 4096

const minSize = 16

var errNegativeRead = errors.New("bufseekio: reader returned negative count from Read")

// ReadSeeker buffers reads from an io.ReadSeeker. Seeks that land inside
// the buffered window are served without calling the underlying Seek.
type ReadSeeker struct {
	buf  []byte
	pos  int64 // absolute offset of buf[0]
	rd   io.ReadSeeker
	r, w int // read and write positions within buf
	err  error
}

// New returns a ReadSeeker with the default buffer size.
func New(rd io.ReadSeeker) *ReadSeeker {
	return NewSize(rd, DefaultSize)
}

// NewSize returns a ReadSeeker whose buffer holds at least size bytes.
// An existing ReadSeeker with a large enough buffer is returned as is.
func NewSize(rd io.ReadSeeker, size int) *ReadSeeker {
	if b, ok := rd.(*ReadSeeker); ok && len(b.buf) >= size {
		return b
	}
	size = max(size, minSize)
	return &ReadSeeker{buf: make([]byte, size), rd: rd}
}

func (b *ReadSeeker) readErr() error {
	err := b.err
	b.err = nil
	return err
}

func (b *ReadSeeker) buffered() int { return b.w - b.r }

// Read reads into p using at most one Read on the underlying reader.
func (b *ReadSeeker) Read(p []byte) (int, error) {
	if len(p) == 0 {
		if b.buffered() > 0 {
			return 0, nil
		}
		return 0, b.readErr()
	}
	if b.r == b.w {
		if b.err != nil {
			return 0, b.readErr()
		}
		b.pos += int64(b.r)
		b.r, b.w = 0, 0
		if len(p) >= len(b.buf) {
			// Large read into an empty buffer goes straight to p.
			n, err := b.rd.Read(p)
			if n < 0 {
				panic(errNegativeRead)
			}
			b.pos += int64(n)
			b.err = err
			return n, b.readErr()
		}
		n, err := b.rd.Read(b.buf)
		if n < 0 {
			panic(errNegativeRead)
		}
		b.err = err
		if n == 0 {
			return 0, b.readErr()
		}
		b.w = n
	}

	n := copy(p, b.buf[b.r:b.w])
	b.r += n
	return n, nil
}

// Seek implements io.Seeker.
func (b *ReadSeeker) Seek(offset int64, whence int) (int64, error) {
	if offset == 0 && whence == io.SeekCurrent {
		return b.Tell(), nil
	}
	// The end is unknown here, so the buffer cannot be reused.
	if whence == io.SeekEnd {
		return b.seek(offset, whence)
	}
	abs := offset
	if whence == io.SeekCurrent {
		abs += b.Tell()
	}
	if abs >= b.pos && abs < b.pos+int64(b.w) {
		b.r = int(abs - b.pos)
		return abs, nil
	}
	return b.seek(abs, io.SeekStart)
}

func (b *ReadSeeker) seek(offset int64, whence int) (int64, error) {
	pos, err := b.rd.Seek(offset, whence)
	if err != nil {
		return b.Tell(), err
	}
	b.r, b.w = 0, 0
	b.err = nil
	b.pos = pos
	return pos, nil
}

// Tell returns the logical read offset.
func (b *ReadSeeker) Tell() int64 {
	return b.pos + int64(b.r)
}
