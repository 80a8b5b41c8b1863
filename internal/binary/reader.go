// Package binary provides bounds-checked field extraction from codec header
// packets, plus a position-tracking writer used to build pages.
package binary

import (
	"bytes"
	"fmt"
	"io"
)

// SafeReader wraps io.ReaderAt with bounds checking. Every read names the
// field being read so that a short header produces a useful error.
type SafeReader struct {
	r    io.ReaderAt
	name string
	size int64
}

// NewSafeReader creates a new SafeReader over size bytes of r.
func NewSafeReader(r io.ReaderAt, size int64, name string) *SafeReader {
	return &SafeReader{
		r:    r,
		size: size,
		name: name,
	}
}

// FromBytes creates a SafeReader over an in-memory packet.
func FromBytes(b []byte, name string) *SafeReader {
	return NewSafeReader(bytes.NewReader(b), int64(len(b)), name)
}

// Name returns the name used in error messages.
func (sr *SafeReader) Name() string {
	return sr.name
}

// Size returns the number of readable bytes.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// Has reports whether n bytes are available at off.
func (sr *SafeReader) Has(off int64, n int) bool {
	return off >= 0 && off+int64(n) <= sr.size
}

// ReadAt fills b from offset off.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	if off < 0 || off >= sr.size {
		return fmt.Errorf("%s: offset %d out of bounds (size %d) while reading %s",
			sr.name, off, sr.size, what)
	}
	if off+int64(len(b)) > sr.size {
		return fmt.Errorf("%s: read of %d bytes at offset %d exceeds size %d while reading %s",
			sr.name, len(b), off, sr.size, what)
	}

	n, err := sr.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", sr.name, what, off, err)
	}
	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, want %d",
			sr.name, what, off, n, len(b))
	}
	return nil
}

// Reader reads fields sequentially from a fixed byte order.
type Reader struct {
	*SafeReader
	endian Endianness
	offset int64
}

// NewReader creates a Reader starting at offset.
func NewReader(sr *SafeReader, offset int64, endian Endianness) *Reader {
	return &Reader{
		SafeReader: sr,
		endian:     endian,
		offset:     offset,
	}
}

// ReadValue reads a numeric value and advances the offset.
func ReadValue[T Unsigned](r *Reader, what string) (T, error) {
	val, err := ReadEndian[T](r.SafeReader, r.offset, what, r.endian)
	if err != nil {
		return 0, err
	}
	r.offset += int64(sizeOf[T]())
	return val, nil
}

// ReadString reads length bytes as a string and advances the offset.
func (r *Reader) ReadString(length int, what string) (string, error) {
	if length < 0 {
		return "", fmt.Errorf("%s: negative length %d for %s", r.name, length, what)
	}
	if length == 0 {
		return "", nil
	}
	buf := make([]byte, length)
	if err := r.SafeReader.ReadAt(buf, r.offset, what); err != nil {
		return "", err
	}
	r.offset += int64(length)
	return string(buf), nil
}

// Skip advances the offset by n bytes.
func (r *Reader) Skip(n int64) {
	r.offset += n
}

// Seek moves to an absolute offset.
func (r *Reader) Seek(off int64) {
	r.offset = off
}

// Offset returns the current offset.
func (r *Reader) Offset() int64 {
	return r.offset
}

// ChainReader defers error checking across a sequence of reads.
// After the first failure every read returns the zero value.
type ChainReader struct {
	*Reader
	err error
}

// NewChainReader creates a new ChainReader.
func NewChainReader(r *Reader) *ChainReader {
	return &ChainReader{Reader: r}
}

// ReadChained reads a value, recording the first error.
func ReadChained[T Unsigned](cr *ChainReader, what string) T {
	if cr.err != nil {
		return 0
	}
	val, err := ReadValue[T](cr.Reader, what)
	if err != nil {
		cr.err = err
		return 0
	}
	return val
}

// String reads a string, recording the first error.
func (cr *ChainReader) String(length int, what string) string {
	if cr.err != nil {
		return ""
	}
	val, err := cr.Reader.ReadString(length, what)
	if err != nil {
		cr.err = err
		return ""
	}
	return val
}

// Error returns the first error encountered, if any.
func (cr *ChainReader) Error() error {
	return cr.err
}
