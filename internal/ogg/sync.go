package ogg

import (
	"bytes"

	"github.com/pkg/errors"
)

// ErrOverflow is returned by Wrote when more bytes are claimed than were buffered.
var ErrOverflow = errors.New("ogg: wrote past end of sync buffer")

// SyncState locates pages in an incrementally supplied byte stream.
//
// Callers obtain space with Buffer, copy data into it, report the amount
// with Wrote and then pull pages with PageSeek.
type SyncState struct {
	data     []byte
	fill     int // bytes of valid data in data
	returned int // bytes already consumed from the front

	headerBytes int // header size of the page under inspection, 0 if not yet known
	bodyBytes   int
}

// Buffer returns a writable slice of exactly size bytes at the end of the
// buffered data. Consumed bytes are compacted away first, so pages obtained
// earlier must not be used after calling Buffer.
func (s *SyncState) Buffer(size int) []byte {
	if s.returned > 0 {
		s.fill = copy(s.data, s.data[s.returned:s.fill])
		s.returned = 0
	}
	if need := s.fill + size; need > len(s.data) {
		grown := make([]byte, need+4096)
		copy(grown, s.data[:s.fill])
		s.data = grown
	}
	return s.data[s.fill : s.fill+size]
}

// Wrote marks n bytes of the last Buffer slice as valid.
func (s *SyncState) Wrote(n int) error {
	if n < 0 || s.fill+n > len(s.data) {
		return errors.Wrapf(ErrOverflow, "wrote %d bytes with %d free", n, len(s.data)-s.fill)
	}
	s.fill += n
	return nil
}

// Buffered returns the number of unconsumed bytes.
func (s *SyncState) Buffered() int { return s.fill - s.returned }

// PageSeek looks for a page at the front of the buffered data.
//
// It returns the page length (> 0) when a complete, checksum-verified page
// was found and stored in pg; 0 when more data is needed; and the negated
// number of bytes skipped (< 0) when the front of the buffer is not a page.
func (s *SyncState) PageSeek(pg *Page) int {
	page := s.data[s.returned:s.fill]
	avail := len(page)

	if s.headerBytes == 0 {
		if avail < HeaderSize {
			return 0
		}
		if !bytes.Equal(page[:4], CapturePattern) {
			return s.skip(page)
		}
		headerBytes := HeaderSize + int(page[26])
		if avail < headerBytes {
			return 0
		}
		bodyBytes := 0
		for _, v := range page[HeaderSize:headerBytes] {
			bodyBytes += int(v)
		}
		s.headerBytes = headerBytes
		s.bodyBytes = bodyBytes
	}

	n := s.headerBytes + s.bodyBytes
	if n > avail {
		return 0
	}

	candidate := Page{Header: page[:s.headerBytes], Body: page[s.headerBytes:n]}
	if !candidate.Verify() {
		return s.skip(page)
	}

	if pg != nil {
		*pg = candidate
	}
	s.returned += n
	s.headerBytes = 0
	s.bodyBytes = 0
	return n
}

// skip drops bytes up to the next possible capture pattern.
func (s *SyncState) skip(page []byte) int {
	s.headerBytes = 0
	s.bodyBytes = 0

	next := bytes.IndexByte(page[1:], 'O')
	if next < 0 {
		next = len(page)
	} else {
		next++
	}
	s.returned += next
	return -next
}

// Reset discards all buffered data.
func (s *SyncState) Reset() {
	s.fill = 0
	s.returned = 0
	s.headerBytes = 0
	s.bodyBytes = 0
}
