// Package oggtest builds Ogg physical streams in memory for tests.
//
// Pagination is explicit: packets accumulate on the current page of their
// stream until FlushPage is called or the segment table fills up, so tests
// control exactly which packets share a page and where pages interleave.
package oggtest

import (
	"bytes"

	"github.com/simonhull/oggseek/internal/binary"
	"github.com/simonhull/oggseek/internal/ogg"
)

// Writer accumulates encoded pages.
type Writer struct {
	buf bytes.Buffer
	sw  *binary.SafeWriter
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	w := &Writer{}
	w.sw = binary.NewSafeWriter(&w.buf)
	return w
}

// Bytes returns everything written so far.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Offset returns the byte offset at which the next page will start.
func (w *Writer) Offset() int64 { return w.sw.Offset() }

// WriteRaw appends arbitrary bytes, such as garbage between pages.
func (w *Writer) WriteRaw(b []byte) { _ = w.sw.WriteBytes(b) }

// Stream starts a logical stream. Its first page is flagged BOS.
func (w *Writer) Stream(serial uint32) *Stream {
	return &Stream{w: w, serial: serial, gp: -1, bos: true}
}

// Stream paginates packets for one serial number.
type Stream struct {
	w      *Writer
	serial uint32
	pageNo uint32

	lacing    []byte
	body      []byte
	gp        int64
	bos       bool
	eos       bool
	continued bool

	// Offsets records where each flushed page started.
	Offsets []int64
}

// Packet appends a packet with the given granule position. The page that
// the packet completes on carries gp unless a later packet also completes there.
func (s *Stream) Packet(data []byte, gp int64) {
	for len(data) >= 255 {
		if len(s.lacing) == ogg.MaxSegments {
			s.flush(true)
		}
		s.lacing = append(s.lacing, 255)
		s.body = append(s.body, data[:255]...)
		data = data[255:]
	}
	if len(s.lacing) == ogg.MaxSegments {
		s.flush(true)
	}
	s.lacing = append(s.lacing, byte(len(data)))
	s.body = append(s.body, data...)
	s.gp = gp
}

// LastPacket appends a packet and marks the stream as ended.
func (s *Stream) LastPacket(data []byte, gp int64) {
	s.Packet(data, gp)
	s.eos = true
}

// FlushPage writes the current page, if it holds any segments.
func (s *Stream) FlushPage() {
	if len(s.lacing) == 0 && !s.eos {
		return
	}
	s.flush(false)
}

// SkipPageNo leaves a gap in the page sequence, as if a page was lost.
func (s *Stream) SkipPageNo() { s.pageNo++ }

// PageNo returns the sequence number of the next page.
func (s *Stream) PageNo() uint32 { return s.pageNo }

// flush encodes the current page. continues reports whether the packet in
// progress carries over onto the next page.
func (s *Stream) flush(continues bool) {
	var flags byte
	if s.continued {
		flags |= ogg.FlagContinued
	}
	if s.bos {
		flags |= ogg.FlagBOS
	}
	if s.eos && !continues {
		flags |= ogg.FlagEOS
	}

	gp := s.gp
	if !completes(s.lacing) {
		gp = -1
	}

	var hdr bytes.Buffer
	hw := binary.NewSafeWriter(&hdr)
	_ = hw.WriteBytes(ogg.CapturePattern)
	_ = binary.Write[uint8](hw, 0)
	_ = binary.Write[uint8](hw, flags)
	_ = binary.WriteLE[uint64](hw, uint64(gp))
	_ = binary.WriteLE[uint32](hw, s.serial)
	_ = binary.WriteLE[uint32](hw, s.pageNo)
	_ = binary.WriteLE[uint32](hw, 0)
	_ = binary.Write[uint8](hw, uint8(len(s.lacing)))
	_ = hw.WriteBytes(s.lacing)

	pg := ogg.Page{Header: hdr.Bytes(), Body: s.body}
	pg.SetChecksum()

	s.Offsets = append(s.Offsets, s.w.Offset())
	s.w.WriteRaw(pg.Header)
	s.w.WriteRaw(pg.Body)

	s.pageNo++
	s.lacing = nil
	s.body = nil
	s.gp = -1
	s.bos = false
	s.continued = continues
}

func completes(lacing []byte) bool {
	for _, v := range lacing {
		if v < 255 {
			return true
		}
	}
	return false
}
