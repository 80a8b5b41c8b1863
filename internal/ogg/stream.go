package ogg

import (
	"github.com/pkg/errors"
)

// Lacing flags stored above the 8-bit segment size.
const (
	lacingBOS  = 0x100
	lacingEOS  = 0x200
	lacingHole = 0x400
)

// Errors returned by StreamState.PageIn.
var (
	ErrSerialMismatch = errors.New("ogg: page belongs to another stream")
	ErrBadVersion     = errors.New("ogg: unsupported stream structure version")
)

// Packet is one reassembled packet. Data borrows the StreamState body and
// is valid until the next PageIn or Reset.
type Packet struct {
	Data       []byte
	BOS        bool
	EOS        bool
	GranulePos int64
	PacketNo   int64
}

// StreamState reassembles packets for a single logical stream.
type StreamState struct {
	serial uint32

	body         []byte
	bodyReturned int

	lacing         []int
	granules       []int64
	lacingPacket   int // index one past the last completed packet
	lacingReturned int

	eos      bool
	pageNo   int64
	packetNo int64
}

// NewStreamState returns reassembly state for the given serial number.
func NewStreamState(serial uint32) *StreamState {
	s := &StreamState{serial: serial}
	s.Reset()
	return s
}

// Serial returns the serial number the state accepts pages for.
func (s *StreamState) Serial() uint32 { return s.serial }

// EOS reports whether a page flagged end-of-stream has been submitted.
func (s *StreamState) EOS() bool { return s.eos }

// Reset drops all buffered data. The next page is accepted without
// reporting a hole, whatever its sequence number.
func (s *StreamState) Reset() {
	s.body = s.body[:0]
	s.bodyReturned = 0
	s.lacing = s.lacing[:0]
	s.granules = s.granules[:0]
	s.lacingPacket = 0
	s.lacingReturned = 0
	s.eos = false
	s.pageNo = -1
	s.packetNo = 0
}

// PageIn submits a page. A sequence number discontinuity discards any
// partial packet and queues a hole marker that PacketOut reports once.
func (s *StreamState) PageIn(pg *Page) error {
	if pg.Version() > 0 {
		return errors.Wrapf(ErrBadVersion, "version %d", pg.Version())
	}
	if serial := pg.Serial(); serial != s.serial {
		return errors.Wrapf(ErrSerialMismatch, "got serial %d, want %d", serial, s.serial)
	}

	s.compact()

	var (
		continued = pg.Continued()
		bos       = pg.BOS()
		pageNo    = int64(pg.PageNo())
		lacing    = pg.Lacing()
		body      = pg.Body
		segPtr    = 0
	)

	if pageNo != s.pageNo {
		// Unroll the partial packet left by the previous page.
		for _, v := range s.lacing[s.lacingPacket:] {
			s.body = s.body[:len(s.body)-v&0xff]
		}
		s.lacing = s.lacing[:s.lacingPacket]
		s.granules = s.granules[:s.lacingPacket]

		if s.pageNo != -1 {
			s.lacing = append(s.lacing, lacingHole)
			s.granules = append(s.granules, -1)
			s.lacingPacket++
		}
	}

	// A continuation with nothing to continue has its leading segments dropped.
	if continued {
		n := len(s.lacing)
		if n < 1 || s.lacing[n-1]&0xff < 255 || s.lacing[n-1] == lacingHole {
			bos = false
			for segPtr < len(lacing) {
				v := int(lacing[segPtr])
				body = body[v:]
				segPtr++
				if v < 255 {
					break
				}
			}
		}
	}

	s.body = append(s.body, body...)

	saved := -1
	for ; segPtr < len(lacing); segPtr++ {
		v := int(lacing[segPtr])
		if bos {
			v |= lacingBOS
			bos = false
		}
		s.lacing = append(s.lacing, v)
		s.granules = append(s.granules, -1)
		if v&0xff < 255 {
			saved = len(s.lacing) - 1
			s.lacingPacket = len(s.lacing)
		}
	}

	// Only the last packet completing on the page carries its granule position.
	if saved != -1 {
		s.granules[saved] = pg.GranulePos()
	}

	if pg.EOS() {
		s.eos = true
		if n := len(s.lacing); n > 0 {
			s.lacing[n-1] |= lacingEOS
		}
	}

	s.pageNo = pageNo + 1
	return nil
}

// compact releases body bytes and lacing values already returned.
func (s *StreamState) compact() {
	if s.bodyReturned > 0 {
		n := copy(s.body, s.body[s.bodyReturned:])
		s.body = s.body[:n]
		s.bodyReturned = 0
	}
	if lr := s.lacingReturned; lr > 0 {
		n := copy(s.lacing, s.lacing[lr:])
		s.lacing = s.lacing[:n]
		copy(s.granules, s.granules[lr:])
		s.granules = s.granules[:n]
		s.lacingPacket -= lr
		s.lacingReturned = 0
	}
}

// PacketOut extracts the next complete packet into p.
//
// It returns 1 when a packet was produced, 0 when more pages are needed and
// -1 when a hole precedes the next packet. A hole is reported once and still
// consumes a packet number.
func (s *StreamState) PacketOut(p *Packet) int {
	ptr := s.lacingReturned
	if s.lacingPacket <= ptr {
		return 0
	}

	if s.lacing[ptr]&lacingHole != 0 {
		s.lacingReturned++
		s.packetNo++
		return -1
	}

	size := s.lacing[ptr] & 0xff
	n := size
	eos := s.lacing[ptr]&lacingEOS != 0
	bos := s.lacing[ptr]&lacingBOS != 0
	for size == 255 {
		ptr++
		v := s.lacing[ptr]
		size = v & 0xff
		if v&lacingEOS != 0 {
			eos = true
		}
		n += size
	}

	if p != nil {
		p.Data = s.body[s.bodyReturned : s.bodyReturned+n]
		p.BOS = bos
		p.EOS = eos
		p.GranulePos = s.granules[ptr]
		p.PacketNo = s.packetNo
	}

	s.bodyReturned += n
	s.lacingReturned = ptr + 1
	s.packetNo++
	return 1
}
