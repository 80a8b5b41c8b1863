package oggseek

import (
	"github.com/simonhull/oggseek/internal/ogg"
)

// Page is one Ogg page as handed to page handlers. It borrows reader
// memory and is only valid during the handler call; use Clone to keep it.
type Page = ogg.Page

// Position locates a packet in the physical stream, precisely enough for
// SeekPosition to resume at it.
type Position struct {
	// CalcGranulePos is the granule position the packet was delivered with.
	CalcGranulePos int64

	// BeginPageOffset is the offset of the page the packet starts on.
	BeginPageOffset int64

	// EndPageOffset is the offset of the page the packet completes on.
	EndPageOffset int64

	// Pages is the number of pages the packet spans.
	Pages int

	// BeginSegmentIndex is the index of the packet among the packets that
	// start on its first page. A packet continued from an earlier page
	// counts as index 0.
	BeginSegmentIndex int
}

// Packet is a reassembled packet as handed to packet handlers.
type Packet struct {
	// Data borrows reader memory and is only valid during the handler call.
	Data []byte

	BOS bool
	EOS bool

	// GranulePos is the resolved granule position, -1 if unknown.
	GranulePos int64

	// PacketNo counts packets delivered on the stream, starting at 0.
	PacketNo int64

	Position Position
}

// Clone returns a copy of p that owns its data.
func (p *Packet) Clone() *Packet {
	c := *p
	c.Data = append([]byte(nil), p.Data...)
	return &c
}

// Status is returned by handlers to continue or stop reading.
type Status int

const (
	// Continue delivers the next packet or page.
	Continue Status = 0
	// StopOK stops the current Read; it returns ErrStopOK.
	StopOK Status = 1
	// StopErr stops the current Read and discards buffered input; it returns ErrStopErr.
	StopErr Status = -1
)

func (s Status) normalize() Status {
	switch {
	case s > 0:
		return StopOK
	case s < 0:
		return StopErr
	}
	return Continue
}

func (s Status) err() error {
	switch s {
	case StopOK:
		return ErrStopOK
	case StopErr:
		return ErrStopErr
	}
	return nil
}

// PacketHandler receives packets. serial identifies the logical stream.
type PacketHandler func(r *Reader, p *Packet, serial uint32) Status

// PageHandler receives pages before their packets are reassembled.
type PageHandler func(r *Reader, p *Page, serial uint32) Status

// HandlePackets installs fn as the packet handler for serial, passing ctx
// on each call. It is SetStreamPacketHandler with a typed context.
//
// Example:
//
//	var frames []int64
//	oggseek.HandlePackets(r, serial, &frames, func(r *oggseek.Reader, p *oggseek.Packet, serial uint32, out *[]int64) oggseek.Status {
//		*out = append(*out, p.GranulePos)
//		return oggseek.Continue
//	})
func HandlePackets[T any](r *Reader, serial uint32, ctx T, fn func(r *Reader, p *Packet, serial uint32, ctx T) Status) error {
	return r.SetStreamPacketHandler(serial, func(r *Reader, p *Packet, serial uint32) Status {
		return fn(r, p, serial, ctx)
	})
}

// HandlePages installs fn as the page handler for serial, passing ctx on each call.
func HandlePages[T any](r *Reader, serial uint32, ctx T, fn func(r *Reader, p *Page, serial uint32, ctx T) Status) error {
	return r.SetStreamPageHandler(serial, func(r *Reader, p *Page, serial uint32) Status {
		return fn(r, p, serial, ctx)
	})
}
