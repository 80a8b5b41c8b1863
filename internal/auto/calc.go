package auto

import (
	"bytes"

	"github.com/simonhull/oggseek/internal/binary"
	"github.com/simonhull/oggseek/internal/types"
)

// Packet is the view of a packet the granule calculators work on.
type Packet struct {
	Data       []byte
	GranulePos int64 // raw value from the page, -1 if absent
	PacketNo   int64

	// PageGranulePos is the granule position of the page the packet completed on.
	PageGranulePos int64
}

// Calc computes granule positions that pages leave out. It holds codec
// state learned from header packets, so one Calc serves one stream.
type Calc struct {
	content    types.Content
	numHeaders int

	// theora
	shift int

	// vorbis
	vorbis *vorbisModes

	// speex
	increment int64

	// audio packets seen since the last Reset
	seen bool
}

// NewCalc returns a calculator for a stream of the given content.
func NewCalc(content types.Content) *Calc {
	return &Calc{content: content, numHeaders: DefaultHeaders}
}

// SetNumHeaders sets the header packet count used to classify packets.
func (c *Calc) SetNumHeaders(n int) {
	if n > 0 {
		c.numHeaders = n
	}
}

// Reset forgets per-position state, as after a seek. Header-derived state is kept.
func (c *Calc) Reset() {
	c.seen = false
	if c.vorbis != nil {
		c.vorbis.prevBlock = -1
	}
}

// CanResolveBackward reports whether granule positions of earlier packets
// can be derived from a later one, which is what makes buffering worthwhile.
func (c *Calc) CanResolveBackward() bool {
	switch c.content {
	case types.ContentTheora, types.ContentVorbis, types.ContentSpeex,
		types.ContentFLAC, types.ContentOpus:
		return true
	case types.ContentPCM, types.ContentCMML, types.ContentAnnodex,
		types.ContentSkeleton, types.ContentFLAC0, types.ContentAnxData,
		types.ContentKate, types.ContentUnknown:
		return false
	}
	return false
}

// Forward computes the granule position of p from the resolved position of
// the previous packet, last. It returns -1 when it cannot tell.
func (c *Calc) Forward(p Packet, last int64) int64 {
	switch c.content {
	case types.ContentTheora:
		return c.theoraForward(p, last)
	case types.ContentVorbis:
		return c.vorbisForward(p, last)
	case types.ContentSpeex:
		return c.speexForward(p, last)
	case types.ContentFLAC:
		return c.flacForward(p, last)
	case types.ContentOpus:
		return c.opusForward(p, last)
	case types.ContentPCM, types.ContentCMML, types.ContentAnnodex,
		types.ContentSkeleton, types.ContentFLAC0, types.ContentAnxData,
		types.ContentKate, types.ContentUnknown:
		return p.GranulePos
	}
	return p.GranulePos
}

// Backward computes the granule position of this, the packet preceding
// nextData whose granule position is next. Results never go below 0.
func (c *Calc) Backward(next int64, this, nextData []byte) int64 {
	if next < 0 {
		return -1
	}
	var gp int64
	switch c.content {
	case types.ContentTheora:
		gp = c.theoraBackward(next)
	case types.ContentVorbis:
		if c.vorbis == nil {
			return -1
		}
		gp = next - (c.vorbis.blocksize(this)/4 + c.vorbis.blocksize(nextData)/4)
	case types.ContentSpeex:
		gp = next - c.increment
	case types.ContentFLAC:
		gp = next - flacBlocksize(nextData)
	case types.ContentOpus:
		gp = next - opusDuration(nextData)
	case types.ContentPCM, types.ContentCMML, types.ContentAnnodex,
		types.ContentSkeleton, types.ContentFLAC0, types.ContentAnxData,
		types.ContentKate, types.ContentUnknown:
		return -1
	}
	return max(gp, 0)
}

func (c *Calc) theoraForward(p Packet, last int64) int64 {
	if len(p.Data) == 0 {
		return -1
	}
	first := p.Data[0]
	if first&0x80 != 0 {
		if bytes.HasPrefix(p.Data, []byte("\x80theora")) && len(p.Data) >= minHeader(types.ContentTheora) {
			if r, err := theoraRate(binary.FromBytes(p.Data, "theora header"), p.Data); err == nil {
				c.shift = r.Shift
			}
		}
		return 0
	}
	if last < 0 {
		return -1
	}
	if first&0x40 != 0 {
		// inter frame
		return last + 1
	}
	if last == 0 {
		return 0
	}
	iframe := last >> c.shift
	pframe := last & (1<<c.shift - 1)
	return (iframe + pframe + 1) << c.shift
}

func (c *Calc) theoraBackward(next int64) int64 {
	iframe := next >> c.shift
	pframe := next & (1<<c.shift - 1)
	switch {
	case pframe > 0:
		return iframe<<c.shift | (pframe - 1)
	case iframe > 0:
		return (iframe - 1) << c.shift
	default:
		return 0
	}
}

func (c *Calc) vorbisForward(p Packet, last int64) int64 {
	if len(p.Data) == 0 {
		return -1
	}
	if p.Data[0]&1 != 0 {
		c.vorbisHeader(p.Data)
		return 0
	}
	if c.vorbis == nil || len(c.vorbis.modes) == 0 {
		return -1
	}

	cur := c.vorbis.blocksize(p.Data)
	prev := c.vorbis.prevBlock
	c.vorbis.prevBlock = cur
	if last < 0 {
		return -1
	}
	if prev < 0 {
		return last
	}
	return last + prev/4 + cur/4
}

func (c *Calc) vorbisHeader(data []byte) {
	switch {
	case bytes.HasPrefix(data, []byte("\x01vorbis")) && len(data) >= minHeader(types.ContentVorbis):
		if c.vorbis == nil {
			c.vorbis = &vorbisModes{prevBlock: -1}
		}
		c.vorbis.blocksizes = [2]int64{1 << (data[28] & 0x0f), 1 << (data[28] >> 4)}
	case bytes.HasPrefix(data, []byte("\x05vorbis")):
		if c.vorbis == nil {
			c.vorbis = &vorbisModes{prevBlock: -1}
		}
		c.vorbis.parseModes(data)
	}
}

func (c *Calc) isHeader(p Packet) bool {
	return p.PacketNo < int64(c.numHeaders)
}

func (c *Calc) speexForward(p Packet, last int64) int64 {
	if c.isHeader(p) {
		if p.PacketNo == 0 && len(p.Data) >= minHeader(types.ContentSpeex) {
			c.increment = speexIncrement(p.Data)
		}
		return 0
	}
	if last < 0 || c.increment <= 0 {
		return -1
	}
	if last == 0 {
		// The first data packet is short by the samples the decoder drops.
		if p.PageGranulePos > 0 {
			if r := p.PageGranulePos % c.increment; r > 0 {
				return r
			}
		}
		return c.increment
	}
	return last + c.increment
}

func (c *Calc) flacForward(p Packet, last int64) int64 {
	if !isFLACFrame(p.Data) {
		return 0
	}
	if last < 0 {
		return -1
	}
	return last + flacBlocksize(p.Data)
}

func (c *Calc) opusForward(p Packet, last int64) int64 {
	if bytes.HasPrefix(p.Data, []byte("OpusHead")) || bytes.HasPrefix(p.Data, []byte("OpusTags")) {
		return 0
	}
	first := !c.seen
	c.seen = true
	if first || last < 0 {
		// Pre-skip is only known once a page granule position arrives.
		return -1
	}
	return last + opusDuration(p.Data)
}

// speexIncrement is the number of samples per packet: frame size times frames per packet.
func speexIncrement(header []byte) int64 {
	sr := binary.FromBytes(header, "speex header")
	frameSize, err := binary.ReadLE[uint32](sr, 56, "frame size")
	frames, err := readAfter[uint32](err, sr, 64, "frames per packet", binary.LittleEndian)
	if err != nil {
		return 0
	}
	return int64(frameSize) * int64(frames)
}
