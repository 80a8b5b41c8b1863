package oggseek

import (
	"cmp"

	"github.com/simonhull/oggseek/internal/auto"
	"github.com/simonhull/oggseek/internal/ogg"
	"github.com/simonhull/oggseek/internal/types"
	"github.com/simonhull/oggseek/internal/vector"
)

// stream is the reader state of one logical stream.
type stream struct {
	serial uint32
	state  *ogg.StreamState
	calc   *auto.Calc

	content    types.Content
	identified bool
	numHeaders int

	packetNo int64 // -1 before the first delivery
	lastGP   int64 // resolved granule position of the previous packet
	pageGP   int64 // granule position of the last page fed in

	metric    Metric
	ownMetric bool // installed by the engine, replaced freely
	rate      auto.Rate

	bos, eos  bool
	delivered bool // a non-BOS packet has been delivered

	packetHandler PacketHandler
	pageHandler   PageHandler

	// pending holds packets whose granule position is not known yet,
	// ordered by packet number.
	pending *vector.Vector[*pendingPacket]

	comments *Comments
	pos      position
}

// position is the packet position bookkeeping of a stream.
type position struct {
	beginOffset int64 // page the next packet starts on
	pages       int   // pages spanned so far by the next packet
	segIndex    int   // index of the next packet among those starting on beginOffset
	expectHole  bool  // set after a seek; a continued page then starts afresh
}

// pendingPacket is a deep copy of a packet awaiting its granule position.
type pendingPacket struct {
	packet Packet
	gp     int64 // -1 until resolved
}

func newStream(serial uint32) *stream {
	return &stream{
		serial:     serial,
		state:      ogg.NewStreamState(serial),
		calc:       auto.NewCalc(types.ContentUnknown),
		content:    types.ContentUnknown,
		numHeaders: auto.DefaultHeaders,
		packetNo:   -1,
		lastGP:     -1,
		pageGP:     -1,
		pending: vector.NewOrdered(func(a, b *pendingPacket) int {
			return cmp.Compare(a.packet.PacketNo, b.packet.PacketNo)
		}),
		pos: position{pages: 1},
	}
}

func (s *stream) setContent(c types.Content) {
	s.content = c
	s.identified = true
	s.calc = auto.NewCalc(c)
	s.calc.SetNumHeaders(s.numHeaders)
}

func (s *stream) setNumHeaders(n int) {
	if n <= 0 {
		return
	}
	s.numHeaders = n
	s.calc.SetNumHeaders(n)
}

// installRate replaces an engine-owned or absent metric with one for s.rate.
func (s *stream) installRate() {
	s.metric = metricFor(s.rate)
	s.ownMetric = true
}

// reset drops in-flight state after a seek. Packet numbering continues.
func (s *stream) reset() {
	s.state.Reset()
	s.pending.Clear()
	s.calc.Reset()
	s.lastGP = -1
	s.pageGP = -1
	s.pos = position{pages: 1, expectHole: true}
}

// stream returns the entry for serial, creating it if needed.
func (r *Reader) stream(serial uint32) *stream {
	if s, ok := r.streams.Get(serial); ok {
		return s
	}
	s, _ := r.streams.Add(serial, newStream(serial))
	return s
}

// lookup returns the entry for serial or ErrBadSerial.
func (r *Reader) lookup(op string, serial uint32) (*stream, error) {
	if r.closed {
		return nil, newError(CodeBadHandle, op)
	}
	s, ok := r.streams.Get(serial)
	if !ok {
		return nil, streamError(CodeBadSerial, op, serial)
	}
	return s, nil
}
