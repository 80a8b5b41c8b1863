package oggseek

import (
	"errors"
	"fmt"
	"io"

	"github.com/simonhull/oggseek/internal/auto"
	"github.com/simonhull/oggseek/internal/ogg"
	"github.com/simonhull/oggseek/internal/types"
	"github.com/simonhull/oggseek/internal/vorbis"
)

const (
	// chunkSize caps a single source read.
	chunkSize = 65536

	// inputChunk is the unit in which ReadInput feeds caller bytes.
	inputChunk = 4096
)

// Read pulls up to n bytes from the source and delivers every packet and
// page they complete.
//
// It returns the number of bytes consumed. At the end of the source it
// delivers any packets still waiting for a granule position, with
// GranulePos -1, and returns 0 and io.EOF.
//
// A handler returning StopOK or StopErr ends the call. If no bytes were
// consumed yet, Read returns ErrStopOK or ErrStopErr; otherwise it returns
// the byte count and the next Read or ReadInput returns the stop error
// without doing anything else. StopErr also discards all buffered input.
//
// Example:
//
//	for {
//		n, err := r.Read(64 * 1024)
//		if errors.Is(err, io.EOF) || n == 0 {
//			break
//		}
//		if err != nil {
//			return err
//		}
//	}
func (r *Reader) Read(n int) (int, error) {
	if err := r.check("read", CapRead); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, newError(CodeInvalid, "read")
	}
	if st := r.takeNext(); st != Continue {
		return 0, st.err()
	}

	st, err := r.syncPass()
	if err != nil {
		return 0, err
	}

	var (
		nread int
		eof   bool
	)
	for st == Continue && nread < n {
		buf := r.sync.Buffer(min(n-nread, chunkSize))
		got, rerr := r.src.Read(buf)
		if got > 0 {
			if err := r.sync.Wrote(got); err != nil {
				return nread, systemError("read", err)
			}
			nread += got
			if st, err = r.syncPass(); err != nil {
				return nread, err
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				eof = true
				break
			}
			if errors.Is(rerr, ErrAgain) {
				if nread == 0 {
					return 0, &Error{Code: CodeAgain, Op: "read", Err: rerr}
				}
				break
			}
			return nread, systemError("read", fmt.Errorf("read source: %w", rerr))
		}
		if got == 0 {
			eof = true
			break
		}
	}

	if st == StopErr {
		r.purgeInput()
	}

	if nread == 0 {
		if st != Continue {
			return 0, st.err()
		}
		if eof {
			r.reportSkip()
			if st := r.flushUnresolved(); st != Continue {
				return 0, st.err()
			}
			return 0, io.EOF
		}
		return 0, nil
	}
	r.cbNext = st
	return nread, nil
}

// ReadInput feeds buf to the Reader as if it had been read from the
// source, delivering packets and pages as they complete. Stops behave as
// in Read.
func (r *Reader) ReadInput(buf []byte) (int, error) {
	if err := r.check("read input", CapRead); err != nil {
		return 0, err
	}
	if st := r.takeNext(); st != Continue {
		return 0, st.err()
	}

	st, err := r.syncPass()
	if err != nil {
		return 0, err
	}

	nread := 0
	for st == Continue && nread < len(buf) {
		chunk := buf[nread:min(len(buf), nread+inputChunk)]
		copy(r.sync.Buffer(len(chunk)), chunk)
		if err := r.sync.Wrote(len(chunk)); err != nil {
			return nread, systemError("read input", err)
		}
		nread += len(chunk)
		if st, err = r.syncPass(); err != nil {
			return nread, err
		}
	}

	if st == StopErr {
		r.purgeInput()
	}
	if nread == 0 {
		return 0, st.err()
	}
	r.cbNext = st
	return nread, nil
}

func (r *Reader) takeNext() Status {
	st := r.cbNext
	r.cbNext = Continue
	return st
}

// purgeInput drops all buffered input. Tell moves past it.
func (r *Reader) purgeInput() {
	r.reportSkip()
	r.offset += r.pageBytes + int64(r.sync.Buffered())
	r.pageBytes = 0
	r.sync.Reset()
}

// syncPass delivers everything the buffered input allows: resolved
// packets left queued by an earlier stop, the packets of the current
// page, then the packets of each further buffered page.
func (r *Reader) syncPass() (Status, error) {
	if st := r.flushResolved(); st != Continue {
		return st, nil
	}

	for {
		if r.hasCurrent {
			s, ok := r.streams.Get(r.current)
			if ok {
				st, err := r.drain(s)
				if err != nil || st != Continue {
					return st, err
				}
			}
		}

		var pg ogg.Page
		if !r.nextPage(&pg) {
			return Continue, nil
		}
		if st := r.processPage(&pg); st != Continue {
			return st, nil
		}
	}
}

// nextPage pulls the next page from the sync buffer, keeping the byte
// offset in step. It reports false when more input is needed.
func (r *Reader) nextPage(pg *ogg.Page) bool {
	r.offset += r.pageBytes
	r.pageBytes = 0
	for {
		n := r.sync.PageSeek(pg)
		switch {
		case n == 0:
			return false
		case n < 0:
			if r.skipped == 0 {
				r.skipFrom = r.offset
			}
			r.skipped += int64(-n)
			r.offset += int64(-n)
		default:
			r.reportSkip()
			r.pageBytes = int64(n)
			return true
		}
	}
}

// reportSkip warns once for the run of bytes skipped since the last page.
func (r *Reader) reportSkip() {
	if r.skipped == 0 {
		return
	}
	r.warn("read", r.skipFrom, "skipped %d bytes to regain page sync", r.skipped)
	r.skipped = 0
}

// processPage registers a page with its stream and hands it to the page handler.
func (r *Reader) processPage(pg *ogg.Page) Status {
	serial := pg.Serial()
	s, ok := r.streams.Get(serial)
	if !ok {
		s = r.stream(serial)
		r.log.Debug("new stream", "serial", serial, "offset", r.offset)
	}

	switch {
	case !s.identified:
		c := auto.Identify(pg.Body)
		s.setContent(c)
		r.log.Debug("identified stream", "serial", serial, "content", c)
	case s.content == types.ContentAnxData:
		if c := auto.Identify(pg.Body); c != types.ContentUnknown {
			s.setContent(c)
			r.log.Debug("identified stream", "serial", serial, "content", c)
		}
	}
	if pg.BOS() {
		s.bos = true
	}

	if gp := pg.GranulePos(); gp != -1 {
		s.pageGP = gp
		u := r.units(serial, gp)
		if gp == 0 && u == -1 {
			u = 0
		}
		if u != -1 {
			r.unit = u
			r.pageUnit = u
			r.pageOffset = r.offset
			r.pageSerial = serial
		}
	}

	h := s.pageHandler
	if h == nil {
		h = r.pageHandler
	}
	st := Continue
	if h != nil {
		st = r.callPage(h, pg, serial)
	}

	if err := s.state.PageIn(pg); err != nil {
		r.warn("read", r.offset, "page rejected: %v", err)
	}
	r.trackPage(s, pg)

	r.current = serial
	r.hasCurrent = true
	return st
}

// trackPage updates position bookkeeping for a page just fed to s and
// checks a pending resume against it.
func (r *Reader) trackPage(s *stream, pg *ogg.Page) {
	pos := &s.pos
	switch {
	case !pg.Continued():
		pos.pages = 1
		pos.beginOffset = r.offset
		pos.segIndex = 0
		pos.expectHole = false
	case pos.expectHole:
		pos.beginOffset = r.offset
		pos.pages = 1
		pos.segIndex = 1
		if pg.Packets() > 0 {
			pos.expectHole = false
		}
	default:
		pos.pages++
	}

	if rs := r.resume; rs != nil && !rs.checked {
		rs.checked = true
		if rs.pos.BeginPageOffset != r.offset {
			r.resume = nil
			return
		}
		rs.serial = s.serial
		skip := rs.pos.BeginSegmentIndex
		if pg.Continued() {
			skip--
		}
		if skip < 0 {
			r.resume = nil
			return
		}
		rs.skip = skip
	}
}

// drain delivers the packets s can produce from the pages fed so far.
func (r *Reader) drain(s *stream) (Status, error) {
	for {
		var op ogg.Packet
		res := s.state.PacketOut(&op)
		if res == -1 {
			if s.packetNo < int64(s.numHeaders-1) {
				return Continue, streamError(CodeHoleInData, "read", s.serial)
			}
			res = s.state.PacketOut(&op)
			if res == -1 {
				return Continue, streamError(CodeHoleInData, "read", s.serial)
			}
			r.hole(s)
		}
		if res == 0 {
			return Continue, nil
		}

		s.packetNo++
		st := r.packet(s, &op)
		r.advance(s)
		if !op.BOS {
			s.delivered = true
		}
		if st != Continue {
			return st, nil
		}
	}
}

// hole handles a tolerated gap in the content packets of s.
func (r *Reader) hole(s *stream) {
	r.warn("read", r.offset, "hole in data of stream %d after packet %d", s.serial, s.packetNo)
	s.pos.pages = 1
	s.pos.beginOffset = r.offset
	s.pos.segIndex = 1
	s.lastGP = -1
	s.calc.Reset()
	if r.resume != nil && r.resume.serial == s.serial {
		r.resume = nil
	}
}

// advance prepares the position of the packet after the one just handled.
func (r *Reader) advance(s *stream) {
	if s.pos.beginOffset == r.offset {
		s.pos.segIndex++
	} else {
		s.pos.beginOffset = r.offset
		s.pos.segIndex = 1
	}
	s.pos.pages = 1
}

// packet resolves the granule position of op and delivers it, or queues
// it until a later packet resolves it.
func (r *Reader) packet(s *stream, op *ogg.Packet) Status {
	p := Packet{
		Data:     op.Data,
		BOS:      op.BOS,
		EOS:      op.EOS,
		PacketNo: s.packetNo,
		Position: Position{
			BeginPageOffset:   s.pos.beginOffset,
			EndPageOffset:     r.offset,
			Pages:             s.pos.pages,
			BeginSegmentIndex: s.pos.segIndex,
		},
	}
	if op.EOS {
		s.eos = true
	}

	if rs := r.resume; rs != nil && rs.checked && rs.serial == s.serial {
		// Keep codec state in step with the packets passed over.
		s.calc.Forward(r.calcPacket(s, op), s.lastGP)
		if rs.skip > 0 {
			rs.skip--
			return Continue
		}
		r.resume = nil
		p.GranulePos = rs.pos.CalcGranulePos
		p.Position = rs.pos
		p.Position.EndPageOffset = r.offset
		s.lastGP = p.GranulePos
		r.setPosition(s.serial, p.GranulePos)
		return r.deliver(s, &p)
	}

	gp := r.resolve(s, op)
	s.lastGP = gp
	r.setPosition(s.serial, gp)
	p.GranulePos = gp
	p.Position.CalcGranulePos = gp

	if p.PacketNo == 1 && r.opts.autoDetect {
		r.readComments(s, op.Data)
	}

	if !r.opts.autoDetect || !s.calc.CanResolveBackward() {
		return r.deliver(s, &p)
	}
	if gp == -1 {
		s.pending.Insert(&pendingPacket{packet: *p.Clone(), gp: -1})
		return Continue
	}
	if s.pending.Len() == 0 {
		return r.deliver(s, &p)
	}

	r.resolvePending(s, gp, op.Data)
	s.pending.Insert(&pendingPacket{packet: *p.Clone(), gp: gp})
	return r.flushStream(s)
}

// setPosition records the granule position of the packet being delivered.
func (r *Reader) setPosition(serial uint32, gp int64) {
	r.gp = gp
	if gp == -1 {
		return
	}
	if u := r.units(serial, gp); u != -1 {
		r.unit = u
	}
}

func (r *Reader) calcPacket(s *stream, op *ogg.Packet) auto.Packet {
	return auto.Packet{
		Data:           op.Data,
		GranulePos:     op.GranulePos,
		PacketNo:       s.packetNo,
		PageGranulePos: s.pageGP,
	}
}

// resolve computes the granule position of op.
func (r *Reader) resolve(s *stream, op *ogg.Packet) int64 {
	raw := op.GranulePos
	if !s.content.Known() || !r.opts.autoDetect {
		return raw
	}

	if s.metric == nil || s.content == types.ContentSkeleton {
		r.readHeader(s, op)
	}

	gp := s.calc.Forward(r.calcPacket(s, op), s.lastGP)
	if raw != -1 && gp < raw {
		gp = raw
	}
	return gp
}

// readHeader installs the granule rate carried by a header packet.
func (r *Reader) readHeader(s *stream, op *ogg.Packet) {
	if !op.BOS && s.content != types.ContentSkeleton {
		return
	}
	h, err := auto.ReadHeader(s.content, op.Data, op.BOS)
	if err != nil {
		if !errors.Is(err, auto.ErrNoRate) {
			r.warn("auto", r.offset, "no granule rate for %s stream %d: %v", s.content, s.serial, err)
		}
		return
	}

	if h.HasTarget {
		t := r.stream(h.Target)
		if t.metric != nil {
			return
		}
		t.rate = h.Rate
		t.installRate()
		t.setNumHeaders(h.NumHeaders)
		r.log.Debug("granule rate from skeleton", "serial", h.Target, "num", h.Rate.Num, "den", h.Rate.Den)
		return
	}

	s.rate = h.Rate
	s.installRate()
	s.setNumHeaders(h.NumHeaders)
	r.log.Debug("granule rate from header", "serial", s.serial, "content", s.content,
		"num", h.Rate.Num, "den", h.Rate.Den, "headers", h.NumHeaders)
}

func (r *Reader) readComments(s *stream, data []byte) {
	off, ok := auto.CommentOffset(s.content, data)
	if !ok {
		return
	}
	c, err := vorbis.Parse(data[off:])
	if err != nil {
		r.warn("auto", r.offset, "comments of stream %d: %v", s.serial, err)
		return
	}
	s.comments = c
}

// resolvePending walks the queue of s backwards from a resolved packet,
// filling in granule positions until the calculator gives up.
func (r *Reader) resolvePending(s *stream, next int64, nextData []byte) {
	for i := s.pending.Len() - 1; i >= 0; i-- {
		pp := s.pending.At(i)
		if pp.gp == -1 {
			pp.gp = s.calc.Backward(next, pp.packet.Data, nextData)
			if pp.gp == -1 {
				return
			}
		}
		next, nextData = pp.gp, pp.packet.Data
	}
}

// flushStream delivers queued packets of s from the front while their
// granule positions are known.
func (r *Reader) flushStream(s *stream) Status {
	for {
		pp, ok := s.pending.Front()
		if !ok || pp.gp == -1 {
			return Continue
		}
		s.pending.Pop()
		if st := r.deliverQueued(s, pp, pp.gp); st != Continue {
			return st
		}
	}
}

// deliverQueued delivers a queued packet. The reader position reflects
// the packet for the duration of the call.
func (r *Reader) deliverQueued(s *stream, pp *pendingPacket, gp int64) Status {
	savedGP, savedUnit := r.gp, r.unit
	r.gp = gp
	r.unit = r.units(s.serial, gp)

	p := pp.packet
	p.GranulePos = gp
	p.Position.CalcGranulePos = gp
	st := r.deliver(s, &p)

	r.gp, r.unit = savedGP, savedUnit
	return st
}

// flushResolved delivers resolved packets left queued by a stop.
func (r *Reader) flushResolved() Status {
	st := Continue
	r.streams.Each(func(_ uint32, s *stream) bool {
		st = r.flushStream(s)
		return st == Continue
	})
	return st
}

// flushUnresolved delivers every queued packet at the end of input,
// unresolved ones with granule position -1.
func (r *Reader) flushUnresolved() Status {
	st := Continue
	r.streams.Each(func(_ uint32, s *stream) bool {
		for {
			pp, ok := s.pending.Pop()
			if !ok {
				return true
			}
			if st = r.deliverQueued(s, pp, pp.gp); st != Continue {
				return false
			}
		}
	})
	return st
}

// deliver hands p to the packet handler of s, else the global one.
func (r *Reader) deliver(s *stream, p *Packet) Status {
	h := s.packetHandler
	if h == nil {
		h = r.packetHandler
	}
	if h == nil {
		return Continue
	}
	r.inCallback = true
	defer func() { r.inCallback = false }()
	return h(r, p, s.serial).normalize()
}

func (r *Reader) callPage(h PageHandler, pg *ogg.Page, serial uint32) Status {
	r.inCallback = true
	defer func() { r.inCallback = false }()
	return h(r, pg, serial).normalize()
}
