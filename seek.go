package oggseek

import (
	"io"
	"slices"
)

// Bisection limits.
const (
	maxIterations = 100
	maxScanPages  = 100

	// rollback is how far before a guess the page scan starts, so that a
	// page straddling the guess is not missed.
	rollback = 4 * 2048
)

// bound is one end of the bisection interval.
type bound struct {
	offset int64
	unit   int64
}

// Seek moves to a byte offset. whence is io.SeekStart, io.SeekCurrent
// (relative to Tell) or io.SeekEnd.
//
// Every stream forgets its partial packets and the current position in
// units becomes unknown. The next page found from offset on is the first
// one read. On failure the Reader is unchanged.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if err := r.check("seek", CapSeek); err != nil {
		return -1, err
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.offset + offset
	case io.SeekEnd:
		size, err := sourceSize(r.src)
		if err != nil {
			return -1, r.sourceError("seek", err)
		}
		abs = size + offset
	default:
		return -1, newError(CodeInvalid, "seek")
	}
	if abs < 0 {
		return -1, newError(CodeInvalid, "seek")
	}

	if _, err := r.src.Seek(abs, io.SeekStart); err != nil {
		return -1, r.sourceError("seek", err)
	}
	r.reposition(abs, -1, -1, nil)
	r.log.Debug("seek", "offset", abs)
	return abs, nil
}

// SeekUnits moves to the page whose position in units is the largest not
// after the target, and returns that position. whence is io.SeekStart,
// io.SeekCurrent (relative to TellUnits) or io.SeekEnd (relative to the
// end of the source). The target is clamped to the length of the source.
// With several streams, only pages before the first page of any stream
// past the target are candidates, so no stream resumes after the target.
//
// The next Read delivers, first, the packet that completes on the landing
// page and carries its granule position; earlier packets completing on
// that page are skipped.
//
// A metric is required: with codec detection on, read the headers first.
// On failure the Reader is unchanged.
//
// Example:
//
//	// Jump to 90 seconds, with codec detection's millisecond units
//	at, err := r.SeekUnits(90000, io.SeekStart)
func (r *Reader) SeekUnits(units int64, whence int) (int64, error) {
	if err := r.check("seek units", CapSeek); err != nil {
		return -1, err
	}
	if !r.hasMetric() {
		return -1, newError(CodeBadMetric, "seek units")
	}

	saved, err := r.src.Tell()
	if err != nil {
		return -1, r.sourceError("seek units", err)
	}
	at, err := r.seekUnits(units, whence)
	if err != nil {
		_, _ = r.src.Seek(saved, io.SeekStart)
		return -1, err
	}
	return at, nil
}

func (r *Reader) seekUnits(units int64, whence int) (int64, error) {
	if err := r.refreshCache(); err != nil {
		return -1, err
	}
	c := &r.cache
	if c.unitEnd < 0 {
		return -1, newError(CodeBadMetric, "seek units")
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = units
	case io.SeekCurrent:
		target = max(r.unit, 0) + units
	case io.SeekEnd:
		target = c.unitEnd + units
	default:
		return -1, newError(CodeInvalid, "seek units")
	}
	target = min(max(target, 0), c.unitEnd)

	if target == 0 {
		if _, err := r.src.Seek(r.dataStart, io.SeekStart); err != nil {
			return -1, r.sourceError("seek units", err)
		}
		r.reposition(r.dataStart, 0, -1, nil)
		r.log.Debug("seek landed", "target", target, "offset", r.dataStart, "unit", 0)
		return 0, nil
	}

	// Units grow along each stream, so the final scan sees every candidate
	// once it starts at or before each passing stream's last page not
	// after target.
	from := bound{offset: c.lastPageOffset, unit: c.unitEnd}
	var serials []uint32
	if target < c.unitEnd {
		from = bound{offset: r.dataStart, unit: 0}
		serials = r.boundingSerials(target)
		for i, serial := range serials {
			b, err := r.streamBegin(serial, target)
			if err != nil {
				return -1, err
			}
			if i == 0 || b.offset < from.offset {
				from = b
			}
		}
	}

	best, ok, err := r.finalScan(target, from.offset, serials)
	if err != nil {
		return -1, err
	}
	if !ok {
		if _, err := r.src.Seek(from.offset, io.SeekStart); err != nil {
			return -1, r.sourceError("seek units", err)
		}
		r.reposition(from.offset, from.unit, -1, nil)
		r.pageUnit = -1
		r.log.Debug("seek landed", "target", target, "offset", from.offset, "unit", from.unit)
		return from.unit, nil
	}

	if _, err := r.src.Seek(best.offset, io.SeekStart); err != nil {
		return -1, r.sourceError("seek units", err)
	}
	r.reposition(best.offset, best.unit, best.gp, &resume{
		pos: Position{
			CalcGranulePos:    best.gp,
			BeginPageOffset:   best.offset,
			EndPageOffset:     best.offset,
			Pages:             1,
			BeginSegmentIndex: best.packets - 1,
		},
	})
	r.pageSerial = best.serial
	r.log.Debug("seek landed", "target", target, "offset", best.offset, "unit", best.unit, "serial", best.serial)
	return best.unit, nil
}

// boundingSerials returns the streams known to reach past target: those
// with a page after target at the end of the source.
func (r *Reader) boundingSerials(target int64) []uint32 {
	var serials []uint32
	r.cache.tail.Each(func(_ int, tp tailPage) bool {
		if r.units(tp.serial, tp.gp) > target && !slices.Contains(serials, tp.serial) {
			serials = append(serials, tp.serial)
		}
		return true
	})
	return serials
}

// streamBegin finds a page of serial whose unit is not after target, as
// late as the seek tolerance asks for. Units only grow along one stream,
// so the search looks at that stream's pages alone.
func (r *Reader) streamBegin(serial uint32, target int64) (bound, error) {
	c := &r.cache
	begin := bound{offset: r.dataStart, unit: 0}
	end := bound{offset: c.size, unit: c.unitEnd}
	c.tail.Each(func(_ int, tp tailPage) bool {
		if tp.serial != serial {
			return true
		}
		if u := r.units(tp.serial, tp.gp); u > target {
			end = bound{offset: tp.offset, unit: u}
			return false
		}
		return true
	})

	if r.pageUnit >= 0 && r.pageSerial == serial && r.pageOffset > begin.offset && r.pageOffset < end.offset {
		if r.pageUnit <= target {
			begin = bound{offset: r.pageOffset, unit: r.pageUnit}
		} else {
			end = bound{offset: r.pageOffset, unit: r.pageUnit}
		}
	}
	return r.bisect(serial, target, begin, end)
}

// bisect narrows [begin, end] around target by interpolating guesses over
// the pages of serial, and returns the final begin.
func (r *Reader) bisect(serial uint32, target int64, begin, end bound) (bound, error) {
	zoom := true
	for i := 0; i < maxIterations; i++ {
		if target-begin.unit <= r.opts.seekTolerance || end.offset <= begin.offset {
			break
		}

		guess := interpolate(target, begin, end, zoom)
		zoom = !zoom

		var (
			hit   scannedPage
			found bool
			pages int
		)
		err := r.scanPages(max(guess-rollback, begin.offset), end.offset, func(p scannedPage) bool {
			pages++
			if p.serial == serial && p.offset > begin.offset && p.unit >= 0 {
				hit, found = p, true
				return false
			}
			return pages < maxScanPages
		})
		if err != nil {
			return begin, err
		}

		nb, ne := begin, end
		switch {
		case !found && pages >= maxScanPages:
			// Other streams fill the window; settle for begin.
			return begin, nil
		case !found:
			if guess > begin.offset && guess < end.offset {
				ne.offset = guess
			}
		case hit.unit <= target:
			nb = bound{offset: hit.offset, unit: hit.unit}
		default:
			ne = bound{offset: hit.offset, unit: hit.unit}
		}
		if nb == begin && ne == end {
			break
		}
		begin, end = nb, ne
	}
	return begin, nil
}

// interpolate guesses the offset of target between begin and end. The
// fraction is clamped to [1/5, 4/5] on zoom steps and [2/5, 3/5] otherwise.
func interpolate(target int64, begin, end bound, zoom bool) int64 {
	frac := 0.5
	if end.unit > begin.unit {
		frac = float64(target-begin.unit) / float64(end.unit-begin.unit)
	}
	lo, hi := 0.4, 0.6
	if zoom {
		lo, hi = 0.2, 0.8
	}
	frac = min(max(frac, lo), hi)
	return begin.offset + int64(frac*float64(end.offset-begin.offset))
}

// finalScan walks pages from start up to the first page of any stream
// whose unit is after target, for the best landing page: the highest unit
// not after target. On equal units the earlier page is kept unless only
// the later one can deliver a packet that starts on it.
//
// Every stream in serials must have a page in the walked range, or its
// last page before the stop could beat the best one; start moves back a
// chunk at a time until that holds.
func (r *Reader) finalScan(target, start int64, serials []uint32) (scannedPage, bool, error) {
	for i := 0; ; i++ {
		var (
			best  scannedPage
			found bool
			exact bool
			seen  = make(map[uint32]bool, len(serials))
		)
		err := r.scanPages(start, r.cache.size, func(p scannedPage) bool {
			if p.unit < 0 {
				return true
			}
			if p.unit > target {
				return false
			}
			seen[p.serial] = true
			if !found || p.unit > best.unit || (p.unit == best.unit && !best.eligible() && p.eligible()) {
				best, found = p, true
			}
			exact = p.eligible() && p.unit == target
			return !exact
		})
		if err != nil {
			return best, found, err
		}

		covered := true
		for _, serial := range serials {
			if !seen[serial] {
				covered = false
				break
			}
		}
		if exact || covered || start <= r.dataStart || i == maxIterations {
			return best, found, nil
		}
		start = max(start-chunkSize, r.dataStart)
	}
}

// reposition resets all stream state and makes off the current offset.
// The source must already be positioned at off.
func (r *Reader) reposition(off, unit, gp int64, rs *resume) {
	r.reportSkip()
	r.resetStreams()
	r.sync.Reset()
	r.offset = off
	r.pageBytes = 0
	r.unit = unit
	r.gp = gp
	r.pageUnit = unit
	r.pageOffset = off
	r.resume = rs
	r.cbNext = Continue
}

// resetStreams drops in-flight packets and pending input state of every stream.
func (r *Reader) resetStreams() {
	r.streams.Each(func(_ uint32, s *stream) bool {
		s.reset()
		return true
	})
	r.hasCurrent = false
	r.resume = nil
}

// SeekPosition moves to a position delivered with an earlier packet. The
// next packet delivered is that packet, with the same granule position.
//
// Example:
//
//	var mark oggseek.Position
//	// ... save p.Position in a handler, read on ...
//	_, err := r.SeekPosition(mark)
func (r *Reader) SeekPosition(pos Position) (int64, error) {
	if err := r.check("seek position", CapSeek); err != nil {
		return -1, err
	}
	if pos.BeginPageOffset < 0 || pos.BeginSegmentIndex < 0 {
		return -1, newError(CodeInvalid, "seek position")
	}
	if _, err := r.src.Seek(pos.BeginPageOffset, io.SeekStart); err != nil {
		return -1, r.sourceError("seek position", err)
	}
	r.reposition(pos.BeginPageOffset, -1, -1, &resume{pos: pos})
	r.log.Debug("seek position", "offset", pos.BeginPageOffset, "index", pos.BeginSegmentIndex)
	return pos.BeginPageOffset, nil
}

// DataBeginsHere marks the current offset as the start of content data.
// Unit seeks to 0 land here. Call it once the headers have been read.
func (r *Reader) DataBeginsHere() error {
	if err := r.check("data begins here", CapSeek); err != nil {
		return err
	}
	r.dataStart = r.offset
	return nil
}

// SetDataStart marks offset as the start of content data.
func (r *Reader) SetDataStart(offset int64) error {
	if err := r.check("set data start", CapSeek); err != nil {
		return err
	}
	if offset < 0 {
		return newError(CodeInvalid, "set data start")
	}
	r.dataStart = offset
	return nil
}

// Purge discards buffered input and every stream's partial packets. Tell
// moves past the discarded bytes.
func (r *Reader) Purge() error {
	switch {
	case r.closed:
		return newError(CodeBadHandle, "purge")
	case r.inCallback:
		return newError(CodeInvalid, "purge")
	}
	r.purgeInput()
	r.resetStreams()
	return nil
}
