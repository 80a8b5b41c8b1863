package oggseek

import (
	"math"
	"math/bits"

	"github.com/simonhull/oggseek/internal/auto"
)

// Metric converts a stream's granule positions to units shared by all
// streams. Units returns -1 for an unknown granule position.
type Metric interface {
	Units(serial uint32, granulepos int64) int64
}

// MetricFunc adapts a function to Metric.
type MetricFunc func(serial uint32, granulepos int64) int64

// Units calls f.
func (f MetricFunc) Units(serial uint32, granulepos int64) int64 {
	return f(serial, granulepos)
}

// LinearMetric maps granulepos to granulepos*Den/Num.
//
// A zero Num is treated as Num=1, Den=0, so every position maps to 0.
type LinearMetric struct {
	Num int64
	Den int64
}

// Units implements Metric.
func (m LinearMetric) Units(_ uint32, granulepos int64) int64 {
	if granulepos == -1 {
		return -1
	}
	return scale(granulepos, m.Num, m.Den)
}

// GranuleShiftMetric is a LinearMetric for codecs that split the granule
// position into a keyframe number (high bits) and a frame offset from it
// (low Shift bits).
type GranuleShiftMetric struct {
	Num   int64
	Den   int64
	Shift int
}

// Units implements Metric.
func (m GranuleShiftMetric) Units(_ uint32, granulepos int64) int64 {
	if granulepos == -1 {
		return -1
	}
	if m.Shift > 0 && m.Shift < 63 {
		iframe := granulepos >> m.Shift
		pframe := granulepos - iframe<<m.Shift
		granulepos = iframe + pframe
	}
	return scale(granulepos, m.Num, m.Den)
}

// scale returns g*den/num, saturating at the int64 range.
func scale(g, num, den int64) int64 {
	if num == 0 {
		num, den = 1, 0
	}
	if g == 0 || den == 0 {
		return 0
	}

	neg := (g < 0) != (den < 0) != (num < 0)
	hi, lo := bits.Mul64(abs64(g), abs64(den))
	d := abs64(num)
	if hi >= d {
		if neg {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, d)
	if q > math.MaxInt64 {
		if neg {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	if neg {
		return -int64(q)
	}
	return int64(q)
}

func abs64(x int64) uint64 {
	if x < 0 {
		return uint64(-x)
	}
	return uint64(x)
}

// metricFor builds the engine-owned metric for a granule rate.
func metricFor(rate auto.Rate) Metric {
	if rate.Shifted {
		return GranuleShiftMetric{Num: rate.Num, Den: rate.Den, Shift: rate.Shift}
	}
	return LinearMetric{Num: rate.Num, Den: rate.Den}
}

// SetMetric installs the metric used for streams that have none of their own.
// A nil metric removes it.
func (r *Reader) SetMetric(m Metric) error {
	if r.closed {
		return newError(CodeBadHandle, "set metric")
	}
	r.metric = m
	return nil
}

// SetStreamMetric installs a caller metric for serial, replacing any
// metric installed by codec detection. The stream entry is created if needed.
func (r *Reader) SetStreamMetric(serial uint32, m Metric) error {
	if r.closed {
		return newError(CodeBadHandle, "set metric")
	}
	s := r.stream(serial)
	s.metric = m
	s.ownMetric = false
	return nil
}

// SetGranuleRate sets the granule rate of serial: a granule position g
// maps to g*den/num units. It replaces the stream's metric with an
// engine-owned one that keeps the current granule shift.
func (r *Reader) SetGranuleRate(serial uint32, num, den int64) error {
	if r.closed {
		return newError(CodeBadHandle, "set granule rate")
	}
	s := r.stream(serial)
	s.rate.Num, s.rate.Den = num, den
	s.installRate()
	return nil
}

// GranuleRate returns the granule rate of serial.
func (r *Reader) GranuleRate(serial uint32) (num, den int64, err error) {
	s, err := r.lookup("granule rate", serial)
	if err != nil {
		return 0, 0, err
	}
	return s.rate.Num, s.rate.Den, nil
}

// SetGranuleShift sets the granule shift of serial and reinstalls its
// engine-owned metric.
func (r *Reader) SetGranuleShift(serial uint32, shift int) error {
	if r.closed {
		return newError(CodeBadHandle, "set granule shift")
	}
	if shift < 0 || shift > 62 {
		return streamError(CodeInvalid, "set granule shift", serial)
	}
	s := r.stream(serial)
	s.rate.Shift = shift
	s.rate.Shifted = true
	s.installRate()
	return nil
}

// GranuleShift returns the granule shift of serial.
func (r *Reader) GranuleShift(serial uint32) (int, error) {
	s, err := r.lookup("granule shift", serial)
	if err != nil {
		return 0, err
	}
	return s.rate.Shift, nil
}

// Units converts a granule position of serial to units.
func (r *Reader) Units(serial uint32, granulepos int64) (int64, error) {
	if r.closed {
		return -1, newError(CodeBadHandle, "units")
	}
	m := r.metricOf(serial)
	if m == nil {
		return -1, streamError(CodeBadMetric, "units", serial)
	}
	return m.Units(serial, granulepos), nil
}

// metricOf returns the metric for serial: its own, else the default.
func (r *Reader) metricOf(serial uint32) Metric {
	if s, ok := r.streams.Get(serial); ok && s.metric != nil {
		return s.metric
	}
	return r.metric
}

// units converts a granule position to units, -1 when there is no metric.
func (r *Reader) units(serial uint32, granulepos int64) int64 {
	if granulepos == -1 {
		return -1
	}
	m := r.metricOf(serial)
	if m == nil {
		return -1
	}
	return m.Units(serial, granulepos)
}

// hasMetric reports whether any stream can be converted to units.
func (r *Reader) hasMetric() bool {
	if r.metric != nil {
		return true
	}
	return !r.streams.Each(func(_ uint32, s *stream) bool {
		return s.metric == nil
	})
}
