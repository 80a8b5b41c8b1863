package oggseek

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/simonhull/oggseek/internal/ogg"
	"github.com/simonhull/oggseek/internal/vector"
)

// scanChunk is the read size used while scanning for pages.
const scanChunk = 16384

// seekCache remembers the end of the source between seeks.
type seekCache struct {
	valid bool
	mtime time.Time
	size  int64

	lastPageOffset int64 // page carrying unitEnd
	unitEnd        int64

	// tail holds the pages with a granule position found in the last
	// scanned window, ordered by offset.
	tail *vector.Vector[tailPage]
}

type tailPage struct {
	offset int64
	serial uint32
	gp     int64
	unit   int64
}

func newSeekCache() seekCache {
	return seekCache{
		lastPageOffset: -1,
		unitEnd:        -1,
		tail: vector.NewOrdered(func(a, b tailPage) int {
			return cmp.Compare(a.offset, b.offset)
		}),
	}
}

// scannedPage is what the page scanner reports for each page.
type scannedPage struct {
	offset    int64
	serial    uint32
	gp        int64
	unit      int64 // -1 if the page has no granule position or no metric
	packets   int
	continued bool
}

// eligible reports whether landing on the page can deliver a packet that starts on it.
func (p scannedPage) eligible() bool {
	return !p.continued || p.packets >= 2
}

// scanPages reads pages forward from start and calls fn for each page
// that starts before limit, until fn returns false or the source ends.
// It uses its own sync state, so the reader's buffered input is untouched.
func (r *Reader) scanPages(start, limit int64, fn func(p scannedPage) bool) error {
	if _, err := r.src.Seek(start, io.SeekStart); err != nil {
		return r.sourceError("scan", err)
	}

	var (
		sync   ogg.SyncState
		pg     ogg.Page
		cursor = start
	)
	for {
		for {
			n := sync.PageSeek(&pg)
			if n == 0 {
				break
			}
			if n < 0 {
				cursor += int64(-n)
				continue
			}
			if cursor >= limit {
				return nil
			}
			p := scannedPage{
				offset:    cursor,
				serial:    pg.Serial(),
				gp:        pg.GranulePos(),
				packets:   pg.Packets(),
				continued: pg.Continued(),
			}
			p.unit = r.units(p.serial, p.gp)
			cursor += int64(n)
			if !fn(p) {
				return nil
			}
		}
		if cursor >= limit {
			return nil
		}

		buf := sync.Buffer(scanChunk)
		got, err := r.src.Read(buf)
		if got > 0 {
			if werr := sync.Wrote(got); werr != nil {
				return systemError("scan", werr)
			}
		}
		if err != nil && err != io.EOF {
			return r.sourceError("scan", err)
		}
		if got == 0 {
			return nil
		}
	}
}

// refreshCache makes the cache describe the current end of the source.
// The source position is restored afterwards.
func (r *Reader) refreshCache() error {
	saved, err := r.src.Tell()
	if err != nil {
		return r.sourceError("seek cache", err)
	}
	defer func() { _, _ = r.src.Seek(saved, io.SeekStart) }()

	size, err := sourceSize(r.src)
	if err != nil {
		return r.sourceError("seek cache", err)
	}

	var (
		mtime   time.Time
		hasStat bool
	)
	if st, ok := r.src.(statSource); ok {
		if fi, err := st.Stat(); err == nil {
			mtime, hasStat = fi.ModTime(), true
		}
	}

	c := &r.cache
	if hasStat && c.valid && c.unitEnd >= 0 && c.size == size && c.mtime.Equal(mtime) {
		return nil
	}

	c.valid = false
	c.tail.Clear()
	c.unitEnd = -1
	c.lastPageOffset = -1

	for start := max(size-chunkSize, 0); ; start = max(start-chunkSize, 0) {
		found := false
		err := r.scanPages(start, start+chunkSize, func(p scannedPage) bool {
			if p.gp == -1 {
				return true
			}
			c.tail.Insert(tailPage{offset: p.offset, serial: p.serial, gp: p.gp, unit: p.unit})
			if p.unit >= 0 {
				found = true
			}
			return true
		})
		if err != nil {
			return err
		}
		if found || start == 0 {
			break
		}
		c.tail.Clear()
	}

	c.tail.Each(func(_ int, tp tailPage) bool {
		if tp.unit >= 0 && tp.unit >= c.unitEnd {
			c.unitEnd = tp.unit
			c.lastPageOffset = tp.offset
		}
		return true
	})

	c.size = size
	c.mtime = mtime
	c.valid = true
	r.log.Debug("seek cache rebuilt", "size", size, "unit_end", c.unitEnd, "last_page", c.lastPageOffset)
	return nil
}

// sourceError maps a source failure to a Reader error. An *Error anywhere
// in the chain keeps its code.
func (r *Reader) sourceError(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		if e == err {
			return e
		}
		return &Error{Code: e.Code, Op: op, Serial: e.Serial, Stream: e.Stream, Err: err}
	}
	return systemError(op, fmt.Errorf("source: %w", err))
}
