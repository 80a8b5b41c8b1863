package oggseek

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/simonhull/oggseek/internal/ogg"
	"github.com/simonhull/oggseek/internal/registry"
)

// Reader demultiplexes an Ogg physical stream and seeks within it.
//
// A Reader pulls bytes from its Source (Read) or is fed bytes by the
// caller (ReadInput), reassembles pages into packets for every logical
// stream and hands them to the installed handlers. Read and the seek
// family are synchronous; a Reader must not be used from more than one
// goroutine at a time.
//
// Always call Close when done:
//
//	r, err := oggseek.Open("movie.ogv")
//	if err != nil {
//		return err
//	}
//	defer r.Close()
type Reader struct {
	src  Source
	opts *options
	log  *slog.Logger

	closed     bool
	inCallback bool

	sync    ogg.SyncState
	streams *registry.Table[*stream]
	metric  Metric

	packetHandler PacketHandler
	pageHandler   PageHandler

	// cbNext is a stop returned by a handler after bytes were consumed,
	// replayed by the next ingestion call.
	cbNext Status

	offset    int64 // offset of the page being processed
	pageBytes int64 // size of that page; offset advances by it at the next page
	dataStart int64

	// skipped counts the bytes of the current run of garbage, from skipFrom.
	skipped  int64
	skipFrom int64

	current    uint32
	hasCurrent bool

	resume *resume

	gp         int64 // granule position of the last delivered packet
	unit       int64 // units of the current position, -1 if unknown
	pageUnit   int64 // units of the page at pageOffset, -1 if unknown
	pageOffset int64
	pageSerial uint32

	cache    seekCache
	warnings []Warning
}

// resume makes the next delivery of a stream start at a given packet of
// the page the reader landed on. The stream is the one owning that page.
type resume struct {
	serial  uint32
	pos     Position
	skip    int  // packets to drop before the target
	checked bool // the landing page has been seen
}

// New returns a Reader over src.
//
// Example:
//
//	r := oggseek.New(oggseek.NewReadSeekerSource(bytes.NewReader(data)))
func New(src Source, opts ...Option) *Reader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Reader{
		src:      src,
		opts:     o,
		log:      o.logger,
		streams:  registry.New[*stream](),
		gp:       -1,
		unit:     -1,
		pageUnit: -1,
		cache:    newSeekCache(),
	}
}

// Open opens the file at path and returns a Reader over it. The file is
// closed by Close.
//
// Example:
//
//	r, err := oggseek.Open("song.opus", oggseek.WithLogger(slog.Default()))
//	if err != nil {
//		return err
//	}
//	defer r.Close()
func Open(path string, opts ...Option) (*Reader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	f, err := openFile(path, o.bufferSize)
	if err != nil {
		return nil, systemError("open", err)
	}
	return New(f, opts...), nil
}

// Close releases the Reader. If the source is an io.Closer it is closed.
// Every later call returns ErrBadHandle.
func (r *Reader) Close() error {
	if r.closed {
		return newError(CodeBadHandle, "close")
	}
	if r.inCallback {
		return newError(CodeInvalid, "close")
	}
	r.closed = true
	r.streams.Clear()
	r.sync.Reset()
	if c, ok := r.src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return systemError("close", fmt.Errorf("close source: %w", err))
		}
	}
	return nil
}

// check returns the error for an operation that needs capability c.
func (r *Reader) check(op string, c Capability) error {
	switch {
	case r.closed:
		return newError(CodeBadHandle, op)
	case r.inCallback:
		return newError(CodeInvalid, op)
	case r.opts.caps&c == 0:
		return newError(CodeDisabled, op)
	}
	return nil
}

// SetPacketHandler installs the handler for streams that have none of
// their own. A nil handler removes it.
func (r *Reader) SetPacketHandler(h PacketHandler) error {
	if r.closed {
		return newError(CodeBadHandle, "set packet handler")
	}
	r.packetHandler = h
	return nil
}

// SetStreamPacketHandler installs the packet handler for serial, creating
// the stream entry if needed. Installing from inside a handler takes
// effect from the next delivery.
func (r *Reader) SetStreamPacketHandler(serial uint32, h PacketHandler) error {
	if r.closed {
		return newError(CodeBadHandle, "set packet handler")
	}
	r.stream(serial).packetHandler = h
	return nil
}

// SetPageHandler installs the page handler for streams that have none of their own.
func (r *Reader) SetPageHandler(h PageHandler) error {
	if r.closed {
		return newError(CodeBadHandle, "set page handler")
	}
	r.pageHandler = h
	return nil
}

// SetStreamPageHandler installs the page handler for serial, creating the
// stream entry if needed.
func (r *Reader) SetStreamPageHandler(serial uint32, h PageHandler) error {
	if r.closed {
		return newError(CodeBadHandle, "set page handler")
	}
	r.stream(serial).pageHandler = h
	return nil
}

// Content returns the codec detected for serial.
func (r *Reader) Content(serial uint32) (Content, error) {
	s, err := r.lookup("content", serial)
	if err != nil {
		return ContentUnknown, err
	}
	return s.content, nil
}

// NumHeaders returns the number of header packets of serial.
func (r *Reader) NumHeaders(serial uint32) (int, error) {
	s, err := r.lookup("num headers", serial)
	if err != nil {
		return 0, err
	}
	return s.numHeaders, nil
}

// SetNumHeaders overrides the header packet count of serial.
func (r *Reader) SetNumHeaders(serial uint32, n int) error {
	if r.closed {
		return newError(CodeBadHandle, "set num headers")
	}
	if n <= 0 {
		return streamError(CodeInvalid, "set num headers", serial)
	}
	r.stream(serial).setNumHeaders(n)
	return nil
}

// Serials returns the serial numbers of all known streams, in order of appearance.
func (r *Reader) Serials() []uint32 {
	if r.closed {
		return nil
	}
	return r.streams.Serials()
}

// StreamEOS reports whether the end-of-stream page of serial has been read.
func (r *Reader) StreamEOS(serial uint32) (bool, error) {
	s, err := r.lookup("stream eos", serial)
	if err != nil {
		return false, err
	}
	return s.eos, nil
}

// Warnings returns the non-fatal issues met so far.
func (r *Reader) Warnings() []Warning {
	return r.warnings
}

func (r *Reader) warn(stage string, offset int64, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.log.Warn(msg, "stage", stage, "offset", offset)
	if r.opts.ignoreWarnings {
		return
	}
	r.warnings = append(r.warnings, Warning{Stage: stage, Message: msg, Offset: offset})
}

// Tell returns the byte offset of the page being read.
func (r *Reader) Tell() int64 {
	return r.offset
}

// TellUnits returns the position in units, or -1 if unknown.
func (r *Reader) TellUnits() int64 {
	return r.unit
}

// TellGranulePos returns the granule position of the last delivered
// packet, or -1 if unknown.
func (r *Reader) TellGranulePos() int64 {
	return r.gp
}
