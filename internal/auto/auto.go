// Package auto recognises the codec carried by a logical stream and derives
// the granule rate and granule position rules for it.
//
// Identification compares the first bytes of a stream's BOS page against an
// ordered signature table; the first match wins. Header extraction then
// reads the granule rate from fixed offsets in the codec's identification
// header. Granule calculators live in calc.go.
package auto

import (
	"bytes"

	"github.com/icza/bitio"
	"github.com/mewkiz/pkg/errutil"
	"github.com/pkg/errors"

	"github.com/simonhull/oggseek/internal/binary"
	"github.com/simonhull/oggseek/internal/types"
)

// Mult scales automatic metrics so that units are milliseconds.
const Mult = 1000

// DefaultHeaders is the header packet count assumed until a header says otherwise.
const DefaultHeaders = 3

type signature struct {
	content types.Content
	magic   []byte
	min     int // shortest header the rate extractor accepts
}

// signatures is ordered; the first match wins.
var signatures = []signature{
	{types.ContentTheora, []byte("\x80theora"), 42},
	{types.ContentVorbis, []byte("\x01vorbis"), 30},
	{types.ContentSpeex, []byte("Speex"), 68},
	{types.ContentPCM, []byte("PCM     "), 28},
	{types.ContentCMML, []byte("CMML\x00\x00\x00\x00"), 28},
	{types.ContentAnnodex, []byte("Annodex\x00"), 8},
	{types.ContentSkeleton, []byte("fishead\x00"), 8},
	{types.ContentFLAC0, []byte("fLaC"), 17},
	{types.ContentFLAC, []byte("\x7fFLAC"), 51},
	{types.ContentAnxData, []byte("AnxData"), 28},
	{types.ContentKate, []byte("\x80kate\x00\x00\x00"), 64},
	{types.ContentOpus, []byte("OpusHead"), 19},
}

// ErrNoRate is returned by ReadHeader for packets that carry no granule rate
// for their content type, such as Skeleton packets other than fisbones.
var ErrNoRate = errors.New("auto: no granule rate in packet")

func init() {
	// Header errors end up in reader warnings, which are plain text.
	errutil.UseColor = false
}

// fisbone records live in non-BOS Skeleton packets.
var fisboneMagic = []byte("fisbone\x00")

const fisboneMin = 52

// Identify returns the content type whose signature prefixes body.
func Identify(body []byte) types.Content {
	for _, sig := range signatures {
		if bytes.HasPrefix(body, sig.magic) {
			return sig.content
		}
	}
	return types.ContentUnknown
}

// minHeader returns the minimum header length for content.
func minHeader(content types.Content) int {
	for _, sig := range signatures {
		if sig.content == content {
			return sig.min
		}
	}
	return 0
}

// Rate is a granule rate ready to install as a metric: units are
// granulepos*Den/Num, after splitting on Shift when Shifted is set.
type Rate struct {
	Num     int64
	Den     int64
	Shift   int
	Shifted bool
}

// Header is what ReadHeader extracted from a header packet.
type Header struct {
	Content types.Content
	Rate    Rate

	// NumHeaders is the number of header packets of the stream, 0 if the
	// packet does not say.
	NumHeaders int

	// Target is set for Skeleton fisbone records, which describe another
	// stream. Rate and NumHeaders then apply to that stream.
	Target    uint32
	HasTarget bool
}

// ReadHeader extracts the granule rate from a header packet of a stream
// identified as content. It returns ErrNoRate when the packet carries
// nothing the content type knows how to read, and an error with the
// failing position when the header is malformed.
func ReadHeader(content types.Content, data []byte, bos bool) (Header, error) {
	h := Header{Content: content}
	if content == types.ContentSkeleton && !bos {
		return readFisbone(data)
	}
	if !content.Known() {
		return h, ErrNoRate
	}
	if n := minHeader(content); len(data) < n {
		return h, errutil.Newf("%s header is %d bytes, want at least %d", content, len(data), n)
	}

	sr := binary.FromBytes(data, content.String()+" header")
	var err error

	switch content {
	case types.ContentTheora:
		h.Rate, err = theoraRate(sr, data)
		h.NumHeaders = 3
	case types.ContentVorbis:
		var rate uint32
		rate, err = binary.ReadLE[uint32](sr, 12, "sample rate")
		h.Rate = Rate{Num: int64(rate), Den: Mult}
		h.NumHeaders = 3
	case types.ContentSpeex:
		var rate uint32
		rate, err = binary.ReadLE[uint32](sr, 36, "sample rate")
		h.Rate = Rate{Num: int64(rate), Den: Mult}
		h.NumHeaders = 2 + extraHeaders(sr, 68, binary.LittleEndian)
	case types.ContentPCM:
		var rate uint32
		rate, err = binary.ReadBE[uint32](sr, 16, "sample rate")
		h.Rate = Rate{Num: int64(rate), Den: Mult}
		h.NumHeaders = 2 + extraHeaders(sr, 24, binary.BigEndian)
	case types.ContentCMML:
		h.Rate, err = rate64(sr, 12, 20)
		if len(data) > 28 {
			h.Rate.Shift = int(data[28])
			h.Rate.Shifted = true
		}
		h.NumHeaders = 3
	case types.ContentAnnodex, types.ContentSkeleton:
		h.Rate = Rate{Num: 0, Den: 1}
		h.NumHeaders = 1
	case types.ContentFLAC0:
		h.Rate.Num, err = flacRate(data[14:])
		h.Rate.Den = Mult
		h.NumHeaders = 3
	case types.ContentFLAC:
		h.Rate.Num, err = flacRate(data[27:])
		h.Rate.Den = Mult
		var n uint16
		if n, err = readAfter[uint16](err, sr, 7, "header count", binary.BigEndian); err == nil {
			h.NumHeaders = 1 + int(n)
		}
	case types.ContentAnxData:
		h.Rate, err = rate64(sr, 8, 16)
		var n uint32
		if n, err = readAfter[uint32](err, sr, 24, "header count", binary.LittleEndian); err == nil {
			h.NumHeaders = 1 + int(n)
		}
	case types.ContentKate:
		var num, den uint32
		num, err = binary.ReadLE[uint32](sr, 24, "granule rate numerator")
		den, err = readAfter[uint32](err, sr, 28, "granule rate denominator", binary.LittleEndian)
		h.Rate = Rate{Num: int64(num), Den: Mult * int64(den), Shift: int(data[15]), Shifted: true}
		h.NumHeaders = int(data[11])
	case types.ContentOpus:
		h.Rate = Rate{Num: 48000, Den: Mult}
		h.NumHeaders = 2
	case types.ContentUnknown:
		return h, ErrNoRate
	}

	if err != nil {
		return h, errutil.Err(err)
	}
	return h, nil
}

// readAfter performs a read only when no earlier read failed.
func readAfter[T binary.Unsigned](prev error, sr *binary.SafeReader, off int64, what string, e binary.Endianness) (T, error) {
	if prev != nil {
		return 0, prev
	}
	return binary.ReadEndian[T](sr, off, what, e)
}

// extraHeaders reads an optional extra header count; a missing field counts as none.
func extraHeaders(sr *binary.SafeReader, off int64, e binary.Endianness) int {
	n, err := binary.ReadEndian[uint32](sr, off, "extra headers", e)
	if err != nil || n > 255 {
		return 0
	}
	return int(n)
}

// rate64 reads a 64-bit little-endian numerator and denominator pair.
func rate64(sr *binary.SafeReader, numOff, denOff int64) (Rate, error) {
	num, err := binary.ReadLE[uint64](sr, numOff, "granule rate numerator")
	den, err := readAfter[uint64](err, sr, denOff, "granule rate denominator", binary.LittleEndian)
	if err != nil {
		return Rate{}, err
	}
	return Rate{Num: int64(num), Den: Mult * int64(den)}, nil
}

// theoraRate reads the frame rate and the keyframe granule shift. The
// shift is the 5 bits that follow the 6-bit quality field at byte 40.
func theoraRate(sr *binary.SafeReader, data []byte) (Rate, error) {
	num, err := binary.ReadBE[uint32](sr, 22, "frame rate numerator")
	den, err := readAfter[uint32](err, sr, 26, "frame rate denominator", binary.BigEndian)
	if err != nil {
		return Rate{}, err
	}
	// Very old encoders wrote 0 to mean 1.
	if num == 0 {
		num = 1
	}

	br := bitio.NewReader(bytes.NewReader(data[40:42]))
	if _, err := br.ReadBits(6); err != nil {
		return Rate{}, errutil.Err(err)
	}
	shift, err := br.ReadBits(5)
	if err != nil {
		return Rate{}, errutil.Err(err)
	}
	return Rate{Num: int64(num), Den: Mult * int64(den), Shift: int(shift), Shifted: true}, nil
}

// flacRate unpacks the 20-bit sample rate at the start of b.
func flacRate(b []byte) (int64, error) {
	br := bitio.NewReader(bytes.NewReader(b))
	rate, err := br.ReadBits(20)
	if err != nil {
		return 0, errutil.Err(err)
	}
	return int64(rate), nil
}

// readFisbone extracts the granule rate a Skeleton fisbone assigns to its target stream.
func readFisbone(data []byte) (Header, error) {
	h := Header{Content: types.ContentSkeleton}
	if !bytes.HasPrefix(data, fisboneMagic) {
		return h, ErrNoRate
	}
	if len(data) < fisboneMin {
		return h, errutil.Newf("fisbone is %d bytes, want at least %d", len(data), fisboneMin)
	}

	sr := binary.FromBytes(data, "fisbone")
	cr := binary.NewChainReader(binary.NewReader(sr, 12, binary.LittleEndian))
	target := binary.ReadChained[uint32](cr, "target serial")
	headers := binary.ReadChained[uint32](cr, "header count")
	num := binary.ReadChained[uint64](cr, "granule rate numerator")
	den := binary.ReadChained[uint64](cr, "granule rate denominator")
	if err := cr.Error(); err != nil {
		return h, errutil.Err(err)
	}

	h.Target = target
	h.HasTarget = true
	h.NumHeaders = int(headers)
	h.Rate = Rate{Num: int64(num), Den: Mult * int64(den), Shift: int(data[48]), Shifted: true}
	return h, nil
}

// CommentOffset returns where the comment block starts within the comment
// header packet of content, or false if content carries none.
func CommentOffset(content types.Content, data []byte) (int, bool) {
	var prefix []byte
	switch content {
	case types.ContentVorbis:
		prefix = []byte("\x03vorbis")
	case types.ContentTheora:
		prefix = []byte("\x81theora")
	case types.ContentOpus:
		prefix = []byte("OpusTags")
	case types.ContentKate:
		// magic plus one reserved byte
		if bytes.HasPrefix(data, []byte("\x81kate\x00\x00\x00")) && len(data) > 9 {
			return 9, true
		}
		return 0, false
	case types.ContentSpeex:
		return 0, true
	case types.ContentFLAC, types.ContentFLAC0:
		// metadata block header; type 4 is VORBIS_COMMENT
		if len(data) > 4 && data[0]&0x7f == 4 {
			return 4, true
		}
		return 0, false
	case types.ContentPCM, types.ContentCMML, types.ContentAnnodex,
		types.ContentSkeleton, types.ContentAnxData, types.ContentUnknown:
		return 0, false
	}
	if !bytes.HasPrefix(data, prefix) {
		return 0, false
	}
	return len(prefix), true
}
