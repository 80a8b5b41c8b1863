package oggseek_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/simonhull/oggseek"
	"github.com/simonhull/oggseek/internal/oggtest"
)

// event is one delivered packet as seen by a handler.
type event struct {
	Serial     uint32
	PacketNo   int64
	GranulePos int64
	Units      int64
	BOS        bool
	EOS        bool
	Data       string
}

// record installs a global packet handler appending to the returned slice.
func record(t *testing.T, r *oggseek.Reader) *[]event {
	t.Helper()
	var out []event
	err := r.SetPacketHandler(func(r *oggseek.Reader, p *oggseek.Packet, serial uint32) oggseek.Status {
		out = append(out, event{
			Serial:     serial,
			PacketNo:   p.PacketNo,
			GranulePos: p.GranulePos,
			Units:      r.TellUnits(),
			BOS:        p.BOS,
			EOS:        p.EOS,
			Data:       string(p.Data),
		})
		return oggseek.Continue
	})
	if err != nil {
		t.Fatalf("SetPacketHandler() error = %v", err)
	}
	return &out
}

// readAll reads until the end of the source.
func readAll(t *testing.T, r *oggseek.Reader) {
	t.Helper()
	for {
		n, err := r.Read(4096)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if n == 0 {
			return
		}
	}
}

func newReader(data []byte, opts ...oggseek.Option) *oggseek.Reader {
	return oggseek.New(oggseek.NewReadSeekerSource(bytes.NewReader(data)), opts...)
}

// numbered builds a single unknown-codec stream of n packets, one per
// page, where packet i has granule position i.
func numbered(n int) ([]byte, []int64) {
	w := oggtest.NewWriter()
	s := w.Stream(1)
	for i := range n {
		data := fmt.Appendf(nil, "packet %02d", i)
		if i == n-1 {
			s.LastPacket(data, int64(i))
		} else {
			s.Packet(data, int64(i))
		}
		s.FlushPage()
	}
	return w.Bytes(), s.Offsets
}

// padded is numbered with bulky packets, so that the file spans many
// seek cache windows.
func padded(n, size int) ([]byte, []int64) {
	w := oggtest.NewWriter()
	s := w.Stream(1)
	for i := range n {
		data := make([]byte, size)
		copy(data, fmt.Sprintf("packet %04d", i))
		if i == n-1 {
			s.LastPacket(data, int64(i))
		} else {
			s.Packet(data, int64(i))
		}
		s.FlushPage()
	}
	return w.Bytes(), s.Offsets
}

func opusHead() []byte {
	b := make([]byte, 19)
	copy(b, "OpusHead")
	b[8] = 1
	b[9] = 2
	binary.LittleEndian.PutUint16(b[10:], 312)
	binary.LittleEndian.PutUint32(b[12:], 48000)
	return b
}

func opusTags(vendor string, entries ...string) []byte {
	b := []byte("OpusTags")
	b = binary.LittleEndian.AppendUint32(b, uint32(len(vendor)))
	b = append(b, vendor...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(entries)))
	for _, e := range entries {
		b = binary.LittleEndian.AppendUint32(b, uint32(len(e)))
		b = append(b, e...)
	}
	return b
}

// opusFrame is a single 20 ms CELT frame: 960 samples at 48 kHz.
var opusFrame = string([]byte{31 << 3, 0xaa, 0xbb})

// opusStream writes the two Opus headers on pages of their own.
func opusStream(w *oggtest.Writer, serial uint32) *oggtest.Stream {
	s := w.Stream(serial)
	s.Packet(opusHead(), 0)
	s.FlushPage()
	s.Packet(opusTags("oggseek", "TITLE=Test"), 0)
	s.FlushPage()
	return s
}

// opusPages builds an Opus stream of pages holding three frames each.
// Only the last frame of a page carries the page granule position.
func opusPages(pages int) []byte {
	w := oggtest.NewWriter()
	s := opusStream(w, 7)
	var gp int64
	for i := range pages {
		s.Packet([]byte(opusFrame), -1)
		s.Packet([]byte(opusFrame), -1)
		gp += 3 * 960
		if i == pages-1 {
			s.LastPacket([]byte(opusFrame), gp)
		} else {
			s.Packet([]byte(opusFrame), gp)
		}
		s.FlushPage()
	}
	return w.Bytes()
}

// theoraIdent is a Theora identification header at 25 frames per second
// with the given keyframe granule shift.
func theoraIdent(shift byte) []byte {
	b := make([]byte, 42)
	copy(b, "\x80theora")
	binary.BigEndian.PutUint32(b[22:], 25)
	binary.BigEndian.PutUint32(b[26:], 1)
	b[40] = 0xfc | shift>>3
	b[41] = shift << 5
	return b
}

func theoraComment(vendor string) []byte {
	b := []byte("\x81theora")
	b = binary.LittleEndian.AppendUint32(b, uint32(len(vendor)))
	b = append(b, vendor...)
	return binary.LittleEndian.AppendUint32(b, 0)
}

// theoraGP is the granule position of frame n when every third frame is a
// keyframe and the granule shift is 6.
func theoraGP(n int) int64 {
	key := n - n%3
	return int64(key)<<6 | int64(n%3)
}

// fisbone is a Skeleton record giving target a granule rate of num/den
// and headers header packets.
func fisbone(target uint32, headers uint32, num, den uint64) []byte {
	b := make([]byte, 52)
	copy(b, "fisbone\x00")
	binary.LittleEndian.PutUint32(b[12:], target)
	binary.LittleEndian.PutUint32(b[16:], headers)
	binary.LittleEndian.PutUint64(b[20:], num)
	binary.LittleEndian.PutUint64(b[28:], den)
	return b
}
