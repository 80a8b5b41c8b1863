package oggseek_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/simonhull/oggseek"
	"github.com/simonhull/oggseek/internal/oggtest"
)

func TestRead_PacketOrder(t *testing.T) {
	data, _ := numbered(5)
	r := newReader(data)
	got := record(t, r)
	readAll(t, r)

	var want []event
	for i := range 5 {
		want = append(want, event{
			Serial:     1,
			PacketNo:   int64(i),
			GranulePos: int64(i),
			Units:      0, // no metric: only the first page, at 0, has known units
			BOS:        i == 0,
			EOS:        i == 4,
			Data:       fmt.Sprintf("packet %02d", i),
		})
	}
	if diff := pretty.Compare(*got, want); diff != "" {
		t.Errorf("packets (-got +want):\n%s", diff)
	}

	eos, err := r.StreamEOS(1)
	if err != nil || !eos {
		t.Errorf("StreamEOS() = %v, %v; want true", eos, err)
	}
	if c, _ := r.Content(1); c != oggseek.ContentUnknown {
		t.Errorf("Content() = %v, want Unknown", c)
	}
	if r.Tell() != int64(len(data)) {
		t.Errorf("Tell() = %d, want %d", r.Tell(), len(data))
	}
}

func TestRead_Interleaved(t *testing.T) {
	w := oggtest.NewWriter()
	a := w.Stream(10)
	b := w.Stream(20)
	for i := range 6 {
		for _, s := range []*oggtest.Stream{a, b} {
			data := fmt.Appendf(nil, "data %d", i)
			if i == 5 {
				s.LastPacket(data, int64(i*10))
			} else {
				s.Packet(data, int64(i*10))
			}
			s.FlushPage()
		}
	}

	r := newReader(w.Bytes())
	got := record(t, r)
	readAll(t, r)

	if len(*got) != 12 {
		t.Fatalf("got %d packets, want 12", len(*got))
	}

	last := map[uint32]int64{}
	next := map[uint32]int64{}
	for _, e := range *got {
		if e.PacketNo != next[e.Serial] {
			t.Errorf("serial %d: PacketNo = %d, want %d", e.Serial, e.PacketNo, next[e.Serial])
		}
		next[e.Serial]++
		if e.GranulePos < last[e.Serial] {
			t.Errorf("serial %d: granule position went back from %d to %d", e.Serial, last[e.Serial], e.GranulePos)
		}
		last[e.Serial] = e.GranulePos
		if e.BOS != (e.PacketNo == 0) {
			t.Errorf("serial %d packet %d: BOS = %v", e.Serial, e.PacketNo, e.BOS)
		}
		if e.EOS != (e.PacketNo == 5) {
			t.Errorf("serial %d packet %d: EOS = %v", e.Serial, e.PacketNo, e.EOS)
		}
	}

	if diff := pretty.Compare(r.Serials(), []uint32{10, 20}); diff != "" {
		t.Errorf("Serials() (-got +want):\n%s", diff)
	}
}

func TestRead_Positions(t *testing.T) {
	w := oggtest.NewWriter()
	s := w.Stream(1)
	s.Packet([]byte("head"), 0)
	s.FlushPage()
	for i := range 3 {
		s.Packet(fmt.Appendf(nil, "p%d", i), int64(i+1))
	}
	s.FlushPage()
	s.LastPacket([]byte("tail"), 9)
	s.FlushPage()

	r := newReader(w.Bytes())
	var got []oggseek.Position
	r.SetPacketHandler(func(_ *oggseek.Reader, p *oggseek.Packet, _ uint32) oggseek.Status {
		got = append(got, p.Position)
		return oggseek.Continue
	})
	readAll(t, r)

	page := s.Offsets
	want := []oggseek.Position{
		{CalcGranulePos: 0, BeginPageOffset: page[0], EndPageOffset: page[0], Pages: 1, BeginSegmentIndex: 0},
		{CalcGranulePos: -1, BeginPageOffset: page[1], EndPageOffset: page[1], Pages: 1, BeginSegmentIndex: 0},
		{CalcGranulePos: -1, BeginPageOffset: page[1], EndPageOffset: page[1], Pages: 1, BeginSegmentIndex: 1},
		{CalcGranulePos: 3, BeginPageOffset: page[1], EndPageOffset: page[1], Pages: 1, BeginSegmentIndex: 2},
		{CalcGranulePos: 9, BeginPageOffset: page[2], EndPageOffset: page[2], Pages: 1, BeginSegmentIndex: 0},
	}
	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("positions (-got +want):\n%s", diff)
	}
}

func TestRead_SpanningPacket(t *testing.T) {
	w := oggtest.NewWriter()
	s := w.Stream(1)
	s.Packet([]byte("head"), 0)
	s.FlushPage()
	big := make([]byte, 255*255+100)
	s.LastPacket(big, 5)
	s.FlushPage()

	r := newReader(w.Bytes())
	var got []oggseek.Packet
	r.SetPacketHandler(func(_ *oggseek.Reader, p *oggseek.Packet, _ uint32) oggseek.Status {
		got = append(got, *p.Clone())
		return oggseek.Continue
	})
	readAll(t, r)

	if len(got) != 2 {
		t.Fatalf("got %d packets, want 2", len(got))
	}
	p := got[1]
	if len(p.Data) != len(big) {
		t.Errorf("len(Data) = %d, want %d", len(p.Data), len(big))
	}
	if p.Position.Pages != 2 {
		t.Errorf("Pages = %d, want 2", p.Position.Pages)
	}
	if p.Position.BeginPageOffset != s.Offsets[1] || p.Position.EndPageOffset != s.Offsets[2] {
		t.Errorf("Position = %+v, want begin %d end %d", p.Position, s.Offsets[1], s.Offsets[2])
	}
}

func TestReadInput_Chunking(t *testing.T) {
	data := opusPages(3)

	r := newReader(data)
	want := record(t, r)
	readAll(t, r)

	for _, size := range []int{1, 7, 100, 4096, len(data)} {
		t.Run(fmt.Sprintf("chunk %d", size), func(t *testing.T) {
			r := oggseek.New(nil, oggseek.WithCapabilities(oggseek.CapRead))
			got := record(t, r)
			for off := 0; off < len(data); off += size {
				end := min(off+size, len(data))
				n, err := r.ReadInput(data[off:end])
				if err != nil {
					t.Fatalf("ReadInput() error = %v", err)
				}
				if n != end-off {
					t.Fatalf("ReadInput() = %d, want %d", n, end-off)
				}
			}
			if diff := pretty.Compare(*got, *want); diff != "" {
				t.Errorf("trace (-got +want):\n%s", diff)
			}
		})
	}
}

func TestRead_Stop(t *testing.T) {
	data, _ := numbered(6)

	tests := []struct {
		name       string
		status     oggseek.Status
		wantErr    error
		wantCount  int
		wantFinale error
	}{
		{"stop ok resumes", oggseek.StopOK, oggseek.ErrStopOK, 6, io.EOF},
		{"stop err purges", oggseek.StopErr, oggseek.ErrStopErr, 3, io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReader(data)
			count := 0
			r.SetPacketHandler(func(_ *oggseek.Reader, p *oggseek.Packet, _ uint32) oggseek.Status {
				count++
				if p.PacketNo == 2 {
					return tt.status
				}
				return oggseek.Continue
			})

			n, err := r.Read(1 << 20)
			if err != nil || n != len(data) {
				t.Fatalf("Read() = %d, %v; want %d, nil", n, err, len(data))
			}
			if count != 3 {
				t.Fatalf("delivered %d packets before stop, want 3", count)
			}

			// The stop is replayed by the next call.
			if _, err := r.Read(1 << 20); !errors.Is(err, tt.wantErr) {
				t.Fatalf("second Read() error = %v, want %v", err, tt.wantErr)
			}

			for {
				n, err := r.Read(1 << 20)
				if errors.Is(err, tt.wantFinale) {
					break
				}
				if err != nil {
					t.Fatalf("Read() error = %v", err)
				}
				if n == 0 {
					t.Fatal("Read() returned 0 without EOF")
				}
			}
			if count != tt.wantCount {
				t.Errorf("delivered %d packets, want %d", count, tt.wantCount)
			}
			if tt.status == oggseek.StopErr && r.Tell() != int64(len(data)) {
				t.Errorf("Tell() = %d after purge, want %d", r.Tell(), len(data))
			}
		})
	}
}

func TestRead_StopBeforeInput(t *testing.T) {
	data, _ := numbered(4)
	r := newReader(data)
	r.SetPageHandler(func(_ *oggseek.Reader, _ *oggseek.Page, _ uint32) oggseek.Status {
		return oggseek.StopOK
	})
	if _, err := r.ReadInput(data); err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}
	if _, err := r.ReadInput(nil); !errors.Is(err, oggseek.ErrStopOK) {
		t.Errorf("ReadInput() error = %v, want ErrStopOK", err)
	}
	// The buffered pages are still there; the next stop comes from them.
	if _, err := r.ReadInput(nil); !errors.Is(err, oggseek.ErrStopOK) {
		t.Errorf("ReadInput() error = %v, want ErrStopOK", err)
	}
}

func TestRead_Reentrancy(t *testing.T) {
	data, _ := numbered(3)
	r := newReader(data)

	var errs []error
	var late []int64
	r.SetPacketHandler(func(r *oggseek.Reader, p *oggseek.Packet, serial uint32) oggseek.Status {
		if p.PacketNo != 0 {
			return oggseek.Continue
		}
		_, err := r.Read(10)
		errs = append(errs, err)
		_, err = r.ReadInput([]byte("x"))
		errs = append(errs, err)
		_, err = r.Seek(0, io.SeekStart)
		errs = append(errs, err)
		_, err = r.SeekUnits(0, io.SeekStart)
		errs = append(errs, err)
		errs = append(errs, r.Purge(), r.Close())

		// Installing a handler is allowed and applies from the next packet.
		if err := r.SetStreamPacketHandler(serial, func(_ *oggseek.Reader, p *oggseek.Packet, _ uint32) oggseek.Status {
			late = append(late, p.PacketNo)
			return oggseek.Continue
		}); err != nil {
			t.Errorf("SetStreamPacketHandler() in handler error = %v", err)
		}
		return oggseek.Continue
	})
	readAll(t, r)

	if len(errs) != 6 {
		t.Fatalf("got %d results, want 6", len(errs))
	}
	for i, err := range errs {
		if !errors.Is(err, oggseek.ErrInvalid) {
			t.Errorf("call %d: error = %v, want ErrInvalid", i, err)
		}
	}
	if diff := pretty.Compare(late, []int64{1, 2}); diff != "" {
		t.Errorf("late handler packets (-got +want):\n%s", diff)
	}
}

func TestRead_Holes(t *testing.T) {
	build := func(skipBefore int) []byte {
		w := oggtest.NewWriter()
		s := w.Stream(1)
		for i := range 8 {
			if i == skipBefore {
				s.SkipPageNo()
			}
			s.Packet(fmt.Appendf(nil, "packet %02d", i), int64(i))
			s.FlushPage()
		}
		return w.Bytes()
	}

	t.Run("header hole is fatal", func(t *testing.T) {
		r := newReader(build(1))
		record(t, r)
		_, err := r.Read(1 << 20)
		if !errors.Is(err, oggseek.ErrHoleInData) {
			t.Fatalf("Read() error = %v, want ErrHoleInData", err)
		}
		var e *oggseek.Error
		if !errors.As(err, &e) || e.Serial != 1 {
			t.Errorf("error = %#v, want serial 1", err)
		}
	})

	t.Run("content hole is tolerated", func(t *testing.T) {
		r := newReader(build(5))
		got := record(t, r)
		readAll(t, r)

		if len(*got) != 8 {
			t.Fatalf("got %d packets, want 8", len(*got))
		}
		warnings := r.Warnings()
		if len(warnings) != 1 || warnings[0].Stage != "read" {
			t.Errorf("Warnings() = %v, want one read warning", warnings)
		}
		if p := (*got)[5]; p.GranulePos != 5 || p.Data != "packet 05" {
			t.Errorf("packet after hole = %+v", p)
		}
	})

	t.Run("warnings can be ignored", func(t *testing.T) {
		r := newReader(build(5), oggseek.WithIgnoreWarnings())
		readAll(t, r)
		if len(r.Warnings()) != 0 {
			t.Errorf("Warnings() = %v, want none", r.Warnings())
		}
	})
}

func TestRead_Resync(t *testing.T) {
	w := oggtest.NewWriter()
	s := w.Stream(1)
	s.Packet([]byte("packet 00"), 0)
	s.FlushPage()
	at := w.Offset()
	// Every 'O' restarts the search for a capture pattern.
	garbage := "OOOO garbage OgO between pages O"
	w.WriteRaw([]byte(garbage))
	s.LastPacket([]byte("packet 01"), 1)
	s.FlushPage()

	r := newReader(w.Bytes())
	got := record(t, r)
	readAll(t, r)

	if len(*got) != 2 {
		t.Fatalf("got %d packets, want 2", len(*got))
	}
	want := []oggseek.Warning{{
		Stage:   "read",
		Message: fmt.Sprintf("skipped %d bytes to regain page sync", len(garbage)),
		Offset:  at,
	}}
	if diff := pretty.Compare(r.Warnings(), want); diff != "" {
		t.Errorf("Warnings() (-got +want):\n%s", diff)
	}
	if r.Tell() != int64(len(w.Bytes())) {
		t.Errorf("Tell() = %d, want %d", r.Tell(), len(w.Bytes()))
	}
}

func TestRead_TheoraGranules(t *testing.T) {
	w := oggtest.NewWriter()
	s := w.Stream(3)
	s.Packet(theoraIdent(6), 0)
	s.FlushPage()
	s.Packet(theoraComment("oggseek"), -1)
	s.Packet([]byte("\x82theora setup"), 0)
	s.FlushPage()

	// Only the last frame of a page carries a granule position.
	n := 0
	for i, frames := range []int{1, 4, 2, 5, 3, 3} {
		for f := range frames {
			kind := byte(0x40)
			if n%3 == 0 {
				kind = 0x00
			}
			gp := int64(-1)
			if f == frames-1 {
				gp = theoraGP(n)
			}
			if i == 5 && f == frames-1 {
				s.LastPacket([]byte{kind, byte(n), 0xee}, gp)
			} else {
				s.Packet([]byte{kind, byte(n), 0xee}, gp)
			}
			n++
		}
		s.FlushPage()
	}

	r := newReader(w.Bytes())
	got := record(t, r)
	readAll(t, r)

	if len(*got) != 3+n {
		t.Fatalf("got %d packets, want %d", len(*got), 3+n)
	}
	last := int64(-1)
	for i, e := range (*got)[3:] {
		if e.GranulePos != theoraGP(i) {
			t.Errorf("frame %d: granule position %d, want %d", i, e.GranulePos, theoraGP(i))
		}
		if e.GranulePos < last {
			t.Errorf("frame %d: granule position %d after %d", i, e.GranulePos, last)
		}
		last = e.GranulePos
		// 25 frames per second
		if e.Units != int64(i)*40 {
			t.Errorf("frame %d: units %d, want %d", i, e.Units, i*40)
		}
	}
	if c, _ := r.Content(3); c != oggseek.ContentTheora {
		t.Errorf("Content() = %v, want Theora", c)
	}
}

func TestRead_SkeletonFisbone(t *testing.T) {
	w := oggtest.NewWriter()
	skel := w.Stream(10)
	skel.Packet([]byte("fishead\x00 padding"), 0)
	skel.FlushPage()
	a := w.Stream(20)
	a.Packet([]byte("stream a header"), 0)
	a.FlushPage()
	b := w.Stream(30)
	b.Packet([]byte("stream b header"), 0)
	b.FlushPage()
	skel.Packet(fisbone(20, 1, 1000, 1), 0)
	skel.Packet(fisbone(30, 1, 10, 1), 0)
	skel.FlushPage()
	skel.LastPacket(nil, 0)
	skel.FlushPage()
	a.LastPacket([]byte("stream a data"), 500)
	a.FlushPage()
	b.LastPacket([]byte("stream b data"), 7)
	b.FlushPage()

	r := newReader(w.Bytes())
	// A caller metric wins over the fisbone.
	if err := r.SetStreamMetric(30, oggseek.LinearMetric{Num: 1, Den: 1}); err != nil {
		t.Fatalf("SetStreamMetric() error = %v", err)
	}
	got := record(t, r)
	readAll(t, r)

	units := map[string]int64{}
	for _, e := range *got {
		units[e.Data] = e.Units
	}
	want := map[string]int64{"stream a data": 500, "stream b data": 7}
	for data, u := range want {
		if units[data] != u {
			t.Errorf("%q delivered at %d units, want %d", data, units[data], u)
		}
	}

	if num, den, err := r.GranuleRate(20); err != nil || num != 1000 || den != 1000 {
		t.Errorf("GranuleRate(20) = %d/%d, %v; want 1000/1000", num, den, err)
	}
	if n, _ := r.NumHeaders(20); n != 1 {
		t.Errorf("NumHeaders(20) = %d, want 1", n)
	}
	if u, err := r.Units(30, 7); err != nil || u != 7 {
		t.Errorf("Units(30, 7) = %d, %v; want 7", u, err)
	}
	if c, _ := r.Content(10); c != oggseek.ContentSkeleton {
		t.Errorf("Content(10) = %v, want Skeleton", c)
	}
	if len(r.Warnings()) != 0 {
		t.Errorf("Warnings() = %v, want none", r.Warnings())
	}
}

func TestRead_AnxDataReidentify(t *testing.T) {
	head := make([]byte, 28)
	copy(head, "AnxData")
	binary.LittleEndian.PutUint64(head[8:], 48000)
	binary.LittleEndian.PutUint64(head[16:], 1)
	binary.LittleEndian.PutUint32(head[24:], 2)

	w := oggtest.NewWriter()
	s := w.Stream(4)
	s.Packet(head, 0)
	s.FlushPage()
	s.Packet([]byte("Content-Type: audio/opus"), 0)
	s.FlushPage()
	s.LastPacket(opusHead(), 0)
	s.FlushPage()

	r := newReader(w.Bytes())
	var contents []oggseek.Content
	r.SetPageHandler(func(r *oggseek.Reader, _ *oggseek.Page, serial uint32) oggseek.Status {
		c, _ := r.Content(serial)
		contents = append(contents, c)
		return oggseek.Continue
	})
	readAll(t, r)

	want := []oggseek.Content{oggseek.ContentAnxData, oggseek.ContentAnxData, oggseek.ContentOpus}
	if diff := pretty.Compare(contents, want); diff != "" {
		t.Errorf("content per page (-got +want):\n%s", diff)
	}
	if n, _ := r.NumHeaders(4); n != 3 {
		t.Errorf("NumHeaders() = %d, want 3", n)
	}
}

func TestRead_ShortHeader(t *testing.T) {
	w := oggtest.NewWriter()
	s := w.Stream(5)
	s.Packet([]byte("\x01vorbis too short"), 0)
	s.FlushPage()
	s.LastPacket([]byte("packet 01"), 1)
	s.FlushPage()

	r := newReader(w.Bytes())
	got := record(t, r)
	readAll(t, r)

	if len(*got) != 2 {
		t.Fatalf("got %d packets, want 2", len(*got))
	}
	warnings := r.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("Warnings() = %v, want one", warnings)
	}
	msg := warnings[0].Message
	for _, want := range []string{"no granule rate for Vorbis stream 5", "Vorbis header is 17 bytes, want at least 30", "auto.go:"} {
		if !strings.Contains(msg, want) {
			t.Errorf("warning %q does not mention %q", msg, want)
		}
	}
	if warnings[0].Stage != "auto" {
		t.Errorf("warning stage = %q, want auto", warnings[0].Stage)
	}
	if _, err := r.Units(5, 1); !errors.Is(err, oggseek.ErrBadMetric) {
		t.Errorf("Units() error = %v, want ErrBadMetric", err)
	}
}

func TestRead_OpusBuffering(t *testing.T) {
	r := newReader(opusPages(2))
	got := record(t, r)
	readAll(t, r)

	frame := opusFrame
	want := []event{
		{Serial: 7, PacketNo: 0, GranulePos: 0, Units: 0, BOS: true, Data: string(opusHead())},
		{Serial: 7, PacketNo: 1, GranulePos: 0, Units: 0, Data: string(opusTags("oggseek", "TITLE=Test"))},
		{Serial: 7, PacketNo: 2, GranulePos: 960, Units: 20, Data: frame},
		{Serial: 7, PacketNo: 3, GranulePos: 1920, Units: 40, Data: frame},
		{Serial: 7, PacketNo: 4, GranulePos: 2880, Units: 60, Data: frame},
		{Serial: 7, PacketNo: 5, GranulePos: 3840, Units: 80, Data: frame},
		{Serial: 7, PacketNo: 6, GranulePos: 4800, Units: 100, Data: frame},
		{Serial: 7, PacketNo: 7, GranulePos: 5760, Units: 120, EOS: true, Data: frame},
	}
	if diff := pretty.Compare(*got, want); diff != "" {
		t.Errorf("trace (-got +want):\n%s", diff)
	}

	if c, _ := r.Content(7); c != oggseek.ContentOpus {
		t.Errorf("Content() = %v, want Opus", c)
	}
	if n, _ := r.NumHeaders(7); n != 2 {
		t.Errorf("NumHeaders() = %d, want 2", n)
	}
	num, den, err := r.GranuleRate(7)
	if err != nil || num != 48000 || den != 1000 {
		t.Errorf("GranuleRate() = %d, %d, %v; want 48000, 1000", num, den, err)
	}
	comments, err := r.Comments(7)
	if err != nil || comments == nil {
		t.Fatalf("Comments() = %v, %v", comments, err)
	}
	if title, _ := comments.Get("title"); title != "Test" || comments.Vendor != "oggseek" {
		t.Errorf("Comments() = %+v", comments)
	}
}

func TestRead_UnresolvedAtEOF(t *testing.T) {
	w := oggtest.NewWriter()
	s := opusStream(w, 3)
	s.Packet([]byte(opusFrame), -1)
	s.Packet([]byte(opusFrame), -1)
	s.FlushPage()

	r := newReader(w.Bytes())
	got := record(t, r)

	n, err := r.Read(1 << 20)
	if err != nil || n == 0 {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	if len(*got) != 2 {
		t.Fatalf("got %d packets before EOF, want the 2 headers", len(*got))
	}

	if _, err := r.Read(1 << 20); !errors.Is(err, io.EOF) {
		t.Fatalf("Read() error = %v, want io.EOF", err)
	}
	if len(*got) != 4 {
		t.Fatalf("got %d packets after EOF, want 4", len(*got))
	}
	for _, e := range (*got)[2:] {
		if e.GranulePos != -1 || e.Units != -1 {
			t.Errorf("flushed packet %d: GranulePos = %d, Units = %d; want -1", e.PacketNo, e.GranulePos, e.Units)
		}
	}
}

func TestRead_AutoDetectOff(t *testing.T) {
	r := newReader(opusPages(1), oggseek.WithAutoDetect(false))
	got := record(t, r)
	readAll(t, r)

	var gps []int64
	for _, e := range *got {
		gps = append(gps, e.GranulePos)
	}
	if diff := pretty.Compare(gps, []int64{0, 0, -1, -1, 2880}); diff != "" {
		t.Errorf("granule positions (-got +want):\n%s", diff)
	}
	if _, err := r.Units(7, 960); !errors.Is(err, oggseek.ErrBadMetric) {
		t.Errorf("Units() error = %v, want ErrBadMetric", err)
	}
}

func TestRead_StreamHandlers(t *testing.T) {
	w := oggtest.NewWriter()
	a := w.Stream(1)
	b := w.Stream(2)
	for _, s := range []*oggtest.Stream{a, b} {
		s.LastPacket([]byte("only"), 0)
		s.FlushPage()
	}

	r := newReader(w.Bytes())
	var global, own []uint32
	var pages []uint32
	r.SetPacketHandler(func(_ *oggseek.Reader, _ *oggseek.Packet, serial uint32) oggseek.Status {
		global = append(global, serial)
		return oggseek.Continue
	})
	oggseek.HandlePackets(r, 2, &own, func(_ *oggseek.Reader, _ *oggseek.Packet, serial uint32, out *[]uint32) oggseek.Status {
		*out = append(*out, serial)
		return oggseek.Continue
	})
	oggseek.HandlePages(r, 1, &pages, func(_ *oggseek.Reader, p *oggseek.Page, serial uint32, out *[]uint32) oggseek.Status {
		*out = append(*out, serial)
		return oggseek.Continue
	})
	readAll(t, r)

	if diff := pretty.Compare(global, []uint32{1}); diff != "" {
		t.Errorf("global handler (-got +want):\n%s", diff)
	}
	if diff := pretty.Compare(own, []uint32{2}); diff != "" {
		t.Errorf("stream handler (-got +want):\n%s", diff)
	}
	if diff := pretty.Compare(pages, []uint32{1}); diff != "" {
		t.Errorf("page handler (-got +want):\n%s", diff)
	}
}

func TestReader_Capabilities(t *testing.T) {
	data, _ := numbered(3)

	r := newReader(data, oggseek.WithCapabilities(oggseek.CapSeek))
	if _, err := r.Read(10); !errors.Is(err, oggseek.ErrDisabled) {
		t.Errorf("Read() error = %v, want ErrDisabled", err)
	}
	if _, err := r.ReadInput(data); !errors.Is(err, oggseek.ErrDisabled) {
		t.Errorf("ReadInput() error = %v, want ErrDisabled", err)
	}

	r = newReader(data, oggseek.WithCapabilities(oggseek.CapRead))
	if _, err := r.Seek(0, io.SeekStart); !errors.Is(err, oggseek.ErrDisabled) {
		t.Errorf("Seek() error = %v, want ErrDisabled", err)
	}
	if _, err := r.Duration(); !errors.Is(err, oggseek.ErrDisabled) {
		t.Errorf("Duration() error = %v, want ErrDisabled", err)
	}
}

func TestReader_Close(t *testing.T) {
	data, _ := numbered(3)
	r := newReader(data)
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := r.Close(); !errors.Is(err, oggseek.ErrBadHandle) {
		t.Errorf("second Close() error = %v, want ErrBadHandle", err)
	}
	if _, err := r.Read(10); !errors.Is(err, oggseek.ErrBadHandle) {
		t.Errorf("Read() error = %v, want ErrBadHandle", err)
	}
	if _, err := r.SeekUnits(0, io.SeekStart); !errors.Is(err, oggseek.ErrBadHandle) {
		t.Errorf("SeekUnits() error = %v, want ErrBadHandle", err)
	}
	if _, err := r.Content(1); !errors.Is(err, oggseek.ErrBadHandle) {
		t.Errorf("Content() error = %v, want ErrBadHandle", err)
	}
}

func TestReader_BadSerial(t *testing.T) {
	r := newReader(nil)
	if _, err := r.Content(99); !errors.Is(err, oggseek.ErrBadSerial) {
		t.Errorf("Content() error = %v, want ErrBadSerial", err)
	}
	if _, err := r.Comments(99); !errors.Is(err, oggseek.ErrBadSerial) {
		t.Errorf("Comments() error = %v, want ErrBadSerial", err)
	}
}
