// Package ogg implements the Ogg page codec used by the demux engine.
//
// It provides three pieces, mirroring the reference libogg primitives:
//
//   - Page: a view over one framed page with metadata accessors
//   - SyncState: incremental page synchronization over an arbitrarily chunked byte stream
//   - StreamState: per-stream packet reassembly, including hole detection
//
// Pages and packets returned by this package borrow memory owned by the
// SyncState or StreamState that produced them. They stay valid until the
// next call that mutates that state.
package ogg

import (
	"encoding/binary"
)

// Page header layout.
const (
	// HeaderSize is the fixed part of a page header, before the segment table.
	HeaderSize = 27

	// MaxSegments is the largest segment table a page may carry.
	MaxSegments = 255

	// MaxPageSize is the largest possible page: full header plus 255 segments of 255 bytes.
	MaxPageSize = HeaderSize + MaxSegments + MaxSegments*255
)

// Header type flags.
const (
	FlagContinued = 0x01
	FlagBOS       = 0x02
	FlagEOS       = 0x04
)

// CapturePattern starts every page.
var CapturePattern = []byte("OggS")

// Page is one Ogg page split into its header (including the segment table)
// and its body.
type Page struct {
	Header []byte
	Body   []byte
}

// Version returns the stream structure version. Only version 0 exists.
func (p *Page) Version() byte { return p.Header[4] }

// HeaderType returns the raw header type flags.
func (p *Page) HeaderType() byte { return p.Header[5] }

// Continued reports whether the first segment continues a packet from the previous page.
func (p *Page) Continued() bool { return p.Header[5]&FlagContinued != 0 }

// BOS reports whether this is the first page of its logical stream.
func (p *Page) BOS() bool { return p.Header[5]&FlagBOS != 0 }

// EOS reports whether this is the last page of its logical stream.
func (p *Page) EOS() bool { return p.Header[5]&FlagEOS != 0 }

// GranulePos returns the page granule position; -1 means no packet finishes on this page.
func (p *Page) GranulePos() int64 {
	return int64(binary.LittleEndian.Uint64(p.Header[6:14]))
}

// Serial returns the logical stream serial number.
func (p *Page) Serial() uint32 {
	return binary.LittleEndian.Uint32(p.Header[14:18])
}

// PageNo returns the page sequence number.
func (p *Page) PageNo() uint32 {
	return binary.LittleEndian.Uint32(p.Header[18:22])
}

// CRC returns the checksum stored in the header.
func (p *Page) CRC() uint32 {
	return binary.LittleEndian.Uint32(p.Header[22:26])
}

// Segments returns the number of lacing values in the segment table.
func (p *Page) Segments() int { return int(p.Header[26]) }

// Lacing returns the segment table.
func (p *Page) Lacing() []byte { return p.Header[HeaderSize : HeaderSize+p.Segments()] }

// Packets returns the number of packets that complete on this page.
// A trailing 255 lacing value continues onto the next page and is not counted.
func (p *Page) Packets() int {
	n := 0
	for _, v := range p.Lacing() {
		if v < 255 {
			n++
		}
	}
	return n
}

// Len returns the total encoded size of the page.
func (p *Page) Len() int { return len(p.Header) + len(p.Body) }

// SetChecksum recomputes the checksum and stores it in the header.
func (p *Page) SetChecksum() {
	binary.LittleEndian.PutUint32(p.Header[22:26], Checksum(p.Header, p.Body))
}

// Verify reports whether the stored checksum matches the page contents.
func (p *Page) Verify() bool {
	return p.CRC() == Checksum(p.Header, p.Body)
}

// Clone returns a deep copy that no longer borrows codec memory.
func (p *Page) Clone() *Page {
	return &Page{
		Header: append([]byte(nil), p.Header...),
		Body:   append([]byte(nil), p.Body...),
	}
}
