package auto

import (
	"bytes"

	"github.com/icza/bitio"
)

// isFLACFrame reports whether data starts with a FLAC frame sync code.
func isFLACFrame(data []byte) bool {
	return len(data) >= 4 && data[0] == 0xff && data[1]&0xfe == 0xf8
}

// flacBlocksize decodes the sample count from a frame header, 0 if it cannot.
func flacBlocksize(frame []byte) int64 {
	if !isFLACFrame(frame) {
		return 0
	}

	br := bitio.NewReader(bytes.NewReader(frame[:4]))
	// sync code, reserved bit, blocking strategy
	if _, err := br.ReadBits(16); err != nil {
		return 0
	}
	n, err := br.ReadBits(4)
	if err != nil {
		return 0
	}

	switch {
	case n == 1:
		return 192
	case n >= 2 && n <= 5:
		return 576 << (n - 2)
	case n == 6 || n == 7:
		// Sample count minus one follows the coded frame number.
		at := 4 + utf8Len(frame[4:])
		if at < 4 {
			return 0
		}
		if n == 6 {
			if at >= len(frame) {
				return 0
			}
			return int64(frame[at]) + 1
		}
		if at+1 >= len(frame) {
			return 0
		}
		return int64(frame[at])<<8 | int64(frame[at+1]) + 1
	case n >= 8:
		return 256 << (n - 8)
	}
	return 0
}

// utf8Len returns the length of the UTF-8 style coded number at the start
// of b, or -1 if it is malformed.
func utf8Len(b []byte) int {
	if len(b) == 0 {
		return -1
	}
	c := b[0]
	switch {
	case c&0x80 == 0:
		return 1
	case c&0xe0 == 0xc0:
		return 2
	case c&0xf0 == 0xe0:
		return 3
	case c&0xf8 == 0xf0:
		return 4
	case c&0xfc == 0xf8:
		return 5
	case c&0xfe == 0xfc:
		return 6
	case c == 0xfe:
		return 7
	}
	return -1
}
