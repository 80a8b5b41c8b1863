package binary

import "encoding/binary"

// Unsigned is the set of field widths the readers and writers support.
type Unsigned interface {
	uint8 | uint16 | uint32 | uint64
}

// Endianness represents byte order for multi-byte values.
type Endianness int

const (
	// BigEndian is used by Theora, PCM and FLAC headers.
	BigEndian Endianness = iota

	// LittleEndian is used by the page header, Vorbis, Speex, CMML, Kate and Skeleton.
	LittleEndian
)

func (e Endianness) order() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func sizeOf[T Unsigned]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

// ReadLE reads a little-endian value of type T at off.
//
// Example:
//
//	rate, err := binary.ReadLE[uint32](sr, 12, "vorbis sample rate")
func ReadLE[T Unsigned](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, LittleEndian)
}

// ReadBE reads a big-endian value of type T at off.
//
// Example:
//
//	num, err := binary.ReadBE[uint32](sr, 22, "theora frame rate numerator")
func ReadBE[T Unsigned](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, BigEndian)
}

// ReadEndian reads a value of type T at off with the given byte order.
func ReadEndian[T Unsigned](sr *SafeReader, off int64, what string, endian Endianness) (T, error) {
	var buf [8]byte
	n := sizeOf[T]()
	if err := sr.ReadAt(buf[:n], off, what); err != nil {
		return 0, err
	}
	return decode[T](buf[:n], endian.order()), nil
}

func decode[T Unsigned](b []byte, order binary.ByteOrder) T {
	switch len(b) {
	case 1:
		return T(b[0])
	case 2:
		return T(order.Uint16(b))
	case 4:
		return T(order.Uint32(b))
	default:
		return T(order.Uint64(b))
	}
}

func encode[T Unsigned](val T, order binary.ByteOrder) []byte {
	b := make([]byte, sizeOf[T]())
	switch len(b) {
	case 1:
		b[0] = byte(val)
	case 2:
		order.PutUint16(b, uint16(val))
	case 4:
		order.PutUint32(b, uint32(val))
	default:
		order.PutUint64(b, uint64(val))
	}
	return b
}
