package auto

import "math/bits"

// vorbisModes holds what the Vorbis calculators need from the headers: the
// two block sizes and the block flag of every mode in the setup header.
type vorbisModes struct {
	blocksizes [2]int64
	modes      []bool // long-block flag per mode
	modeBits   int
	prevBlock  int64 // size of the previous audio packet, -1 if none
}

// lsbBits reads bits least significant first, the Vorbis bitstream order.
type lsbBits []byte

func (b lsbBits) bit(i int) uint {
	return uint(b[i/8]>>(i%8)) & 1
}

// read returns n bits starting at bit i.
func (b lsbBits) read(i, n int) uint {
	var v uint
	for k := range n {
		v |= b.bit(i+k) << k
	}
	return v
}

// parseModes locates the mode table at the end of the setup header. The
// table is found by walking back from the framing bit: each mode is 41 bits
// (block flag, 16-bit window type, 16-bit transform type, 8-bit mapping),
// preceded by a 6-bit count.
func (v *vorbisModes) parseModes(setup []byte) {
	b := lsbBits(setup)

	// The framing bit is the last set bit of the packet.
	f := -1
	for i := len(setup) - 1; i >= 0 && f < 0; i-- {
		if setup[i] != 0 {
			f = i*8 + bits.Len8(setup[i]) - 1
		}
	}
	if f < 0 {
		return
	}

	// Count trailing candidates whose window and transform types are zero.
	candidates := 0
	for {
		start := f - 41*(candidates+1)
		if start < 0 || b.read(start+1, 16) != 0 || b.read(start+17, 16) != 0 {
			break
		}
		candidates++
		if candidates == 64 {
			break
		}
	}

	// The count field must agree with the number of modes.
	for n := candidates; n > 0; n-- {
		countAt := f - 41*n - 6
		if countAt < 0 || b.read(countAt, 6) != uint(n-1) {
			continue
		}
		v.modes = make([]bool, n)
		for j := range n {
			v.modes[j] = b.bit(f-41*(n-j)) == 1
		}
		v.modeBits = bits.Len(uint(n - 1))
		return
	}
}

// blocksize returns the block size of an audio packet.
func (v *vorbisModes) blocksize(packet []byte) int64 {
	if len(packet) == 0 || len(v.modes) == 0 {
		return 0
	}
	mode := 0
	if v.modeBits > 0 {
		if (1+v.modeBits+7)/8 > len(packet) {
			return 0
		}
		mode = int(lsbBits(packet).read(1, v.modeBits))
	}
	if mode >= len(v.modes) {
		return 0
	}
	if v.modes[mode] {
		return v.blocksizes[1]
	}
	return v.blocksizes[0]
}
