package ogg

// Ogg uses a non-reflected CRC-32 with polynomial 0x04C11DB7, initial value 0
// and no final xor, so hash/crc32 cannot compute it.

var crcTable = func() (t [256]uint32) {
	const poly = uint32(0x04C11DB7)
	for i := range t {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}()

// crcUpdate folds data into a running checksum.
func crcUpdate(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

// Checksum computes the page checksum over header and body. The four
// checksum bytes of the header (offset 22) are treated as zero.
func Checksum(header, body []byte) uint32 {
	var crc uint32
	crc = crcUpdate(crc, header[:22])
	crc = crcUpdate(crc, zeroCRC[:])
	crc = crcUpdate(crc, header[26:])
	return crcUpdate(crc, body)
}

var zeroCRC [4]byte
