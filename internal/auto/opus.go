package auto

// opusFrameSize gives the frame length in 48 kHz samples for each TOC
// configuration number (RFC 6716 section 3.1).
func opusFrameSize(config byte) int64 {
	switch {
	case config < 12: // SILK
		return [...]int64{480, 960, 1920, 2880}[config&3]
	case config < 16: // Hybrid
		return [...]int64{480, 960}[config&1]
	default: // CELT
		return [...]int64{120, 240, 480, 960}[config&3]
	}
}

// opusDuration returns the number of 48 kHz samples in a packet.
func opusDuration(packet []byte) int64 {
	if len(packet) == 0 {
		return 0
	}
	toc := packet[0]
	size := opusFrameSize(toc >> 3)

	var frames int64
	switch toc & 3 {
	case 0:
		frames = 1
	case 1, 2:
		frames = 2
	case 3:
		if len(packet) < 2 {
			return 0
		}
		frames = int64(packet[1] & 0x3f)
	}
	return size * frames
}
