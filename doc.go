// Package oggseek reads and seeks Ogg physical streams.
//
// oggseek takes the bytes of an Ogg file or network stream, splits them
// into pages, reassembles the packets of every interleaved logical stream
// and hands pages and packets to caller handlers. It fills in granule
// positions that pages leave out, converts them to a unit shared by all
// streams, and seeks to a position in those units by bisection, without
// an index.
//
// # Quick Start
//
// Printing every packet of a file:
//
//	r, err := oggseek.Open("movie.ogv")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer r.Close()
//
//	r.SetPacketHandler(func(r *oggseek.Reader, p *oggseek.Packet, serial uint32) oggseek.Status {
//		fmt.Printf("%08x %6d bytes gp=%d\n", serial, len(p.Data), p.GranulePos)
//		return oggseek.Continue
//	})
//
//	for {
//		n, err := r.Read(64 * 1024)
//		if err != nil || n == 0 {
//			break
//		}
//	}
//
// # Units and Metrics
//
// A granule position means something different for every codec. A Metric
// converts it to units; with codec detection on (the default), each stream
// gets a metric from its headers and units are milliseconds. Theora,
// Vorbis, Speex, PCM, CMML, FLAC, Kate, Opus, Skeleton and Annodex streams
// are recognised. A caller metric can be installed per stream or for the
// whole Reader:
//
//	r.SetStreamMetric(serial, oggseek.LinearMetric{Num: 44100, Den: 1000})
//
// # Seeking
//
// Seek moves to a byte offset. SeekUnits moves to a time:
//
//	// Read the headers first so every stream has a metric
//	at, err := r.SeekUnits(90000, io.SeekStart)
//
// SeekPosition returns to the exact packet a Position was taken from.
// Duration reports the position of the end of the source.
//
// # Feeding Bytes
//
// A Reader created over a source it cannot read from can be fed instead:
//
//	r := oggseek.New(src, oggseek.WithCapabilities(oggseek.CapRead))
//	for chunk := range chunks {
//		if _, err := r.ReadInput(chunk); err != nil {
//			return err
//		}
//	}
//
// # Error Handling
//
// Every error is an *Error carrying a Code. Compare with the sentinels:
//
//	if errors.Is(err, oggseek.ErrHoleInData) { ... }
//
// Non-fatal problems, such as a missing page in content data or bytes
// skipped to regain sync, are logged and collected in Warnings.
//
// # Concurrency
//
// A Reader is not safe for concurrent use. Handlers run synchronously
// inside Read and may install handlers or metrics, but must not call
// Read, ReadInput, the seek family, Purge or Close.
//
// DurationMany measures many files in parallel, each with its own Reader.
package oggseek
