package types

// Content identifies the codec carried by a logical stream.
type Content int

const (
	ContentTheora   Content = iota // Theora
	ContentVorbis                  // Vorbis
	ContentSpeex                   // Speex
	ContentPCM                     // PCM
	ContentCMML                    // CMML
	ContentAnnodex                 // Annodex
	ContentSkeleton                // Skeleton
	ContentFLAC0                   // Flac0
	ContentFLAC                    // Flac
	ContentAnxData                 // AnxData
	ContentKate                    // Kate
	ContentOpus                    // Opus
	ContentUnknown                 // Unknown
)

var contentNames = [...]string{
	ContentTheora:   "Theora",
	ContentVorbis:   "Vorbis",
	ContentSpeex:    "Speex",
	ContentPCM:      "PCM",
	ContentCMML:     "CMML",
	ContentAnnodex:  "Annodex",
	ContentSkeleton: "Skeleton",
	ContentFLAC0:    "Flac0",
	ContentFLAC:     "Flac",
	ContentAnxData:  "AnxData",
	ContentKate:     "Kate",
	ContentOpus:     "Opus",
	ContentUnknown:  "Unknown",
}

// String returns the codec name.
func (c Content) String() string {
	if c < 0 || int(c) >= len(contentNames) {
		return "Unknown"
	}
	return contentNames[c]
}

// Known reports whether c is a recognised codec.
func (c Content) Known() bool {
	return c >= ContentTheora && c < ContentUnknown
}
