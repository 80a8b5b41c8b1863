package oggseek

import (
	"github.com/simonhull/oggseek/internal/types"
	"github.com/simonhull/oggseek/internal/vorbis"
)

// Comments is an alias to vorbis.Comments: the vendor string and the
// NAME=value entries of a stream's comment header.
type Comments = vorbis.Comments

// Comment is an alias to vorbis.Comment.
type Comment = vorbis.Comment

// Chapter is an alias to vorbis.Chapter.
type Chapter = vorbis.Chapter

// Content is an alias to types.Content.
type Content = types.Content

// Content types recognised by codec detection.
const (
	ContentTheora   = types.ContentTheora
	ContentVorbis   = types.ContentVorbis
	ContentSpeex    = types.ContentSpeex
	ContentPCM      = types.ContentPCM
	ContentCMML     = types.ContentCMML
	ContentAnnodex  = types.ContentAnnodex
	ContentSkeleton = types.ContentSkeleton
	ContentFLAC0    = types.ContentFLAC0
	ContentFLAC     = types.ContentFLAC
	ContentAnxData  = types.ContentAnxData
	ContentKate     = types.ContentKate
	ContentOpus     = types.ContentOpus
	ContentUnknown  = types.ContentUnknown
)

// Comments returns the comments read from the second packet of serial,
// or nil if none have been read yet or the codec carries none.
//
// Comments are only read with codec detection on.
func (r *Reader) Comments(serial uint32) (*Comments, error) {
	s, err := r.lookup("comments", serial)
	if err != nil {
		return nil, err
	}
	return s.comments, nil
}
