// Package vorbis parses Vorbis comment blocks.
//
// The same block layout is carried in the second header packet of Vorbis,
// Theora, Speex, Opus, Kate and Ogg FLAC streams, behind a codec-specific
// prefix. Fields are UTF-8 strings in "KEY=VALUE" format.
package vorbis

import (
	"fmt"
	"strings"

	"github.com/simonhull/oggseek/internal/binary"
)

// maxEntries bounds the entry count so a corrupt header cannot force a huge allocation.
const maxEntries = 1 << 16

// Comment is a single NAME=value entry. Name keeps its original case.
type Comment struct {
	Name  string
	Value string
}

// Comments is a parsed comment block.
type Comments struct {
	Vendor  string
	Entries []Comment
}

// Parse decodes a comment block starting at data[0]. The layout is a
// length-prefixed vendor string followed by a count of length-prefixed
// entries, all lengths little-endian 32-bit.
func Parse(data []byte) (*Comments, error) {
	sr := binary.FromBytes(data, "vorbis comments")
	cr := binary.NewChainReader(binary.NewReader(sr, 0, binary.LittleEndian))

	vendorLen := binary.ReadChained[uint32](cr, "vendor length")
	if err := cr.Error(); err != nil {
		return nil, err
	}
	if int64(vendorLen) > sr.Size() {
		return nil, fmt.Errorf("vendor length %d exceeds packet size %d", vendorLen, sr.Size())
	}
	c := &Comments{Vendor: cr.String(int(vendorLen), "vendor string")}

	count := binary.ReadChained[uint32](cr, "comment count")
	if err := cr.Error(); err != nil {
		return nil, err
	}
	if count > maxEntries {
		return nil, fmt.Errorf("comment count %d too large", count)
	}

	for i := range int(count) {
		n := binary.ReadChained[uint32](cr, "comment length")
		if cr.Error() == nil && int64(n) > sr.Size()-cr.Offset() {
			return nil, fmt.Errorf("comment %d: length %d exceeds remaining %d bytes", i, n, sr.Size()-cr.Offset())
		}
		s := cr.String(int(n), "comment")
		if err := cr.Error(); err != nil {
			return nil, fmt.Errorf("comment %d: %w", i, err)
		}
		entry, err := ParseComment(s)
		if err != nil {
			continue
		}
		c.Entries = append(c.Entries, entry)
	}
	return c, nil
}

// ParseComment splits a single "KEY=VALUE" comment.
//
// Returns an error if the comment has no '=' or an empty key.
func ParseComment(comment string) (Comment, error) {
	eq := strings.IndexByte(comment, '=')
	if eq == -1 {
		return Comment{}, fmt.Errorf("missing '=' in comment: %s", comment)
	}
	if eq == 0 {
		return Comment{}, fmt.Errorf("empty name in comment: %s", comment)
	}
	return Comment{Name: comment[:eq], Value: comment[eq+1:]}, nil
}

// Get returns the first value for name. Names compare case-insensitively.
func (c *Comments) Get(name string) (string, bool) {
	for _, e := range c.Entries {
		if strings.EqualFold(e.Name, name) {
			return e.Value, true
		}
	}
	return "", false
}

// All returns every value for name, in file order.
func (c *Comments) All(name string) []string {
	var out []string
	for _, e := range c.Entries {
		if strings.EqualFold(e.Name, name) {
			out = append(out, e.Value)
		}
	}
	return out
}
