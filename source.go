package oggseek

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/simonhull/oggseek/internal/bufseekio"
)

// Source is the byte source a Reader consumes.
//
// Read returns 0 and io.EOF at the end of data. A Read error for which
// errors.Is(err, ErrAgain) holds is passed to the caller as ErrAgain so
// that non-blocking sources can be retried.
type Source interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Tell() (int64, error)
}

// statSource is implemented by sources backed by a file. The seek cache
// uses the modification time to decide whether it is still valid.
type statSource interface {
	Stat() (fs.FileInfo, error)
}

// FileSource is a buffered file Source.
type FileSource struct {
	f  *os.File
	rs *bufseekio.ReadSeeker
}

// OpenFile opens path as a buffered Source.
func OpenFile(path string) (*FileSource, error) {
	return openFile(path, bufseekio.DefaultSize)
}

func openFile(path string, size int) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	if size <= 0 {
		size = bufseekio.DefaultSize
	}
	return &FileSource{f: f, rs: bufseekio.NewSize(f, size)}, nil
}

// Read implements Source.
func (s *FileSource) Read(p []byte) (int, error) { return s.rs.Read(p) }

// Seek implements Source.
func (s *FileSource) Seek(offset int64, whence int) (int64, error) {
	return s.rs.Seek(offset, whence)
}

// Tell implements Source.
func (s *FileSource) Tell() (int64, error) { return s.rs.Tell(), nil }

// Stat returns the file's metadata.
func (s *FileSource) Stat() (fs.FileInfo, error) { return s.f.Stat() }

// Close closes the file.
func (s *FileSource) Close() error { return s.f.Close() }

// readSeekerSource adapts an io.ReadSeeker.
type readSeekerSource struct {
	rs io.ReadSeeker
}

// NewReadSeekerSource adapts an io.ReadSeeker, such as a *bytes.Reader, to Source.
// If rs also has a Stat method, such as *os.File, the seek cache uses it.
func NewReadSeekerSource(rs io.ReadSeeker) Source {
	src := &readSeekerSource{rs: rs}
	if st, ok := rs.(statSource); ok {
		return &statReadSeekerSource{readSeekerSource: src, st: st}
	}
	return src
}

func (s *readSeekerSource) Read(p []byte) (int, error) { return s.rs.Read(p) }

func (s *readSeekerSource) Seek(offset int64, whence int) (int64, error) {
	return s.rs.Seek(offset, whence)
}

func (s *readSeekerSource) Tell() (int64, error) { return s.rs.Seek(0, io.SeekCurrent) }

func (s *readSeekerSource) Close() error {
	if c, ok := s.rs.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type statReadSeekerSource struct {
	*readSeekerSource
	st statSource
}

func (s *statReadSeekerSource) Stat() (fs.FileInfo, error) { return s.st.Stat() }

// FuncSource is a Source built from caller functions and a typed handle,
// for in-memory buffers or custom transports. A nil SeekFunc or TellFunc
// makes the source unseekable: those calls return ErrNoSeek.
//
// Example:
//
//	src := &oggseek.FuncSource[*ring]{
//		Handle:   buf,
//		ReadFunc: func(b *ring, p []byte) (int, error) { return b.Read(p) },
//	}
type FuncSource[H any] struct {
	Handle   H
	ReadFunc func(h H, p []byte) (int, error)
	SeekFunc func(h H, offset int64, whence int) (int64, error)
	TellFunc func(h H) (int64, error)
}

// Read implements Source.
func (s *FuncSource[H]) Read(p []byte) (int, error) {
	if s.ReadFunc == nil {
		return 0, io.EOF
	}
	return s.ReadFunc(s.Handle, p)
}

// Seek implements Source.
func (s *FuncSource[H]) Seek(offset int64, whence int) (int64, error) {
	if s.SeekFunc == nil {
		return -1, newError(CodeNoSeek, "seek")
	}
	return s.SeekFunc(s.Handle, offset, whence)
}

// Tell implements Source.
func (s *FuncSource[H]) Tell() (int64, error) {
	if s.TellFunc == nil {
		return -1, newError(CodeNoSeek, "tell")
	}
	return s.TellFunc(s.Handle)
}

// sourceSize returns the size of src, restoring its position afterwards.
func sourceSize(src Source) (int64, error) {
	if st, ok := src.(statSource); ok {
		if fi, err := st.Stat(); err == nil && fi.Mode().IsRegular() {
			return fi.Size(), nil
		}
	}
	cur, err := src.Tell()
	if err != nil {
		return 0, err
	}
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := src.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}
