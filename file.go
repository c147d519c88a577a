package flume

import (
	"fmt"
	"io"
	"os"
)

// FileStream is a leaf stream over an open file.  The cursor starts
// at the beginning of the file (or of the requested range) and only
// moves forward.  Close() closes the underlying file handle; it is
// also closed automatically on the read that observes end-of-stream.
type FileStream struct {
	fh        *os.File
	name      string
	start     int64
	length    int64
	bytesRead int64
	seeked    bool
	atEOF     bool
	closed    bool
}

func NewFileStream(fh *os.File) (stream *FileStream, err error) {
	info, err := fh.Stat()
	if err != nil {
		return
	}
	return &FileStream{fh: fh, name: info.Name(), length: info.Size()}, nil
}

// NewPartialFileStream reads only the byte range [start, start+length)
// of the file.  Reads never return data outside the range; Size is
// the range length.
func NewPartialFileStream(fh *os.File, start, length int64) (stream *FileStream, err error) {
	info, err := fh.Stat()
	if err != nil {
		return
	}
	if start < 0 || length < 0 || start+length > info.Size() {
		return nil, &UsageError{Msg: fmt.Sprintf("byte range [%d, %d) outside file of %d bytes", start, start+length, info.Size())}
	}
	return &FileStream{fh: fh, name: info.Name(), start: start, length: length}, nil
}

func (s *FileStream) Name() string {
	return s.name
}

func (s *FileStream) Size() int64 {
	return s.length
}

func (s *FileStream) AtEOF() bool {
	return s.atEOF
}

func (s *FileStream) Read(n int) (chunk []byte, err error) {
	if s.atEOF {
		return nil, nil
	}
	if !s.seeked {
		if _, err = s.fh.Seek(s.start, io.SeekStart); err != nil {
			return
		}
		s.seeked = true
	}
	remaining := s.length - s.bytesRead
	if remaining == 0 {
		s.atEOF = true
		return nil, s.Close()
	}
	if n < 0 || int64(n) > remaining {
		n = int(remaining)
	}
	if n == 0 {
		return nil, nil
	}
	chunk = make([]byte, n)
	read, err := io.ReadFull(s.fh, chunk)
	chunk = chunk[:read]
	s.bytesRead += int64(read)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	if err != nil {
		return
	}
	if s.bytesRead >= s.length || read == 0 {
		s.atEOF = true
		err = s.Close()
	}
	return
}

func (s *FileStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.atEOF = true
	return s.fh.Close()
}
