package flume

// BufferStream is a leaf stream over a short(!) in-memory byte
// buffer.  PLEASE DON'T USE THIS FOR LARGE CONTENT!  All of the data
// passed to the constructor is held until the stream is dropped.
// Reads advance a cursor; the stored bytes are never mutated.
type BufferStream struct {
	data  []byte
	pos   int
	atEOF bool
}

func NewBufferStream(data []byte) *BufferStream {
	return &BufferStream{data: data, atEOF: len(data) == 0}
}

// NewStringStream is a convenience wrapper for literal text fragments
// such as multipart headers.
func NewStringStream(s string) *BufferStream {
	return NewBufferStream([]byte(s))
}

func (s *BufferStream) Size() int64 {
	return int64(len(s.data))
}

func (s *BufferStream) AtEOF() bool {
	return s.atEOF
}

func (s *BufferStream) Read(n int) (chunk []byte, err error) {
	if s.atEOF {
		return nil, nil
	}
	remaining := len(s.data) - s.pos
	if n < 0 || n > remaining {
		n = remaining
	}
	chunk = s.data[s.pos : s.pos+n]
	s.pos += n
	if s.pos == len(s.data) {
		s.atEOF = true
	}
	return
}

// EmptyStream has size 0 and returns nothing when read.  Useful for
// representing empty objects.
type EmptyStream struct {
	atEOF bool
}

func NewEmptyStream() *EmptyStream {
	return &EmptyStream{}
}

func (s *EmptyStream) Size() int64 {
	return 0
}

func (s *EmptyStream) AtEOF() bool {
	return s.atEOF
}

func (s *EmptyStream) Read(n int) ([]byte, error) {
	s.atEOF = true
	return nil, nil
}
