package flume

import (
	"io"
	"net/http"
	"strconv"
)

// ReaderStream adapts an io.Reader into the Stream contract.  If the
// reader is also an io.Closer it is released exactly once: at the
// first read that observes end-of-stream, or via Close() on early
// cancellation -- never twice, never left open on either path.
//
// Pass SizeUnknown when the source length is not knowable up front.
type ReaderStream struct {
	rd       io.Reader
	size     int64
	atEOF    bool
	released bool
}

func NewReaderStream(rd io.Reader, size int64) *ReaderStream {
	return &ReaderStream{rd: rd, size: size}
}

func (s *ReaderStream) Size() int64 {
	return s.size
}

func (s *ReaderStream) AtEOF() bool {
	return s.atEOF
}

func (s *ReaderStream) Read(n int) (chunk []byte, err error) {
	if s.atEOF || n == 0 {
		return nil, nil
	}
	if n < 0 {
		for {
			sub, err := s.Read(32 * 1024)
			if err != nil {
				return chunk, err
			}
			if s.atEOF {
				return append(chunk, sub...), nil
			}
			chunk = append(chunk, sub...)
		}
	}
	buf := make([]byte, n)
	read, err := s.rd.Read(buf)
	chunk = buf[:read]
	if err == io.EOF {
		s.atEOF = true
		return chunk, s.Close()
	}
	if err != nil {
		return
	}
	if read == 0 {
		s.atEOF = true
		return nil, s.Close()
	}
	return
}

func (s *ReaderStream) Close() error {
	s.atEOF = true
	if s.released {
		return nil
	}
	s.released = true
	if c, ok := s.rd.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ResponseStream adapts an HTTP response body, taking its size from
// the Content-Length header when present.  The body connection is
// released when the stream is drained or closed.
type ResponseStream struct {
	*ReaderStream
	resp *http.Response
	name string
}

func NewResponseStream(resp *http.Response, name string) *ResponseStream {
	size := SizeUnknown
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if parsed, err := strconv.ParseInt(cl, 10, 64); err == nil {
			size = parsed
		}
	}
	return &ResponseStream{
		ReaderStream: NewReaderStream(resp.Body, size),
		resp:         resp,
		name:         name,
	}
}

func (s *ResponseStream) Name() string {
	return s.name
}

// Partial reports whether the response carries a byte range rather
// than the whole object.
func (s *ResponseStream) Partial() bool {
	return s.resp.StatusCode == http.StatusPartialContent
}

func (s *ResponseStream) ContentType() string {
	if ct := s.resp.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (s *ResponseStream) ContentRange() string {
	return s.resp.Header.Get("Content-Range")
}

// RequestStream adapts an inbound HTTP request body.  Size comes from
// the request's Content-Length; -1 there maps to SizeUnknown.
type RequestStream struct {
	*ReaderStream
}

func NewRequestStream(req *http.Request) *RequestStream {
	size := req.ContentLength
	if size < 0 {
		size = SizeUnknown
	}
	return &RequestStream{ReaderStream: NewReaderStream(req.Body, size)}
}
